package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a new attendance record; returns ErrAlreadyCheckedIn on a (user, date) conflict
	Create(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)

	// GetByUserAndDate returns the record for user on date, or nil when none exists
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*AttendanceRecord, error)

	// Update persists every mutable column of an existing record
	Update(ctx context.Context, record AttendanceRecord) error
}
