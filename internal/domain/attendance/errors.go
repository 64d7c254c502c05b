package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAlreadyCheckedIn   = errors.New("attendance already recorded for this date")
	ErrNotCheckedIn       = errors.New("no check-in recorded for this date")
	ErrAlreadyCheckedOut  = errors.New("check-out already recorded for this date")
)
