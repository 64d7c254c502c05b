package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceRecord is one user's attendance for one work date. (UserID, WorkDate) is unique.
type AttendanceRecord struct {
	ID       string
	UserID   string
	WorkDate time.Time

	CheckIn           *time.Time
	CheckOut          *time.Time
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckInAddress    *string
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CheckOutAddress   *string

	TotalHours      decimal.Decimal
	IsLate          bool
	LateMinutes     int
	DeductionHours  decimal.Decimal
	DeductionAmount decimal.Decimal

	// SalaryMultiplier scales the day's pay: 1 is fully paid, 0 fully unpaid.
	SalaryMultiplier decimal.Decimal

	IsOvertimeApproved    *bool
	ApprovedOvertimeHours decimal.Decimal
	HasOvertimeRequest    bool
	OvertimeRequestID     *string
	HasLateRequest        bool
	LateRequestID         *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCheckedIn reports whether a check-in time is recorded
func (a AttendanceRecord) HasCheckedIn() bool {
	return a.CheckIn != nil
}

// HasCheckedOut reports whether a check-out time is recorded
func (a AttendanceRecord) HasCheckedOut() bool {
	return a.CheckOut != nil
}

// RecordCheckOut closes the day at at from the given place and returns the
// worked hours since check-in. TotalHours is stored rounded to 2 decimals.
func (a *AttendanceRecord) RecordCheckOut(at time.Time, latitude, longitude float64, address string) (float64, error) {
	if a.CheckIn == nil {
		return 0, ErrNotCheckedIn
	}
	if a.CheckOut != nil {
		return 0, ErrAlreadyCheckedOut
	}

	total := at.Sub(*a.CheckIn).Hours()

	a.CheckOut = &at
	a.CheckOutLatitude = &latitude
	a.CheckOutLongitude = &longitude
	a.CheckOutAddress = &address
	a.TotalHours = decimal.NewFromFloat(total).Round(2)

	return total, nil
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
