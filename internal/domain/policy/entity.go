package policy

import (
	"time"

	"github.com/shopspring/decimal"
)

// LateLevel classifies how late a check-in was
type LateLevel string

const (
	LateLevelNone    LateLevel = "none"
	LateLevelOnTime  LateLevel = "on_time"
	LateLevelShort   LateLevel = "short"
	LateLevelMedium  LateLevel = "medium"
	LateLevelLong    LateLevel = "long"
	LateLevelExtreme LateLevel = "extreme"
)

// IsLate reports whether the level carries a lateness
func (l LateLevel) IsLate() bool {
	switch l {
	case LateLevelShort, LateLevelMedium, LateLevelLong, LateLevelExtreme:
		return true
	default:
		return false
	}
}

// LateEvaluation is the result of EvaluateLate. It is a preview: nothing is persisted.
type LateEvaluation struct {
	Level            LateLevel
	LateMinutes      int
	DeductionMinutes decimal.Decimal
	DeductionAmount  decimal.Decimal

	// PermitRequestID is set when an approved late request waived the penalty
	PermitRequestID *string
}

// DeductionHours converts DeductionMinutes to hours, rounded to 2 decimals
func (e LateEvaluation) DeductionHours() decimal.Decimal {
	return e.DeductionMinutes.Div(decimal.NewFromInt(60)).Round(2)
}

// OvertimeInfo is the attendance data needed to price overtime
type OvertimeInfo struct {
	UserID                string
	WorkDate              time.Time
	CheckOut              *time.Time
	ApprovedOvertimeHours decimal.Decimal
	IsOvertimeApproved    *bool
}

// Holiday is one entry of the configured holiday calendar
type Holiday struct {
	Date       time.Time
	Multiplier decimal.Decimal
	Name       string
}
