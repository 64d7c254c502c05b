package policy

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PenaltyType is the closed set of late penalty kinds
type PenaltyType string

const (
	PenaltyNone       PenaltyType = "none"
	PenaltyDeduct     PenaltyType = "deduct"
	PenaltyPercentage PenaltyType = "percentage"
	PenaltyFine       PenaltyType = "fine"
)

// ParsePenaltyType decodes a configured penalty type, case-insensitively
func ParsePenaltyType(s string) (PenaltyType, bool) {
	switch PenaltyType(strings.ToLower(strings.TrimSpace(s))) {
	case PenaltyNone:
		return PenaltyNone, true
	case PenaltyDeduct:
		return PenaltyDeduct, true
	case PenaltyPercentage:
		return PenaltyPercentage, true
	case PenaltyFine:
		return PenaltyFine, true
	default:
		return PenaltyNone, false
	}
}

// PenaltyRule is a penalty type with its payload.
//   - deduct: Value is a fixed number of minutes, capped at the late minutes
//   - percentage: Value is a percentage of the late minutes
//   - fine: Value is a fixed currency amount
type PenaltyRule struct {
	Type  PenaltyType
	Value decimal.Decimal
}

// LeavePayMode is the closed set of leave override pay modes
type LeavePayMode string

const (
	LeavePayFull    LeavePayMode = "full"
	LeavePayPartial LeavePayMode = "partial"
)

// ParseLeavePayMode decodes a configured pay mode, case-insensitively
func ParseLeavePayMode(s string) (LeavePayMode, bool) {
	switch LeavePayMode(strings.ToLower(strings.TrimSpace(s))) {
	case LeavePayFull:
		return LeavePayFull, true
	case LeavePayPartial:
		return LeavePayPartial, true
	default:
		return "", false
	}
}

// LeaveOverride grants pay to a leave type outside the allow-list.
// Partial overrides pay only requests of at most Days days.
type LeaveOverride struct {
	LeaveType string
	Pay       LeavePayMode
	Days      decimal.Decimal
}

// LatePolicy holds the late-arrival thresholds and penalty
type LatePolicy struct {
	Threshold1       int
	Threshold2       int
	Threshold3       int
	AllowWithPermit  bool
	PermitWindowDays int
	Penalty          PenaltyRule
}

// PayPolicy holds the inputs of the hourly rate derivation
type PayPolicy struct {
	DefaultBaseSalary decimal.Decimal
	WorkdaysPerMonth  decimal.Decimal
	WorkHoursPerDay   decimal.Decimal
}

// OvertimePolicy holds overtime rates and the holiday calendar
type OvertimePolicy struct {
	RequireApproval          bool
	MinMinutes               int
	BaseRate                 decimal.Decimal
	NightRate                decimal.Decimal
	HolidayRate              decimal.Decimal
	DefaultHolidayMultiplier decimal.Decimal
	Holidays                 map[string]Holiday
}

// LeavePayPolicy holds the paid leave allow-list (lower-cased) and overrides keyed by lower-cased leave type
type LeavePayPolicy struct {
	PaidTypes map[string]struct{}
	Overrides map[string]LeaveOverride
}

// ReconcilePolicy drives the stale request auto-rejection
type ReconcilePolicy struct {
	MaxPendingDays           int
	UnpaidLeaveSalaryPercent decimal.Decimal
}

// UnpaidLeaveMultiplier is the salary multiplier written on rejected leave days
func (p ReconcilePolicy) UnpaidLeaveMultiplier() decimal.Decimal {
	return p.UnpaidLeaveSalaryPercent.Div(decimal.NewFromInt(100))
}

// RetentionPolicy drives the audit purge
type RetentionPolicy struct {
	RetentionDays int
	BatchSize     int
}

// Snapshot is every policy decoded from one read of the settings table
type Snapshot struct {
	Late      LatePolicy
	Pay       PayPolicy
	Overtime  OvertimePolicy
	LeavePay  LeavePayPolicy
	Reconcile ReconcilePolicy
	Retention RetentionPolicy
}

// HolidayKey is the calendar key of a date
func HolidayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
