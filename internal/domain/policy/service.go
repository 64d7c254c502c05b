package policy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotProvider loads the current policy configuration. It never fails:
// missing or malformed values fall back to their documented defaults.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) Snapshot
}

// Engine evaluates attendance and payroll rules. Results are deterministic for
// the same inputs and configuration and nothing is written.
type Engine interface {
	EvaluateLate(ctx context.Context, userID string, workDate time.Time, actualCheckIn *time.Time, standardCheckIn time.Time) LateEvaluation
	IsLeavePaid(ctx context.Context, leaveType string, daysRequested decimal.Decimal) bool
	CalculateOvertimePay(ctx context.Context, info *OvertimeInfo) decimal.Decimal
	HolidayMultiplier(ctx context.Context, date time.Time) decimal.Decimal
	HourlyRate(ctx context.Context, userID string) decimal.Decimal
}
