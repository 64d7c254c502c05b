package policy

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/policy"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/request"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/salary"
	"github.com/shopspring/decimal"
)

var (
	sixty   = decimal.NewFromInt(60)
	hundred = decimal.NewFromInt(100)
)

type engine struct {
	snapshots   policy.SnapshotProvider
	salaryRepo  salary.SalaryRepository
	requestRepo request.RequestRepository
	loc         *time.Location
}

// NewEngine returns the policy engine. Clock times (standard check-in, night
// overtime) are read in loc, the business timezone; work dates are calendar
// dates whatever their location.
func NewEngine(snapshots policy.SnapshotProvider, salaryRepo salary.SalaryRepository, requestRepo request.RequestRepository, loc *time.Location) policy.Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &engine{
		snapshots:   snapshots,
		salaryRepo:  salaryRepo,
		requestRepo: requestRepo,
		loc:         loc,
	}
}

// EvaluateLate implements policy.Engine.
func (e *engine) EvaluateLate(ctx context.Context, userID string, workDate time.Time, actualCheckIn *time.Time, standardCheckIn time.Time) policy.LateEvaluation {
	if actualCheckIn == nil {
		return noEvaluation(policy.LateLevelNone)
	}

	y, m, d := workDate.Date()
	scheduled := time.Date(y, m, d,
		standardCheckIn.Hour(), standardCheckIn.Minute(), standardCheckIn.Second(), 0, e.loc)

	lateMinutes := int(math.Floor(actualCheckIn.Sub(scheduled).Minutes()))
	if lateMinutes <= 0 {
		return noEvaluation(policy.LateLevelOnTime)
	}

	snap := e.snapshots.Snapshot(ctx)
	result := policy.LateEvaluation{
		Level:            classifyLate(snap.Late, lateMinutes),
		LateMinutes:      lateMinutes,
		DeductionMinutes: decimal.Zero,
		DeductionAmount:  decimal.Zero,
	}

	if snap.Late.AllowWithPermit {
		if permit := e.findPermit(ctx, snap.Late, userID, workDate); permit != nil {
			result.PermitRequestID = &permit.ID
			return result
		}
	}

	penalty := snap.Late.Penalty
	switch penalty.Type {
	case policy.PenaltyDeduct:
		result.DeductionMinutes = decimal.Min(penalty.Value, decimal.NewFromInt(int64(lateMinutes)))
	case policy.PenaltyPercentage:
		result.DeductionMinutes = decimal.NewFromInt(int64(lateMinutes)).Mul(penalty.Value).Div(hundred).Round(2)
	case policy.PenaltyFine:
		result.DeductionAmount = penalty.Value
		return result
	case policy.PenaltyNone:
		return result
	}

	if result.DeductionMinutes.IsPositive() {
		hourly := e.hourlyRate(ctx, snap.Pay, userID)
		result.DeductionAmount = result.DeductionMinutes.Div(sixty).Mul(hourly).Round(0)
	}

	return result
}

func noEvaluation(level policy.LateLevel) policy.LateEvaluation {
	return policy.LateEvaluation{
		Level:            level,
		DeductionMinutes: decimal.Zero,
		DeductionAmount:  decimal.Zero,
	}
}

// classifyLate maps late minutes to a tier; each threshold is inclusive of its tier.
func classifyLate(p policy.LatePolicy, lateMinutes int) policy.LateLevel {
	switch {
	case lateMinutes <= p.Threshold1:
		return policy.LateLevelShort
	case lateMinutes <= p.Threshold2:
		return policy.LateLevelMedium
	case lateMinutes <= p.Threshold3:
		return policy.LateLevelLong
	default:
		return policy.LateLevelExtreme
	}
}

func (e *engine) findPermit(ctx context.Context, p policy.LatePolicy, userID string, workDate time.Time) *request.LateRequest {
	to := attendance.DateOnly(workDate)
	from := to.AddDate(0, 0, -p.PermitWindowDays)

	permit, err := e.requestRepo.FindLatestApprovedLate(ctx, userID, from, to)
	if err != nil {
		slog.Error("Policy: late permit lookup failed, evaluating without permit",
			"user_id", userID, "work_date", policy.HolidayKey(workDate), "error", err)
		return nil
	}
	return permit
}

// IsLeavePaid implements policy.Engine.
func (e *engine) IsLeavePaid(ctx context.Context, leaveType string, daysRequested decimal.Decimal) bool {
	key := strings.ToLower(strings.TrimSpace(leaveType))
	if key == "" {
		return false
	}

	lp := e.snapshots.Snapshot(ctx).LeavePay
	if _, ok := lp.PaidTypes[key]; ok {
		return true
	}

	override, ok := lp.Overrides[key]
	if !ok {
		return false
	}

	switch override.Pay {
	case policy.LeavePayFull:
		return true
	case policy.LeavePayPartial:
		return override.Days.GreaterThanOrEqual(daysRequested)
	default:
		return false
	}
}

// CalculateOvertimePay implements policy.Engine.
func (e *engine) CalculateOvertimePay(ctx context.Context, info *policy.OvertimeInfo) decimal.Decimal {
	if info == nil {
		return decimal.Zero
	}

	snap := e.snapshots.Snapshot(ctx)
	ot := snap.Overtime

	if ot.RequireApproval && (info.IsOvertimeApproved == nil || !*info.IsOvertimeApproved) {
		return decimal.Zero
	}

	hours := info.ApprovedOvertimeHours
	if !hours.IsPositive() || hours.Mul(sixty).LessThan(decimal.NewFromInt(int64(ot.MinMinutes))) {
		return decimal.Zero
	}

	rate := ot.BaseRate
	if info.CheckOut != nil && isNight(info.CheckOut.In(e.loc)) {
		rate = decimal.Max(rate, ot.NightRate)
	}

	holidayMultiplier := lookupHoliday(ot, info.WorkDate)
	if holidayMultiplier.GreaterThan(decimal.NewFromInt(1)) {
		rate = decimal.Max(rate, ot.HolidayRate)
	}

	hourly := e.hourlyRate(ctx, snap.Pay, info.UserID)
	return hours.Mul(hourly).Mul(rate).Mul(holidayMultiplier).Round(0)
}

// isNight reports whether t falls in [22:00, 06:00) of its own location
func isNight(t time.Time) bool {
	return t.Hour() >= 22 || t.Hour() < 6
}

// HolidayMultiplier implements policy.Engine.
func (e *engine) HolidayMultiplier(ctx context.Context, date time.Time) decimal.Decimal {
	return lookupHoliday(e.snapshots.Snapshot(ctx).Overtime, date)
}

func lookupHoliday(ot policy.OvertimePolicy, date time.Time) decimal.Decimal {
	holiday, ok := ot.Holidays[policy.HolidayKey(date)]
	if !ok {
		return decimal.NewFromInt(1)
	}
	if !holiday.Multiplier.IsPositive() {
		return ot.DefaultHolidayMultiplier
	}
	return holiday.Multiplier
}

// HourlyRate implements policy.Engine.
func (e *engine) HourlyRate(ctx context.Context, userID string) decimal.Decimal {
	return e.hourlyRate(ctx, e.snapshots.Snapshot(ctx).Pay, userID)
}

// hourlyRate is base salary / workdays per month / work hours per day, using the
// default base salary when the user has no usable active salary setting.
func (e *engine) hourlyRate(ctx context.Context, pay policy.PayPolicy, userID string) decimal.Decimal {
	base := pay.DefaultBaseSalary

	s, err := e.salaryRepo.GetActiveByUserID(ctx, userID)
	switch {
	case err == nil && s.BaseSalary.IsPositive():
		base = s.BaseSalary
	case err != nil && !errors.Is(err, salary.ErrSalarySettingNotFound):
		slog.Warn("Policy: salary lookup failed, using default base salary", "user_id", userID, "error", err)
	}

	return base.Div(pay.WorkdaysPerMonth).Div(pay.WorkHoursPerDay)
}
