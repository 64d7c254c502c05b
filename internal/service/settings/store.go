package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/policy"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/setting"
	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Defaults used when a key is absent, inactive or unparsable.
var (
	DefaultLateThreshold1      = 15
	DefaultLateThreshold2      = 60
	DefaultLateThreshold3      = 120
	DefaultLateAllowWithPermit = true
	DefaultLatePermitWindow    = 7

	DefaultBaseSalary       = decimal.NewFromInt(5000000)
	DefaultWorkdaysPerMonth = decimal.NewFromInt(26)
	DefaultWorkHoursPerDay  = decimal.NewFromInt(8)

	DefaultOvertimeRequireApproval = true
	DefaultOvertimeMinMinutes      = 30
	DefaultOvertimeRateBase        = decimal.NewFromFloat(1.5)
	DefaultOvertimeRateNight       = decimal.NewFromInt(2)
	DefaultOvertimeRateHoliday     = decimal.NewFromInt(3)
	DefaultHolidayMultiplier       = decimal.NewFromInt(2)

	DefaultRequestMaxPendingDays    = 3
	DefaultUnpaidLeaveSalaryPercent = decimal.Zero

	DefaultAuditRetentionDays   = 60
	DefaultAuditDeleteBatchSize = 1000
)

// Store is the typed, read-only view over the settings table. Reads never
// fail: every problem degrades to the key's default and a warning.
type Store struct {
	repo setting.SettingRepository
}

func NewStore(repo setting.SettingRepository) *Store {
	return &Store{repo: repo}
}

// String returns the active value of key or def
func (s *Store) String(ctx context.Context, key, def string) string {
	raw, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	return raw
}

// Int returns the active value of key parsed as an integer, or def
func (s *Store) Int(ctx context.Context, key string, def int) int {
	raw, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	return parseInt(key, raw, def)
}

// Decimal returns the active value of key parsed as a decimal, or def
func (s *Store) Decimal(ctx context.Context, key string, def decimal.Decimal) decimal.Decimal {
	raw, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	return parseDecimal(key, raw, def)
}

// Bool returns the active value of key parsed as a boolean, or def
func (s *Store) Bool(ctx context.Context, key string, def bool) bool {
	raw, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	return parseBool(key, raw, def)
}

func (s *Store) lookup(ctx context.Context, key string) (string, bool) {
	st, err := s.repo.GetActive(ctx, key)
	if err != nil {
		if !errors.Is(err, setting.ErrSettingNotFound) {
			slog.Warn("Settings: read failed, using default", "key", key, "error", err)
		}
		return "", false
	}
	return strings.TrimSpace(st.Value), true
}

// Snapshot loads every active setting once and decodes the policy structs.
func (s *Store) Snapshot(ctx context.Context) policy.Snapshot {
	values := make(map[string]string)

	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		slog.Warn("Settings: failed to load settings, using defaults", "error", err)
	}
	for _, row := range rows {
		if row.TypeMismatch() {
			expected, _ := setting.ExpectedType(row.Key)
			slog.Warn("Settings: declared value type differs from the key's type, decoding by key",
				"key", row.Key, "declared", row.ValueType, "expected", expected)
		}
		values[row.Key] = strings.TrimSpace(row.Value)
	}

	return decoder{values: values}.snapshot()
}

// Defaults is the snapshot produced from an empty settings table
func Defaults() policy.Snapshot {
	return decoder{values: map[string]string{}}.snapshot()
}

type decoder struct {
	values map[string]string
}

func (d decoder) snapshot() policy.Snapshot {
	return policy.Snapshot{
		Late:      d.latePolicy(),
		Pay:       d.payPolicy(),
		Overtime:  d.overtimePolicy(),
		LeavePay:  d.leavePayPolicy(),
		Reconcile: d.reconcilePolicy(),
		Retention: d.retentionPolicy(),
	}
}

func (d decoder) intValue(key string, def int) int {
	raw, ok := d.values[key]
	if !ok {
		return def
	}
	return parseInt(key, raw, def)
}

func (d decoder) positiveInt(key string, def int) int {
	v := d.intValue(key, def)
	if v <= 0 {
		slog.Warn("Settings: value must be positive, using default", "key", key, "value", v, "default", def)
		return def
	}
	return v
}

func (d decoder) boolValue(key string, def bool) bool {
	raw, ok := d.values[key]
	if !ok {
		return def
	}
	return parseBool(key, raw, def)
}

func (d decoder) decimalValue(key string, def decimal.Decimal) decimal.Decimal {
	raw, ok := d.values[key]
	if !ok {
		return def
	}
	return parseDecimal(key, raw, def)
}

func (d decoder) positiveDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := d.decimalValue(key, def)
	if !v.IsPositive() {
		slog.Warn("Settings: value must be positive, using default", "key", key, "value", v.String(), "default", def.String())
		return def
	}
	return v
}

func (d decoder) latePolicy() policy.LatePolicy {
	p := policy.LatePolicy{
		Threshold1:       d.positiveInt(setting.KeyLateThreshold1, DefaultLateThreshold1),
		Threshold2:       d.positiveInt(setting.KeyLateThreshold2, DefaultLateThreshold2),
		Threshold3:       d.positiveInt(setting.KeyLateThreshold3, DefaultLateThreshold3),
		AllowWithPermit:  d.boolValue(setting.KeyLateAllowWithPermit, DefaultLateAllowWithPermit),
		PermitWindowDays: d.intValue(setting.KeyLatePermitWindow, DefaultLatePermitWindow),
		Penalty:          d.penaltyRule(),
	}

	if p.Threshold1 > p.Threshold2 || p.Threshold2 > p.Threshold3 {
		slog.Warn("Settings: late thresholds are not ascending, using defaults",
			"threshold_1", p.Threshold1, "threshold_2", p.Threshold2, "threshold_3", p.Threshold3)
		p.Threshold1 = DefaultLateThreshold1
		p.Threshold2 = DefaultLateThreshold2
		p.Threshold3 = DefaultLateThreshold3
	}
	if p.PermitWindowDays < 0 {
		slog.Warn("Settings: negative permit window, using default", "value", p.PermitWindowDays)
		p.PermitWindowDays = DefaultLatePermitWindow
	}

	return p
}

func (d decoder) penaltyRule() policy.PenaltyRule {
	rule := policy.PenaltyRule{Type: policy.PenaltyNone, Value: decimal.Zero}

	if raw, ok := d.values[setting.KeyLatePenaltyType]; ok {
		t, valid := policy.ParsePenaltyType(raw)
		if !valid {
			slog.Warn("Settings: unknown late penalty type, penalties disabled", "value", raw)
		}
		rule.Type = t
	}

	rule.Value = d.decimalValue(setting.KeyLatePenaltyValue, decimal.Zero)
	if rule.Value.IsNegative() {
		slog.Warn("Settings: negative late penalty value, using zero", "value", rule.Value.String())
		rule.Value = decimal.Zero
	}

	return rule
}

func (d decoder) payPolicy() policy.PayPolicy {
	return policy.PayPolicy{
		DefaultBaseSalary: d.positiveDecimal(setting.KeyDefaultBaseSalary, DefaultBaseSalary),
		WorkdaysPerMonth:  d.positiveDecimal(setting.KeyWorkdaysPerMonth, DefaultWorkdaysPerMonth),
		WorkHoursPerDay:   d.positiveDecimal(setting.KeyWorkHoursPerDay, DefaultWorkHoursPerDay),
	}
}

func (d decoder) overtimePolicy() policy.OvertimePolicy {
	minMinutes := d.intValue(setting.KeyOvertimeMinMinutes, DefaultOvertimeMinMinutes)
	if minMinutes < 0 {
		slog.Warn("Settings: negative overtime minimum, using default", "value", minMinutes)
		minMinutes = DefaultOvertimeMinMinutes
	}

	return policy.OvertimePolicy{
		RequireApproval:          d.boolValue(setting.KeyOvertimeRequireApproval, DefaultOvertimeRequireApproval),
		MinMinutes:               minMinutes,
		BaseRate:                 d.positiveDecimal(setting.KeyOvertimeRateBase, DefaultOvertimeRateBase),
		NightRate:                d.positiveDecimal(setting.KeyOvertimeRateNight, DefaultOvertimeRateNight),
		HolidayRate:              d.positiveDecimal(setting.KeyOvertimeRateHoliday, DefaultOvertimeRateHoliday),
		DefaultHolidayMultiplier: d.positiveDecimal(setting.KeyHolidayDefaultMult, DefaultHolidayMultiplier),
		Holidays:                 d.holidays(),
	}
}

type holidayJSON struct {
	Date       string          `json:"date"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Name       string          `json:"name"`
}

func (d decoder) holidays() map[string]policy.Holiday {
	holidays := make(map[string]policy.Holiday)

	raw, ok := d.values[setting.KeyHolidays]
	if !ok || raw == "" {
		return holidays
	}

	var entries []holidayJSON
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.Warn("Settings: malformed holiday list, using empty calendar", "error", err)
		return holidays
	}

	for _, e := range entries {
		date, ok := validator.IsValidDate(strings.TrimSpace(e.Date))
		if !ok {
			slog.Warn("Settings: skipping holiday with invalid date", "date", e.Date, "name", e.Name)
			continue
		}
		holidays[policy.HolidayKey(date)] = policy.Holiday{
			Date:       date,
			Multiplier: e.Multiplier,
			Name:       e.Name,
		}
	}

	return holidays
}

type leaveOverrideJSON struct {
	LeaveType string          `json:"leave_type"`
	Pay       string          `json:"pay"`
	Days      decimal.Decimal `json:"days"`
}

func (d decoder) leavePayPolicy() policy.LeavePayPolicy {
	p := policy.LeavePayPolicy{
		PaidTypes: make(map[string]struct{}),
		Overrides: make(map[string]policy.LeaveOverride),
	}

	if raw, ok := d.values[setting.KeyLeavePaidTypes]; ok && raw != "" {
		var types []string
		if err := json.Unmarshal([]byte(raw), &types); err != nil {
			// Unmarshal keeps the elements decoded before the error; none of them count.
			slog.Warn("Settings: malformed paid leave types, treating all leave as unpaid", "error", err)
			types = nil
		}
		for _, t := range types {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				p.PaidTypes[t] = struct{}{}
			}
		}
	}

	if raw, ok := d.values[setting.KeyLeavePayOverrides]; ok && raw != "" {
		var overrides []leaveOverrideJSON
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			slog.Warn("Settings: malformed leave pay overrides, ignoring", "error", err)
			overrides = nil
		}
		for _, o := range overrides {
			leaveType := strings.ToLower(strings.TrimSpace(o.LeaveType))
			mode, valid := policy.ParseLeavePayMode(o.Pay)
			if leaveType == "" || !valid {
				slog.Warn("Settings: skipping invalid leave pay override", "leave_type", o.LeaveType, "pay", o.Pay)
				continue
			}
			p.Overrides[leaveType] = policy.LeaveOverride{LeaveType: leaveType, Pay: mode, Days: o.Days}
		}
	}

	return p
}

func (d decoder) reconcilePolicy() policy.ReconcilePolicy {
	percent := d.decimalValue(setting.KeyUnpaidLeaveSalaryPercent, DefaultUnpaidLeaveSalaryPercent)
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		slog.Warn("Settings: unpaid leave salary percent out of range, using default", "value", percent.String())
		percent = DefaultUnpaidLeaveSalaryPercent
	}

	return policy.ReconcilePolicy{
		MaxPendingDays:           d.positiveInt(setting.KeyRequestMaxPendingDays, DefaultRequestMaxPendingDays),
		UnpaidLeaveSalaryPercent: percent,
	}
}

func (d decoder) retentionPolicy() policy.RetentionPolicy {
	return policy.RetentionPolicy{
		RetentionDays: d.positiveInt(setting.KeyAuditRetentionDays, DefaultAuditRetentionDays),
		BatchSize:     d.positiveInt(setting.KeyAuditDeleteBatchSize, DefaultAuditDeleteBatchSize),
	}
}

func parseInt(key, raw string, def int) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Settings: invalid integer, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}

func parseBool(key, raw string, def bool) bool {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Settings: invalid boolean, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}

func parseDecimal(key, raw string, def decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		slog.Warn("Settings: invalid number, using default", "key", key, "value", raw, "default", def.String())
		return def
	}
	return v
}
