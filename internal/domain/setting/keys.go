package setting

// Setting keys read by the policy engine and the background jobs.
const (
	KeyLateThreshold1      = "LATE_THRESHOLD_1"
	KeyLateThreshold2      = "LATE_THRESHOLD_2"
	KeyLateThreshold3      = "LATE_THRESHOLD_3"
	KeyLateAllowWithPermit = "LATE_ALLOW_WITH_PERMIT"
	KeyLatePermitWindow    = "LATE_PERMIT_WINDOW_DAYS"
	KeyLatePenaltyType     = "LATE_PENALTY_TYPE"
	KeyLatePenaltyValue    = "LATE_PENALTY_VALUE"

	KeyDefaultBaseSalary = "DEFAULT_BASE_SALARY"
	KeyWorkdaysPerMonth  = "WORKDAYS_PER_MONTH"
	KeyWorkHoursPerDay   = "WORK_HOURS_PER_DAY"

	KeyLeavePaidTypes    = "LEAVE_PAID_TYPES"
	KeyLeavePayOverrides = "LEAVE_PAY_OVERRIDES"

	KeyOvertimeRequireApproval = "OVERTIME_REQUIRE_APPROVAL"
	KeyOvertimeMinMinutes      = "OVERTIME_MIN_MINUTES"
	KeyOvertimeRateBase        = "OVERTIME_RATE_BASE"
	KeyOvertimeRateNight       = "OVERTIME_RATE_NIGHT"
	KeyOvertimeRateHoliday     = "OVERTIME_RATE_HOLIDAY"
	KeyHolidays                = "HOLIDAYS"
	KeyHolidayDefaultMult      = "HOLIDAY_DEFAULT_MULTIPLIER"

	KeyRequestMaxPendingDays    = "REQUEST_MAX_PENDING_DAYS"
	KeyUnpaidLeaveSalaryPercent = "UNPAID_LEAVE_SALARY_PERCENT"

	KeyAuditRetentionDays   = "AUDIT_RETENTION_DAYS"
	KeyAuditDeleteBatchSize = "AUDIT_DELETE_BATCH_SIZE"
)

var expectedTypes = map[string]ValueType{
	KeyLateThreshold1:      ValueTypeInt,
	KeyLateThreshold2:      ValueTypeInt,
	KeyLateThreshold3:      ValueTypeInt,
	KeyLateAllowWithPermit: ValueTypeBool,
	KeyLatePermitWindow:    ValueTypeInt,
	KeyLatePenaltyType:     ValueTypeString,
	KeyLatePenaltyValue:    ValueTypeDecimal,

	KeyDefaultBaseSalary: ValueTypeDecimal,
	KeyWorkdaysPerMonth:  ValueTypeDecimal,
	KeyWorkHoursPerDay:   ValueTypeDecimal,

	KeyLeavePaidTypes:    ValueTypeJSON,
	KeyLeavePayOverrides: ValueTypeJSON,

	KeyOvertimeRequireApproval: ValueTypeBool,
	KeyOvertimeMinMinutes:      ValueTypeInt,
	KeyOvertimeRateBase:        ValueTypeDecimal,
	KeyOvertimeRateNight:       ValueTypeDecimal,
	KeyOvertimeRateHoliday:     ValueTypeDecimal,
	KeyHolidays:                ValueTypeJSON,
	KeyHolidayDefaultMult:      ValueTypeDecimal,

	KeyRequestMaxPendingDays:    ValueTypeInt,
	KeyUnpaidLeaveSalaryPercent: ValueTypeDecimal,

	KeyAuditRetentionDays:   ValueTypeInt,
	KeyAuditDeleteBatchSize: ValueTypeInt,
}

// ExpectedType returns the value type a known key is decoded as
func ExpectedType(key string) (ValueType, bool) {
	t, ok := expectedTypes[key]
	return t, ok
}
