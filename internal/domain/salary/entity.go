package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalarySetting is the per-user pay configuration. One active row per user.
type SalarySetting struct {
	ID                 string
	UserID             string
	BaseSalary         decimal.Decimal
	HourlyRate         decimal.Decimal
	OvertimeMultiplier decimal.Decimal
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
