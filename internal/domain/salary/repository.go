package salary

import "context"

type SalaryRepository interface {
	// GetActiveByUserID returns the active salary setting or ErrSalarySettingNotFound
	GetActiveByUserID(ctx context.Context, userID string) (SalarySetting, error)
}
