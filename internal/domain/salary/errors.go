package salary

import "errors"

var (
	ErrSalarySettingNotFound = errors.New("salary setting not found")
)
