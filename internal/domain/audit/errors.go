package audit

import "errors"

var (
	ErrInvalidBatchSize     = errors.New("audit delete batch size must be positive")
	ErrInvalidRetentionDays = errors.New("audit retention days must be positive")
)
