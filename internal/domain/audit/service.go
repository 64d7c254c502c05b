package audit

import (
	"context"
)

// Sink appends audit entries on a best-effort basis. Record never fails the caller.
type Sink interface {
	Record(ctx context.Context, rec Record)
}

// RetentionService deletes expired entries and reports table status
type RetentionService interface {
	Purge(ctx context.Context, retentionDays, batchSize int) (PurgeResult, error)
	Status(ctx context.Context) (RetentionStatus, error)
}
