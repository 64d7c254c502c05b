package audit

import (
	"context"
	"time"
)

type AuditRepository interface {
	// Insert appends an entry and returns it with ID and CreatedAt set
	Insert(ctx context.Context, entry Entry) (Entry, error)

	// DeleteOlderThan deletes at most limit entries created before cutoff and returns the count
	DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error)

	// Count returns the number of entries, or entries created at or after since when non-nil
	Count(ctx context.Context, since *time.Time) (int64, error)

	// Bounds returns the oldest and newest CreatedAt, both nil when the table is empty
	Bounds(ctx context.Context) (oldest, newest *time.Time, err error)
}
