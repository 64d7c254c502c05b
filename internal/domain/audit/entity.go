package audit

import (
	"time"
)

// Field limits of an audit entry
const (
	MaxActionLength      = 50
	MaxEntityNameLength  = 100
	MaxDescriptionLength = 1000
	MaxValueLength       = 4000
)

// Entry is an append-only audit trail row. ActorID is nil for system actions.
type Entry struct {
	ID          int64
	ActorID     *string
	Action      string
	EntityName  string
	EntityID    *string
	OldValue    *string
	NewValue    *string
	Description string
	Metadata    map[string]interface{}
	CreatedAt   time.Time
}

// Record is the caller-facing input of the audit sink. OldValue and NewValue
// are serialized to JSON by the sink.
type Record struct {
	ActorID     *string
	Action      string
	EntityName  string
	EntityID    *string
	OldValue    interface{}
	NewValue    interface{}
	Description string
	Metadata    map[string]interface{}
}

// RetentionStatus summarises the audit table for an external dashboard
type RetentionStatus struct {
	TotalRecords int64
	Last2Months  int64
	Last6Months  int64
	Oldest       *time.Time
	Newest       *time.Time
}

// PurgeResult reports one retention run
type PurgeResult struct {
	Cutoff  time.Time
	Deleted int64
	Batches int
}
