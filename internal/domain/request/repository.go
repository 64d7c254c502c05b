package request

import (
	"context"
	"time"
)

// RequestRepository gives the reconciliation job access to the three request tables.
type RequestRepository interface {
	// ListStaleOvertime returns pending overtime requests created before cutoff
	ListStaleOvertime(ctx context.Context, cutoff time.Time) ([]OvertimeRequest, error)

	// ListStaleLeave returns pending leave requests created before cutoff
	ListStaleLeave(ctx context.Context, cutoff time.Time) ([]LeaveRequest, error)

	// ListStaleLate returns pending late requests created before cutoff
	ListStaleLate(ctx context.Context, cutoff time.Time) ([]LateRequest, error)

	// SaveReview persists status and review fields of a request of the given kind.
	// Only rows still pending are updated; ErrRequestAlreadyProcessed otherwise.
	SaveReview(ctx context.Context, kind Kind, review Review) error

	// FindLatestApprovedLate returns the most recent approved late request of userID
	// with RequestDate in [from, to], or nil when none exists
	FindLatestApprovedLate(ctx context.Context, userID string, from, to time.Time) (*LateRequest, error)
}
