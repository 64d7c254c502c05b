package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the request table a pending request lives in
type Kind string

const (
	KindOvertime Kind = "overtime"
	KindLeave    Kind = "leave"
	KindLate     Kind = "late"
)

// AllKinds returns every request kind in reconciliation order
func AllKinds() []Kind {
	return []Kind{KindOvertime, KindLeave, KindLate}
}

// EntityName is the name recorded in the audit trail for requests of this kind
func (k Kind) EntityName() string {
	switch k {
	case KindOvertime:
		return "OvertimeRequest"
	case KindLeave:
		return "LeaveRequest"
	case KindLate:
		return "LateRequest"
	default:
		return "Request"
	}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsTerminal reports whether no further transition is allowed
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Review holds the fields shared by every request kind.
type Review struct {
	ID         string
	UserID     string
	Status     Status
	ReviewedBy *string
	ReviewNote *string
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Reject moves a pending request to Rejected on behalf of the system.
// Returns ErrRequestAlreadyProcessed when the request is not pending.
func (r *Review) Reject(note string, at time.Time) error {
	if r.Status != StatusPending {
		return ErrRequestAlreadyProcessed
	}
	r.Status = StatusRejected
	r.ReviewedBy = nil
	r.ReviewNote = &note
	r.ReviewedAt = &at
	r.UpdatedAt = at
	return nil
}

// OvertimeRequest asks for approval of overtime worked on WorkDate
type OvertimeRequest struct {
	Review
	WorkDate  time.Time
	StartTime *time.Time
	EndTime   *time.Time
	Hours     decimal.Decimal
	Reason    *string
}

// LeaveRequest covers every calendar day in [StartDate, EndDate]
type LeaveRequest struct {
	Review
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	TotalDays decimal.Decimal
	Reason    *string
}

// Days returns every calendar day of the leave, inclusive of both ends
func (l LeaveRequest) Days() []time.Time {
	start := time.Date(l.StartDate.Year(), l.StartDate.Month(), l.StartDate.Day(), 0, 0, 0, 0, l.StartDate.Location())
	end := time.Date(l.EndDate.Year(), l.EndDate.Month(), l.EndDate.Day(), 0, 0, 0, 0, l.EndDate.Location())

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// LateRequest asks permission to arrive late on RequestDate
type LateRequest struct {
	Review
	RequestDate     time.Time
	ExpectedArrival *time.Time
	Reason          *string
}
