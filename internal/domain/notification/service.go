package notification

import (
	"context"
	"time"
)

// Notifier dispatches attendance notifications. Delivery is fire-and-forget:
// a nil error means the message was accepted, not that it was delivered.
type Notifier interface {
	SendCheckIn(ctx context.Context, person Person, at time.Time, address string, isLate bool) error
	SendCheckOut(ctx context.Context, person Person, at time.Time, totalHours, overtimeHours float64) error
}

// Service is a Notifier backed by background workers
type Service interface {
	Notifier

	// Stop drains queued messages and stops the workers
	Stop()
}

// Channel delivers a rendered message over one transport (email, Telegram)
type Channel interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}
