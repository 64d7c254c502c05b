package notification

import "errors"

// Notification domain errors
var (
	ErrQueueFull            = errors.New("notification queue is full")
	ErrChannelNotConfigured = errors.New("notification channel is not configured")
	ErrRecipientUnreachable = errors.New("recipient has no address for this channel")
	ErrServiceStopped       = errors.New("notification service is stopped")
)
