package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/notification"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount     int           // default: 2
	QueueSize       int           // default: 1000
	DeliveryTimeout time.Duration // default: 30 seconds
}

type service struct {
	channels []notification.Channel
	config   Config
	now      func() time.Time

	queue   chan notification.Message
	wg      sync.WaitGroup
	stopCh  chan struct{}
	mu      sync.RWMutex
	stopped bool
}

// NewNotificationService creates a notification service with background workers
// delivering every message to each channel.
func NewNotificationService(channels []notification.Channel, cfg Config) notification.Service {
	// Set defaults
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if cfg.DeliveryTimeout == 0 {
		cfg.DeliveryTimeout = 30 * time.Second
	}

	s := &service{
		channels: channels,
		config:   cfg,
		now:      time.Now,
		queue:    make(chan notification.Message, cfg.QueueSize),
		stopCh:   make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, ch.Name())
	}
	slog.Info("NotificationService: started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize, "channels", names)

	return s
}

// worker delivers queued messages until Stop, then drains what is left
func (s *service) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case msg := <-s.queue:
			s.deliver(id, msg)
		case <-s.stopCh:
			for {
				select {
				case msg := <-s.queue:
					s.deliver(id, msg)
				default:
					return
				}
			}
		}
	}
}

func (s *service) deliver(workerID int, msg notification.Message) {
	for _, ch := range s.channels {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.DeliveryTimeout)
		err := ch.Deliver(ctx, msg)
		cancel()

		switch {
		case err == nil:
			slog.Debug("NotificationWorker: delivered", "worker", workerID, "channel", ch.Name(), "type", msg.Type, "user_id", msg.Recipient.UserID)
		case errors.Is(err, notification.ErrRecipientUnreachable):
			slog.Debug("NotificationWorker: recipient has no address on channel", "channel", ch.Name(), "user_id", msg.Recipient.UserID)
		default:
			slog.Error("NotificationWorker: delivery failed",
				"worker", workerID, "channel", ch.Name(), "type", msg.Type, "user_id", msg.Recipient.UserID, "error", err)
		}
	}
}

// SendCheckIn implements notification.Notifier.
func (s *service) SendCheckIn(ctx context.Context, person notification.Person, at time.Time, address string, isLate bool) error {
	status := "on time"
	if isLate {
		status = "late"
	}

	return s.enqueue(ctx, notification.Message{
		Type:      notification.TypeAttendanceCheckIn,
		Recipient: person,
		Title:     "Check-in recorded",
		Text: fmt.Sprintf("Hi %s, your check-in at %s was recorded (%s). Location: %s",
			person.Name, at.Format("15:04"), status, address),
		Payload: notification.CheckInData{At: at, Address: address, IsLate: isLate},
	})
}

// SendCheckOut implements notification.Notifier.
func (s *service) SendCheckOut(ctx context.Context, person notification.Person, at time.Time, totalHours, overtimeHours float64) error {
	text := fmt.Sprintf("Hi %s, your check-out at %s was recorded. Total hours worked: %.2f",
		person.Name, at.Format("15:04"), totalHours)
	if overtimeHours > 0 {
		text += fmt.Sprintf(" (overtime: %.2f)", overtimeHours)
	}

	return s.enqueue(ctx, notification.Message{
		Type:      notification.TypeAttendanceCheckOut,
		Recipient: person,
		Title:     "Check-out recorded",
		Text:      text,
		Payload:   notification.CheckOutData{At: at, TotalHours: totalHours, OvertimeHours: overtimeHours},
	})
}

// enqueue never blocks: a full queue drops the message
func (s *service) enqueue(ctx context.Context, msg notification.Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		return notification.ErrServiceStopped
	}

	msg.ID = uuid.New().String()
	msg.CreatedAt = s.now()

	select {
	case s.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		slog.Warn("NotificationService: queue full, dropping message", "type", msg.Type, "user_id", msg.Recipient.UserID)
		return notification.ErrQueueFull
	}
}

// Stop gracefully stops the notification service
func (s *service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("NotificationService: stopped")
}
