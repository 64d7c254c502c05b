package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/config"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/notification"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// Sender sends composed messages; *gomail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Channel delivers attendance notifications as HTML email
type Channel struct {
	cfg       config.SMTPConfig
	sender    Sender
	templates *template.Template
	backoff   time.Duration
}

// NewChannel creates an email channel sending through the configured SMTP server
func NewChannel(cfg config.SMTPConfig) (*Channel, error) {
	if cfg.Host == "" {
		return nil, notification.ErrChannelNotConfigured
	}
	return NewChannelWithSender(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password))
}

// NewChannelWithSender creates an email channel over an explicit sender
func NewChannelWithSender(cfg config.SMTPConfig, sender Sender) (*Channel, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &Channel{
		cfg:       cfg,
		sender:    sender,
		templates: tmpl,
		backoff:   time.Second,
	}, nil
}

// Name implements notification.Channel.
func (c *Channel) Name() string {
	return "email"
}

type checkInEmailData struct {
	Name    string
	Date    string
	Time    string
	Address string
	IsLate  bool
}

type checkOutEmailData struct {
	Name          string
	Date          string
	Time          string
	TotalHours    string
	OvertimeHours string
	HasOvertime   bool
}

// Deliver implements notification.Channel.
func (c *Channel) Deliver(ctx context.Context, msg notification.Message) error {
	if msg.Recipient.Email == "" {
		return notification.ErrRecipientUnreachable
	}

	body, err := c.render(msg)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(c.cfg.From, c.cfg.FromName))
	m.SetHeader("To", msg.Recipient.Email)
	m.SetHeader("Subject", msg.Title)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", body)

	return c.send(ctx, m, msg.Recipient.Email, msg.Title)
}

func (c *Channel) render(msg notification.Message) (string, error) {
	var (
		name string
		data interface{}
	)

	switch payload := msg.Payload.(type) {
	case notification.CheckInData:
		name = "checkin.html"
		data = checkInEmailData{
			Name:    msg.Recipient.Name,
			Date:    payload.At.Format("Monday, 02 January 2006"),
			Time:    payload.At.Format("15:04"),
			Address: payload.Address,
			IsLate:  payload.IsLate,
		}
	case notification.CheckOutData:
		name = "checkout.html"
		data = checkOutEmailData{
			Name:          msg.Recipient.Name,
			Date:          payload.At.Format("Monday, 02 January 2006"),
			Time:          payload.At.Format("15:04"),
			TotalHours:    fmt.Sprintf("%.2f", payload.TotalHours),
			OvertimeHours: fmt.Sprintf("%.2f", payload.OvertimeHours),
			HasOvertime:   payload.OvertimeHours > 0,
		}
	default:
		return "", fmt.Errorf("no email template for notification type %q", msg.Type)
	}

	var body bytes.Buffer
	if err := c.templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

func (c *Channel) send(ctx context.Context, m *gomail.Message, to, subject string) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := c.sender.DialAndSend(m)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			select {
			case <-time.After(c.backoff * time.Duration(1<<(attempt-1))):
			case <-ctx.Done():
				return fmt.Errorf("email send abandoned: %w", ctx.Err())
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
