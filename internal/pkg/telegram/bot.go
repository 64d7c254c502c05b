package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/config"
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/notification"
)

// Channel delivers attendance notifications through the Telegram Bot API
type Channel struct {
	httpClient *http.Client
	baseURL    string
}

// NewChannel creates a Telegram channel for the configured bot
func NewChannel(cfg config.TelegramConfig) (*Channel, error) {
	if cfg.BotToken == "" {
		return nil, notification.ErrChannelNotConfigured
	}

	return &Channel{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: fmt.Sprintf("%s/bot%s", strings.TrimRight(cfg.APIBaseURL, "/"), cfg.BotToken),
	}, nil
}

// Name implements notification.Channel.
func (c *Channel) Name() string {
	return "telegram"
}

// Deliver implements notification.Channel.
func (c *Channel) Deliver(ctx context.Context, msg notification.Message) error {
	if msg.Recipient.TelegramChatID == 0 {
		return notification.ErrRecipientUnreachable
	}

	return c.SendMessage(ctx, msg.Recipient.TelegramChatID, formatMessage(msg))
}

// formatMessage renders the message as Telegram HTML
func formatMessage(msg notification.Message) string {
	return fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(msg.Title), html.EscapeString(msg.Text))
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendMessage sends an HTML formatted message to a chat
func (c *Channel) SendMessage(ctx context.Context, chatID int64, text string) error {
	body := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}

	return c.makeRequest(ctx, c.baseURL+"/sendMessage", body)
}

func (c *Channel) makeRequest(ctx context.Context, url string, body map[string]any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}

	return nil
}
