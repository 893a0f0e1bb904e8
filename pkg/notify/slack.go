// Package notify posts team notifications to a Slack-style incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/models"
)

var (
	// ErrSendFailed is returned when the webhook rejects or cannot take a message
	ErrSendFailed = errors.New("failed to send notification")
)

// Message is a webhook message
type Message struct {
	Text string `json:"text"`
}

// Client sends webhook messages
type Client interface {
	SendMessage(ctx context.Context, msg Message) error
}

// WebhookClient implements Client over an incoming webhook URL
type WebhookClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookClient creates a webhook client
func NewWebhookClient(webhookURL string) *WebhookClient {
	return &WebhookClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendMessage posts msg as JSON
func (c *WebhookClient) SendMessage(ctx context.Context, msg Message) error {
	if c.webhookURL == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrSendFailed, resp.StatusCode)
	}
	return nil
}

// Service formats lead events as messages. A Service without a client is
// disabled and drops every notification.
type Service struct {
	client Client
}

// NewService creates a notification service; client may be nil
func NewService(client Client) *Service {
	return &Service{client: client}
}

// IsEnabled returns true if notifications are sent
func (s *Service) IsEnabled() bool {
	return s != nil && s.client != nil
}

// NotifyNewLead announces a lead added from the dashboard
func (s *Service) NotifyNewLead(ctx context.Context, lead models.Lead) error {
	if !s.IsEnabled() {
		return nil
	}

	text := fmt.Sprintf("🎯 *New Lead %s*\n"+
		"• Company: %s\n"+
		"• Contact: %s (%s)\n"+
		"• Source: %s, received by %s",
		lead.LeadNo, lead.CompanyName, lead.PersonName, lead.PhoneNumber, lead.Source, lead.ReceivedBy)

	return s.client.SendMessage(ctx, Message{Text: text})
}

// NotifyUnsynced warns that a record was saved locally but not written to the sheet
func (s *Service) NotifyUnsynced(ctx context.Context, kind, ref string, cause error) error {
	if !s.IsEnabled() {
		return nil
	}

	text := fmt.Sprintf("⚠️ *Not synced to the sheet*\n"+
		"• Record: %s %s", kind, ref)
	if cause != nil {
		text += fmt.Sprintf("\n• Error: %v", cause)
	}

	return s.client.SendMessage(ctx, Message{Text: text})
}
