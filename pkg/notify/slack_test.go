package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.Notifier = (*Service)(nil)

// MockClient records messages instead of posting them
type MockClient struct {
	shouldFail bool
	messages   []Message
}

func (m *MockClient) SendMessage(ctx context.Context, msg Message) error {
	if m.shouldFail {
		return ErrSendFailed
	}
	m.messages = append(m.messages, msg)
	return nil
}

func TestNotifyNewLead(t *testing.T) {
	lead := models.Lead{
		LeadNo: "LN-007", CompanyName: "Acme Clinics", PersonName: "Ravi",
		PhoneNumber: "9876543210", Source: "Website", ReceivedBy: "Asha",
	}

	t.Run("Success - Send new lead notification", func(t *testing.T) {
		client := &MockClient{}
		err := NewService(client).NotifyNewLead(context.Background(), lead)

		require.NoError(t, err)
		require.Len(t, client.messages, 1)
		msg := client.messages[0].Text
		assert.Contains(t, msg, "New Lead LN-007")
		assert.Contains(t, msg, "Acme Clinics")
		assert.Contains(t, msg, "Ravi (9876543210)")
		assert.Contains(t, msg, "Website, received by Asha")
	})

	t.Run("Failure - Webhook error", func(t *testing.T) {
		err := NewService(&MockClient{shouldFail: true}).NotifyNewLead(context.Background(), lead)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSendFailed)
	})
}

func TestNotifyUnsynced(t *testing.T) {
	client := &MockClient{}
	service := NewService(client)

	t.Run("With cause", func(t *testing.T) {
		err := service.NotifyUnsynced(context.Background(), "lead", "LN-003", errors.New("sheet unavailable"))

		require.NoError(t, err)
		require.Len(t, client.messages, 1)
		assert.Contains(t, client.messages[0].Text, "Not synced")
		assert.Contains(t, client.messages[0].Text, "lead LN-003")
		assert.Contains(t, client.messages[0].Text, "sheet unavailable")
	})

	t.Run("Without cause", func(t *testing.T) {
		err := service.NotifyUnsynced(context.Background(), "enquiry", "DIR0042", nil)

		require.NoError(t, err)
		require.Len(t, client.messages, 2)
		assert.NotContains(t, client.messages[1].Text, "Error")
	})
}

func TestDisabledService(t *testing.T) {
	service := NewService(nil)
	assert.False(t, service.IsEnabled())

	assert.NoError(t, service.NotifyNewLead(context.Background(), models.Lead{}))
	assert.NoError(t, service.NotifyUnsynced(context.Background(), "lead", "LN-1", nil))

	var nilService *Service
	assert.False(t, nilService.IsEnabled())
}

func TestWebhookClient(t *testing.T) {
	t.Run("Posts JSON", func(t *testing.T) {
		var got Message
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := NewWebhookClient(srv.URL).SendMessage(context.Background(), Message{Text: "hello"})
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Text)
	})

	t.Run("Non-200 fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		err := NewWebhookClient(srv.URL).SendMessage(context.Background(), Message{Text: "hello"})
		assert.ErrorIs(t, err, ErrSendFailed)
	})

	t.Run("Missing URL", func(t *testing.T) {
		err := NewWebhookClient("").SendMessage(context.Background(), Message{Text: "hello"})
		assert.Error(t, err)
	})
}
