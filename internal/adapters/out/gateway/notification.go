package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"giftflow/internal/core/ports"
	"giftflow/internal/pkg/errs"
)

var _ ports.NotificationGateway = &HTTPNotificationGateway{}

// HTTPNotificationGateway pushes order status updates to the sender-facing
// notification service.
type HTTPNotificationGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPNotificationGateway creates a notification gateway targeting the
// given base URL.
func NewHTTPNotificationGateway(baseURL string) (*HTTPNotificationGateway, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	return &HTTPNotificationGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

type statusChangeNotification struct {
	MessageID  string    `json:"message_id"`
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NotifyStatusChange delivers one staged outbox message. The message id
// doubles as the receiver's deduplication key, so at-least-once delivery
// from the relay does not produce duplicate notifications downstream.
func (g *HTTPNotificationGateway) NotifyStatusChange(ctx context.Context, message *ports.OutboxMessage) error {
	if message == nil {
		return errs.NewValueIsRequiredError("message")
	}

	body, err := json.Marshal(statusChangeNotification{
		MessageID:  message.ID.String(),
		OrderID:    message.OrderID.String(),
		Status:     message.Status,
		Version:    message.Version,
		OccurredAt: message.OccurredAt,
	})
	if err != nil {
		return err
	}

	return post(ctx, g.client, g.baseURL+"/notifications/status", body)
}
