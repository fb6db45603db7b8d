// Package gateway contains HTTP clients for the external services the
// orchestrator calls out to: the payment processor, the voice call provider
// and the notification service. All clients share the same shape: JSON over
// POST, a bounded timeout, and non-2xx responses surfaced as errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/ports"
	"giftflow/internal/pkg/errs"
)

const defaultTimeout = 10 * time.Second

var _ ports.RefundGateway = &HTTPRefundGateway{}

// HTTPRefundGateway requests refunds from the payment processor over HTTP.
type HTTPRefundGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRefundGateway creates a refund gateway targeting the given base URL.
func NewHTTPRefundGateway(baseURL string) (*HTTPRefundGateway, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	return &HTTPRefundGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

type refundRequest struct {
	OrderID    string `json:"order_id"`
	PaymentRef string `json:"payment_ref"`
}

// Refund posts a full refund request for the charge behind paymentRef. The
// processor deduplicates by payment reference, so retries are safe.
func (g *HTTPRefundGateway) Refund(ctx context.Context, orderID kernel.UUID, paymentRef string) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if paymentRef == "" {
		return errs.NewValueIsRequiredError("paymentRef")
	}

	body, err := json.Marshal(refundRequest{
		OrderID:    orderID.String(),
		PaymentRef: paymentRef,
	})
	if err != nil {
		return err
	}

	return post(ctx, g.client, g.baseURL+"/refunds", body)
}

// post sends the payload and converts non-2xx responses into errors.
func post(ctx context.Context, client *http.Client, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("POST %s: unexpected status %d", url, resp.StatusCode)
	}
	return nil
}
