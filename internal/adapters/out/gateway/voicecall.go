package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/ports"
	"giftflow/internal/pkg/errs"
)

var _ ports.VoiceCallGateway = &HTTPVoiceCallGateway{}

// HTTPVoiceCallGateway enqueues automated reminder calls through the voice
// provider's HTTP API.
type HTTPVoiceCallGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPVoiceCallGateway creates a voice call gateway targeting the given
// base URL.
func NewHTTPVoiceCallGateway(baseURL string) (*HTTPVoiceCallGateway, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	return &HTTPVoiceCallGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

type placeCallRequest struct {
	ShopID  string `json:"shop_id"`
	OrderID string `json:"order_id"`
}

// PlaceCall enqueues an automated call to the shop about the order.
func (g *HTTPVoiceCallGateway) PlaceCall(ctx context.Context, shopID, orderID kernel.UUID) error {
	if err := shopID.Validate(); err != nil {
		return err
	}
	if err := orderID.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(placeCallRequest{
		ShopID:  shopID.String(),
		OrderID: orderID.String(),
	})
	if err != nil {
		return err
	}

	return post(ctx, g.client, g.baseURL+"/calls", body)
}
