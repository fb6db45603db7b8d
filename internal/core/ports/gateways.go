package ports

import (
	"context"

	"giftflow/internal/core/domain/model/kernel"
)

// RefundGateway releases escrowed funds back to the sender through the
// payment processor.
type RefundGateway interface {
	// Refund requests a full refund of the charge behind paymentRef.
	// The processor deduplicates by payment reference, so a retried call
	// after a crash does not double-refund.
	Refund(ctx context.Context, orderID kernel.UUID, paymentRef string) error
}

// VoiceCallGateway places automated reminder calls to shops that stopped
// responding to an active order.
type VoiceCallGateway interface {
	// PlaceCall enqueues an automated call to the shop about the order.
	PlaceCall(ctx context.Context, shopID, orderID kernel.UUID) error
}

// NotificationGateway pushes order status updates to the sender-facing
// notification service.
type NotificationGateway interface {
	// NotifyStatusChange delivers one staged outbox message.
	NotifyStatusChange(ctx context.Context, message *OutboxMessage) error
}
