package commands

import (
	"errors"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/pkg/guard"
)

var (
	ErrAdmitOrderCommandIsNotConstructed = errors.New(
		"AdmitOrderCommand must be created via NewAdmitOrderCommand constructor",
	)
	ErrIdempotencyKeyIsRequired  = errors.New("idempotency key is required")
	ErrReceiverContactIsRequired = errors.New("receiver contact is required")
	ErrQuantityIsInvalid         = errors.New("quantity must be greater than 0")
)

// AdmitOrderCommand represents a request to admit a new gift order into the
// lifecycle. The idempotency key collapses client retries onto the already
// admitted order instead of creating duplicates.
type AdmitOrderCommand struct { //nolint:recvcheck //using for validation
	idempotencyKey  string
	shopID          kernel.UUID
	productID       kernel.UUID
	categoryID      kernel.UUID
	quantity        int
	receiverContact string
	recipient       kernel.GeoPoint
	autoReroute     bool

	guard guard.ConstructorGuard
}

// NewAdmitOrderCommand creates a command to admit a new order.
// Validates identifiers, quantity, contact and the recipient coordinate.
func NewAdmitOrderCommand(
	idempotencyKey string,
	shopID kernel.UUID,
	productID kernel.UUID,
	categoryID kernel.UUID,
	quantity int,
	receiverContact string,
	recipient kernel.GeoPoint,
	autoReroute bool,
) (AdmitOrderCommand, error) {
	cmd := AdmitOrderCommand{
		autoReroute: autoReroute,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIdempotencyKey(idempotencyKey),
		cmd.setShopID(shopID),
		cmd.setProduct(productID, categoryID, quantity),
		cmd.setReceiver(receiverContact, recipient),
	); err != nil {
		return AdmitOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AdmitOrderCommand) Validate() error {
	return c.guard.Validate(ErrAdmitOrderCommandIsNotConstructed)
}

// IdempotencyKey returns the client-supplied duplicate-collapse token.
func (c AdmitOrderCommand) IdempotencyKey() string {
	return c.idempotencyKey
}

// ShopID returns the requested fulfillment shop.
func (c AdmitOrderCommand) ShopID() kernel.UUID {
	return c.shopID
}

// ProductID returns the gifted product identifier.
func (c AdmitOrderCommand) ProductID() kernel.UUID {
	return c.productID
}

// CategoryID returns the product category identifier.
func (c AdmitOrderCommand) CategoryID() kernel.UUID {
	return c.categoryID
}

// Quantity returns the number of units ordered.
func (c AdmitOrderCommand) Quantity() int {
	return c.quantity
}

// ReceiverContact returns the recipient's contact handle.
func (c AdmitOrderCommand) ReceiverContact() string {
	return c.receiverContact
}

// Recipient returns the recipient's geocoordinate.
func (c AdmitOrderCommand) Recipient() kernel.GeoPoint {
	return c.recipient
}

// AutoReroute reports whether the sender allowed automatic re-routing.
func (c AdmitOrderCommand) AutoReroute() bool {
	return c.autoReroute
}

func (c *AdmitOrderCommand) setIdempotencyKey(key string) error {
	if key == "" {
		return ErrIdempotencyKeyIsRequired
	}

	c.idempotencyKey = key
	return nil
}

func (c *AdmitOrderCommand) setShopID(shopID kernel.UUID) error {
	if err := shopID.Validate(); err != nil {
		return err
	}

	c.shopID = shopID
	return nil
}

func (c *AdmitOrderCommand) setProduct(productID, categoryID kernel.UUID, quantity int) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	if err := categoryID.Validate(); err != nil {
		return err
	}
	if quantity <= 0 {
		return ErrQuantityIsInvalid
	}

	c.productID = productID
	c.categoryID = categoryID
	c.quantity = quantity
	return nil
}

func (c *AdmitOrderCommand) setReceiver(contact string, recipient kernel.GeoPoint) error {
	if contact == "" {
		return ErrReceiverContactIsRequired
	}
	if err := recipient.Validate(); err != nil {
		return err
	}

	c.receiverContact = contact
	c.recipient = recipient
	return nil
}
