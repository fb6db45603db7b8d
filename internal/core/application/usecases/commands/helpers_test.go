package commands_test

import (
	"testing"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

const testToken = "K7XP-R4MN"

func testRecipient(t *testing.T) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(-15.3875, 28.3228)
	require.NoError(t, err)
	return p
}

func admittedOrder(t *testing.T) *order.Order {
	t.Helper()

	o, err := order.NewOrder(
		kernel.NewUUID(), "idem-1", kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		1, "+260971234567", testRecipient(t), testToken, true)
	require.NoError(t, err)
	return o
}

// restoredOrder builds an order sitting in the given status since changedAt,
// bypassing the transition walk.
func restoredOrder(t *testing.T, status order.Status, changedAt time.Time, autoReroute bool) *order.Order {
	t.Helper()

	var escrow *time.Time
	if status == order.Paid {
		e := changedAt.Add(time.Hour)
		escrow = &e
	}
	paymentRef := ""
	if status != order.Initiated {
		paymentRef = "pi_test"
	}

	o, err := order.RestoreOrder(
		kernel.NewUUID(), "idem-1", status, 3, changedAt,
		kernel.NewUUID(), kernel.NewUUID(), nil,
		kernel.NewUUID(), kernel.NewUUID(), 1,
		"+260971234567", testRecipient(t), testToken, paymentRef, escrow,
		autoReroute, nil, nil, order.Timestamps{},
	)
	require.NoError(t, err)
	return o
}
