package services_test

import (
	"testing"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evidenceWithCode(t *testing.T, orderID kernel.UUID, code string) *order.DeliveryEvidence {
	t.Helper()

	ev, err := order.NewDeliveryEvidence(kernel.NewUUID(), orderID, "s3://evidence/handover.jpg")
	require.NoError(t, err)
	if code != "" {
		require.NoError(t, ev.RecordFiscalCode(code))
	}
	return ev
}

func TestCompletionInterlock_Evaluate(t *testing.T) {
	interlock := services.NewCompletionInterlock()
	o := reroutableOrder(t, kernel.NewUUID())

	testCases := []struct {
		name       string
		evidence   *order.DeliveryEvidence
		passed     bool
		holdReason string
	}{
		{"registered receipt passes", evidenceWithCode(t, o.ID(), "000"), true, ""},
		{"duplicate receipt passes", evidenceWithCode(t, o.ID(), "001"), true, ""},
		{"error code holds", evidenceWithCode(t, o.ID(), "042"), false, services.HoldReasonBadFiscalCode},
		{"missing receipt holds", evidenceWithCode(t, o.ID(), ""), false, services.HoldReasonNoFiscalReceipt},
		{"missing evidence holds", nil, false, services.HoldReasonNoEvidence},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			verdict, err := interlock.Evaluate(o, tc.evidence)

			require.NoError(t, err)
			assert.Equal(t, tc.passed, verdict.Passed)
			assert.Equal(t, tc.holdReason, verdict.HoldReason)
		})
	}
}

func TestCompletionInterlock_Evaluate_InvalidInputs(t *testing.T) {
	interlock := services.NewCompletionInterlock()

	t.Run("unconstructed order", func(t *testing.T) {
		var o order.Order
		_, err := interlock.Evaluate(&o, nil)
		require.ErrorIs(t, err, order.ErrOrderIsNotConstructed)
	})

	t.Run("unconstructed evidence", func(t *testing.T) {
		o := reroutableOrder(t, kernel.NewUUID())
		var ev order.DeliveryEvidence
		_, err := interlock.Evaluate(o, &ev)
		require.ErrorIs(t, err, order.ErrEvidenceIsNotConstructed)
	})
}
