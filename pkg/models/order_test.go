package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderComputesAmountFromItems(t *testing.T) {
	order := NewOrder("user-1", "buyer@example.com", []OrderItem{
		{ProductID: "t1", Name: "Adire Tote", Price: 15000, Quantity: 2},
		{ProductID: "t2", Name: "Canvas Tote", Price: 9000, Quantity: 1},
	})

	assert.Equal(t, int64(39000), order.Amount)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, "NGN", order.Currency)
	assert.False(t, order.IsFinal())
	assert.NotEmpty(t, order.ID)
}

func TestNewReferenceIsUniquePerAttempt(t *testing.T) {
	a := NewReference("user-1")
	b := NewReference("user-1")

	assert.True(t, strings.HasPrefix(a, "ps_user-1_"))
	assert.NotEqual(t, a, b)
}

func TestIsFinalForTerminalStatuses(t *testing.T) {
	for _, status := range []string{OrderStatusPaid, OrderStatusFailed, OrderStatusStockConflict, "abandoned"} {
		order := Order{Status: status}
		assert.True(t, order.IsFinal(), "status %q should be terminal", status)
	}
	assert.False(t, (&Order{Status: OrderStatusPending}).IsFinal())
}

func TestCartLineID(t *testing.T) {
	assert.Equal(t, "u1_t1", CartLineID("u1", "t1"))
}

func TestPaymentDoc(t *testing.T) {
	doc := PaymentDoc(json.RawMessage(`{"status":"success","amount":30000}`))
	assert.Equal(t, "success", doc["status"])

	fallback := PaymentDoc(json.RawMessage(`not-json`))
	assert.Equal(t, "not-json", fallback["raw"])

	assert.Nil(t, PaymentDoc(nil))
}
