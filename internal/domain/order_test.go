package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderCode(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 30, 15, 0, time.UTC)

	code := GenerateOrderCode(now)

	assert.Len(t, code, 18)
	assert.Equal(t, "OD260828103015", code[:14])
	assert.Regexp(t, `^OD\d{16}$`, code)
}

func TestOrderExpired(t *testing.T) {
	now := time.Now()
	order := Order{ExpiresAt: now.Unix()}

	assert.False(t, order.Expired(now))
	assert.True(t, order.Expired(now.Add(time.Second)))
}

func TestTransactionStatusTerminal(t *testing.T) {
	assert.True(t, TransactionStatusSuccess.Terminal())
	assert.True(t, TransactionStatusRefunded.Terminal())
	assert.False(t, TransactionStatusPending.Terminal())
	assert.False(t, TransactionStatusFailed.Terminal())
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderStatusPending.Valid())
	assert.True(t, OrderStatusReturned.Valid())
	assert.False(t, OrderStatus("Misplaced").Valid())
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentMethodCOD.Valid())
	assert.True(t, PaymentMethodVNPay.Valid())
	assert.False(t, PaymentMethod("PAYPAL").Valid())
}
