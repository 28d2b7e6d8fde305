package service

import (
	"context"
	"testing"
	"time"

	"github.com/bookify/order-service/internal/domain"
	"github.com/bookify/order-service/internal/dto"
	"github.com/bookify/order-service/pkg/errs"
	"github.com/bookify/order-service/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateOrderStatusCODDeliveredSettlesPayment(t *testing.T) {
	f := newServiceFixture()
	order, payment := f.seedOrder("user-1", domain.PaymentMethodCOD, time.Now().Add(10*time.Minute).Unix())
	f.repo.orders[order.ID].OrderStatus = domain.OrderStatusShipped

	resp, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, dto.UpdateOrderStatusRequest{NewStatus: domain.OrderStatusDelivered}, "Bearer admin")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusDelivered, resp.OrderStatus)
	assert.Equal(t, domain.PaymentStatusPaid, resp.PaymentStatus)

	storedPayment := f.repo.payments[payment.ID]
	assert.Equal(t, domain.TransactionStatusSuccess, storedPayment.TransactionStatus)
	assert.Equal(t, domain.AttemptStatusCompleted, storedPayment.Status)

	// Settling cash on delivery never talks to the gateway.
	assert.Empty(t, f.gateway.refundCalls)
	require.Len(t, f.notifier.statusUpdates, 1)
	assert.Equal(t, "user-1@example.com", f.notifier.statusUpdates[0].to)
}

func TestUpdateOrderStatusRefundPaidOnlineOrder(t *testing.T) {
	f := newServiceFixture()
	order, payment := f.seedOrder("user-1", domain.PaymentMethodVNPay, time.Now().Add(10*time.Minute).Unix())
	f.repo.orders[order.ID].OrderStatus = domain.OrderStatusProcessing
	f.repo.orders[order.ID].PaymentStatus = domain.PaymentStatusPaid
	f.repo.payments[payment.ID].TransactionStatus = domain.TransactionStatusSuccess
	f.repo.payments[payment.ID].Status = domain.AttemptStatusCompleted

	resp, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, dto.UpdateOrderStatusRequest{NewStatus: domain.OrderStatusRefunded}, "Bearer admin")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusRefunded, resp.OrderStatus)
	assert.Equal(t, domain.PaymentStatusRefunded, resp.PaymentStatus)
	assert.Equal(t, domain.TransactionStatusRefunded, f.repo.payments[payment.ID].TransactionStatus)

	require.Len(t, f.gateway.refundCalls, 1)
	assert.Equal(t, *payment.TxnRef, f.gateway.refundCalls[0])

	// Refunded goods go back on the shelf, sales counters included.
	require.Len(t, f.books.stockCalls, 2)
	assert.Equal(t, stockCall{bookID: "book-1", delta: 1}, f.books.stockCalls[0])
	require.Len(t, f.books.salesCalls, 2)
	assert.Equal(t, stockCall{bookID: "book-1", delta: -1}, f.books.salesCalls[0])
}

func TestUpdateOrderStatusRefundAbortsWhenGatewayRejects(t *testing.T) {
	f := newServiceFixture()
	order, payment := f.seedOrder("user-1", domain.PaymentMethodVNPay, time.Now().Add(10*time.Minute).Unix())
	f.repo.orders[order.ID].OrderStatus = domain.OrderStatusProcessing
	f.repo.orders[order.ID].PaymentStatus = domain.PaymentStatusPaid
	f.repo.payments[payment.ID].TransactionStatus = domain.TransactionStatusSuccess
	f.gateway.refundErr = assert.AnError

	_, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, dto.UpdateOrderStatusRequest{NewStatus: domain.OrderStatusRefunded}, "Bearer admin")
	assert.ErrorIs(t, err, errs.ErrRefundFailed)

	// Nothing moved.
	stored := f.repo.orders[order.ID]
	assert.Equal(t, domain.OrderStatusProcessing, stored.OrderStatus)
	assert.Equal(t, domain.PaymentStatusPaid, stored.PaymentStatus)
	assert.Empty(t, f.books.stockCalls)
	assert.Empty(t, f.notifier.statusUpdates)
}

func TestUpdateOrderStatusRefundRequiresPaid(t *testing.T) {
	f := newServiceFixture()
	order, _ := f.seedOrder("user-1", domain.PaymentMethodVNPay, time.Now().Add(10*time.Minute).Unix())

	_, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, dto.UpdateOrderStatusRequest{NewStatus: domain.OrderStatusRefunded}, "Bearer admin")
	assert.ErrorIs(t, err, errs.ErrRefundUnpaid)
	assert.Empty(t, f.gateway.refundCalls)
}

func TestUpdateOrderStatusCancelUnpaidRestoresStock(t *testing.T) {
	f := newServiceFixture()
	order, payment := f.seedOrder("user-1", domain.PaymentMethodVNPay, time.Now().Add(10*time.Minute).Unix())

	resp, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, dto.UpdateOrderStatusRequest{NewStatus: domain.OrderStatusCanceled}, "Bearer admin")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCanceled, resp.OrderStatus)
	assert.Equal(t, domain.AttemptStatusCanceled, f.repo.payments[payment.ID].Status)
	assert.Len(t, f.books.stockCalls, 2)
}

func TestUpdateOrderStatusTransitionGuards(t *testing.T) {
	testCases := []struct {
		name      string
		from      domain.OrderStatus
		paid      bool
		to        domain.OrderStatus
		wantErr   error
		wantFinal domain.OrderStatus
	}{
		{name: "delivered to shipped", from: domain.OrderStatusDelivered, to: domain.OrderStatusShipped, wantErr: errs.ErrInvalidTransition},
		{name: "delivered to returned", from: domain.OrderStatusDelivered, to: domain.OrderStatusReturned, wantFinal: domain.OrderStatusReturned},
		{name: "canceled is terminal", from: domain.OrderStatusCanceled, to: domain.OrderStatusPending, wantErr: errs.ErrInvalidTransition},
		{name: "paid cannot regress to pending", from: domain.OrderStatusProcessing, paid: true, to: domain.OrderStatusPending, wantErr: errs.ErrInvalidTransition},
		{name: "unknown status", from: domain.OrderStatusPending, to: "Misplaced", wantErr: errs.ErrInvalidOrderStatus},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newServiceFixture()
			order, _ := f.seedOrder("user-1", domain.PaymentMethodCOD, time.Now().Add(10*time.Minute).Unix())
			f.repo.orders[order.ID].OrderStatus = tc.from
			if tc.paid {
				f.repo.orders[order.ID].PaymentStatus = domain.PaymentStatusPaid
			}

			resp, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, dto.UpdateOrderStatusRequest{NewStatus: tc.to}, "Bearer admin")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.from, f.repo.orders[order.ID].OrderStatus)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantFinal, resp.OrderStatus)
		})
	}
}

func TestUpdateOrderStatusRequiresReachableEmail(t *testing.T) {
	f := newServiceFixture()
	order, _ := f.seedOrder("user-1", domain.PaymentMethodCOD, time.Now().Add(10*time.Minute).Unix())
	f.repo.orders[order.ID].UserEmail = nil

	_, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, dto.UpdateOrderStatusRequest{NewStatus: domain.OrderStatusShipped}, "Bearer admin")
	assert.ErrorIs(t, err, errs.ErrUserEmailNotFound)
	assert.Equal(t, domain.OrderStatusPending, f.repo.orders[order.ID].OrderStatus)
}

func TestCancelOrderByOwner(t *testing.T) {
	f := newServiceFixture()
	order, payment := f.seedOrder("user-1", domain.PaymentMethodVNPay, time.Now().Add(10*time.Minute).Unix())

	resp, err := f.svc.CancelOrder(context.Background(), order.ID, utils.TokenUser{ID: "user-1"}, "Bearer t")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCanceled, resp.OrderStatus)
	assert.Equal(t, domain.AttemptStatusCanceled, f.repo.payments[payment.ID].Status)
	assert.Len(t, f.books.stockCalls, 2)
	assert.Len(t, f.notifier.statusUpdates, 1)
}

func TestCancelOrderGuards(t *testing.T) {
	testCases := []struct {
		name    string
		status  domain.OrderStatus
		paid    bool
		user    string
		wantErr error
	}{
		{name: "not owner", status: domain.OrderStatusPending, user: "user-2", wantErr: errs.ErrOrderNotOwned},
		{name: "shipped", status: domain.OrderStatusShipped, user: "user-1", wantErr: errs.ErrOrderNotCancellable},
		{name: "delivered", status: domain.OrderStatusDelivered, user: "user-1", wantErr: errs.ErrOrderNotCancellable},
		{name: "already canceled", status: domain.OrderStatusCanceled, user: "user-1", wantErr: errs.ErrOrderNotCancellable},
		{name: "already paid", status: domain.OrderStatusProcessing, paid: true, user: "user-1", wantErr: errs.ErrOrderNotCancellable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newServiceFixture()
			order, _ := f.seedOrder("user-1", domain.PaymentMethodVNPay, time.Now().Add(10*time.Minute).Unix())
			f.repo.orders[order.ID].OrderStatus = tc.status
			if tc.paid {
				f.repo.orders[order.ID].PaymentStatus = domain.PaymentStatusPaid
			}

			_, err := f.svc.CancelOrder(context.Background(), order.ID, utils.TokenUser{ID: tc.user}, "Bearer t")
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, f.books.stockCalls)
		})
	}
}

func TestCancelOrderByAdmin(t *testing.T) {
	f := newServiceFixture()
	order, _ := f.seedOrder("user-1", domain.PaymentMethodVNPay, time.Now().Add(10*time.Minute).Unix())

	resp, err := f.svc.CancelOrder(context.Background(), order.ID, utils.TokenUser{ID: "admin-1", Role: "admin"}, "Bearer t")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCanceled, resp.OrderStatus)
}
