package service

import (
	"context"
	"math"
	"time"

	"github.com/bookify/order-service/internal/domain"
	"github.com/bookify/order-service/internal/dto"
	paymentgateway "github.com/bookify/order-service/internal/infrastructure/payment-gateway"
	"github.com/bookify/order-service/pkg/errs"
)

// amountTolerance absorbs float rounding when comparing VND amounts.
const amountTolerance = 0.01

func (s *OrderServiceImpl) CreatePaymentURL(ctx context.Context, req dto.PaymentURLRequest) (paymentURL string, err error) {
	order, err := s.repository.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return
	}
	if order.UserID != req.UserID {
		return "", errs.ErrOrderNotOwned
	}

	payment, err := s.repository.GetPaymentByID(ctx, req.PaymentID)
	if err != nil {
		return
	}
	if payment.OrderID != order.ID || payment.UserID != req.UserID {
		return "", errs.ErrPaymentNotFound
	}

	if order.PaymentMethod != domain.PaymentMethodVNPay {
		return "", errs.ErrOrderNotOnline
	}
	if order.OrderStatus != domain.OrderStatusPending {
		return "", errs.ErrOrderNotPending
	}
	if order.Expired(time.Now()) {
		return "", errs.ErrOrderExpired
	}
	if math.Abs(req.Amount-order.FinalAmount) > amountTolerance ||
		math.Abs(req.Amount-payment.Amount) > amountTolerance {
		return "", errs.ErrAmountMismatch
	}
	if order.PaymentStatus == domain.PaymentStatusPaid ||
		payment.TransactionStatus == domain.TransactionStatusSuccess {
		return "", errs.ErrAlreadyPaid
	}
	if payment.TxnRef == nil || payment.Status != domain.AttemptStatusActive {
		return "", errs.ErrPaymentNotFound
	}

	paymentURL = s.gateway.BuildPaymentURL(paymentgateway.PaymentURLRequest{
		TxnRef:    *payment.TxnRef,
		OrderInfo: "Thanh toan don hang " + order.OrderCode,
		Amount:    payment.Amount,
		IPAddr:    req.IPAddr,
		BankCode:  req.BankCode,
		Locale:    req.Language,
		CreatedAt: time.Now(),
	})

	return paymentURL, nil
}
