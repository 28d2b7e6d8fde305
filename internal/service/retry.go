package service

import (
	"context"
	"time"

	"github.com/bookify/order-service/internal/domain"
	"github.com/bookify/order-service/internal/dto"
	paymentgateway "github.com/bookify/order-service/internal/infrastructure/payment-gateway"
	"github.com/bookify/order-service/internal/repository"
	"github.com/bookify/order-service/pkg/errs"
	"github.com/bookify/order-service/pkg/utils"
	"github.com/google/uuid"
)

// RetryPayment replaces a failed payment attempt with a fresh one, up to the
// retry limit. The old attempt, the new attempt and the order counters move in
// one unit of work so a crash can never leave two active attempts behind.
func (s *OrderServiceImpl) RetryPayment(ctx context.Context, orderID int64, user utils.TokenUser, ipAddr string) (resp dto.RetryPaymentResponse, err error) {
	err = s.repository.HandleTrx(ctx, func(ctx context.Context, repo repository.OrderRepository) error {
		order, trxErr := repo.GetOrderByID(ctx, orderID)
		if trxErr != nil {
			return trxErr
		}
		if order.UserID != user.ID {
			return errs.ErrOrderNotOwned
		}
		if order.PaymentMethod != domain.PaymentMethodVNPay {
			return errs.ErrOrderNotOnline
		}
		if order.OrderStatus != domain.OrderStatusPending || order.PaymentStatus == domain.PaymentStatusPaid {
			return errs.ErrOrderNotPending
		}

		now := time.Now()

		if order.Expired(now) {
			order.OrderStatus = domain.OrderStatusCanceled
			order.UpdatedAt = now.Unix()
			if trxErr = repo.UpdateOrder(ctx, order); trxErr != nil {
				return trxErr
			}

			if order.ActivePaymentID != nil {
				payment, paymentErr := repo.GetPaymentByID(ctx, *order.ActivePaymentID)
				if paymentErr == nil && !payment.TransactionStatus.Terminal() {
					payment.TransactionStatus = domain.TransactionStatusFailed
					payment.Status = domain.AttemptStatusCanceled
					payment.UpdatedAt = now.Unix()
					if trxErr = repo.UpdatePayment(ctx, payment); trxErr != nil {
						return trxErr
					}
				}
			}

			resp = dto.RetryPaymentResponse{
				OrderCanceled: true,
				Message:       "The payment window has expired and the order was canceled.",
			}
			return nil
		}

		// The limit check mutates nothing: the client still has to confirm
		// the cancellation explicitly.
		if order.RetryCount >= domain.MaxPaymentRetries {
			resp = dto.RetryPaymentResponse{
				ShouldConfirmCancel: true,
				Message:             "Payment retry limit reached. Cancel the order to release its items.",
			}
			return nil
		}

		if order.ActivePaymentID != nil {
			payment, paymentErr := repo.GetPaymentByID(ctx, *order.ActivePaymentID)
			if paymentErr != nil {
				return paymentErr
			}
			if payment.TransactionStatus == domain.TransactionStatusSuccess {
				return errs.ErrAlreadyPaid
			}

			superseded := "Superseded by a new payment attempt."
			payment.TransactionStatus = domain.TransactionStatusFailed
			payment.Status = domain.AttemptStatusCanceled
			payment.GatewayMessage = &superseded
			payment.UpdatedAt = now.Unix()
			if trxErr = repo.UpdatePayment(ctx, payment); trxErr != nil {
				return trxErr
			}
		}

		txnRef, trxErr := uuid.NewV7()
		if trxErr != nil {
			return trxErr
		}
		txnRefStr := txnRef.String()

		newPayment := domain.Payment{
			OrderID:           order.ID,
			UserID:            order.UserID,
			Amount:            order.FinalAmount,
			PaymentMethod:     order.PaymentMethod,
			TransactionStatus: domain.TransactionStatusPending,
			Status:            domain.AttemptStatusActive,
			TxnRef:            &txnRefStr,
			CreatedAt:         now.Unix(),
			UpdatedAt:         now.Unix(),
		}

		paymentID, trxErr := repo.AddPayment(ctx, newPayment)
		if trxErr != nil {
			return trxErr
		}

		order.ActivePaymentID = &paymentID
		order.RetryCount++
		order.UpdatedAt = now.Unix()
		if trxErr = repo.UpdateOrder(ctx, order); trxErr != nil {
			return trxErr
		}

		paymentURL := s.gateway.BuildPaymentURL(paymentgateway.PaymentURLRequest{
			TxnRef:    txnRefStr,
			OrderInfo: "Thanh toan don hang " + order.OrderCode,
			Amount:    newPayment.Amount,
			IPAddr:    ipAddr,
			CreatedAt: now,
		})

		resp = dto.RetryPaymentResponse{
			PaymentURL: paymentURL,
			PaymentID:  paymentID,
		}
		return nil
	})

	return
}
