package service

import (
	"context"
	"time"

	"github.com/bookify/order-service/internal/domain"
	"github.com/bookify/order-service/internal/dto"
	"github.com/bookify/order-service/internal/repository"
	"github.com/bookify/order-service/pkg/errs"
	"github.com/bookify/order-service/pkg/utils"
)

func transitionAllowed(order domain.Order, newStatus domain.OrderStatus) error {
	switch order.OrderStatus {
	case domain.OrderStatusDelivered:
		if newStatus != domain.OrderStatusReturned {
			return errs.ErrInvalidTransition
		}
	case domain.OrderStatusCanceled:
		return errs.ErrInvalidTransition
	}

	// A paid order can no longer fall back to Pending.
	if order.PaymentStatus == domain.PaymentStatusPaid && newStatus == domain.OrderStatusPending {
		return errs.ErrInvalidTransition
	}

	return nil
}

// UpdateOrderStatus applies an operator-driven transition. Refunds and COD
// settlement piggyback on the transition inside the same unit of work, and the
// customer email goes out only after the commit.
func (s *OrderServiceImpl) UpdateOrderStatus(ctx context.Context, orderID int64, req dto.UpdateOrderStatusRequest, token string) (resp dto.OrderResponse, err error) {
	if !req.NewStatus.Valid() {
		return resp, errs.ErrInvalidOrderStatus
	}

	var order domain.Order
	var postCommit []func()

	err = s.repository.HandleTrx(ctx, func(ctx context.Context, repo repository.OrderRepository) error {
		var trxErr error
		order, trxErr = repo.GetOrderByID(ctx, orderID)
		if trxErr != nil {
			return trxErr
		}

		if trxErr = transitionAllowed(order, req.NewStatus); trxErr != nil {
			return trxErr
		}

		email := s.resolveOrderEmail(ctx, token, order)
		if email == "" {
			return errs.ErrUserEmailNotFound
		}

		now := time.Now().Unix()

		var payment domain.Payment
		var havePayment bool
		if order.ActivePaymentID != nil {
			payment, trxErr = repo.GetPaymentByID(ctx, *order.ActivePaymentID)
			if trxErr != nil {
				return trxErr
			}
			havePayment = true
		}

		switch req.NewStatus {
		case domain.OrderStatusDelivered:
			if order.PaymentMethod == domain.PaymentMethodCOD && order.PaymentStatus == domain.PaymentStatusUnpaid {
				order.PaymentStatus = domain.PaymentStatusPaid
				if havePayment {
					payment.TransactionStatus = domain.TransactionStatusSuccess
					payment.Status = domain.AttemptStatusCompleted
					payment.UpdatedAt = now
					if trxErr = repo.UpdatePayment(ctx, payment); trxErr != nil {
						return trxErr
					}
				}
			}

		case domain.OrderStatusRefunded:
			if order.PaymentStatus != domain.PaymentStatusPaid {
				return errs.ErrRefundUnpaid
			}
			if order.PaymentMethod == domain.PaymentMethodVNPay {
				if !havePayment || payment.TxnRef == nil {
					return errs.ErrPaymentNotFound
				}
				var payDate *time.Time
				if payment.PayDate != nil {
					t := time.Unix(*payment.PayDate, 0)
					payDate = &t
				}
				if refundErr := s.gateway.Refund(ctx, *payment.TxnRef, payment.Amount, payDate); refundErr != nil {
					return errs.ErrRefundFailed
				}
			}

			order.PaymentStatus = domain.PaymentStatusRefunded
			if havePayment {
				payment.TransactionStatus = domain.TransactionStatusRefunded
				payment.UpdatedAt = now
				if trxErr = repo.UpdatePayment(ctx, payment); trxErr != nil {
					return trxErr
				}
			}

			restored := order
			postCommit = append(postCommit, func() {
				s.restoreOrderStock(context.Background(), token, restored, true)
			})

		case domain.OrderStatusCanceled:
			if order.PaymentStatus == domain.PaymentStatusUnpaid {
				restored := order
				postCommit = append(postCommit, func() {
					s.restoreOrderStock(context.Background(), token, restored, true)
				})
			}
			if havePayment && !payment.TransactionStatus.Terminal() {
				payment.TransactionStatus = domain.TransactionStatusFailed
				payment.Status = domain.AttemptStatusCanceled
				payment.UpdatedAt = now
				if trxErr = repo.UpdatePayment(ctx, payment); trxErr != nil {
					return trxErr
				}
			}
		}

		order.OrderStatus = req.NewStatus
		order.UpdatedAt = now
		if trxErr = repo.UpdateOrder(ctx, order); trxErr != nil {
			return trxErr
		}

		updated := order
		postCommit = append(postCommit, func() {
			s.notifier.SendStatusUpdate(email, updated, req.NewStatus)
		})

		return nil
	})
	if err != nil {
		return
	}

	for _, fn := range postCommit {
		fn()
	}

	return dto.BuildOrderResponse(order), nil
}

// CancelOrder is the customer-facing cancellation: only unpaid orders that
// have not entered fulfillment may be canceled.
func (s *OrderServiceImpl) CancelOrder(ctx context.Context, orderID int64, user utils.TokenUser, token string) (resp dto.OrderResponse, err error) {
	var order domain.Order
	var postCommit []func()

	err = s.repository.HandleTrx(ctx, func(ctx context.Context, repo repository.OrderRepository) error {
		var trxErr error
		order, trxErr = repo.GetOrderByID(ctx, orderID)
		if trxErr != nil {
			return trxErr
		}
		if order.UserID != user.ID && user.Role != "admin" {
			return errs.ErrOrderNotOwned
		}

		switch order.OrderStatus {
		case domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCanceled:
			return errs.ErrOrderNotCancellable
		}
		if order.PaymentStatus == domain.PaymentStatusPaid {
			return errs.ErrOrderNotCancellable
		}

		now := time.Now().Unix()

		if order.ActivePaymentID != nil {
			payment, paymentErr := repo.GetPaymentByID(ctx, *order.ActivePaymentID)
			if paymentErr == nil && !payment.TransactionStatus.Terminal() {
				payment.TransactionStatus = domain.TransactionStatusFailed
				payment.Status = domain.AttemptStatusCanceled
				payment.UpdatedAt = now
				if trxErr = repo.UpdatePayment(ctx, payment); trxErr != nil {
					return trxErr
				}
			}
		}

		order.OrderStatus = domain.OrderStatusCanceled
		order.UpdatedAt = now
		if trxErr = repo.UpdateOrder(ctx, order); trxErr != nil {
			return trxErr
		}

		restored := order
		postCommit = append(postCommit, func() {
			s.restoreOrderStock(context.Background(), token, restored, true)
			if email := s.resolveOrderEmail(context.Background(), token, restored); email != "" {
				s.notifier.SendStatusUpdate(email, restored, domain.OrderStatusCanceled)
			}
		})

		return nil
	})
	if err != nil {
		return
	}

	for _, fn := range postCommit {
		fn()
	}

	return dto.BuildOrderResponse(order), nil
}
