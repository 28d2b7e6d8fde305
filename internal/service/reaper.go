package service

import (
	"context"
	"time"

	"github.com/bookify/order-service/internal/domain"
	"github.com/bookify/order-service/internal/repository"
	"github.com/rs/zerolog/log"
)

// RestoreExpiredOrderStocks sweeps unpaid orders whose payment window has
// closed: each one is canceled, its active attempt failed and its reserved
// stock released. Every order is its own unit of work so one bad row never
// stalls the sweep.
func (s *OrderServiceImpl) RestoreExpiredOrderStocks() {
	log.Info().Str("component", "RestoreExpiredOrderStocks").Msg("expired order sweep starts")

	ctx := context.Background()
	now := time.Now().Unix()

	expired, err := s.repository.GetExpiredPendingOrders(ctx, now)
	if err != nil {
		log.Error().Err(err).Str("component", "RestoreExpiredOrderStocks").Msg("")
		return
	}

	var canceled int
	for _, candidate := range expired {
		if err := s.reapOrder(ctx, candidate.ID, now); err != nil {
			log.Error().Err(err).Str("component", "RestoreExpiredOrderStocks").Int64("orderID", candidate.ID).Msg("")
			continue
		}
		canceled++
	}

	log.Info().Str("component", "RestoreExpiredOrderStocks").Int("expired", len(expired)).Int("canceled", canceled).Msg("expired order sweep ends")
}

func (s *OrderServiceImpl) reapOrder(ctx context.Context, orderID int64, now int64) error {
	var order domain.Order
	var reaped bool

	err := s.repository.HandleTrx(ctx, func(ctx context.Context, repo repository.OrderRepository) error {
		var trxErr error
		order, trxErr = repo.GetOrderByID(ctx, orderID)
		if trxErr != nil {
			return trxErr
		}

		// Rechecked under lock: a callback may have settled the order
		// between the sweep query and this point.
		if order.OrderStatus != domain.OrderStatusPending ||
			order.PaymentStatus != domain.PaymentStatusUnpaid ||
			order.ExpiresAt >= now {
			return nil
		}

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

		reaped = true
		return nil
	})
	if err != nil || !reaped {
		return err
	}

	s.restoreOrderStock(ctx, "", order, true)

	if email := s.resolveOrderEmail(ctx, "", order); email != "" {
		s.notifier.SendStatusUpdate(email, order, domain.OrderStatusCanceled)
	}

	return nil
}
