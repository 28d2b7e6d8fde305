package repository

import (
	"context"

	"github.com/bookify/order-service/internal/domain"
	pkgdto "github.com/bookify/order-service/pkg/dto"
)

type OrderRepository interface {
	// HandleTrx runs fn inside one all-or-nothing unit of work. Single-row
	// reads performed through the transactional repo take row locks, which
	// serializes concurrent callbacks for the same payment.
	HandleTrx(ctx context.Context, fn func(ctx context.Context, repo OrderRepository) error) error

	AddOrder(ctx context.Context, data domain.Order) (id int64, err error)
	AddOrderItems(ctx context.Context, data []domain.OrderItem) (err error)
	GetOrderByID(ctx context.Context, id int64) (data domain.Order, err error)
	UpdateOrder(ctx context.Context, data domain.Order) (err error)
	GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error)
	CountOrders(ctx context.Context, filter pkgdto.Filter) (count int64, err error)
	GetExpiredPendingOrders(ctx context.Context, now int64) (data []domain.Order, err error)

	AddPayment(ctx context.Context, data domain.Payment) (id int64, err error)
	GetPaymentByID(ctx context.Context, id int64) (data domain.Payment, err error)
	GetPaymentByTxnRef(ctx context.Context, txnRef string) (data domain.Payment, err error)
	UpdatePayment(ctx context.Context, data domain.Payment) (err error)
	AddPaymentLog(ctx context.Context, data domain.PaymentLog) (err error)

	GetCartByUserID(ctx context.Context, userID string) (data domain.Cart, err error)
	RemoveCartItems(ctx context.Context, userID string, bookIDs []string) (err error)
	DeleteCartIfEmpty(ctx context.Context, userID string) (err error)

	AddCompensationRecord(ctx context.Context, data domain.CompensationRecord) (err error)
}
