package service

import (
	"context"
	"time"

	"github.com/bookify/order-service/internal/dto"
	paymentgateway "github.com/bookify/order-service/internal/infrastructure/payment-gateway"
	pkgdto "github.com/bookify/order-service/pkg/dto"
	"github.com/bookify/order-service/pkg/utils"
)

type OrderService interface {
	AddOrder(ctx context.Context, req dto.OrderRequest) (resp dto.OrderResponse, err error)
	PreviewOrder(ctx context.Context, token string, req dto.PreviewOrderRequest) (resp dto.OrderPreviewResponse, err error)
	CreatePaymentURL(ctx context.Context, req dto.PaymentURLRequest) (paymentURL string, err error)
	ProcessGatewayCallback(ctx context.Context, params map[string]string) (result dto.CallbackResult)
	RetryPayment(ctx context.Context, orderID int64, user utils.TokenUser, ipAddr string) (resp dto.RetryPaymentResponse, err error)
	UpdateOrderStatus(ctx context.Context, orderID int64, newStatus dto.UpdateOrderStatusRequest, token string) (resp dto.OrderResponse, err error)
	CancelOrder(ctx context.Context, orderID int64, user utils.TokenUser, token string) (resp dto.OrderResponse, err error)
	GetOrdersByUser(ctx context.Context, userID string, filter pkgdto.Filter) (resp pkgdto.Pagination, err error)
	GetOrders(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.Pagination, err error)
	GetOrderByID(ctx context.Context, orderID int64, user utils.TokenUser) (resp dto.OrderResponse, err error)
	RestoreExpiredOrderStocks()
}

// PaymentGateway is the slice of the VNPay client the service depends on.
type PaymentGateway interface {
	BuildPaymentURL(req paymentgateway.PaymentURLRequest) string
	Refund(ctx context.Context, txnRef string, amount float64, payDate *time.Time) error
}
