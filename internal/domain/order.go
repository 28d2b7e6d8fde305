package domain

import (
	"fmt"
	"math/rand"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCanceled   OrderStatus = "Canceled"
	OrderStatusReturned   OrderStatus = "Returned"
	OrderStatusRefunded   OrderStatus = "Refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCanceled, OrderStatusReturned, OrderStatusRefunded:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "Unpaid"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

type PaymentMethod string

const (
	PaymentMethodCOD   PaymentMethod = "COD"
	PaymentMethodVNPay PaymentMethod = "VNPAY"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodVNPay
}

// ShippingFee is the flat delivery fee in VND applied to every order.
const ShippingFee float64 = 30000

// OrderTTL is how long an unpaid order is kept before the reaper cancels it.
const OrderTTL = 24 * time.Hour

// MaxPaymentRetries bounds how many times a failed online payment may be
// superseded by a new attempt.
const MaxPaymentRetries = 2

type Order struct {
	ID              int64         `db:"id"`
	UserID          string        `db:"user_id"`
	UserEmail       *string       `db:"user_email"`
	TotalAmount     float64       `db:"total_amount"`
	ShippingFee     float64       `db:"shipping_fee"`
	FinalAmount     float64       `db:"final_amount"`
	Address         string        `db:"address"`
	Ward            string        `db:"ward"`
	District        string        `db:"district"`
	City            string        `db:"city"`
	PhoneNumber     string        `db:"phone_number"`
	FullName        string        `db:"full_name"`
	OrderStatus     OrderStatus   `db:"order_status"`
	PaymentMethod   PaymentMethod `db:"payment_method"`
	PaymentStatus   PaymentStatus `db:"payment_status"`
	OrderCode       string        `db:"order_code"`
	ActivePaymentID *int64        `db:"active_payment_id"`
	RetryCount      int           `db:"retry_count"`
	Notes           *string       `db:"notes"`
	ExpiresAt       int64         `db:"expires_at"`
	CreatedAt       int64         `db:"created_at"`
	UpdatedAt       int64         `db:"updated_at"`
	Items           []OrderItem
}

type OrderItem struct {
	ID            int64   `db:"id"`
	OrderID       int64   `db:"order_id"`
	BookID        string  `db:"book_id"`
	Title         string  `db:"title"`
	OriginalPrice float64 `db:"original_price"`
	Price         float64 `db:"price"`
	Quantity      int64   `db:"quantity"`
	PrimaryImage  string  `db:"primary_image"`
	CreatedAt     int64   `db:"created_at"`
	UpdatedAt     int64   `db:"updated_at"`
}

// Expired reports whether the order's payment deadline precedes the given time.
func (o Order) Expired(at time.Time) bool {
	return o.ExpiresAt < at.Unix()
}

// Terminal reports whether the order status permits no further transition,
// except the explicitly allowed Delivered -> Returned follow-up.
func (o Order) Terminal() bool {
	return o.OrderStatus == OrderStatusCanceled || o.OrderStatus == OrderStatusDelivered
}

// GenerateOrderCode builds the human-readable order code, e.g. OD2501021504059371.
// Assigned once at creation and immutable afterwards.
func GenerateOrderCode(now time.Time) string {
	return fmt.Sprintf("OD%s%04d", now.Format("060102150405"), 1000+rand.Intn(9000))
}
