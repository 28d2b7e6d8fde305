package dto

import "github.com/bookify/order-service/internal/domain"

type OrderItemResponse struct {
	BookID       string  `json:"book_id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	Quantity     int64   `json:"quantity"`
	PrimaryImage string  `json:"primary_image"`
}

type OrderResponse struct {
	ID            int64                `json:"id"`
	OrderCode     string               `json:"order_code"`
	Items         []OrderItemResponse  `json:"items"`
	TotalAmount   float64              `json:"total_amount"`
	ShippingFee   float64              `json:"shipping_fee"`
	FinalAmount   float64              `json:"final_amount"`
	OrderStatus   domain.OrderStatus   `json:"order_status"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	PaymentID     *int64               `json:"payment_id,omitempty"`
	RetryCount    int                  `json:"retry_count"`
	ExpiresAt     int64                `json:"expires_at"`
	CreatedAt     int64                `json:"created_at"`
}

func BuildOrderResponse(order domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			BookID:       item.BookID,
			Title:        item.Title,
			Price:        item.Price,
			Quantity:     item.Quantity,
			PrimaryImage: item.PrimaryImage,
		})
	}

	return OrderResponse{
		ID:            order.ID,
		OrderCode:     order.OrderCode,
		Items:         items,
		TotalAmount:   order.TotalAmount,
		ShippingFee:   order.ShippingFee,
		FinalAmount:   order.FinalAmount,
		OrderStatus:   order.OrderStatus,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		PaymentID:     order.ActivePaymentID,
		RetryCount:    order.RetryCount,
		ExpiresAt:     order.ExpiresAt,
		CreatedAt:     order.CreatedAt,
	}
}

type OrderPreviewResponse struct {
	Items       []OrderItemResponse `json:"items"`
	TotalAmount float64             `json:"total_amount"`
	ShippingFee float64             `json:"shipping_fee"`
	FinalAmount float64             `json:"final_amount"`
}

type PaymentURLResponse struct {
	PaymentURL string `json:"payment_url"`
}

type RetryPaymentResponse struct {
	PaymentURL          string `json:"payment_url,omitempty"`
	PaymentID           int64  `json:"payment_id,omitempty"`
	ShouldConfirmCancel bool   `json:"should_confirm_cancel,omitempty"`
	OrderCanceled       bool   `json:"order_canceled,omitempty"`
	Message             string `json:"message,omitempty"`
}
