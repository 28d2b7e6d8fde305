package notification

import (
	"fmt"
	"strings"

	"github.com/bookify/order-service/internal/domain"
)

func formatVND(amount float64) string {
	return fmt.Sprintf("%.0f₫", amount)
}

func orderItemsTable(items []domain.OrderItem) string {
	var b strings.Builder
	b.WriteString(`<table style="width:100%;border-collapse:collapse;margin:16px 0;">`)
	b.WriteString(`<thead><tr style="background:#f5f5f5;"><th style="padding:8px;border:1px solid #eee;">Title</th><th style="padding:8px;border:1px solid #eee;">Quantity</th><th style="padding:8px;border:1px solid #eee;">Price</th></tr></thead><tbody>`)
	for _, item := range items {
		b.WriteString(fmt.Sprintf(
			`<tr><td style="padding:8px;border:1px solid #eee;">%s</td><td style="padding:8px;border:1px solid #eee;text-align:center;">%d</td><td style="padding:8px;border:1px solid #eee;text-align:right;">%s</td></tr>`,
			item.Title, item.Quantity, formatVND(item.Price)))
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}

func orderConfirmationBody(order domain.Order) string {
	return fmt.Sprintf(`
		<h2>Thank you for your order!</h2>
		<p>Your order <strong>#%s</strong> has been received.</p>
		%s
		<p>Subtotal: %s<br/>Shipping fee: %s<br/><strong>Total: %s</strong></p>
		<p>Payment method: %s</p>
		<p>Shipping to: %s, %s, %s, %s</p>`,
		order.OrderCode,
		orderItemsTable(order.Items),
		formatVND(order.TotalAmount),
		formatVND(order.ShippingFee),
		formatVND(order.FinalAmount),
		order.PaymentMethod,
		order.Address, order.Ward, order.District, order.City)
}

func statusUpdateBody(order domain.Order, newStatus domain.OrderStatus) string {
	return fmt.Sprintf(`
		<h2>Order #%s update</h2>
		<p>Your order status is now: <strong>%s</strong>.</p>
		%s
		<p><strong>Total: %s</strong></p>`,
		order.OrderCode, newStatus, orderItemsTable(order.Items), formatVND(order.FinalAmount))
}

func paymentResultBody(orderCode string, status domain.PaymentStatus, amount float64, method domain.PaymentMethod, orderID int64, reason string) string {
	body := fmt.Sprintf(`
		<h2>Payment update for order #%s</h2>
		<p>Payment status: <strong>%s</strong></p>
		<p>Amount: %s</p>
		<p>Method: %s</p>
		<p>Order reference: %d</p>`,
		orderCode, status, formatVND(amount), method, orderID)
	if reason != "" {
		body += fmt.Sprintf(`<p>Note: %s</p>`, reason)
	}
	return body
}
