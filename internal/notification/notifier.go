package notification

import (
	"fmt"

	"github.com/bookify/order-service/config"
	"github.com/bookify/order-service/internal/domain"
	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

// Notifier delivers customer-facing emails. Every call is fire-and-forget
// from the core's perspective: failures are logged, never propagated into the
// owning transaction.
type Notifier interface {
	SendOrderConfirmation(email string, order domain.Order)
	SendStatusUpdate(email string, order domain.Order, newStatus domain.OrderStatus)
	SendPaymentResult(email, orderCode string, status domain.PaymentStatus, amount float64, method domain.PaymentMethod, orderID int64, reason string)
}

type SMTPNotifier struct {
	conf config.SMTPConfig
}

func CreateSMTPNotifier(conf *config.Config) Notifier {
	return &SMTPNotifier{
		conf: conf.SMTPConfig,
	}
}

func (n *SMTPNotifier) send(to, subject, html string) {
	if to == "" {
		log.Warn().Str("component", "notification").Str("subject", subject).Msg("no recipient email, skipping")
		return
	}

	message := gomail.NewMessage()
	message.SetHeader("From", n.conf.Sender)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", html)

	d := gomail.NewDialer(n.conf.Host, n.conf.Port, n.conf.Sender, n.conf.Password)
	if err := d.DialAndSend(message); err != nil {
		log.Error().Err(err).Str("component", "notification").Str("subject", subject).Msg("")
	}
}

func (n *SMTPNotifier) SendOrderConfirmation(email string, order domain.Order) {
	subject := fmt.Sprintf("Order confirmation #%s", order.OrderCode)
	n.send(email, subject, orderConfirmationBody(order))
}

func (n *SMTPNotifier) SendStatusUpdate(email string, order domain.Order, newStatus domain.OrderStatus) {
	subject := fmt.Sprintf("Order #%s status updated: %s", order.OrderCode, newStatus)
	n.send(email, subject, statusUpdateBody(order, newStatus))
}

func (n *SMTPNotifier) SendPaymentResult(email, orderCode string, status domain.PaymentStatus, amount float64, method domain.PaymentMethod, orderID int64, reason string) {
	subject := fmt.Sprintf("Payment update for order #%s", orderCode)
	n.send(email, subject, paymentResultBody(orderCode, status, amount, method, orderID, reason))
}
