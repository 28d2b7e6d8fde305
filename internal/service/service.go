package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bookify/order-service/config"
	"github.com/bookify/order-service/internal/client/bookservice"
	"github.com/bookify/order-service/internal/client/userservice"
	"github.com/bookify/order-service/internal/domain"
	"github.com/bookify/order-service/internal/dto"
	"github.com/bookify/order-service/internal/notification"
	"github.com/bookify/order-service/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// EventPublisher is the slice of the Kafka connection used for the
// compensation outbox. *kafka.Conn satisfies it.
type EventPublisher interface {
	WriteMessages(msgs ...kafka.Message) (int, error)
}

type OrderServiceImpl struct {
	repository    repository.OrderRepository
	gateway       PaymentGateway
	bookClient    bookservice.Client
	userClient    userservice.Client
	notifier      notification.Notifier
	kafkaProducer EventPublisher
	config        *config.Config
}

func CreateOrderService(repository repository.OrderRepository, gateway PaymentGateway, bookClient bookservice.Client, userClient userservice.Client, notifier notification.Notifier, kafkaProducer EventPublisher, config *config.Config) OrderService {
	return &OrderServiceImpl{
		repository:    repository,
		gateway:       gateway,
		bookClient:    bookClient,
		userClient:    userClient,
		notifier:      notifier,
		kafkaProducer: kafkaProducer,
		config:        config,
	}
}

// adjustStock performs one best-effort inventory mutation and records its
// outcome in the compensation outbox. Failures never abort the caller.
func (s *OrderServiceImpl) adjustStock(ctx context.Context, token string, orderID int64, action domain.CompensationAction, bookID string, quantity int64, version int64) {
	var callErr error
	switch action {
	case domain.CompensationAdjustSales:
		callErr = s.bookClient.AdjustSales(ctx, token, bookID, quantity)
	default:
		callErr = s.bookClient.AdjustStock(ctx, token, bookID, quantity, version)
	}

	record := domain.CompensationRecord{
		OrderID:   orderID,
		Action:    action,
		BookID:    bookID,
		Quantity:  quantity,
		Status:    domain.CompensationOK,
		CreatedAt: time.Now().Unix(),
	}
	if callErr != nil {
		errMsg := callErr.Error()
		record.Status = domain.CompensationFailed
		record.LastError = &errMsg
	}

	if err := s.repository.AddCompensationRecord(ctx, record); err != nil {
		log.Error().Err(err).Str("component", "adjustStock").Msg("")
	}

	if callErr != nil {
		s.publishInventoryFailure(orderID, action, bookID, quantity, callErr)
	}
}

// restoreOrderStock issues the compensating inventory calls for every line of
// an order. withSales additionally reverses the sales counters.
func (s *OrderServiceImpl) restoreOrderStock(ctx context.Context, token string, order domain.Order, withSales bool) {
	for _, item := range order.Items {
		s.adjustStock(ctx, token, order.ID, domain.CompensationRestoreStock, item.BookID, item.Quantity, 0)
		if withSales {
			s.adjustStock(ctx, token, order.ID, domain.CompensationAdjustSales, item.BookID, -item.Quantity, 0)
		}
	}
}

func (s *OrderServiceImpl) publishInventoryFailure(orderID int64, action domain.CompensationAction, bookID string, quantity int64, cause error) {
	kafkaMsg := dto.KafkaMessage{
		EventType: "inventory_adjustment_failed",
		Data: dto.InventoryAdjustmentFailed{
			OrderID:  orderID,
			Action:   string(action),
			BookID:   bookID,
			Quantity: quantity,
			Error:    cause.Error(),
		},
	}

	jsonMsg, err := json.Marshal(kafkaMsg)
	if err != nil {
		log.Error().Err(err).Str("component", "publishInventoryFailure").Msg("")
		return
	}

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		_, err = s.kafkaProducer.WriteMessages(kafka.Message{Value: jsonMsg})
		if err == nil {
			return
		}
		log.Error().Err(err).Str("component", "publishInventoryFailure").Msg("")
		time.Sleep(time.Second * time.Duration(i+1)) // Exponential backoff
	}
}

// resolveOrderEmail prefers the email snapshot on the order, falling back to a
// best-effort profile lookup.
func (s *OrderServiceImpl) resolveOrderEmail(ctx context.Context, token string, order domain.Order) string {
	if order.UserEmail != nil && *order.UserEmail != "" {
		return *order.UserEmail
	}

	email, err := s.userClient.GetUserEmail(ctx, token, order.UserID)
	if err != nil {
		log.Error().Err(err).Str("component", "resolveOrderEmail").Msg("")
		return ""
	}

	return email
}
