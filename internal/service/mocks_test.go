package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookify/order-service/config"
	"github.com/bookify/order-service/internal/domain"
	"github.com/bookify/order-service/internal/dto"
	paymentgateway "github.com/bookify/order-service/internal/infrastructure/payment-gateway"
	"github.com/bookify/order-service/internal/repository"
	pkgdto "github.com/bookify/order-service/pkg/dto"
	"github.com/bookify/order-service/pkg/errs"
	"github.com/segmentio/kafka-go"
)

// fakeRepository keeps everything in maps. HandleTrx simply invokes the
// closure against the same store, which is enough to exercise the services'
// decision logic.
type fakeRepository struct {
	orders        map[int64]*domain.Order
	payments      map[int64]*domain.Payment
	carts         map[string]*domain.Cart
	paymentLogs   []domain.PaymentLog
	compensations []domain.CompensationRecord

	nextOrderID   int64
	nextPaymentID int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		orders:   map[int64]*domain.Order{},
		payments: map[int64]*domain.Payment{},
		carts:    map[string]*domain.Cart{},
	}
}

func (f *fakeRepository) HandleTrx(ctx context.Context, fn func(ctx context.Context, repo repository.OrderRepository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepository) AddOrder(ctx context.Context, data domain.Order) (int64, error) {
	f.nextOrderID++
	data.ID = f.nextOrderID
	f.orders[data.ID] = &data
	return data.ID, nil
}

func (f *fakeRepository) AddOrderItems(ctx context.Context, data []domain.OrderItem) error {
	if len(data) == 0 {
		return nil
	}
	order, ok := f.orders[data[0].OrderID]
	if !ok {
		return errs.ErrOrderNotFound
	}
	order.Items = append(order.Items, data...)
	return nil
}

func (f *fakeRepository) GetOrderByID(ctx context.Context, id int64) (domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return domain.Order{}, errs.ErrOrderNotFound
	}
	return *order, nil
}

func (f *fakeRepository) UpdateOrder(ctx context.Context, data domain.Order) error {
	stored, ok := f.orders[data.ID]
	if !ok {
		return errs.ErrOrderNotFound
	}
	items := stored.Items
	*stored = data
	if len(stored.Items) == 0 {
		stored.Items = items
	}
	return nil
}

func (f *fakeRepository) GetOrders(ctx context.Context, filter pkgdto.Filter) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range f.orders {
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && string(order.OrderStatus) != filter.Status {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func (f *fakeRepository) CountOrders(ctx context.Context, filter pkgdto.Filter) (int64, error) {
	orders, _ := f.GetOrders(ctx, filter)
	return int64(len(orders)), nil
}

func (f *fakeRepository) GetExpiredPendingOrders(ctx context.Context, now int64) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range f.orders {
		if order.OrderStatus == domain.OrderStatusPending &&
			order.PaymentStatus == domain.PaymentStatusUnpaid &&
			order.ExpiresAt < now {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeRepository) AddPayment(ctx context.Context, data domain.Payment) (int64, error) {
	f.nextPaymentID++
	data.ID = f.nextPaymentID
	f.payments[data.ID] = &data
	return data.ID, nil
}

func (f *fakeRepository) GetPaymentByID(ctx context.Context, id int64) (domain.Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return domain.Payment{}, errs.ErrPaymentNotFound
	}
	return *payment, nil
}

func (f *fakeRepository) GetPaymentByTxnRef(ctx context.Context, txnRef string) (domain.Payment, error) {
	for _, payment := range f.payments {
		if payment.TxnRef != nil && *payment.TxnRef == txnRef {
			return *payment, nil
		}
	}
	return domain.Payment{}, errs.ErrPaymentNotFound
}

func (f *fakeRepository) UpdatePayment(ctx context.Context, data domain.Payment) error {
	stored, ok := f.payments[data.ID]
	if !ok {
		return errs.ErrPaymentNotFound
	}
	*stored = data
	return nil
}

func (f *fakeRepository) AddPaymentLog(ctx context.Context, data domain.PaymentLog) error {
	f.paymentLogs = append(f.paymentLogs, data)
	return nil
}

func (f *fakeRepository) GetCartByUserID(ctx context.Context, userID string) (domain.Cart, error) {
	cart, ok := f.carts[userID]
	if !ok {
		return domain.Cart{UserID: userID}, nil
	}
	return *cart, nil
}

func (f *fakeRepository) RemoveCartItems(ctx context.Context, userID string, bookIDs []string) error {
	cart, ok := f.carts[userID]
	if !ok {
		return nil
	}
	removed := make(map[string]bool, len(bookIDs))
	for _, id := range bookIDs {
		removed[id] = true
	}
	var kept []domain.CartItem
	for _, item := range cart.Items {
		if !removed[item.BookID] {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return nil
}

func (f *fakeRepository) DeleteCartIfEmpty(ctx context.Context, userID string) error {
	if cart, ok := f.carts[userID]; ok && len(cart.Items) == 0 {
		delete(f.carts, userID)
	}
	return nil
}

func (f *fakeRepository) AddCompensationRecord(ctx context.Context, data domain.CompensationRecord) error {
	f.compensations = append(f.compensations, data)
	return nil
}

type stockCall struct {
	bookID string
	delta  int64
}

type fakeBookClient struct {
	books map[string]dto.BookRecord

	stockCalls []stockCall
	salesCalls []stockCall
	stockErr   error
}

func (f *fakeBookClient) GetBooks(ctx context.Context, token string, ids []string) ([]dto.BookRecord, error) {
	var out []dto.BookRecord
	for _, id := range ids {
		if book, ok := f.books[id]; ok {
			out = append(out, book)
		}
	}
	return out, nil
}

func (f *fakeBookClient) AdjustStock(ctx context.Context, token string, bookID string, delta int64, version int64) error {
	f.stockCalls = append(f.stockCalls, stockCall{bookID: bookID, delta: delta})
	return f.stockErr
}

func (f *fakeBookClient) AdjustSales(ctx context.Context, token string, bookID string, delta int64) error {
	f.salesCalls = append(f.salesCalls, stockCall{bookID: bookID, delta: delta})
	return nil
}

type fakeUserClient struct {
	addresses map[string]*dto.SavedAddress
	emails    map[string]string
}

func (f *fakeUserClient) GetSavedAddress(ctx context.Context, token string, addressID string) (*dto.SavedAddress, error) {
	address, ok := f.addresses[addressID]
	if !ok {
		return nil, errs.ErrAddressNotOwned
	}
	return address, nil
}

func (f *fakeUserClient) GetUserEmail(ctx context.Context, token string, userID string) (string, error) {
	email, ok := f.emails[userID]
	if !ok {
		return "", errors.New("user not found")
	}
	return email, nil
}

type fakeGateway struct {
	builtRequests []paymentgateway.PaymentURLRequest
	refundCalls   []string
	refundErr     error
}

func (f *fakeGateway) BuildPaymentURL(req paymentgateway.PaymentURLRequest) string {
	f.builtRequests = append(f.builtRequests, req)
	return "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?vnp_TxnRef=" + req.TxnRef
}

func (f *fakeGateway) Refund(ctx context.Context, txnRef string, amount float64, payDate *time.Time) error {
	f.refundCalls = append(f.refundCalls, txnRef)
	return f.refundErr
}

type sentEmail struct {
	to      string
	subject string
}

type fakeNotifier struct {
	confirmations []sentEmail
	statusUpdates []sentEmail
	paymentEmails []sentEmail
}

func (f *fakeNotifier) SendOrderConfirmation(email string, order domain.Order) {
	f.confirmations = append(f.confirmations, sentEmail{to: email, subject: order.OrderCode})
}

func (f *fakeNotifier) SendStatusUpdate(email string, order domain.Order, newStatus domain.OrderStatus) {
	f.statusUpdates = append(f.statusUpdates, sentEmail{to: email, subject: string(newStatus)})
}

func (f *fakeNotifier) SendPaymentResult(email, orderCode string, status domain.PaymentStatus, amount float64, method domain.PaymentMethod, orderID int64, reason string) {
	f.paymentEmails = append(f.paymentEmails, sentEmail{to: email, subject: string(status)})
}

type fakePublisher struct {
	messages []kafka.Message
}

func (f *fakePublisher) WriteMessages(msgs ...kafka.Message) (int, error) {
	f.messages = append(f.messages, msgs...)
	return len(msgs), nil
}

type serviceFixture struct {
	repo     *fakeRepository
	books    *fakeBookClient
	users    *fakeUserClient
	gateway  *fakeGateway
	notifier *fakeNotifier
	events   *fakePublisher
	svc      *OrderServiceImpl
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:     newFakeRepository(),
		books:    &fakeBookClient{books: map[string]dto.BookRecord{}},
		users:    &fakeUserClient{addresses: map[string]*dto.SavedAddress{}, emails: map[string]string{}},
		gateway:  &fakeGateway{},
		notifier: &fakeNotifier{},
		events:   &fakePublisher{},
	}

	conf := &config.Config{
		FrontendURL: "https://shop.example.com",
		VNPayConfig: config.VNPayConfig{
			TmnCode:    "BOOKIFY1",
			HashSecret: "TESTHASHSECRET123",
			PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
			ReturnURL:  "https://shop.example.com/return",
		},
	}

	f.svc = CreateOrderService(f.repo, f.gateway, f.books, f.users, f.notifier, f.events, conf).(*OrderServiceImpl)
	return f
}

func paymentURLRequest(orderID, paymentID int64, amount float64) dto.PaymentURLRequest {
	return dto.PaymentURLRequest{
		UserID:    "user-1",
		IPAddr:    "127.0.0.1",
		OrderID:   orderID,
		PaymentID: paymentID,
		Amount:    amount,
	}
}

// seedOrder installs an order with one active pending payment and returns both.
func (f *serviceFixture) seedOrder(userID string, method domain.PaymentMethod, expiresAt int64) (*domain.Order, *domain.Payment) {
	now := time.Now().Unix()
	f.repo.nextOrderID++
	orderID := f.repo.nextOrderID
	f.repo.nextPaymentID++
	paymentID := f.repo.nextPaymentID

	txnRef := fmt.Sprintf("txn-ref-%d", paymentID)
	payment := &domain.Payment{
		ID:                paymentID,
		OrderID:           orderID,
		UserID:            userID,
		Amount:            230000,
		PaymentMethod:     method,
		TransactionStatus: domain.TransactionStatusPending,
		Status:            domain.AttemptStatusActive,
		TxnRef:            &txnRef,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	email := userID + "@example.com"
	order := &domain.Order{
		ID:              orderID,
		UserID:          userID,
		UserEmail:       &email,
		TotalAmount:     200000,
		ShippingFee:     domain.ShippingFee,
		FinalAmount:     230000,
		Address:         "12 Ly Thuong Kiet",
		Ward:            "Phuong 1",
		District:        "Hoan Kiem",
		City:            "Ha Noi",
		PhoneNumber:     "0912345678",
		FullName:        "Nguyen Van A",
		OrderStatus:     domain.OrderStatusPending,
		PaymentMethod:   method,
		PaymentStatus:   domain.PaymentStatusUnpaid,
		OrderCode:       fmt.Sprintf("OD26082810301548%02d", orderID),
		ActivePaymentID: &paymentID,
		ExpiresAt:       expiresAt,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items: []domain.OrderItem{
			{ID: orderID*10 + 1, OrderID: orderID, BookID: "book-1", Title: "Clean Architecture", Price: 100000, Quantity: 1},
			{ID: orderID*10 + 2, OrderID: orderID, BookID: "book-2", Title: "Domain-Driven Design", Price: 50000, Quantity: 2},
		},
	}

	f.repo.orders[orderID] = order
	f.repo.payments[paymentID] = payment
	return order, payment
}
