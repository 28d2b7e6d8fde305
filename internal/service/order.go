package service

import (
	"context"
	"strings"
	"time"

	"github.com/bookify/order-service/internal/domain"
	"github.com/bookify/order-service/internal/dto"
	"github.com/bookify/order-service/internal/repository"
	"github.com/bookify/order-service/pkg/errs"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type shippingInfo struct {
	Address     string
	Ward        string
	District    string
	City        string
	PhoneNumber string
	FullName    string
}

func (s *OrderServiceImpl) resolveShippingInfo(ctx context.Context, req dto.OrderRequest) (info shippingInfo, err error) {
	if req.SavedAddressID != "" {
		address, lookupErr := s.userClient.GetSavedAddress(ctx, req.UserToken, req.SavedAddressID)
		if lookupErr != nil || address == nil || address.UserID != req.UserID {
			return info, errs.ErrAddressNotOwned
		}

		return shippingInfo{
			Address:     address.Address,
			Ward:        address.Ward,
			District:    address.District,
			City:        address.City,
			PhoneNumber: address.PhoneNumber,
			FullName:    address.FullName,
		}, nil
	}

	return shippingInfo{
		Address:     strings.TrimSpace(req.ShippingAddress.Address),
		Ward:        strings.TrimSpace(req.ShippingAddress.Ward),
		District:    strings.TrimSpace(req.ShippingAddress.District),
		City:        strings.TrimSpace(req.ShippingAddress.City),
		PhoneNumber: req.PhoneNumber,
		FullName:    strings.TrimSpace(req.FullName),
	}, nil
}

// priceSelection resolves the selected cart lines against the authoritative
// book records: availability, stock and prices all come from the book
// service, never from the caller.
func (s *OrderServiceImpl) priceSelection(ctx context.Context, token string, cartItems []domain.CartItem, selected []dto.OrderItemRequest) (items []domain.OrderItem, books map[string]dto.BookRecord, totalAmount float64, err error) {
	selectedQty := make(map[string]int64, len(selected))
	for _, sel := range selected {
		selectedQty[sel.BookID] = sel.Quantity
	}

	chosen := make([]domain.CartItem, 0, len(selected))
	for _, item := range cartItems {
		if _, ok := selectedQty[item.BookID]; ok {
			chosen = append(chosen, item)
		}
	}
	if len(chosen) == 0 {
		return nil, nil, 0, errs.ErrItemsNotInCart
	}

	bookIDs := make([]string, 0, len(chosen))
	for _, item := range chosen {
		bookIDs = append(bookIDs, item.BookID)
	}

	records, err := s.bookClient.GetBooks(ctx, token, bookIDs)
	if err != nil {
		return nil, nil, 0, err
	}

	books = make(map[string]dto.BookRecord, len(records))
	for _, record := range records {
		books[record.ID] = record
	}

	now := time.Now().Unix()
	for _, item := range chosen {
		book, ok := books[item.BookID]
		if !ok {
			return nil, nil, 0, errs.ErrBookUnavailable
		}
		if !book.Availability || book.StockCount < item.Quantity {
			return nil, nil, 0, errs.ErrInsufficientStock
		}

		items = append(items, domain.OrderItem{
			BookID:        item.BookID,
			Title:         book.Title,
			OriginalPrice: book.Price,
			Price:         book.Price,
			Quantity:      item.Quantity,
			PrimaryImage:  book.PrimaryImage,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		totalAmount += book.Price * float64(item.Quantity)
	}

	return items, books, totalAmount, nil
}

func (s *OrderServiceImpl) AddOrder(ctx context.Context, req dto.OrderRequest) (resp dto.OrderResponse, err error) {
	if err = req.Validate(); err != nil {
		return
	}

	userEmail := req.UserEmail
	if userEmail == "" {
		userEmail, err = s.userClient.GetUserEmail(ctx, req.UserToken, req.UserID)
		if err != nil {
			log.Error().Err(err).Str("component", "AddOrder").Msg("could not resolve user email")
			userEmail = ""
			err = nil
		}
	}

	var order domain.Order
	var books map[string]dto.BookRecord

	err = s.repository.HandleTrx(ctx, func(ctx context.Context, repo repository.OrderRepository) error {
		cart, trxErr := repo.GetCartByUserID(ctx, req.UserID)
		if trxErr != nil {
			return trxErr
		}
		if len(cart.Items) == 0 {
			return errs.ErrCartEmpty
		}

		shipping, trxErr := s.resolveShippingInfo(ctx, req)
		if trxErr != nil {
			return trxErr
		}
		if shipping.PhoneNumber == "" || shipping.FullName == "" {
			return errs.ErrMissingRecipientInfo
		}

		items, bookRecords, totalAmount, trxErr := s.priceSelection(ctx, req.UserToken, cart.Items, req.Items)
		if trxErr != nil {
			return trxErr
		}
		books = bookRecords

		now := time.Now()
		order = domain.Order{
			UserID:        req.UserID,
			TotalAmount:   totalAmount,
			ShippingFee:   domain.ShippingFee,
			FinalAmount:   totalAmount + domain.ShippingFee,
			Address:       shipping.Address,
			Ward:          shipping.Ward,
			District:      shipping.District,
			City:          shipping.City,
			PhoneNumber:   shipping.PhoneNumber,
			FullName:      shipping.FullName,
			OrderStatus:   domain.OrderStatusPending,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: domain.PaymentStatusUnpaid,
			OrderCode:     domain.GenerateOrderCode(now),
			ExpiresAt:     now.Add(domain.OrderTTL).Unix(),
			CreatedAt:     now.Unix(),
			UpdatedAt:     now.Unix(),
		}
		if userEmail != "" {
			order.UserEmail = &userEmail
		}
		if note := strings.TrimSpace(req.Note); note != "" {
			order.Notes = &note
		}

		orderID, trxErr := repo.AddOrder(ctx, order)
		if trxErr != nil {
			return trxErr
		}
		order.ID = orderID

		for idx := range items {
			items[idx].OrderID = orderID
		}
		if trxErr = repo.AddOrderItems(ctx, items); trxErr != nil {
			return trxErr
		}
		order.Items = items

		txnRef, trxErr := uuid.NewV7()
		if trxErr != nil {
			return trxErr
		}
		txnRefStr := txnRef.String()

		payment := domain.Payment{
			OrderID:           orderID,
			UserID:            req.UserID,
			Amount:            order.FinalAmount,
			PaymentMethod:     req.PaymentMethod,
			TransactionStatus: domain.TransactionStatusPending,
			Status:            domain.AttemptStatusActive,
			TxnRef:            &txnRefStr,
			CreatedAt:         now.Unix(),
			UpdatedAt:         now.Unix(),
		}

		paymentID, trxErr := repo.AddPayment(ctx, payment)
		if trxErr != nil {
			return trxErr
		}

		order.ActivePaymentID = &paymentID
		if trxErr = repo.UpdateOrder(ctx, order); trxErr != nil {
			return trxErr
		}

		orderedBookIDs := make([]string, 0, len(items))
		for _, item := range items {
			orderedBookIDs = append(orderedBookIDs, item.BookID)
		}
		if trxErr = repo.RemoveCartItems(ctx, req.UserID, orderedBookIDs); trxErr != nil {
			return trxErr
		}

		return repo.DeleteCartIfEmpty(ctx, req.UserID)
	})
	if err != nil {
		return
	}

	// Inventory mutation, cart cleanup and email are deliberately outside the
	// committed unit of work: each is best-effort and never unwinds the order.
	for _, item := range order.Items {
		s.adjustStock(ctx, req.UserToken, order.ID, domain.CompensationDecrementStock, item.BookID, -item.Quantity, books[item.BookID].Version)
		s.adjustStock(ctx, req.UserToken, order.ID, domain.CompensationAdjustSales, item.BookID, item.Quantity, 0)
	}

	if userEmail != "" {
		s.notifier.SendOrderConfirmation(userEmail, order)
	}

	return dto.BuildOrderResponse(order), nil
}

func (s *OrderServiceImpl) PreviewOrder(ctx context.Context, token string, req dto.PreviewOrderRequest) (resp dto.OrderPreviewResponse, err error) {
	cart, err := s.repository.GetCartByUserID(ctx, req.UserID)
	if err != nil {
		return
	}
	if len(cart.Items) == 0 {
		return resp, errs.ErrCartEmpty
	}

	selected := req.Items
	if len(selected) == 0 {
		for _, item := range cart.Items {
			selected = append(selected, dto.OrderItemRequest{BookID: item.BookID, Quantity: item.Quantity})
		}
	}

	items, _, totalAmount, err := s.priceSelection(ctx, token, cart.Items, selected)
	if err != nil {
		return
	}

	itemResponses := make([]dto.OrderItemResponse, 0, len(items))
	for _, item := range items {
		itemResponses = append(itemResponses, dto.OrderItemResponse{
			BookID:       item.BookID,
			Title:        item.Title,
			Price:        item.Price,
			Quantity:     item.Quantity,
			PrimaryImage: item.PrimaryImage,
		})
	}

	return dto.OrderPreviewResponse{
		Items:       itemResponses,
		TotalAmount: totalAmount,
		ShippingFee: domain.ShippingFee,
		FinalAmount: totalAmount + domain.ShippingFee,
	}, nil
}
