package service

import (
	"context"

	"github.com/bookify/order-service/internal/dto"
	pkgdto "github.com/bookify/order-service/pkg/dto"
	"github.com/bookify/order-service/pkg/errs"
	"github.com/bookify/order-service/pkg/utils"
)

func normalizeFilter(filter pkgdto.Filter) pkgdto.Filter {
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	return filter
}

func (s *OrderServiceImpl) listOrders(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.Pagination, err error) {
	orders, err := s.repository.GetOrders(ctx, filter)
	if err != nil {
		return
	}

	count, err := s.repository.CountOrders(ctx, filter)
	if err != nil {
		return
	}

	records := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		records = append(records, dto.BuildOrderResponse(order))
	}

	return pkgdto.Pagination{
		Metadata: pkgdto.Metadata{
			TotalCount: count,
			Page:       filter.Page,
			Limit:      filter.Limit,
		},
		Records: records,
	}, nil
}

func (s *OrderServiceImpl) GetOrdersByUser(ctx context.Context, userID string, filter pkgdto.Filter) (resp pkgdto.Pagination, err error) {
	filter = normalizeFilter(filter)
	filter.UserID = userID
	return s.listOrders(ctx, filter)
}

func (s *OrderServiceImpl) GetOrders(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.Pagination, err error) {
	return s.listOrders(ctx, normalizeFilter(filter))
}

func (s *OrderServiceImpl) GetOrderByID(ctx context.Context, orderID int64, user utils.TokenUser) (resp dto.OrderResponse, err error) {
	order, err := s.repository.GetOrderByID(ctx, orderID)
	if err != nil {
		return
	}
	if order.UserID != user.ID && user.Role != "admin" {
		return resp, errs.ErrOrderNotOwned
	}

	return dto.BuildOrderResponse(order), nil
}
