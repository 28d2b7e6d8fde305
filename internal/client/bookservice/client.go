package bookservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bookify/order-service/config"
	"github.com/bookify/order-service/internal/dto"
	"github.com/bookify/order-service/pkg/httpclient"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// Client is the inventory collaborator: authoritative price/stock lookup and
// stock/sales mutation on the book service.
type Client interface {
	GetBooks(ctx context.Context, token string, ids []string) ([]dto.BookRecord, error)
	AdjustStock(ctx context.Context, token string, bookID string, delta int64, version int64) error
	AdjustSales(ctx context.Context, token string, bookID string, delta int64) error
}

type ClientImpl struct {
	host string
	cb   *gobreaker.CircuitBreaker[[]byte]
}

func CreateBookServiceClient(conf *config.Config, cb *gobreaker.CircuitBreaker[[]byte]) Client {
	return &ClientImpl{
		host: conf.BookServiceHost,
		cb:   cb,
	}
}

func (c *ClientImpl) GetBooks(ctx context.Context, token string, ids []string) ([]dto.BookRecord, error) {
	body, err := c.cb.Execute(func() ([]byte, error) {
		statusCode, respBody, err := httpclient.SendRequest(ctx, httpclient.HttpRequest{
			URL:    fmt.Sprintf("%s/api/books/multiple?ids=%s", c.host, url.QueryEscape(strings.Join(ids, ","))),
			Method: "GET",
			Headers: map[string]string{
				"Authorization": token,
			},
		})
		if err != nil {
			return nil, err
		}
		if statusCode != http.StatusOK {
			return nil, fmt.Errorf("book service returned non-OK status: %d", statusCode)
		}
		return respBody, nil
	})
	if err != nil {
		log.Error().Err(err).Str("component", "GetBooks").Msg("")
		return nil, err
	}

	var resp dto.BooksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshalling book service response: %v", err)
	}

	return resp.Data.Books, nil
}

func (c *ClientImpl) AdjustStock(ctx context.Context, token string, bookID string, delta int64, version int64) error {
	jsonBody, err := json.Marshal(dto.StockAdjustmentRequest{
		Quantity: delta,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("error marshalling stock adjustment request: %v", err)
	}

	_, err = c.cb.Execute(func() ([]byte, error) {
		statusCode, respBody, err := httpclient.SendRequest(ctx, httpclient.HttpRequest{
			URL:    fmt.Sprintf("%s/api/books/%s/stock", c.host, bookID),
			Method: "PUT",
			Body:   jsonBody,
			Headers: map[string]string{
				"Content-Type":  "application/json",
				"Authorization": token,
			},
		})
		if err != nil {
			return nil, err
		}
		if statusCode != http.StatusOK {
			return nil, fmt.Errorf("book service returned non-OK status: %d", statusCode)
		}
		return respBody, nil
	})
	if err != nil {
		log.Error().Err(err).Str("component", "AdjustStock").Str("book_id", bookID).Msg("")
	}

	return err
}

func (c *ClientImpl) AdjustSales(ctx context.Context, token string, bookID string, delta int64) error {
	jsonBody, err := json.Marshal(dto.SalesAdjustmentRequest{
		Quantity: delta,
	})
	if err != nil {
		return fmt.Errorf("error marshalling sales adjustment request: %v", err)
	}

	_, err = c.cb.Execute(func() ([]byte, error) {
		statusCode, respBody, err := httpclient.SendRequest(ctx, httpclient.HttpRequest{
			URL:    fmt.Sprintf("%s/api/books/%s/sales", c.host, bookID),
			Method: "PUT",
			Body:   jsonBody,
			Headers: map[string]string{
				"Content-Type":  "application/json",
				"Authorization": token,
			},
		})
		if err != nil {
			return nil, err
		}
		if statusCode != http.StatusOK {
			return nil, fmt.Errorf("book service returned non-OK status: %d", statusCode)
		}
		return respBody, nil
	})
	if err != nil {
		log.Error().Err(err).Str("component", "AdjustSales").Str("book_id", bookID).Msg("")
	}

	return err
}
