package userservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bookify/order-service/config"
	"github.com/bookify/order-service/internal/dto"
	"github.com/bookify/order-service/pkg/httpclient"
	"github.com/rs/zerolog/log"
)

// Client resolves saved shipping addresses and user emails from the main
// user/profile service.
type Client interface {
	GetSavedAddress(ctx context.Context, token string, addressID string) (*dto.SavedAddress, error)
	GetUserEmail(ctx context.Context, token string, userID string) (string, error)
}

type ClientImpl struct {
	host string
}

func CreateUserServiceClient(conf *config.Config) Client {
	return &ClientImpl{
		host: conf.UserServiceHost,
	}
}

func (c *ClientImpl) GetSavedAddress(ctx context.Context, token string, addressID string) (*dto.SavedAddress, error) {
	statusCode, body, err := httpclient.SendRequest(ctx, httpclient.HttpRequest{
		URL:    fmt.Sprintf("%s/api/address/%s", c.host, addressID),
		Method: "GET",
		Headers: map[string]string{
			"Authorization": token,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("component", "GetSavedAddress").Msg("")
		return nil, err
	}
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("user service returned non-OK status: %d", statusCode)
	}

	var resp dto.AddressResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshalling address response: %v", err)
	}

	return resp.Data.Address, nil
}

func (c *ClientImpl) GetUserEmail(ctx context.Context, token string, userID string) (string, error) {
	statusCode, body, err := httpclient.SendRequest(ctx, httpclient.HttpRequest{
		URL:    fmt.Sprintf("%s/api/users/%s", c.host, userID),
		Method: "GET",
		Headers: map[string]string{
			"Authorization": token,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("component", "GetUserEmail").Msg("")
		return "", err
	}
	if statusCode != http.StatusOK {
		return "", fmt.Errorf("user service returned non-OK status: %d", statusCode)
	}

	var resp dto.UserProfileResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("error unmarshalling user profile response: %v", err)
	}

	return resp.Data.User.Email, nil
}
