package middleware

import (
	"strings"

	"github.com/bookify/order-service/pkg/errs"
	"github.com/bookify/order-service/pkg/response"
	"github.com/bookify/order-service/pkg/utils"
	"github.com/labstack/echo/v4"
)

const (
	ContextKeyUser  = "user"
	ContextKeyToken = "token"
)

// VerifyToken authenticates the bearer token and stores the token identity on
// the request context.
func VerifyToken(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return response.WriteErrorResponse(c, errs.ErrNotLoggedIn, nil)
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			user, err := utils.ParseJWTToken(tokenString, jwtSecret)
			if err != nil || user.ID == "" {
				return response.WriteErrorResponse(c, errs.ErrNotLoggedIn, nil)
			}

			c.Set(ContextKeyUser, user)
			c.Set(ContextKeyToken, authHeader)

			return next(c)
		}
	}
}

// RequireAdmin guards admin-only routes; VerifyToken must run first.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(ContextKeyUser).(utils.TokenUser)
		if !ok || user.Role != "admin" {
			return response.WriteErrorResponse(c, errs.ErrUnauthorized, nil)
		}

		return next(c)
	}
}

// TokenUserFrom extracts the authenticated identity placed by VerifyToken.
func TokenUserFrom(c echo.Context) utils.TokenUser {
	user, _ := c.Get(ContextKeyUser).(utils.TokenUser)
	return user
}

// RawTokenFrom returns the original Authorization header for forwarding to
// downstream services.
func RawTokenFrom(c echo.Context) string {
	token, _ := c.Get(ContextKeyToken).(string)
	return token
}
