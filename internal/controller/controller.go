package controller

import (
	"net/http"
	"strconv"

	"github.com/bookify/order-service/internal/dto"
	"github.com/bookify/order-service/internal/middleware"
	"github.com/bookify/order-service/internal/service"
	pkgdto "github.com/bookify/order-service/pkg/dto"
	"github.com/bookify/order-service/pkg/errs"
	"github.com/bookify/order-service/pkg/response"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Controller struct {
	service service.OrderService
}

func CreateOrderController(e *echo.Group, service service.OrderService, isLoggedIn echo.MiddlewareFunc, isAdmin echo.MiddlewareFunc) {
	c := Controller{
		service: service,
	}

	e.POST("/orders", c.AddOrder, isLoggedIn)
	e.POST("/orders/preview", c.PreviewOrder, isLoggedIn)
	e.POST("/orders/payments/url", c.CreatePaymentURL, isLoggedIn)
	e.POST("/orders/:id/retry-payment", c.RetryPayment, isLoggedIn)
	e.DELETE("/orders/:id", c.CancelOrder, isLoggedIn)
	e.GET("/orders", c.GetOrdersByUser, isLoggedIn)
	e.GET("/orders/:id", c.GetOrderByID, isLoggedIn)

	e.GET("/orders/all", c.GetAllOrders, isLoggedIn, isAdmin)
	e.PUT("/orders/:id/status", c.UpdateOrderStatus, isLoggedIn, isAdmin)

	// Gateway channels carry their own HMAC authentication.
	e.GET("/orders/payments/vnpay/return", c.VNPayReturn)
	e.GET("/orders/payments/vnpay/ipn", c.VNPayIPN)
}

// clientIP normalizes the caller address into the IPv4 form the gateway
// expects in its signed parameter set.
func clientIP(e echo.Context) string {
	ip := e.RealIP()
	if ip == "::1" {
		return "127.0.0.1"
	}
	return ip
}

func orderIDParam(e echo.Context) (int64, error) {
	id, err := strconv.ParseInt(e.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errs.ErrOrderNotFound
	}
	return id, nil
}

func (c *Controller) AddOrder(e echo.Context) error {
	log.Info().Msg("add order req start")

	payload := dto.OrderRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "AddOrder").Msg("")
	}

	user := middleware.TokenUserFrom(e)
	payload.UserID = user.ID
	payload.UserEmail = user.Email
	payload.UserToken = middleware.RawTokenFrom(e)

	resp, err := c.service.AddOrder(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteCreatedResponse(e, "order created", resp)
}

func (c *Controller) PreviewOrder(e echo.Context) error {
	payload := dto.PreviewOrderRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "PreviewOrder").Msg("")
	}

	payload.UserID = middleware.TokenUserFrom(e).ID

	resp, err := c.service.PreviewOrder(e.Request().Context(), middleware.RawTokenFrom(e), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) CreatePaymentURL(e echo.Context) error {
	payload := dto.PaymentURLRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "CreatePaymentURL").Msg("")
	}

	user := middleware.TokenUserFrom(e)
	payload.UserID = user.ID
	payload.UserEmail = user.Email
	payload.IPAddr = clientIP(e)

	paymentURL, err := c.service.CreatePaymentURL(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", dto.PaymentURLResponse{PaymentURL: paymentURL})
}

func (c *Controller) RetryPayment(e echo.Context) error {
	orderID, err := orderIDParam(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	resp, err := c.service.RetryPayment(e.Request().Context(), orderID, middleware.TokenUserFrom(e), clientIP(e))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	if resp.ShouldConfirmCancel {
		return e.JSON(http.StatusConflict, response.SuccessResponse{
			Status:  "success",
			Message: resp.Message,
			Data:    resp,
		})
	}

	return response.WriteSuccessResponse(e, "", resp)
}

// VNPayReturn handles the shopper's browser coming back from the gateway's
// hosted page: the outcome is communicated by redirecting the browser.
func (c *Controller) VNPayReturn(e echo.Context) error {
	result := c.service.ProcessGatewayCallback(e.Request().Context(), callbackParams(e))

	return e.Redirect(http.StatusFound, result.Redirect)
}

// VNPayIPN handles the gateway's server-to-server notification. The transport
// always answers HTTP 200; the outcome travels in the response code body.
func (c *Controller) VNPayIPN(e echo.Context) error {
	result := c.service.ProcessGatewayCallback(e.Request().Context(), callbackParams(e))

	return e.JSON(http.StatusOK, dto.IPNResponse{
		RspCode: result.Code,
		Message: result.Message,
	})
}

func callbackParams(e echo.Context) map[string]string {
	values := e.QueryParams()
	params := make(map[string]string, len(values))
	for key := range values {
		params[key] = values.Get(key)
	}
	return params
}

func (c *Controller) UpdateOrderStatus(e echo.Context) error {
	orderID, err := orderIDParam(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	payload := dto.UpdateOrderStatusRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Error().Err(err).Str("component", "UpdateOrderStatus").Msg("")
	}

	resp, err := c.service.UpdateOrderStatus(e.Request().Context(), orderID, payload, middleware.RawTokenFrom(e))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "order status updated", resp)
}

func (c *Controller) CancelOrder(e echo.Context) error {
	orderID, err := orderIDParam(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	resp, err := c.service.CancelOrder(e.Request().Context(), orderID, middleware.TokenUserFrom(e), middleware.RawTokenFrom(e))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "order canceled", resp)
}

func (c *Controller) GetOrdersByUser(e echo.Context) error {
	filter := pkgdto.Filter{}
	if err := e.Bind(&filter); err != nil {
		log.Error().Err(err).Str("component", "GetOrdersByUser").Msg("")
	}

	resp, err := c.service.GetOrdersByUser(e.Request().Context(), middleware.TokenUserFrom(e).ID, filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "successfuly retrieved orders record", resp)
}

func (c *Controller) GetAllOrders(e echo.Context) error {
	filter := pkgdto.Filter{}
	if err := e.Bind(&filter); err != nil {
		log.Error().Err(err).Str("component", "GetAllOrders").Msg("")
	}

	resp, err := c.service.GetOrders(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "successfuly retrieved orders record", resp)
}

func (c *Controller) GetOrderByID(e echo.Context) error {
	orderID, err := orderIDParam(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	resp, err := c.service.GetOrderByID(e.Request().Context(), orderID, middleware.TokenUserFrom(e))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}
