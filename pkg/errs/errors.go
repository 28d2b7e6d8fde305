package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer = http.StatusInternalServerError
	ErrStatusClient         = http.StatusBadRequest
	ErrStatusNotLoggedIn    = http.StatusUnauthorized
	ErrStatusNoPermission   = http.StatusForbidden
	ErrStatusNotFound       = http.StatusNotFound
	ErrStatusConflict       = http.StatusConflict
)

var (
	ErrInternalServer = errors.New("Internal server error")
	ErrClient         = errors.New("Bad request")
	ErrNotLoggedIn    = errors.New("Unauthorized access")
	ErrUnauthorized   = errors.New("Forbidden access")
	ErrNotFound       = errors.New("Resource not found")
	ErrConflict       = errors.New("Conflicting record found")

	ErrCartEmpty            = errors.New("Your cart is empty")
	ErrNoItemsSelected      = errors.New("No items selected for the order")
	ErrItemsNotInCart       = errors.New("Selected items were not found in the cart")
	ErrMissingShippingInfo  = errors.New("A complete shipping address is required")
	ErrMissingRecipientInfo = errors.New("Recipient full name and phone number are required")
	ErrAddressNotOwned      = errors.New("Shipping address does not exist or does not belong to you")
	ErrBookUnavailable      = errors.New("A requested book is not available")
	ErrInsufficientStock    = errors.New("A requested book does not have enough stock")
	ErrInvalidPaymentMethod = errors.New("Invalid payment method")

	ErrOrderNotFound       = errors.New("Order not found")
	ErrOrderNotOwned       = errors.New("You do not have permission to access this order")
	ErrPaymentNotFound     = errors.New("Payment transaction not found or does not belong to you")
	ErrOrderNotOnline      = errors.New("The order is not paid through VNPay")
	ErrOrderNotPending     = errors.New("The order is no longer awaiting payment")
	ErrOrderExpired        = errors.New("The order has expired, please place a new one")
	ErrAmountMismatch      = errors.New("Payment amount does not match the order")
	ErrAlreadyPaid         = errors.New("This order has already been paid")
	ErrOrderNotCancellable = errors.New("The order can no longer be canceled")
	ErrInvalidOrderStatus  = errors.New("Invalid order status")
	ErrInvalidTransition   = errors.New("The requested status transition is not allowed")
	ErrRefundUnpaid        = errors.New("Cannot refund an order that has not been paid")
	ErrRefundFailed        = errors.New("The payment gateway rejected the refund")
	ErrUserEmailNotFound   = errors.New("No email address found for the order's user")
)

var errorMap = map[error]int{
	ErrInternalServer: ErrStatusInternalServer,
	ErrClient:         ErrStatusClient,
	ErrNotLoggedIn:    ErrStatusNotLoggedIn,
	ErrUnauthorized:   ErrStatusNoPermission,
	ErrNotFound:       ErrStatusNotFound,
	ErrConflict:       ErrStatusConflict,

	ErrCartEmpty:            ErrStatusClient,
	ErrNoItemsSelected:      ErrStatusClient,
	ErrItemsNotInCart:       ErrStatusClient,
	ErrMissingShippingInfo:  ErrStatusClient,
	ErrMissingRecipientInfo: ErrStatusClient,
	ErrAddressNotOwned:      ErrStatusClient,
	ErrBookUnavailable:      ErrStatusNotFound,
	ErrInsufficientStock:    ErrStatusClient,
	ErrInvalidPaymentMethod: ErrStatusClient,

	ErrOrderNotFound:       ErrStatusNotFound,
	ErrOrderNotOwned:       ErrStatusNoPermission,
	ErrPaymentNotFound:     ErrStatusClient,
	ErrOrderNotOnline:      ErrStatusClient,
	ErrOrderNotPending:     ErrStatusClient,
	ErrOrderExpired:        ErrStatusClient,
	ErrAmountMismatch:      ErrStatusClient,
	ErrAlreadyPaid:         ErrStatusClient,
	ErrOrderNotCancellable: ErrStatusClient,
	ErrInvalidOrderStatus:  ErrStatusClient,
	ErrInvalidTransition:   ErrStatusClient,
	ErrRefundUnpaid:        ErrStatusClient,
	ErrRefundFailed:        ErrStatusClient,
	ErrUserEmailNotFound:   ErrStatusNotFound,
}

func GetErrorStatusCode(err error) int {
	errStatusCode, ok := errorMap[err]
	if !ok {
		errStatusCode = errorMap[ErrInternalServer]
	}
	return errStatusCode
}
