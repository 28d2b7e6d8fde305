package dto

import (
	"regexp"
	"strings"

	"github.com/bookify/order-service/internal/domain"
	"github.com/bookify/order-service/pkg/errs"
)

type OrderItemRequest struct {
	BookID   string `json:"book_id"`
	Quantity int64  `json:"quantity"`
}

type ShippingAddressRequest struct {
	Address  string `json:"address"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	City     string `json:"city"`
}

type OrderRequest struct {
	UserID          string
	UserToken       string
	PhoneNumber     string                  `json:"phone_number"`
	FullName        string                  `json:"full_name"`
	PaymentMethod   domain.PaymentMethod    `json:"payment_method"`
	SavedAddressID  string                  `json:"saved_address_id"`
	ShippingAddress *ShippingAddressRequest `json:"shipping_address"`
	Items           []OrderItemRequest      `json:"items"`
	Note            string                  `json:"note"`
	UserEmail       string                  `json:"user_email"`
}

var phonePattern = regexp.MustCompile(`^[0-9]{10,11}$`)

// Validate applies the request-shape rules; business preconditions (cart
// contents, stock) are checked by the service against authoritative data.
func (r OrderRequest) Validate() error {
	if !r.PaymentMethod.Valid() {
		return errs.ErrInvalidPaymentMethod
	}

	if len(r.Items) == 0 {
		return errs.ErrNoItemsSelected
	}
	for _, item := range r.Items {
		if item.BookID == "" || item.Quantity < 1 {
			return errs.ErrNoItemsSelected
		}
	}

	if r.SavedAddressID == "" {
		if r.ShippingAddress == nil ||
			strings.TrimSpace(r.ShippingAddress.Address) == "" ||
			strings.TrimSpace(r.ShippingAddress.Ward) == "" ||
			strings.TrimSpace(r.ShippingAddress.District) == "" ||
			strings.TrimSpace(r.ShippingAddress.City) == "" {
			return errs.ErrMissingShippingInfo
		}

		if !phonePattern.MatchString(r.PhoneNumber) {
			return errs.ErrMissingRecipientInfo
		}
		if nameLen := len(strings.TrimSpace(r.FullName)); nameLen < 2 || nameLen > 50 {
			return errs.ErrMissingRecipientInfo
		}
	}

	return nil
}

type PreviewOrderRequest struct {
	UserID string
	Items  []OrderItemRequest `json:"items"`
}

type PaymentURLRequest struct {
	UserID    string
	UserEmail string
	IPAddr    string
	OrderID   int64   `json:"order_id"`
	PaymentID int64   `json:"payment_id"`
	Amount    float64 `json:"amount"`
	BankCode  string  `json:"bank_code"`
	Language  string  `json:"language"`
}

type UpdateOrderStatusRequest struct {
	NewStatus domain.OrderStatus `json:"new_status"`
}
