package order

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID          string          `json:"-"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	ProductSKU  string          `json:"productSku"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ShippingDetails is the address snapshot copied onto the order at checkout.
// Later address changes never touch placed orders.
type ShippingDetails struct {
	Name       string `json:"shippingName"`
	Email      string `json:"shippingEmail"`
	Phone      string `json:"shippingPhone"`
	Address    string `json:"shippingAddress"`
	City       string `json:"shippingCity"`
	PostalCode string `json:"shippingPostalCode"`
	Country    string `json:"shippingCountry"`
}

// DefaultCountry is applied when the checkout form omits the country.
const DefaultCountry = "Germany"

// ErrInvalidShipping wraps every shipping validation failure so callers can
// tell form errors apart from persistence failures.
var ErrInvalidShipping = errors.New("invalid shipping details")

func (s *ShippingDetails) Validate() error {
	if strings.TrimSpace(s.Country) == "" {
		s.Country = DefaultCountry
	}

	switch {
	case strings.TrimSpace(s.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidShipping)
	case strings.TrimSpace(s.Email) == "":
		return fmt.Errorf("%w: email is required", ErrInvalidShipping)
	case strings.TrimSpace(s.Phone) == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidShipping)
	case strings.TrimSpace(s.Address) == "":
		return fmt.Errorf("%w: address is required", ErrInvalidShipping)
	case strings.TrimSpace(s.City) == "":
		return fmt.Errorf("%w: city is required", ErrInvalidShipping)
	}

	if _, err := mail.ParseAddress(s.Email); err != nil {
		return fmt.Errorf("%w: email is invalid", ErrInvalidShipping)
	}
	return nil
}

type Order struct {
	ID            string          `json:"orderId"`
	Number        string          `json:"orderNumber"`
	UserID        string          `json:"userId,omitempty"` // empty for guest checkout
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	ShippingCost  decimal.Decimal `json:"shippingCost"`
	Total         decimal.Decimal `json:"total"`
	Shipping      ShippingDetails `json:"shipping"`
	Notes         string          `json:"notes,omitempty"`
	Items         []Item          `json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
}
