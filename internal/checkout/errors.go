package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart rejects checkout before any transaction is opened.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrProductUnavailable covers inactive and out-of-stock products.
	// Deliberately generic: the storefront shows one message for the whole
	// cart, without per-item detail.
	ErrProductUnavailable = errors.New("one or more products are unavailable")
)

// InsufficientStockError names the first product whose requested quantity
// exceeds what is on hand.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductName)
}
