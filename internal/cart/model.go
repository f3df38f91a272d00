package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Line is one product in the cart. UnitPrice is snapshotted when the line is
// added; checkout honors it over the live catalog price.
type Line struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the session-scoped cart. Lines keep their insertion order.
type Cart struct {
	SessionID string    `json:"sessionId"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, UpdatedAt: time.Now().UTC()}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// AddLine merges the quantity into an existing line for the product, updating
// its price snapshot, or appends a new line.
func (c *Cart) AddLine(productID string, quantity int, unitPrice decimal.Decimal) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += quantity
			c.Lines[i].UnitPrice = unitPrice
			c.touch()
			return nil
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice})
	c.touch()
	return nil
}

// SetQuantity replaces the quantity of an existing line. It reports whether
// the product was in the cart.
func (c *Cart) SetQuantity(productID string, quantity int) (bool, error) {
	if quantity < 1 {
		return false, ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = quantity
			c.touch()
			return true, nil
		}
	}
	return false, nil
}

// RemoveLine deletes the product's line, keeping the order of the rest.
func (c *Cart) RemoveLine(productID string) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return true
		}
	}
	return false
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
