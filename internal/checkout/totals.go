package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/printpoint/storefront/internal/cart"
)

var (
	// TaxRate is a flat 19% of the subtotal.
	TaxRate = decimal.RequireFromString("0.19")

	// FreeShippingThreshold waives shipping when the subtotal is strictly
	// greater; a subtotal of exactly 500.00 still pays the fee.
	FreeShippingThreshold = decimal.NewFromInt(500)

	ShippingFee = decimal.NewFromInt(50)
)

type Totals struct {
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
}

// ComputeTotals prices the cart from the session-snapshotted unit prices.
// Tax is rounded to cents; subtotal already is, since every unit price carries
// two decimals.
func ComputeTotals(lines []cart.Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}

	tax := subtotal.Mul(TaxRate).Round(2)

	shipping := ShippingFee
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal:     subtotal,
		Tax:          tax,
		ShippingCost: shipping,
		Total:        subtotal.Add(tax).Add(shipping),
	}
}
