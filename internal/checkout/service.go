package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/printpoint/storefront/internal/cart"
	"github.com/printpoint/storefront/internal/catalog"
	"github.com/printpoint/storefront/internal/db"
	"github.com/printpoint/storefront/internal/order"
)

// EventPublisher is notified after a successful checkout. Publishing is
// best-effort and never part of the order transaction.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order) error
}

// txRunner runs fn inside one atomic unit of work.
type txRunner func(ctx context.Context, fn func(tx *sql.Tx) error) error

// Service turns a session cart into a durable order with line items,
// decrementing catalog stock in the same transaction.
type Service struct {
	runTx    txRunner
	products catalog.Repository
	orders   order.Repository
	pub      EventPublisher // may be nil
	logger   *log.Logger
}

func NewService(conn *sql.DB, products catalog.Repository, orders order.Repository, pub EventPublisher, logger *log.Logger) *Service {
	return &Service{
		runTx: func(ctx context.Context, fn func(tx *sql.Tx) error) error {
			return db.WithinTx(ctx, conn, fn)
		},
		products: products,
		orders:   orders,
		pub:      pub,
		logger:   logger,
	}
}

// PlaceOrder validates the cart against the catalog, computes totals from the
// cart's price snapshots, and persists the order plus stock decrements in one
// transaction. On any failure nothing persists and the cart is left for the
// caller to retry; on success the caller is expected to clear the cart.
//
// userID may be empty (guest checkout).
func (s *Service) PlaceOrder(ctx context.Context, c *cart.Cart, shipping order.ShippingDetails, userID, notes string) (*order.Order, error) {
	if c == nil || c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := shipping.Validate(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	// All-or-nothing precondition check: one bad line rejects the checkout.
	for _, l := range c.Lines {
		p, ok := products[l.ProductID]
		if !ok || !p.Available() {
			return nil, ErrProductUnavailable
		}
		if l.Quantity > p.StockQuantity {
			return nil, &InsufficientStockError{
				ProductName: p.Name,
				Requested:   l.Quantity,
				Available:   p.StockQuantity,
			}
		}
	}

	totals := ComputeTotals(c.Lines)

	o := &order.Order{
		Number:        order.NewNumber(),
		UserID:        userID,
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentPending,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		ShippingCost:  totals.ShippingCost,
		Total:         totals.Total,
		Shipping:      shipping,
		Notes:         notes,
		CreatedAt:     time.Now().UTC(),
	}
	for _, l := range c.Lines {
		p := products[l.ProductID]
		o.Items = append(o.Items, order.Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			ProductSKU:  p.SKU,
			Quantity:    l.Quantity,
			Price:       l.UnitPrice,
			Subtotal:    l.Subtotal(),
		})
	}

	err = s.runTx(ctx, func(tx *sql.Tx) error {
		if err := s.orders.Create(ctx, tx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for _, l := range c.Lines {
			if err := s.products.DecrementStock(ctx, tx, l.ProductID, l.Quantity); err != nil {
				if errors.Is(err, catalog.ErrInsufficientStock) {
					// A concurrent checkout won the remaining stock between
					// the precondition read and this write.
					p := products[l.ProductID]
					return &InsufficientStockError{
						ProductName: p.Name,
						Requested:   l.Quantity,
						Available:   p.StockQuantity,
					}
				}
				return fmt.Errorf("decrement stock for %s: %w", l.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		var stockErr *InsufficientStockError
		if !errors.As(err, &stockErr) {
			s.logger.Printf("checkout failed for session %s: %v", c.SessionID, err)
		}
		return nil, err
	}

	s.logger.Printf("placed order %s (%s) for session %s, total %s", o.Number, o.ID, c.SessionID, o.Total)

	if s.pub != nil {
		if err := s.pub.PublishOrderCreated(ctx, o); err != nil {
			s.logger.Printf("publish OrderCreated for %s: %v", o.ID, err)
		}
	}

	return o, nil
}
