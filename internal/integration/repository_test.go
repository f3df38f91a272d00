package integration

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/printpoint/storefront/internal/cart"
	"github.com/printpoint/storefront/internal/catalog"
	"github.com/printpoint/storefront/internal/checkout"
	"github.com/printpoint/storefront/internal/db"
	"github.com/printpoint/storefront/internal/order"
	"github.com/printpoint/storefront/internal/testutil"
)

func seedProduct(ctx context.Context, t *testing.T, repo catalog.Repository, name, sku, price string, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:          name,
		SKU:           sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, repo.Create(ctx, p))
	return p
}

func shippingFixture() order.ShippingDetails {
	return order.ShippingDetails{
		Name:    "Mara Weiss",
		Email:   "mara@example.com",
		Phone:   "+49 30 1234567",
		Address: "Hauptstr. 1",
		City:    "Berlin",
		Country: "Germany",
	}
}

func TestRepositoriesAgainstPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	conn, cleanup := testutil.StartPostgres(ctx, t)
	defer cleanup()

	products := catalog.NewRepository(conn)
	orders := order.NewRepository(conn)

	t.Run("decrement stock syncs in_stock", func(t *testing.T) {
		p := seedProduct(ctx, t, products, "Sticker", "STK-01", "1.50", 1)

		require.NoError(t, db.WithinTx(ctx, conn, func(tx *sql.Tx) error {
			return products.DecrementStock(ctx, tx, p.ID, 1)
		}))

		got, err := products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, 0, got.StockQuantity)
		require.False(t, got.InStock)
	})

	t.Run("decrement never oversells", func(t *testing.T) {
		p := seedProduct(ctx, t, products, "Notebook", "NTB-01", "4.00", 2)

		err := db.WithinTx(ctx, conn, func(tx *sql.Tx) error {
			return products.DecrementStock(ctx, tx, p.ID, 3)
		})
		require.ErrorIs(t, err, catalog.ErrInsufficientStock)

		got, err := products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, 2, got.StockQuantity)
		require.True(t, got.InStock)
	})

	t.Run("order roundtrip", func(t *testing.T) {
		o := &order.Order{
			Number:        order.NewNumber(),
			UserID:        "5a2e8b1c-70f3-4f62-9d35-08c1f3a3b901",
			Status:        order.StatusPending,
			PaymentStatus: order.PaymentPending,
			Subtotal:      decimal.RequireFromString("27.00"),
			Tax:           decimal.RequireFromString("5.13"),
			ShippingCost:  decimal.NewFromInt(50),
			Total:         decimal.RequireFromString("82.13"),
			Shipping:      shippingFixture(),
			Notes:         "leave at door",
			Items: []order.Item{
				{ProductID: "11f0c7a2-51da-4f7e-b6cf-0a6d7f9b1e40", ProductName: "Mug", ProductSKU: "MUG-01",
					Quantity: 2, Price: decimal.RequireFromString("12.50"), Subtotal: decimal.RequireFromString("25.00")},
				{ProductID: "2b3e1d0c-9f8a-4b7c-8d6e-5f4a3b2c1d0e", ProductName: "Pen", ProductSKU: "PEN-01",
					Quantity: 1, Price: decimal.RequireFromString("2.00"), Subtotal: decimal.RequireFromString("2.00")},
			},
		}

		require.NoError(t, db.WithinTx(ctx, conn, func(tx *sql.Tx) error {
			return orders.Create(ctx, tx, o)
		}))

		got, err := orders.GetByID(ctx, o.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, o.Number, got.Number)
		require.Equal(t, o.UserID, got.UserID)
		require.Len(t, got.Items, 2)
		require.True(t, got.Total.Equal(o.Total))
		require.True(t, got.Items[0].Subtotal.Add(got.Items[1].Subtotal).Equal(got.Subtotal))

		listed, err := orders.ListByUser(ctx, o.UserID)
		require.NoError(t, err)
		require.Len(t, listed, 1)

		require.NoError(t, orders.UpdateStatus(ctx, o.ID, order.StatusProcessing))
		err = orders.UpdateStatus(ctx, o.ID, order.StatusDelivered)
		require.ErrorIs(t, err, order.ErrInvalidTransition)
	})

	t.Run("guest order has null user id", func(t *testing.T) {
		o := &order.Order{
			Number:        order.NewNumber(),
			Status:        order.StatusPending,
			PaymentStatus: order.PaymentPending,
			Subtotal:      decimal.RequireFromString("10.00"),
			Tax:           decimal.RequireFromString("1.90"),
			ShippingCost:  decimal.NewFromInt(50),
			Total:         decimal.RequireFromString("61.90"),
			Shipping:      shippingFixture(),
		}
		require.NoError(t, db.WithinTx(ctx, conn, func(tx *sql.Tx) error {
			return orders.Create(ctx, tx, o)
		}))

		got, err := orders.GetByID(ctx, o.ID)
		require.NoError(t, err)
		require.Empty(t, got.UserID)
	})
}

// failingCatalog delegates to the real repository but fails the decrement for
// one product, simulating a storage fault halfway through the checkout writes.
type failingCatalog struct {
	catalog.Repository
	failFor string
}

func (f *failingCatalog) DecrementStock(ctx context.Context, ex catalog.Execer, productID string, quantity int) error {
	if productID == f.failFor {
		return errors.New("simulated constraint violation")
	}
	return f.Repository.DecrementStock(ctx, ex, productID, quantity)
}

func TestCheckoutAtomicityAgainstPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	conn, cleanup := testutil.StartPostgres(ctx, t)
	defer cleanup()

	products := catalog.NewRepository(conn)
	orders := order.NewRepository(conn)

	mug := seedProduct(ctx, t, products, "Mug", "MUG-11", "12.50", 5)
	pen := seedProduct(ctx, t, products, "Pen", "PEN-11", "2.00", 5)

	// the first line's decrement succeeds inside the tx, then the second fails
	faulty := &failingCatalog{Repository: products, failFor: pen.ID}
	logger := log.New(io.Discard, "", log.LstdFlags)
	svc := checkout.NewService(conn, faulty, orders, nil, logger)

	c := cart.New("sess-atomic")
	require.NoError(t, c.AddLine(mug.ID, 2, mug.Price))
	require.NoError(t, c.AddLine(pen.ID, 1, pen.Price))

	_, err := svc.PlaceOrder(ctx, c, shippingFixture(), "", "")
	require.Error(t, err)

	// full rollback: no orders, no items, stock untouched for both lines
	var orderCount int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orderCount))
	require.Zero(t, orderCount)

	var itemCount int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_items`).Scan(&itemCount))
	require.Zero(t, itemCount)

	gotMug, err := products.GetByID(ctx, mug.ID)
	require.NoError(t, err)
	require.Equal(t, 5, gotMug.StockQuantity)

	gotPen, err := products.GetByID(ctx, pen.ID)
	require.NoError(t, err)
	require.Equal(t, 5, gotPen.StockQuantity)
}
