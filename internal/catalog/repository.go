package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound = errors.New("product not found")

	// ErrInsufficientStock is returned by DecrementStock when the conditional
	// update matches no row: either the product is gone or a concurrent
	// checkout took the remaining stock first.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Execer matches the methods shared by *sql.DB and *sql.Tx that write
// operations need, so repository calls can join a caller-owned transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID string) (*Product, error)
	GetByIDs(ctx context.Context, productIDs []string) (map[string]*Product, error)
	ListActive(ctx context.Context) ([]Product, error)
	SetStock(ctx context.Context, productID string, quantity int) error
	DecrementStock(ctx context.Context, ex Execer, productID string, quantity int) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

const productColumns = `id, name, sku, price, stock_quantity, in_stock, is_active, created_at, updated_at`

func (r *repo) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.InStock = p.StockQuantity > 0

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, sku, price, stock_quantity, in_stock, is_active, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.SKU, p.Price, p.StockQuantity, p.InStock, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *repo) GetByID(ctx context.Context, productID string) (*Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`,
		productID,
	).Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.StockQuantity, &p.InStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}
	return &p, nil
}

func (r *repo) GetByIDs(ctx context.Context, productIDs []string) (map[string]*Product, error) {
	if len(productIDs) == 0 {
		return map[string]*Product{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`,
		pq.Array(productIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*Product, len(productIDs))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.StockQuantity, &p.InStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *repo) ListActive(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_active ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.StockQuantity, &p.InStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return products, nil
}

// SetStock overwrites the stock quantity and resyncs in_stock in the same
// statement; the flag must never disagree with the quantity.
func (r *repo) SetStock(ctx context.Context, productID string, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products
         SET stock_quantity = $2, in_stock = $2 > 0, updated_at = NOW()
         WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock takes quantity units off the product's stock, guarded so the
// quantity can never go negative even under concurrent checkouts. The in_stock
// flag is resynced in the same statement.
func (r *repo) DecrementStock(ctx context.Context, ex Execer, productID string, quantity int) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE products
         SET stock_quantity = stock_quantity - $2,
             in_stock = stock_quantity - $2 > 0,
             updated_at = NOW()
         WHERE id = $1 AND stock_quantity >= $2`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}
