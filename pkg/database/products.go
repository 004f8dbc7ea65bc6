package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/lib/pq"

	"gitlab.connectwisedev.com/catalog-service/models"
)

var (
	// ErrNotFound means no product row matched the identifier.
	ErrNotFound = errors.New("product not found")
	// ErrInsufficientStock means a stock delta would take the counter below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStockOutOfRange means the delta or the resulting stock does not fit the
	// INTEGER stock column.
	ErrStockOutOfRange = errors.New("stock out of range")
)

// numericValueOutOfRange is the SQLSTATE PostgreSQL reports on integer overflow.
const numericValueOutOfRange = "22003"

const productColumns = `id, name, description, price, stock, category, created_at`

// ProductStore issues parameterized product queries against PostgreSQL.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a store over the client's pool.
func NewProductStore(c *DBClient) *ProductStore {
	return &ProductStore{db: c.GetDB()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p         models.Product
		desc      sql.NullString // Use sql.NullString for nullable columns
		createdAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Name, &desc, &p.Price, &p.Stock, &p.Category, &createdAt); err != nil {
		return models.Product{}, err
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	if createdAt.Valid {
		p.CreatedAt = models.FormatTimestamp(createdAt.Time)
	}
	return p, nil
}

func (s *ProductStore) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return products, nil
}

// ListProducts returns every product ordered by id.
func (s *ProductStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

// ListProductsByCategory returns the products in category ordered by id.
func (s *ProductStore) ListProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	products, err := s.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE category = $1 ORDER BY id`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query products in category %q: %w", category, err)
	}
	return products, nil
}

// GetProduct returns the product with id, or ErrNotFound.
func (s *ProductStore) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to query product %d: %w", id, err)
	}
	return p, nil
}

// CreateProduct inserts np and returns the stored row with its id and created_at.
func (s *ProductStore) CreateProduct(ctx context.Context, np models.NewProduct) (models.Product, error) {
	if np.Price == nil {
		return models.Product{}, fmt.Errorf("create product: price is required")
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, stock, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		np.Name, np.Description, *np.Price, np.StockValue(), np.CategoryValue(),
	)
	p, err := scanProduct(row)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product %q: %w", np.Name, err)
	}
	return p, nil
}

// AdjustStock adds delta to the product's stock in one statement.
// The floor check lives in the WHERE clause so concurrent adjustments cannot
// race the counter below zero.
func (s *ProductStore) AdjustStock(ctx context.Context, id, delta int64) (models.Product, error) {
	if delta < math.MinInt32 || delta > math.MaxInt32 {
		return models.Product{}, ErrStockOutOfRange
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE products SET stock = stock + $1
		WHERE id = $2 AND stock + $1 >= 0
		RETURNING `+productColumns,
		delta, id,
	)
	p, err := scanProduct(row)
	if err == nil {
		return p, nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == numericValueOutOfRange {
		return models.Product{}, ErrStockOutOfRange
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, fmt.Errorf("failed to update stock for product %d: %w", id, err)
	}

	exists, err := s.ProductExists(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if !exists {
		return models.Product{}, ErrNotFound
	}
	return models.Product{}, ErrInsufficientStock
}

// ProductExists reports whether a row with id exists.
func (s *ProductStore) ProductExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product %d: %w", id, err)
	}
	return exists, nil
}

// Stats aggregates catalog totals.
func (s *ProductStore) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(stock), 0), COUNT(DISTINCT category)
		FROM products`).Scan(&st.TotalProducts, &st.TotalStock, &st.TotalCategories)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}
	return st, nil
}

// Ping checks the connection.
func (s *ProductStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
