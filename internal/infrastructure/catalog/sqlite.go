package catalog

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tiendachat/backend/internal/domain"
)

// Rows come back in rowid order so "first N" truncation stays stable
// across requests.
const selectProductsQuery = `
	SELECT name,
	       price,
	       COALESCE(category, '') AS category,
	       COALESCE(description, '') AS description,
	       COALESCE(stock, 0) AS stock
	FROM products
	ORDER BY rowid`

// SQLiteLoader reads the product catalog from a sqlite database.
type SQLiteLoader struct {
	db *sqlx.DB
}

// NewSQLiteLoader opens the database at the given DSN
func NewSQLiteLoader(dsn string) (*SQLiteLoader, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}
	return &SQLiteLoader{db: db}, nil
}

// Load returns the products in insertion order.
func (l *SQLiteLoader) Load(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := l.db.SelectContext(ctx, &products, selectProductsQuery); err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	return applyDefaults(products), nil
}

// Close releases the database handle.
func (l *SQLiteLoader) Close() error {
	return l.db.Close()
}
