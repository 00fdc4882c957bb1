package product

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/product"
)

const productColumns = "id, name, category, stock, price"

// SQLiteStore implements the product Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new product store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Product by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Product, error) {
	query := "SELECT " + productColumns + " FROM product WHERE id = ?"

	row := s.db.QueryRowContext(ctx, query, id)

	var entity domain.Product
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Category,
		&entity.Stock,
		&entity.Price,
	)
	if err == sql.ErrNoRows {
		return domain.Product{}, fmt.Errorf("product not found: %w", err)
	}
	return entity, err
}

// Save persists a Product to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "name", "category", "stock", "price"}
	placeholders := []string{"?", "?", "?", "?", "?"}
	updates := []string{"name=excluded.name", "category=excluded.category", "stock=excluded.stock", "price=excluded.price"}

	query := fmt.Sprintf(
		"INSERT INTO product (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Category,
		entity.Stock,
		entity.Price,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Product from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM product WHERE id = ?", id)
	return err
}

// List retrieves a list of Products based on the filter, ordered by name.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	query := "SELECT " + productColumns + " FROM product WHERE 1=1"
	var args []any
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.LowStockOnly {
		query += " AND stock < ?"
		args = append(args, domain.LowStockThreshold)
	}
	query += " ORDER BY name"

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Product
	for rows.Next() {
		var entity domain.Product
		if err := rows.Scan(
			&entity.ID,
			&entity.Name,
			&entity.Category,
			&entity.Stock,
			&entity.Price,
		); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// AdjustStock applies a delta to a product's stock level.
// PRE: id is non-empty
// POST: Stock is adjusted; fails if the result would go negative
func (s *SQLiteStore) AdjustStock(ctx context.Context, id string, delta int) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE product SET stock = stock + ? WHERE id = ? AND stock + ? >= 0",
		delta, id, delta)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("stock adjustment rejected for product %s", id)
	}
	return nil
}
