package plan

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/plan"
)

const planColumns = "id, name, price, duration_days, active"

// SQLiteStore implements the plan Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new plan store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Plan by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Plan, error) {
	query := "SELECT " + planColumns + " FROM plan WHERE id = ?"

	row := s.db.QueryRowContext(ctx, query, id)

	var entity domain.Plan
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Price,
		&entity.DurationDays,
		&entity.Active,
	)
	if err == sql.ErrNoRows {
		return domain.Plan{}, fmt.Errorf("plan not found: %w", err)
	}
	return entity, err
}

// Save persists a Plan to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Plan) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "name", "price", "duration_days", "active"}
	placeholders := []string{"?", "?", "?", "?", "?"}
	updates := []string{"name=excluded.name", "price=excluded.price", "duration_days=excluded.duration_days", "active=excluded.active"}

	query := fmt.Sprintf(
		"INSERT INTO plan (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Price,
		entity.DurationDays,
		entity.Active,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Plan from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM plan WHERE id = ?", id)
	return err
}

// List retrieves a list of Plans based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities ordered by price
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Plan, error) {
	query := "SELECT " + planColumns + " FROM plan"
	var args []any
	if filter.OnlyActive {
		query += " WHERE active = 1"
	}
	query += " ORDER BY price ASC"

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

	var results []domain.Plan
	for rows.Next() {
		var entity domain.Plan
		if err := rows.Scan(
			&entity.ID,
			&entity.Name,
			&entity.Price,
			&entity.DurationDays,
			&entity.Active,
		); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListActive retrieves all active plans ordered by price.
// PRE: none
// POST: Returns active plans
func (s *SQLiteStore) ListActive(ctx context.Context) ([]domain.Plan, error) {
	return s.List(ctx, ListFilter{OnlyActive: true})
}
