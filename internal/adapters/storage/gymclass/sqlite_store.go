package gymclass

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/gymclass"
)

const classColumns = "id, name, instructor, weekday, start_time, end_time, capacity, active"

// SQLiteStore implements the gym class Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new gym class store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Class by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Class, error) {
	query := "SELECT " + classColumns + " FROM gym_class WHERE id = ?"

	row := s.db.QueryRowContext(ctx, query, id)

	var entity domain.Class
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Instructor,
		&entity.Weekday,
		&entity.StartTime,
		&entity.EndTime,
		&entity.Capacity,
		&entity.Active,
	)
	if err == sql.ErrNoRows {
		return domain.Class{}, fmt.Errorf("class not found: %w", err)
	}
	return entity, err
}

// Save persists a Class to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Class) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "name", "instructor", "weekday", "start_time", "end_time", "capacity", "active"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?", "?"}
	updates := []string{"name=excluded.name", "instructor=excluded.instructor", "weekday=excluded.weekday", "start_time=excluded.start_time", "end_time=excluded.end_time", "capacity=excluded.capacity", "active=excluded.active"}

	query := fmt.Sprintf(
		"INSERT INTO gym_class (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Instructor,
		entity.Weekday,
		entity.StartTime,
		entity.EndTime,
		entity.Capacity,
		entity.Active,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Class from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM gym_class WHERE id = ?", id)
	return err
}

// List retrieves a list of Classes based on the filter, ordered by weekday and start time.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Class, error) {
	query := "SELECT " + classColumns + " FROM gym_class WHERE 1=1"
	var args []any
	if filter.Weekday != "" {
		query += " AND weekday = ?"
		args = append(args, filter.Weekday)
	}
	if filter.OnlyActive {
		query += " AND active = 1"
	}
	query += " ORDER BY weekday, start_time"

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

	var results []domain.Class
	for rows.Next() {
		var entity domain.Class
		if err := rows.Scan(
			&entity.ID,
			&entity.Name,
			&entity.Instructor,
			&entity.Weekday,
			&entity.StartTime,
			&entity.EndTime,
			&entity.Capacity,
			&entity.Active,
		); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
