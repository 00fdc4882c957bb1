package staff

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/staff"
)

const staffColumns = "id, name, role, email, phone, schedule"

// SQLiteStore implements the staff Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new staff store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanStaff maps a row with staffColumns into a domain.StaffMember.
func scanStaff(row rowScanner) (domain.StaffMember, error) {
	var entity domain.StaffMember
	var email, phone sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Role,
		&email,
		&phone,
		&entity.Schedule,
	)
	if err != nil {
		return domain.StaffMember{}, err
	}
	entity.Email = email.String
	entity.Phone = phone.String
	return entity, nil
}

// GetByID retrieves a StaffMember by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.StaffMember, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE id = ?"

	entity, err := scanStaff(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return domain.StaffMember{}, fmt.Errorf("staff member not found: %w", err)
	}
	return entity, err
}

// Save persists a StaffMember to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.StaffMember) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "name", "role", "email", "phone", "schedule"}
	placeholders := []string{"?", "?", "?", "?", "?", "?"}
	updates := []string{"name=excluded.name", "role=excluded.role", "email=excluded.email", "phone=excluded.phone", "schedule=excluded.schedule"}

	query := fmt.Sprintf(
		"INSERT INTO staff (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Role,
		storage.NullString(entity.Email),
		storage.NullString(entity.Phone),
		entity.Schedule,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a StaffMember from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM staff WHERE id = ?", id)
	return err
}

// List retrieves a list of StaffMembers based on the filter, ordered by name.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.StaffMember, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE 1=1"
	var args []any
	if filter.Role != "" {
		query += " AND role = ?"
		args = append(args, filter.Role)
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

	var results []domain.StaffMember
	for rows.Next() {
		entity, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
