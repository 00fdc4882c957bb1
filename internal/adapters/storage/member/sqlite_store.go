package member

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/member"
)

const memberColumns = "id, name, document, email, phone, plan_id, plan_name_hint, enrollment_date, expiration_date, status_hint, reminder_sent_for, archived"

// SQLiteStore implements the member Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new member store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanMember maps a row with memberColumns into a domain.Member.
func scanMember(row rowScanner) (domain.Member, error) {
	var entity domain.Member
	var document, email, phone, planID, enrollment, expiration, reminderFor sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&document,
		&email,
		&phone,
		&planID,
		&entity.PlanNameHint,
		&enrollment,
		&expiration,
		&entity.StatusHint,
		&reminderFor,
		&entity.Archived,
	)
	if err != nil {
		return domain.Member{}, err
	}
	entity.Document = document.String
	entity.Email = email.String
	entity.Phone = phone.String
	entity.PlanID = planID.String
	if enrollment.Valid && enrollment.String != "" {
		entity.EnrollmentDate, err = storage.ParseStoredTime(enrollment.String)
		if err != nil {
			return domain.Member{}, fmt.Errorf("failed to parse enrollment_date: %w", err)
		}
	}
	if expiration.Valid && expiration.String != "" {
		entity.ExpirationDate, err = storage.ParseStoredTime(expiration.String)
		if err != nil {
			return domain.Member{}, fmt.Errorf("failed to parse expiration_date: %w", err)
		}
	}
	if reminderFor.Valid && reminderFor.String != "" {
		entity.ReminderSentFor, err = storage.ParseStoredTime(reminderFor.String)
		if err != nil {
			return domain.Member{}, fmt.Errorf("failed to parse reminder_sent_for: %w", err)
		}
	}
	return entity, nil
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	query := "SELECT " + memberColumns + " FROM member WHERE id = ?"

	entity, err := scanMember(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return domain.Member{}, fmt.Errorf("member not found: %w", err)
	}
	return entity, err
}

// GetByDocument retrieves a Member by identity document.
// PRE: document is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByDocument(ctx context.Context, document string) (domain.Member, error) {
	query := "SELECT " + memberColumns + " FROM member WHERE document = ?"

	entity, err := scanMember(s.db.QueryRowContext(ctx, query, document))
	if err == sql.ErrNoRows {
		return domain.Member{}, fmt.Errorf("member not found: %w", err)
	}
	return entity, err
}

// Save persists a Member to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "name", "document", "email", "phone", "plan_id", "plan_name_hint", "enrollment_date", "expiration_date", "status_hint", "reminder_sent_for", "archived"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?"}
	updates := []string{"name=excluded.name", "document=excluded.document", "email=excluded.email", "phone=excluded.phone", "plan_id=excluded.plan_id", "plan_name_hint=excluded.plan_name_hint", "enrollment_date=excluded.enrollment_date", "expiration_date=excluded.expiration_date", "status_hint=excluded.status_hint", "reminder_sent_for=excluded.reminder_sent_for", "archived=excluded.archived"}

	query := fmt.Sprintf(
		"INSERT INTO member (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		storage.NullString(entity.Document),
		storage.NullString(entity.Email),
		storage.NullString(entity.Phone),
		storage.NullString(entity.PlanID),
		entity.PlanNameHint,
		storage.NullDate(entity.EnrollmentDate),
		storage.NullDate(entity.ExpirationDate),
		entity.StatusHint,
		storage.NullDate(entity.ReminderSentFor),
		entity.Archived,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Member from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id)
	return err
}

// SearchByName finds members matching the query against name, document or
// email (case-insensitive LIKE). Archived members are excluded.
// PRE: query is non-empty, limit > 0
// POST: Returns matching members ordered by name
func (s *SQLiteStore) SearchByName(ctx context.Context, query string, limit int) ([]domain.Member, error) {
	q := "SELECT " + memberColumns + " FROM member WHERE (name LIKE ? OR document LIKE ? OR email LIKE ?) AND archived = 0 ORDER BY name LIMIT ?"
	term := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, q, term, term, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// listWhereClause builds the WHERE clause and args for List/Count queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if !filter.IncludeArchived {
		where += " AND archived = 0"
	}
	if filter.PlanID != "" {
		where += " AND plan_id = ?"
		args = append(args, filter.PlanID)
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR document LIKE ? OR email LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
	}
	return where, args
}

// sortClause returns a safe ORDER BY clause. Only allowed columns are accepted.
func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"name": "name", "email": "email",
		"enrollment_date": "enrollment_date", "expiration_date": "expiration_date",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY name ASC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// Count returns the total number of members matching the filter.
// PRE: filter has valid parameters
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member"+where, args...).Scan(&count)
	return count, err
}

// List retrieves a list of Members based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + memberColumns + " FROM member" + where
	query += sortClause(filter)

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

	var results []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
