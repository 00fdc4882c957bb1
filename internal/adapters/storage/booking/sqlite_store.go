package booking

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/booking"
)

const bookingColumns = "id, member_id, class_id, date, status, created_at"

// SQLiteStore implements the booking Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new booking store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanBooking maps a row with bookingColumns into a domain.Booking.
func scanBooking(row rowScanner) (domain.Booking, error) {
	var entity domain.Booking
	var dateStr, createdStr string
	err := row.Scan(
		&entity.ID,
		&entity.MemberID,
		&entity.ClassID,
		&dateStr,
		&entity.Status,
		&createdStr,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	entity.Date, err = storage.ParseStoredTime(dateStr)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("failed to parse date: %w", err)
	}
	entity.CreatedAt, err = storage.ParseStoredTime(createdStr)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}

// GetByID retrieves a Booking by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM booking WHERE id = ?"

	entity, err := scanBooking(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return domain.Booking{}, fmt.Errorf("booking not found: %w", err)
	}
	return entity, err
}

// Save persists a Booking to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Booking) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "member_id", "class_id", "date", "status", "created_at"}
	placeholders := []string{"?", "?", "?", "?", "?", "?"}
	updates := []string{"member_id=excluded.member_id", "class_id=excluded.class_id", "date=excluded.date", "status=excluded.status", "created_at=excluded.created_at"}

	query := fmt.Sprintf(
		"INSERT INTO booking (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.MemberID,
		entity.ClassID,
		entity.Date.Format(storage.DateLayout),
		entity.Status,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Booking from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM booking WHERE id = ?", id)
	return err
}

// List retrieves a list of Bookings based on the filter, newest first.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM booking WHERE 1=1"
	var args []any
	if filter.MemberID != "" {
		query += " AND member_id = ?"
		args = append(args, filter.MemberID)
	}
	if filter.ClassID != "" {
		query += " AND class_id = ?"
		args = append(args, filter.ClassID)
	}
	if filter.Date != "" {
		query += " AND date = ?"
		args = append(args, filter.Date)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY date DESC, created_at DESC"

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

	var results []domain.Booking
	for rows.Next() {
		entity, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// CountActiveByClassAndDate returns the number of bookings occupying a seat
// for a class session (confirmed or attended).
// PRE: classID is non-empty, date is YYYY-MM-DD format
// POST: Returns count >= 0
func (s *SQLiteStore) CountActiveByClassAndDate(ctx context.Context, classID, date string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM booking WHERE class_id = ? AND date = ? AND status != ?",
		classID, date, domain.StatusCancelled).Scan(&count)
	return count, err
}

// GetActiveByMemberClassAndDate retrieves the member's non-cancelled booking
// for a class session, if any.
// PRE: memberID and classID are non-empty, date is YYYY-MM-DD format
// POST: Returns the booking or an error if not found
func (s *SQLiteStore) GetActiveByMemberClassAndDate(ctx context.Context, memberID, classID, date string) (domain.Booking, error) {
	query := "SELECT " + bookingColumns + ` FROM booking
		WHERE member_id = ? AND class_id = ? AND date = ? AND status != ?
		LIMIT 1`

	entity, err := scanBooking(s.db.QueryRowContext(ctx, query, memberID, classID, date, domain.StatusCancelled))
	if err == sql.ErrNoRows {
		return domain.Booking{}, fmt.Errorf("booking not found: %w", err)
	}
	return entity, err
}
