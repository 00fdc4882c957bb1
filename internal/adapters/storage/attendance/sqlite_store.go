package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/attendance"
)

const attendanceColumns = "id, member_id, entry_time, exit_time, class_id, recorded_by"

// SQLiteStore implements the attendance Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAttendance maps a row with attendanceColumns into a domain.Attendance.
func scanAttendance(row rowScanner) (domain.Attendance, error) {
	var entity domain.Attendance
	var entryStr string
	var exitStr, classID sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.MemberID,
		&entryStr,
		&exitStr,
		&classID,
		&entity.RecordedBy,
	)
	if err != nil {
		return domain.Attendance{}, err
	}
	entity.ClassID = classID.String
	entity.EntryTime, err = storage.ParseStoredTime(entryStr)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("failed to parse entry_time: %w", err)
	}
	if exitStr.Valid && exitStr.String != "" {
		entity.ExitTime, err = storage.ParseStoredTime(exitStr.String)
		if err != nil {
			return domain.Attendance{}, fmt.Errorf("failed to parse exit_time: %w", err)
		}
	}
	return entity, nil
}

// GetByID retrieves an Attendance by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Attendance, error) {
	query := "SELECT " + attendanceColumns + " FROM attendance WHERE id = ?"

	entity, err := scanAttendance(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return domain.Attendance{}, fmt.Errorf("attendance not found: %w", err)
	}
	return entity, err
}

// Save persists an Attendance to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Attendance) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "member_id", "entry_time", "exit_time", "class_id", "recorded_by"}
	placeholders := []string{"?", "?", "?", "?", "?", "?"}
	updates := []string{"member_id=excluded.member_id", "entry_time=excluded.entry_time", "exit_time=excluded.exit_time", "class_id=excluded.class_id", "recorded_by=excluded.recorded_by"}

	query := fmt.Sprintf(
		"INSERT INTO attendance (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.MemberID,
		entity.EntryTime.Format(time.RFC3339Nano),
		storage.NullTime(entity.ExitTime),
		storage.NullString(entity.ClassID),
		entity.RecordedBy,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes an Attendance from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = ?", id)
	return err
}

// List retrieves a list of Attendances based on the filter, newest first.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Attendance, error) {
	query := "SELECT " + attendanceColumns + " FROM attendance WHERE 1=1"
	var args []any
	if filter.MemberID != "" {
		query += " AND member_id = ?"
		args = append(args, filter.MemberID)
	}
	if filter.ClassID != "" {
		query += " AND class_id = ?"
		args = append(args, filter.ClassID)
	}
	query += " ORDER BY entry_time DESC"

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

	var results []domain.Attendance
	for rows.Next() {
		entity, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListByMemberID retrieves all attendance records for a member, newest first.
// PRE: memberID is non-empty
// POST: Returns records for the given member
func (s *SQLiteStore) ListByMemberID(ctx context.Context, memberID string) ([]domain.Attendance, error) {
	return s.List(ctx, ListFilter{MemberID: memberID})
}

// ListByDate retrieves attendance records for a specific date, newest first.
// PRE: date is YYYY-MM-DD format
// POST: Returns records whose entry_time falls on the date
func (s *SQLiteStore) ListByDate(ctx context.Context, date string) ([]domain.Attendance, error) {
	query := "SELECT " + attendanceColumns + " FROM attendance WHERE SUBSTR(entry_time, 1, 10) = ? ORDER BY entry_time DESC"

	rows, err := s.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Attendance
	for rows.Next() {
		entity, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// GetOpenByMemberID retrieves the most recent attendance record without an
// exit time for a member.
// PRE: memberID is non-empty
// POST: Returns the open record or sql.ErrNoRows-wrapped error
func (s *SQLiteStore) GetOpenByMemberID(ctx context.Context, memberID string) (domain.Attendance, error) {
	query := "SELECT " + attendanceColumns + ` FROM attendance
		WHERE member_id = ? AND (exit_time IS NULL OR exit_time = '')
		ORDER BY entry_time DESC LIMIT 1`

	entity, err := scanAttendance(s.db.QueryRowContext(ctx, query, memberID))
	if err == sql.ErrNoRows {
		return domain.Attendance{}, fmt.Errorf("open attendance not found: %w", err)
	}
	return entity, err
}

// CountByDate returns the number of check-ins on a specific date.
// PRE: date is YYYY-MM-DD format
// POST: Returns count >= 0
func (s *SQLiteStore) CountByDate(ctx context.Context, date string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE SUBSTR(entry_time, 1, 10) = ?", date).Scan(&count)
	return count, err
}
