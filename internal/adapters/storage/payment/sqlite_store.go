package payment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/payment"
)

const paymentColumns = "id, member_id, plan_id, amount, payment_date, method, status, note, recorded_by"

// SQLiteStore implements the payment Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new payment store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPayment maps a row with paymentColumns into a domain.Payment.
func scanPayment(row rowScanner) (domain.Payment, error) {
	var entity domain.Payment
	var planID sql.NullString
	var paymentDate string
	err := row.Scan(
		&entity.ID,
		&entity.MemberID,
		&planID,
		&entity.Amount,
		&paymentDate,
		&entity.Method,
		&entity.Status,
		&entity.Note,
		&entity.RecordedBy,
	)
	if err != nil {
		return domain.Payment{}, err
	}
	entity.PlanID = planID.String
	entity.PaymentDate, err = storage.ParseStoredTime(paymentDate)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("failed to parse payment_date: %w", err)
	}
	return entity, nil
}

// GetByID retrieves a Payment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	query := "SELECT " + paymentColumns + " FROM payment WHERE id = ?"

	entity, err := scanPayment(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return domain.Payment{}, fmt.Errorf("payment not found: %w", err)
	}
	return entity, err
}

// Save persists a Payment to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Payment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := []string{"id", "member_id", "plan_id", "amount", "payment_date", "method", "status", "note", "recorded_by"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?", "?", "?"}
	updates := []string{"member_id=excluded.member_id", "plan_id=excluded.plan_id", "amount=excluded.amount", "payment_date=excluded.payment_date", "method=excluded.method", "status=excluded.status", "note=excluded.note", "recorded_by=excluded.recorded_by"}

	query := fmt.Sprintf(
		"INSERT INTO payment (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.MemberID,
		storage.NullString(entity.PlanID),
		entity.Amount,
		entity.PaymentDate.Format(storage.DateLayout),
		entity.Method,
		entity.Status,
		entity.Note,
		entity.RecordedBy,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Payment from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM payment WHERE id = ?", id)
	return err
}

// listWhereClause builds the WHERE clause and args for List queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.MemberID != "" {
		where += " AND member_id = ?"
		args = append(args, filter.MemberID)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Method != "" {
		where += " AND method = ?"
		args = append(args, filter.Method)
	}
	if filter.StartDate != "" {
		where += " AND SUBSTR(payment_date, 1, 10) >= ?"
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		where += " AND SUBSTR(payment_date, 1, 10) <= ?"
		args = append(args, filter.EndDate)
	}
	return where, args
}

// List retrieves a list of Payments based on the filter, newest first.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Payment, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + paymentColumns + " FROM payment" + where + " ORDER BY payment_date DESC"

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

	var results []domain.Payment
	for rows.Next() {
		entity, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListByMemberID retrieves all payments for a member, newest first.
// PRE: memberID is non-empty
// POST: Returns payments for the given member
func (s *SQLiteStore) ListByMemberID(ctx context.Context, memberID string) ([]domain.Payment, error) {
	return s.List(ctx, ListFilter{MemberID: memberID})
}

// SumCompletedByDateRange returns total completed revenue within a date range.
// PRE: startDate and endDate are YYYY-MM-DD format
// POST: Returns total >= 0
func (s *SQLiteStore) SumCompletedByDateRange(ctx context.Context, startDate, endDate string) (float64, error) {
	var total sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(amount) FROM payment
		WHERE status = ? AND SUBSTR(payment_date, 1, 10) >= ? AND SUBSTR(payment_date, 1, 10) <= ?`,
		domain.StatusCompleted, startDate, endDate).Scan(&total)
	if err != nil {
		return 0, err
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Float64, nil
}
