package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT,
		password_change_required INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS plan (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		duration_days INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS member (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		document TEXT,
		email TEXT,
		phone TEXT,
		plan_id TEXT,
		plan_name_hint TEXT NOT NULL DEFAULT '',
		enrollment_date TEXT,
		expiration_date TEXT,
		status_hint TEXT NOT NULL DEFAULT '',
		reminder_sent_for TEXT,
		archived INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (plan_id) REFERENCES plan(id)
	);

	CREATE TABLE IF NOT EXISTS payment (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		plan_id TEXT,
		amount REAL NOT NULL DEFAULT 0,
		payment_date TEXT NOT NULL,
		method TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		recorded_by TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (member_id) REFERENCES member(id),
		FOREIGN KEY (plan_id) REFERENCES plan(id)
	);

	CREATE TABLE IF NOT EXISTS gym_class (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		instructor TEXT NOT NULL DEFAULT '',
		weekday TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		entry_time TEXT NOT NULL,
		exit_time TEXT,
		class_id TEXT,
		recorded_by TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (member_id) REFERENCES member(id),
		FOREIGN KEY (class_id) REFERENCES gym_class(id)
	);

	CREATE TABLE IF NOT EXISTS booking (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		class_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (member_id) REFERENCES member(id),
		FOREIGN KEY (class_id) REFERENCES gym_class(id)
	);

	CREATE TABLE IF NOT EXISTS product (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		stock INTEGER NOT NULL DEFAULT 0,
		price REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS staff (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		schedule TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT,
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_payment_member ON payment(member_id);
	CREATE INDEX IF NOT EXISTS idx_payment_date ON payment(payment_date);
	CREATE INDEX IF NOT EXISTS idx_attendance_member ON attendance(member_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_entry ON attendance(entry_time);
	CREATE INDEX IF NOT EXISTS idx_booking_class_date ON booking(class_id, date);
	CREATE INDEX IF NOT EXISTS idx_member_expiration ON member(expiration_date);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// MigrateDB brings an existing database up to the current schema. The base
// schema is idempotent; column additions are applied only when missing.
// PRE: db is a valid database connection
// POST: Schema matches the current version
func MigrateDB(db *sql.DB, path string) error {
	if err := InitDB(db); err != nil {
		return fmt.Errorf("migrate %s: %w", path, err)
	}

	// Columns added after the initial release.
	additions := []struct {
		table  string
		column string
		ddl    string
	}{
		{"member", "plan_name_hint", "ALTER TABLE member ADD COLUMN plan_name_hint TEXT NOT NULL DEFAULT ''"},
		{"member", "reminder_sent_for", "ALTER TABLE member ADD COLUMN reminder_sent_for TEXT"},
		{"payment", "recorded_by", "ALTER TABLE payment ADD COLUMN recorded_by TEXT NOT NULL DEFAULT ''"},
		{"attendance", "recorded_by", "ALTER TABLE attendance ADD COLUMN recorded_by TEXT NOT NULL DEFAULT ''"},
	}
	for _, a := range additions {
		ok, err := columnExists(db, a.table, a.column)
		if err != nil {
			return fmt.Errorf("migrate %s: %w", path, err)
		}
		if !ok {
			if _, err := db.Exec(a.ddl); err != nil {
				return fmt.Errorf("migrate %s: add %s.%s: %w", path, a.table, a.column, err)
			}
		}
	}
	return nil
}

// columnExists reports whether a column is present on a table.
func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
