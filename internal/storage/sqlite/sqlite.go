// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tally/internal/models"
	"github.com/mmynk/tally/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock overrides the clock used to stamp DateAdded on insert.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and the table automatically.
func New(dbPath string, opts ...Option) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One transaction at a time, all on the caller's goroutine
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Insert persists a new line item dated today.
func (s *SQLiteStore) Insert(ctx context.Context, name string, price float64) (int64, error) {
	dateAdded := s.now().Format(models.DateLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &storage.PersistenceError{Op: "failed to begin transaction", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO my_table (item, price, date_added) VALUES (?, ?, ?)",
		name, price, dateAdded,
	)
	if err != nil {
		return 0, &storage.PersistenceError{Op: "failed to insert line item", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &storage.PersistenceError{Op: "failed to read line item id", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &storage.PersistenceError{Op: "failed to commit transaction", Err: err}
	}

	return id, nil
}

// ListAll retrieves every line item in insertion order.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]models.LineItem, error) {
	// CAST keeps the driver from converting DATE columns to time.Time
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, item, price, CAST(date_added AS TEXT) FROM my_table ORDER BY id ASC",
	)
	if err != nil {
		return nil, &storage.PersistenceError{Op: "failed to list line items", Err: err}
	}
	defer rows.Close()

	items := []models.LineItem{}
	for rows.Next() {
		var (
			item      models.LineItem
			price     sql.NullFloat64
			dateAdded sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Name, &price, &dateAdded); err != nil {
			return nil, &storage.PersistenceError{Op: "failed to scan line item", Err: err}
		}
		item.Price = parsePrice(item.ID, price)
		item.DateAdded = parseDate(item.ID, dateAdded)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.PersistenceError{Op: "failed to iterate line items", Err: err}
	}

	return items, nil
}

// Delete removes a line item by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &storage.PersistenceError{Op: "failed to begin transaction", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM my_table WHERE id = ?", id)
	if err != nil {
		return &storage.PersistenceError{Op: "failed to delete line item", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &storage.PersistenceError{Op: "failed to read affected rows", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &storage.PersistenceError{Op: "failed to commit transaction", Err: err}
	}

	if affected == 0 {
		return fmt.Errorf("line item %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// parsePrice reads a stored price. Other writers of this table can leave
// NULL, NaN or infinite values behind; those count as zero.
func parsePrice(id int64, v sql.NullFloat64) float64 {
	if !v.Valid {
		return 0
	}
	if math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0) {
		slog.Warn("Non-finite price", "id", id, "value", v.Float64)
		return 0
	}
	return v.Float64
}

// parseDate reads a stored date_added value. Rows written by other tools may
// carry a full timestamp, so only the date prefix is considered.
func parseDate(id int64, v sql.NullString) time.Time {
	if !v.Valid || v.String == "" {
		return time.Time{}
	}
	s := v.String
	if len(s) > len(models.DateLayout) {
		s = s[:len(models.DateLayout)]
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		slog.Warn("Unparseable date_added", "id", id, "value", v.String, "error", err)
		return time.Time{}
	}
	return t
}
