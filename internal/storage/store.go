// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/tally/internal/models"
)

// ErrNotFound is returned when an operation targets a row that does not exist.
var ErrNotFound = errors.New("not found")

// PersistenceError reports a failed write or read against the backing store.
// Any transaction opened for the operation has been rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store defines the interface for line item storage operations.
// This abstraction keeps the controller independent of the SQL backend.
type Store interface {
	// Insert persists a new line item dated today and returns its ID.
	Insert(ctx context.Context, name string, price float64) (int64, error)

	// ListAll returns every line item ordered by ID ascending.
	// Returns an empty slice when the table is empty.
	ListAll(ctx context.Context) ([]models.LineItem, error)

	// Delete removes the line item with the given ID.
	// Returns an error wrapping ErrNotFound if no row matched.
	Delete(ctx context.Context, id int64) error

	// Close releases any resources held by the store.
	Close() error
}
