package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by every operation before Initialize succeeds
	ErrNotReady = errors.New("store is not ready: Initialize has not completed")

	// ErrNotFound marks an update that targeted a missing record.
	// Get never returns it; a missing record there is (nil, nil).
	ErrNotFound = errors.New("record not found")

	// ErrUnknownTable is returned for a table that was never declared
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownField is returned when ordering by a field the table does not have
	ErrUnknownField = errors.New("unknown field")
)

// InitError reports that the storage medium could not be opened or the schema
// could not be declared. The store stays unusable.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("storage init failed: %v", e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// IOError wraps a failure of the underlying medium during one operation.
// It is never retried inside the store.
type IOError struct {
	Op    string
	Table string
	Err   error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage %s on %s failed: %v", e.Op, e.Table, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func ioError(op, table string, err error) error {
	return &IOError{Op: op, Table: table, Err: err}
}
