package store

import (
	"context"
	"fmt"
)

// Table is a typed handle on one declared table.
// T is the record struct; *T must implement Record.
type Table[T any] struct {
	store *Store
	name  string
}

// NewTable returns a typed handle. The table must be among the store's specs.
func NewTable[T any](s *Store, name string) *Table[T] {
	return &Table[T]{store: s, name: name}
}

// Name returns the table name
func (t *Table[T]) Name() string { return t.name }

// Store returns the underlying store
func (t *Table[T]) Store() *Store { return t.store }

// Put upserts rec and returns it
func (t *Table[T]) Put(ctx context.Context, rec *T) (*T, error) {
	r, ok := any(rec).(Record)
	if !ok {
		return nil, fmt.Errorf("put on %s: %T does not implement Record", t.name, rec)
	}
	if err := t.store.Put(ctx, t.name, r); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the record with id, or nil when absent
func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	found, err := t.store.Get(ctx, t.name, id, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// Query returns the matching records; never nil on success
func (t *Table[T]) Query(ctx context.Context, opts QueryOptions) ([]T, error) {
	out := []T{}
	if err := t.store.Query(ctx, t.name, opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the record with id; absent ids are not an error
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	return t.store.Delete(ctx, t.name, id)
}

// Subscribe registers fn for events on this table
func (t *Table[T]) Subscribe(fn Listener) (unsubscribe func()) {
	return t.store.Subscribe(t.name, fn)
}

// Ready reports whether the underlying store is initialized
func (t *Table[T]) Ready() bool {
	return t.store.Ready()
}
