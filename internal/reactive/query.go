// Package reactive keeps query results current by re-running the query
// whenever the Subscription Bus reports a change to its table.
package reactive

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/jimdaga/vendorhub/internal/store"
)

// Query binds one table query to a consumer. Every notification for the
// table re-runs the whole query; results are never patched in place.
type Query[T any] struct {
	table  *store.Table[T]
	logger *slog.Logger

	mu          sync.Mutex
	bound       bool
	key         string
	ctx         context.Context
	opts        store.QueryOptions
	unsubscribe func()
	results     []T
	err         error
	onChange    func([]T)

	// gen invalidates fetches started under an older binding
	gen uint64
	// seq orders fetches within a binding; only newer results are applied
	seq     uint64
	applied uint64
}

// NewQuery creates an unbound query over table
func NewQuery[T any](table *store.Table[T], logger *slog.Logger) *Query[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Query[T]{
		table:   table,
		logger:  logger,
		results: []T{},
	}
}

// OnChange sets the callback invoked with fresh results after every fetch
func (q *Query[T]) OnChange(fn func([]T)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onChange = fn
}

// Bind (re)binds the query to opts. When opts and the enabled state are
// unchanged it does nothing. Otherwise the previous subscription is dropped
// first; a disabled query, or one over a store that is not ready, yields an
// empty result and does not subscribe. Store readiness counts as part of the
// enabled state, so binding again once the store is ready starts the query.
func (q *Query[T]) Bind(ctx context.Context, opts store.QueryOptions, enabled bool) {
	enabled = enabled && q.table.Ready()
	key := depsKey(opts, enabled)

	q.mu.Lock()
	if q.bound && q.key == key {
		q.mu.Unlock()
		return
	}

	q.detachLocked()
	q.bound = true
	q.key = key
	q.ctx = ctx
	q.opts = opts
	gen := q.gen

	if !enabled {
		q.results = []T{}
		q.err = nil
		fn := q.onChange
		q.mu.Unlock()
		if fn != nil {
			fn([]T{})
		}
		return
	}

	// Subscribe before the first fetch so no write slips between them
	q.unsubscribe = q.table.Subscribe(func(store.Event) {
		q.refresh(gen)
	})
	q.mu.Unlock()

	q.refresh(gen)
}

// Results returns the latest results
func (q *Query[T]) Results() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]T, len(q.results))
	copy(out, q.results)
	return out
}

// Err returns the error of the latest fetch, if any
func (q *Query[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// Subscribed reports whether the query currently listens to its table
func (q *Query[T]) Subscribed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unsubscribe != nil
}

// Close drops the subscription. The query may be bound again later.
func (q *Query[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.detachLocked()
	q.bound = false
	q.key = ""
}

func (q *Query[T]) detachLocked() {
	if q.unsubscribe != nil {
		q.unsubscribe()
		q.unsubscribe = nil
	}
	q.gen++
	q.seq = 0
	q.applied = 0
}

func (q *Query[T]) refresh(gen uint64) {
	q.mu.Lock()
	if q.gen != gen {
		q.mu.Unlock()
		return
	}
	q.seq++
	seq := q.seq
	ctx, opts := q.ctx, q.opts
	q.mu.Unlock()

	rows, err := q.table.Query(ctx, opts)

	q.mu.Lock()
	if q.gen != gen || seq < q.applied {
		q.mu.Unlock()
		return
	}
	q.applied = seq
	if err != nil {
		q.logger.Error("Reactive query failed", "table", q.table.Name(), "error", err)
		q.results = []T{}
		q.err = err
	} else {
		q.results = rows
		q.err = nil
	}
	fn, results := q.onChange, q.results
	q.mu.Unlock()

	if fn != nil {
		fn(results)
	}
}

// depsKey identifies a binding by its options and enabled flag
func depsKey(opts store.QueryOptions, enabled bool) string {
	b, err := json.Marshal(struct {
		Opts    store.QueryOptions `json:"opts"`
		Enabled bool               `json:"enabled"`
	}{opts, enabled})
	if err != nil {
		// Unencodable where values never compare equal to anything
		return ""
	}
	return string(b)
}

// UserOptions is the per-user listing: rows owned by userID, newest first
func UserOptions(userID string) store.QueryOptions {
	return store.QueryOptions{
		Where:   map[string]any{"userId": userID},
		OrderBy: "createdAt",
		Desc:    true,
	}
}

// BindUser binds q to userID's rows. An empty userID disables the query.
func BindUser[T any](ctx context.Context, q *Query[T], userID string) {
	q.Bind(ctx, UserOptions(userID), userID != "")
}
