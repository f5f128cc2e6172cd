// Package domain provides typed, validated helpers for each vendor entity.
// Helpers generate ids and timestamps so callers never do.
package domain

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/store"
)

// ErrInvalidInput is wrapped by every validation failure
var ErrInvalidInput = errors.New("invalid input")

// newestFirst is the product ordering for per-user listings
var newestFirst = store.QueryOptions{OrderBy: "createdAt", Desc: true}

// Tables declares every table the helpers use
func Tables() []store.TableSpec {
	return []store.TableSpec{
		{Name: models.TableUsers, Model: &models.User{}},
		{Name: models.TableOrders, Model: &models.Order{}},
		{Name: models.TableProducts, Model: &models.Product{}},
		{Name: models.TableAnalytics, Model: &models.AnalyticsMetric{}},
		{Name: models.TableTodos, Model: &models.Todo{}},
	}
}

// Helpers wraps a Store with per-entity operations
type Helpers struct {
	users     *store.Table[models.User]
	orders    *store.Table[models.Order]
	products  *store.Table[models.Product]
	analytics *store.Table[models.AnalyticsMetric]
	todos     *store.Table[models.Todo]
	clock     *Clock
}

// New creates helpers over s using the wall clock
func New(s *store.Store) *Helpers {
	return NewWithClock(s, NewClock(nil))
}

// NewWithClock creates helpers with an explicit clock
func NewWithClock(s *store.Store, clock *Clock) *Helpers {
	return &Helpers{
		users:     store.NewTable[models.User](s, models.TableUsers),
		orders:    store.NewTable[models.Order](s, models.TableOrders),
		products:  store.NewTable[models.Product](s, models.TableProducts),
		analytics: store.NewTable[models.AnalyticsMetric](s, models.TableAnalytics),
		todos:     store.NewTable[models.Todo](s, models.TableTodos),
		clock:     clock,
	}
}

// Orders returns the typed orders table
func (h *Helpers) Orders() *store.Table[models.Order] { return h.orders }

// Products returns the typed products table
func (h *Helpers) Products() *store.Table[models.Product] { return h.products }

// Analytics returns the typed analytics table
func (h *Helpers) Analytics() *store.Table[models.AnalyticsMetric] { return h.analytics }

// Todos returns the typed todos table
func (h *Helpers) Todos() *store.Table[models.Todo] { return h.todos }

// Now returns the helpers' current time
func (h *Helpers) Now() time.Time { return h.clock.Now() }

// NewID returns "<prefix>_<uuidv7>": a time-ordered component plus random bits
func NewID(prefix string) string {
	return prefix + "_" + uuid.Must(uuid.NewV7()).String()
}

// byUser is the where clause every per-user listing starts from
func byUser(userID string) store.QueryOptions {
	opts := newestFirst
	opts.Where = map[string]any{"userId": userID}
	return opts
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
}

// clockStep is the smallest gap between two Clock readings. Postgres keeps
// microseconds, so a finer step would collapse on the way back.
const clockStep = time.Microsecond

// Clock hands out strictly increasing UTC timestamps
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock wraps now; nil means time.Now
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Now returns the current time, always later than any previous result
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC()
	if !c.last.IsZero() && !t.After(c.last) {
		t = c.last.Add(clockStep)
	}
	c.last = t
	return t
}
