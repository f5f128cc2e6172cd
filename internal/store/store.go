// Package store is the local-first record store: named tables with upsert,
// point lookup, equality queries and delete, plus a Subscription Bus that is
// notified after every successful mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/jimdaga/vendorhub/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is implemented by every stored type
type Record interface {
	PrimaryKey() string
}

// QueryOptions selects rows with an equality conjunction over Where, ordered by
// OrderBy (ascending unless Desc) and capped at Limit when positive.
// Ties always keep insertion order.
type QueryOptions struct {
	Where   map[string]any `json:"where,omitempty"`
	OrderBy string         `json:"orderBy,omitempty"`
	Desc    bool           `json:"desc,omitempty"`
	Limit   int            `json:"limit,omitempty"`
}

// Config configures the storage medium
type Config struct {
	// DatabaseURL is a SQLite file path or a postgres:// URL
	DatabaseURL string
}

// Store owns the database connection, the declared tables and the bus.
// Construct one per process (or per test) and pass it down explicitly.
type Store struct {
	cfg    Config
	specs  []TableSpec
	logger *slog.Logger
	bus    *Bus

	initMu sync.Mutex
	ready  atomic.Bool
	db     *gorm.DB
	tables *registry
	// tiebreak is the column expressing insertion order
	tiebreak clause.Column

	// writeMu serializes mutations together with their notifications
	writeMu sync.Mutex
}

// New creates a store for the given tables. Nothing is opened until Initialize.
func New(cfg Config, logger *slog.Logger, specs ...TableSpec) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cfg:    cfg,
		specs:  specs,
		logger: logger,
		bus:    NewBus(logger),
	}
}

// Initialize opens the medium and declares every table. It is idempotent.
// Failures are reported as *InitError and leave the store unusable.
func (s *Store) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.ready.Load() {
		return nil
	}

	db, err := database.Open(s.cfg.DatabaseURL)
	if err != nil {
		return &InitError{Err: err}
	}

	if err := database.RunMigrations(db.WithContext(ctx)); err != nil {
		_ = database.Close(db)
		return &InitError{Err: err}
	}

	tables := newRegistry()
	cache := &sync.Map{}
	for _, spec := range s.specs {
		if err := tables.register(spec, cache, db.NamingStrategy); err != nil {
			_ = database.Close(db)
			return &InitError{Err: err}
		}
	}

	for _, name := range tables.names() {
		if !db.Migrator().HasTable(name) {
			_ = database.Close(db)
			return &InitError{Err: fmt.Errorf("table %s was not created", name)}
		}
	}

	s.db = db
	s.tables = tables
	s.tiebreak = tiebreakColumn(db.Dialector.Name())
	s.ready.Store(true)

	s.logger.Info("Local store initialized",
		"dialect", db.Dialector.Name(),
		"tables", len(tables.tables),
	)
	return nil
}

// Ready reports whether Initialize has succeeded
func (s *Store) Ready() bool {
	return s.ready.Load()
}

// Tables returns the declared table names, sorted
func (s *Store) Tables() []string {
	if !s.Ready() {
		names := make([]string, 0, len(s.specs))
		for _, spec := range s.specs {
			names = append(names, spec.Name)
		}
		sort.Strings(names)
		return names
	}
	return s.tables.names()
}

// Close releases the database connection. The store is unusable afterwards.
func (s *Store) Close() error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if !s.ready.Load() {
		return nil
	}
	s.ready.Store(false)
	return database.Close(s.db)
}

// Put inserts or fully replaces record by primary key, then notifies
// listeners of table with a put event carrying record.
func (s *Store) Put(ctx context.Context, tableName string, record Record) error {
	t, err := s.table(tableName)
	if err != nil {
		return err
	}
	if record.PrimaryKey() == "" {
		return fmt.Errorf("put on %s: record has no id", t.name)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = s.db.WithContext(ctx).
		Table(t.name).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(record).Error
	if err != nil {
		return ioError("put", t.name, err)
	}

	s.bus.Notify(t.name, ActionPut, record)
	return nil
}

// Get loads the record with id into dest. A missing record is reported as
// (false, nil), never as an error.
func (s *Store) Get(ctx context.Context, tableName, id string, dest any) (bool, error) {
	t, err := s.table(tableName)
	if err != nil {
		return false, err
	}

	err = s.db.WithContext(ctx).Table(t.name).Where("id = ?", id).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, ioError("get", t.name, err)
	}
	return true, nil
}

// Query loads matching rows into dest, a pointer to a slice of the table's
// record type. A predicate on a field the table does not have matches nothing.
func (s *Store) Query(ctx context.Context, tableName string, opts QueryOptions, dest any) error {
	t, err := s.table(tableName)
	if err != nil {
		return err
	}

	tx := s.db.WithContext(ctx).Table(t.name)

	// Sorted keys keep the generated SQL stable
	keys := make([]string, 0, len(opts.Where))
	for key := range opts.Where {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		col, ok := t.column(key)
		if !ok {
			return resetSlice(dest)
		}
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: col}, Value: opts.Where[key]})
	}

	if opts.OrderBy != "" {
		col, ok := t.column(opts.OrderBy)
		if !ok {
			return fmt.Errorf("order %s by %q: %w", t.name, opts.OrderBy, ErrUnknownField)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: opts.Desc})
	}
	tx = tx.Order(clause.OrderByColumn{Column: s.tiebreak})

	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}

	if err := tx.Find(dest).Error; err != nil {
		return ioError("query", t.name, err)
	}
	return nil
}

// Delete removes the record with id if present and notifies listeners with a
// delete event either way.
func (s *Store) Delete(ctx context.Context, tableName, id string) error {
	t, err := s.table(tableName)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = s.db.WithContext(ctx).Table(t.name).Where("id = ?", id).Delete(t.newModel()).Error
	if err != nil {
		return ioError("delete", t.name, err)
	}

	s.bus.Notify(t.name, ActionDelete, Deleted{ID: id})
	return nil
}

// Subscribe registers fn for events on tableName. Listeners run synchronously
// on the mutating goroutine: they may read from the store but must not write.
func (s *Store) Subscribe(tableName string, fn Listener) (unsubscribe func()) {
	return s.bus.Subscribe(tableName, fn)
}

// Relay re-publishes an event committed by another process sharing the same
// database, so local subscribers refresh. It is serialized with local writes.
func (s *Store) Relay(ev Event) error {
	if _, err := s.table(ev.Table); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.bus.Notify(ev.Table, ev.Action, ev.Data)
	return nil
}

// Bus exposes the subscription bus
func (s *Store) Bus() *Bus {
	return s.bus
}

// resetSlice empties the slice dest points to
func resetSlice(dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("query destination must be a pointer to a slice, got %T", dest)
	}
	v.Elem().Set(reflect.MakeSlice(v.Elem().Type(), 0, 0))
	return nil
}

func (s *Store) table(name string) (*table, error) {
	if !s.ready.Load() {
		return nil, ErrNotReady
	}
	t, ok := s.tables.get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// tiebreakColumn picks the column that reflects insertion order. SQLite keeps
// rowid stable across ON CONFLICT DO UPDATE; Postgres tables carry a seq column.
func tiebreakColumn(dialect string) clause.Column {
	if dialect == database.DialectPostgres {
		return clause.Column{Name: "seq"}
	}
	return clause.Column{Name: "rowid", Raw: true}
}
