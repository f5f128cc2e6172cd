package store

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Action identifies the mutation behind an Event
type Action string

// Mutation actions
const (
	ActionPut    Action = "put"
	ActionDelete Action = "delete"
)

// Deleted is the Event payload of a delete
type Deleted struct {
	ID string `json:"id"`
}

// Event is delivered to listeners after a successful mutation.
// Data is the stored record for puts and a Deleted for deletes.
type Event struct {
	Action Action
	Table  string
	Data   any
}

// Listener receives table events
type Listener func(Event)

// Bus is an in-memory publish/subscribe registry keyed by table name.
type Bus struct {
	mu        sync.Mutex
	listeners map[string]map[uint64]Listener
	nextID    uint64
	logger    *slog.Logger
}

// NewBus creates an empty bus
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		listeners: make(map[string]map[uint64]Listener),
		logger:    logger,
	}
}

// Subscribe registers fn for events on table. The returned function removes
// exactly this registration; calling it again does nothing.
func (b *Bus) Subscribe(table string, fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.listeners[table] == nil {
		b.listeners[table] = make(map[uint64]Listener)
	}
	b.listeners[table][id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if set := b.listeners[table]; set != nil {
				delete(set, id)
				if len(set) == 0 {
					delete(b.listeners, table)
				}
			}
		})
	}
}

// Notify delivers an event to every listener currently registered for table.
// A panicking listener is logged and the rest still run.
func (b *Bus) Notify(table string, action Action, data any) {
	ev := Event{Action: action, Table: table, Data: data}
	for _, fn := range b.snapshot(table) {
		b.deliver(fn, ev)
	}
}

// Count returns the number of listeners registered for table
func (b *Bus) Count(table string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[table])
}

// snapshot copies the listener set so callbacks may (un)subscribe freely
func (b *Bus) snapshot(table string) []Listener {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.listeners[table]
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, set[id])
	}
	return out
}

func (b *Bus) deliver(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Listener failed",
				"table", ev.Table,
				"action", string(ev.Action),
				"error", fmt.Sprint(r),
			)
		}
	}()
	fn(ev)
}
