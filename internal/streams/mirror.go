package streams

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jimdaga/vendorhub/internal/store"
)

// Sink receives mirrored changes. *Publisher is the production sink.
type Sink interface {
	PublishChange(ctx context.Context, ev ChangeEvent) (string, error)
}

// Mirror copies local store events to a Sink. Listeners only enqueue into a
// buffered channel, so no network I/O happens under the store's writer lock;
// when the buffer is full the event is dropped and counted.
type Mirror struct {
	sink   Sink
	origin string
	logger *slog.Logger
	events chan ChangeEvent

	mu     sync.Mutex
	unsubs []func()

	dropped atomic.Int64
}

// NewMirror creates a mirror tagging events with origin
func NewMirror(sink Sink, origin string, buffer int, logger *slog.Logger) *Mirror {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		sink:   sink,
		origin: origin,
		logger: logger,
		events: make(chan ChangeEvent, buffer),
	}
}

// Attach subscribes the mirror to every table of s
func (m *Mirror) Attach(s *store.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, table := range s.Tables() {
		m.unsubs = append(m.unsubs, s.Subscribe(table, m.capture))
	}
}

// Detach drops every subscription
func (m *Mirror) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}

// Dropped returns the number of events lost to a full buffer
func (m *Mirror) Dropped() int64 {
	return m.dropped.Load()
}

// Run publishes buffered events until ctx is done
func (m *Mirror) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-m.events:
			if _, err := m.sink.PublishChange(ctx, ev); err != nil {
				m.logger.Error("Failed to publish change", "table", ev.Table, "id", ev.ID, "error", err)
			}
		}
	}
}

func (m *Mirror) capture(ev store.Event) {
	change, ok := m.toChange(ev)
	if !ok {
		return
	}
	select {
	case m.events <- change:
	default:
		m.dropped.Add(1)
		m.logger.Warn("Change feed buffer full, dropping event", "table", ev.Table, "id", change.ID)
	}
}

func (m *Mirror) toChange(ev store.Event) (ChangeEvent, bool) {
	change := ChangeEvent{Origin: m.origin, Table: ev.Table, Action: string(ev.Action)}

	switch data := ev.Data.(type) {
	case RemoteChange:
		return ChangeEvent{}, false
	case store.Deleted:
		change.ID = data.ID
	case store.Record:
		change.ID = data.PrimaryKey()
		// Marshalled now: the caller may reuse the record after Put returns
		raw, err := json.Marshal(data)
		if err != nil {
			m.logger.Error("Failed to encode change", "table", ev.Table, "id", change.ID, "error", err)
			return ChangeEvent{}, false
		}
		change.Record = raw
	default:
		m.logger.Warn("Unexpected event payload", "table", ev.Table, "type", fmt.Sprintf("%T", data))
		return ChangeEvent{}, false
	}
	return change, true
}
