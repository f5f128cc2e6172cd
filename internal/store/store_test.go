package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jimdaga/vendorhub/internal/logging"
	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specs() []store.TableSpec {
	return []store.TableSpec{
		{Name: models.TableUsers, Model: &models.User{}},
		{Name: models.TableOrders, Model: &models.Order{}},
		{Name: models.TableProducts, Model: &models.Product{}},
		{Name: models.TableAnalytics, Model: &models.AnalyticsMetric{}},
		{Name: models.TableTodos, Model: &models.Todo{}},
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(store.Config{DatabaseURL: filepath.Join(t.TempDir(), "vendor.db")}, logging.Discard(), specs()...)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var baseTime = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

func order(id, userID string, status models.OrderStatus, amount string, created time.Time) *models.Order {
	o := &models.Order{
		ID:       id,
		UserID:   userID,
		Customer: "Customer " + id,
		Amount:   decimal.RequireFromString(amount),
		Status:   status,
		Items:    2,
	}
	o.Stamp(created)
	return o
}

func assertSameOrder(t *testing.T, want, got models.Order) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.Customer, got.Customer)
	assert.True(t, want.Amount.Equal(got.Amount), "amount %s != %s", want.Amount, got.Amount)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Items, got.Items)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %s != %s", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %s != %s", want.UpdatedAt, got.UpdatedAt)
}

func ids(orders []models.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestOperationsBeforeInitializeFailFast(t *testing.T) {
	s := store.New(store.Config{DatabaseURL: filepath.Join(t.TempDir(), "vendor.db")}, logging.Discard(), specs()...)
	ctx := context.Background()

	assert.False(t, s.Ready())
	assert.ErrorIs(t, s.Put(ctx, models.TableOrders, order("o1", "u1", models.OrderStatusPending, "1", baseTime)), store.ErrNotReady)

	var got models.Order
	_, err := s.Get(ctx, models.TableOrders, "o1", &got)
	assert.ErrorIs(t, err, store.ErrNotReady)

	var rows []models.Order
	assert.ErrorIs(t, s.Query(ctx, models.TableOrders, store.QueryOptions{}, &rows), store.ErrNotReady)
	assert.ErrorIs(t, s.Delete(ctx, models.TableOrders, "o1"), store.ErrNotReady)
}

func TestInitializeIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Initialize(context.Background()))
	assert.True(t, s.Ready())
	assert.Equal(t, []string{"analytics", "orders", "products", "todos", "users"}, s.Tables())
}

func TestInitializeFailure(t *testing.T) {
	s := store.New(store.Config{DatabaseURL: filepath.Join(t.TempDir(), "missing", "dir", "vendor.db")}, logging.Discard(), specs()...)

	err := s.Initialize(context.Background())

	var initErr *store.InitError
	require.True(t, errors.As(err, &initErr), "expected InitError, got %v", err)
	assert.False(t, s.Ready())
}

func TestInitializeRejectsUndeclaredTable(t *testing.T) {
	type ghost struct {
		ID string `gorm:"primaryKey"`
	}
	s := store.New(store.Config{DatabaseURL: filepath.Join(t.TempDir(), "vendor.db")}, logging.Discard(),
		store.TableSpec{Name: "ghosts", Model: &ghost{}})

	var initErr *store.InitError
	assert.ErrorAs(t, s.Initialize(context.Background()), &initErr)
}

func TestPutIsIdempotentUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := order("order_1", "u1", models.OrderStatusPending, "12.50", baseTime)

	require.NoError(t, s.Put(ctx, models.TableOrders, rec))
	require.NoError(t, s.Put(ctx, models.TableOrders, rec))

	var rows []models.Order
	require.NoError(t, s.Query(ctx, models.TableOrders, store.QueryOptions{Where: map[string]any{"id": rec.ID}}, &rows))
	require.Len(t, rows, 1)
	assertSameOrder(t, *rec, rows[0])
}

func TestPutReplacesWholeRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	orders := store.NewTable[models.Order](s, models.TableOrders)

	rec := order("order_1", "u1", models.OrderStatusPending, "12.50", baseTime)
	_, err := orders.Put(ctx, rec)
	require.NoError(t, err)

	replacement := order("order_1", "u1", models.OrderStatusCompleted, "0", baseTime.Add(time.Minute))
	replacement.Customer = ""
	replacement.Items = 0
	_, err = orders.Put(ctx, replacement)
	require.NoError(t, err)

	got, err := orders.Get(ctx, "order_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assertSameOrder(t, *replacement, *got)
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)
	orders := store.NewTable[models.Order](s, models.TableOrders)

	got, err := orders.Get(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestQueryEqualityFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	orders := store.NewTable[models.Order](s, models.TableOrders)

	fixtures := []*models.Order{
		order("o1", "u1", models.OrderStatusCompleted, "10", baseTime),
		order("o2", "u1", models.OrderStatusPending, "20", baseTime.Add(1*time.Minute)),
		order("o3", "u2", models.OrderStatusCompleted, "30", baseTime.Add(2*time.Minute)),
		order("o4", "u1", models.OrderStatusCompleted, "40", baseTime.Add(3*time.Minute)),
	}
	for _, o := range fixtures {
		_, err := orders.Put(ctx, o)
		require.NoError(t, err)
	}

	got, err := orders.Query(ctx, store.QueryOptions{
		Where:   map[string]any{"userId": "u1", "status": "Completed"},
		OrderBy: "createdAt",
		Desc:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"o4", "o1"}, ids(got))

	got, err = orders.Query(ctx, store.QueryOptions{Where: map[string]any{"user_id": "u1"}, OrderBy: "CreatedAt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"o1", "o2", "o4"}, ids(got))
}

func TestQueryUnknownFieldMatchesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	orders := store.NewTable[models.Order](s, models.TableOrders)

	_, err := orders.Put(ctx, order("o1", "u1", models.OrderStatusPending, "1", baseTime))
	require.NoError(t, err)

	got, err := orders.Query(ctx, store.QueryOptions{Where: map[string]any{"colour": "red"}})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestQueryUnknownOrderField(t *testing.T) {
	s := newTestStore(t)
	orders := store.NewTable[models.Order](s, models.TableOrders)

	_, err := orders.Query(context.Background(), store.QueryOptions{OrderBy: "colour"})
	assert.ErrorIs(t, err, store.ErrUnknownField)
}

func TestQueryTiesKeepInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	orders := store.NewTable[models.Order](s, models.TableOrders)

	for _, id := range []string{"c", "a", "b"} {
		_, err := orders.Put(ctx, order(id, "u1", models.OrderStatusPending, "5", baseTime))
		require.NoError(t, err)
	}
	// Re-putting an existing row must not move it
	_, err := orders.Put(ctx, order("c", "u1", models.OrderStatusPending, "5", baseTime))
	require.NoError(t, err)

	got, err := orders.Query(ctx, store.QueryOptions{OrderBy: "createdAt", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids(got))

	got, err = orders.Query(ctx, store.QueryOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(got))
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var events []store.Event
	unsubscribe := s.Subscribe(models.TableOrders, func(ev store.Event) { events = append(events, ev) })
	defer unsubscribe()

	require.NoError(t, s.Delete(ctx, models.TableOrders, "missing"))
	require.Len(t, events, 1)
	assert.Equal(t, store.ActionDelete, events[0].Action)
	assert.Equal(t, store.Deleted{ID: "missing"}, events[0].Data)
}

func TestUnknownTable(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Delete(context.Background(), "invoices", "x"), store.ErrUnknownTable)
}

func TestSubscriberReceivesEveryMutationInOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	orders := store.NewTable[models.Order](s, models.TableOrders)

	var got []store.Action
	unsubscribe := orders.Subscribe(func(ev store.Event) {
		assert.Equal(t, models.TableOrders, ev.Table)
		got = append(got, ev.Action)
	})
	defer unsubscribe()

	want := []store.Action{}
	for i, id := range []string{"o1", "o2", "o1"} {
		_, err := orders.Put(ctx, order(id, "u1", models.OrderStatusPending, "1", baseTime.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
		want = append(want, store.ActionPut)
	}
	require.NoError(t, orders.Delete(ctx, "o1"))
	want = append(want, store.ActionDelete)
	_, err := orders.Put(ctx, order("o3", "u1", models.OrderStatusPending, "1", baseTime))
	require.NoError(t, err)
	want = append(want, store.ActionPut)

	// Writes to other tables are not delivered
	require.NoError(t, s.Delete(ctx, models.TableProducts, "p1"))

	assert.Equal(t, want, got)
}

func TestNotificationFollowsWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	orders := store.NewTable[models.Order](s, models.TableOrders)

	var seen *models.Order
	unsubscribe := orders.Subscribe(func(ev store.Event) {
		rec, err := orders.Get(ctx, "o1")
		require.NoError(t, err)
		seen = rec
	})
	defer unsubscribe()

	_, err := orders.Put(ctx, order("o1", "u1", models.OrderStatusPending, "1", baseTime))
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "o1", seen.ID)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	orders := store.NewTable[models.Order](s, models.TableOrders)

	var removed, kept int
	unsubscribe := orders.Subscribe(func(store.Event) { removed++ })
	stop := orders.Subscribe(func(store.Event) { kept++ })
	defer stop()

	_, err := orders.Put(ctx, order("o1", "u1", models.OrderStatusPending, "1", baseTime))
	require.NoError(t, err)

	unsubscribe()
	unsubscribe()

	_, err = orders.Put(ctx, order("o2", "u1", models.OrderStatusPending, "1", baseTime))
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, kept)
	assert.Equal(t, 1, s.Bus().Count(models.TableOrders))
}

func TestRelayNotifiesLocalSubscribers(t *testing.T) {
	s := newTestStore(t)

	var got []store.Event
	unsubscribe := s.Subscribe(models.TableProducts, func(ev store.Event) { got = append(got, ev) })
	defer unsubscribe()

	require.NoError(t, s.Relay(store.Event{Table: models.TableProducts, Action: store.ActionDelete, Data: store.Deleted{ID: "p1"}}))
	assert.ErrorIs(t, s.Relay(store.Event{Table: "invoices", Action: store.ActionPut}), store.ErrUnknownTable)

	require.Len(t, got, 1)
	assert.Equal(t, store.ActionDelete, got[0].Action)
}
