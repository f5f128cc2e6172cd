package domain_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/logging"
	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

// stepClock advances one second per reading
func stepClock() *domain.Clock {
	n := 0
	return domain.NewClock(func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	})
}

func newHelpers(t *testing.T) *domain.Helpers {
	t.Helper()
	s := store.New(store.Config{DatabaseURL: filepath.Join(t.TempDir(), "vendor.db")}, logging.Discard(), domain.Tables()...)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return domain.NewWithClock(s, stepClock())
}

func newUser(t *testing.T, h *domain.Helpers) *models.User {
	t.Helper()
	u, err := h.CreateUser(context.Background(), domain.UserInput{Email: "Vendor@Example.com", Name: "John Vendor", BusinessName: "Green Market Store"})
	require.NoError(t, err)
	return u
}

func TestNewIDIsPrefixedAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := domain.NewID("order")
		require.True(t, strings.HasPrefix(id, "order_"))
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestClockNeverRepeatsOrGoesBackwards(t *testing.T) {
	readings := []time.Time{start.Add(time.Minute), start, start.Add(2 * time.Minute)}
	i := 0
	clock := domain.NewClock(func() time.Time {
		r := readings[i]
		i++
		return r
	})

	first := clock.Now()
	second := clock.Now()
	third := clock.Now()

	assert.Equal(t, first.Add(time.Microsecond), second)
	assert.Equal(t, start.Add(2*time.Minute), third)
}

func TestClockBreaksTies(t *testing.T) {
	clock := domain.NewClock(func() time.Time { return start })

	prev := clock.Now()
	for i := 0; i < 5; i++ {
		next := clock.Now()
		require.True(t, next.After(prev))
		prev = next
	}
}

func TestSameInstantCreatesListNewestFirst(t *testing.T) {
	s := store.New(store.Config{DatabaseURL: filepath.Join(t.TempDir(), "vendor.db")}, logging.Discard(), domain.Tables()...)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	h := domain.NewWithClock(s, domain.NewClock(func() time.Time { return start }))
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := h.CreateProduct(ctx, domain.ProductInput{UserID: "u1", Name: name, Price: decimal.NewFromInt(1), Stock: 5})
		require.NoError(t, err)
	}

	products, err := h.GetProductsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "third", products[0].Name)
	assert.Equal(t, "first", products[2].Name)
}

func TestCreateUserAndEnsureUser(t *testing.T) {
	h := newHelpers(t)
	ctx := context.Background()

	u := newUser(t, h)
	assert.True(t, strings.HasPrefix(u.ID, "user_"))
	assert.Equal(t, "vendor@example.com", u.Email)
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)

	same, err := h.EnsureUser(ctx, domain.UserInput{Email: "vendor@example.com"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, same.ID)
	assert.Equal(t, "John Vendor", same.Name)

	renamed, err := h.EnsureUser(ctx, domain.UserInput{Email: "VENDOR@example.com", Name: "Jane Vendor"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, renamed.ID)
	assert.Equal(t, "Jane Vendor", renamed.Name)
	assert.True(t, renamed.UpdatedAt.After(u.UpdatedAt))
	assert.True(t, renamed.CreatedAt.Equal(u.CreatedAt))

	fresh, err := h.EnsureUser(ctx, domain.UserInput{Email: "other@example.com", Name: "Other"})
	require.NoError(t, err)
	assert.NotEqual(t, u.ID, fresh.ID)

	users, err := h.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = h.CreateUser(ctx, domain.UserInput{Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateUserMissing(t *testing.T) {
	h := newHelpers(t)
	name := "x"
	_, err := h.UpdateUser(context.Background(), "user_missing", domain.UserUpdate{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrdersNewestFirst(t *testing.T) {
	h := newHelpers(t)
	ctx := context.Background()
	u := newUser(t, h)

	var created []string
	for _, customer := range []string{"Alice", "Bob", "Carol"} {
		o, err := h.CreateOrder(ctx, domain.OrderInput{UserID: u.ID, Customer: customer, Amount: decimal.RequireFromString("19.99"), Items: 1})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, o.Status)
		created = append(created, o.ID)
	}
	_, err := h.CreateOrder(ctx, domain.OrderInput{UserID: "someone-else", Amount: decimal.NewFromInt(5), Items: 1})
	require.NoError(t, err)

	orders, err := h.GetOrdersByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []string{created[2], created[1], created[0]}, []string{orders[0].ID, orders[1].ID, orders[2].ID})
}

func TestCreateOrderValidation(t *testing.T) {
	h := newHelpers(t)
	ctx := context.Background()

	cases := map[string]domain.OrderInput{
		"no user":         {Amount: decimal.NewFromInt(1), Items: 1},
		"negative amount": {UserID: "u1", Amount: decimal.NewFromInt(-1), Items: 1},
		"no items":        {UserID: "u1", Amount: decimal.NewFromInt(1)},
		"bad status":      {UserID: "u1", Amount: decimal.NewFromInt(1), Items: 1, Status: "Shipped"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.CreateOrder(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	h := newHelpers(t)
	ctx := context.Background()
	u := newUser(t, h)

	o, err := h.CreateOrder(ctx, domain.OrderInput{UserID: u.ID, Customer: "Alice", Amount: decimal.NewFromInt(40), Items: 3})
	require.NoError(t, err)

	updated, err := h.UpdateOrderStatus(ctx, o.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)
	assert.True(t, updated.UpdatedAt.After(o.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(o.CreatedAt))

	stored, err := h.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, stored.Status)
	assert.Equal(t, "Alice", stored.Customer)

	_, err = h.UpdateOrderStatus(ctx, "order_missing", models.OrderStatusCancelled)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = h.UpdateOrderStatus(ctx, o.ID, "Lost")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductStatusFollowsStock(t *testing.T) {
	h := newHelpers(t)
	ctx := context.Background()
	u := newUser(t, h)

	p, err := h.CreateProduct(ctx, domain.ProductInput{UserID: u.ID, Name: "Organic Apples", Price: decimal.RequireFromString("2.99"), Stock: 45})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusInStock, p.Status)

	for _, stock := range []int{0, 1, 9, 10, 11, 0, 250} {
		updated, err := h.UpdateProductStock(ctx, p.ID, stock)
		require.NoError(t, err)
		assert.Equal(t, models.StatusForStock(stock), updated.Status, "stock %d", stock)

		stored, err := h.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, stock, stored.Stock)
		assert.Equal(t, updated.Status, stored.Status)
	}

	_, err = h.UpdateProductStock(ctx, p.ID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.UpdateProductStock(ctx, "product_missing", 3)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordMetricIsAppendOnly(t *testing.T) {
	h := newHelpers(t)
	ctx := context.Background()
	u := newUser(t, h)

	first, err := h.RecordMetric(ctx, u.ID, models.MetricRevenue, 120.5, nil)
	require.NoError(t, err)
	assert.True(t, first.Date.Equal(first.CreatedAt), "date should default to the call time")

	explicit := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	second, err := h.RecordMetric(ctx, u.ID, models.MetricRevenue, 120.5, &explicit)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.Date.Equal(explicit))

	_, err = h.RecordMetric(ctx, u.ID, models.MetricOrders, 3, nil)
	require.NoError(t, err)

	revenue, err := h.GetAnalyticsByUser(ctx, u.ID, models.MetricRevenue)
	require.NoError(t, err)
	require.Len(t, revenue, 2)
	assert.Equal(t, second.ID, revenue[0].ID)

	all, err := h.GetAnalyticsByUser(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = h.RecordMetric(ctx, u.ID, " ", 1, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTodoCache(t *testing.T) {
	h := newHelpers(t)
	ctx := context.Background()

	todo := models.Todo{ID: "todo_1", UserID: "u1", Title: "Count stock", Priority: models.PriorityHigh, Category: "inventory"}
	todo.Stamp(start)
	_, err := h.SaveTodo(ctx, todo)
	require.NoError(t, err)

	todos, err := h.GetTodosByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "Count stock", todos[0].Title)

	require.NoError(t, h.DeleteTodo(ctx, "todo_1"))
	got, err := h.GetTodo(ctx, "todo_1")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = h.SaveTodo(ctx, models.Todo{Title: "no id"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummarize(t *testing.T) {
	orders := []models.Order{
		{Status: models.OrderStatusCompleted, Amount: decimal.RequireFromString("10.50")},
		{Status: models.OrderStatusCompleted, Amount: decimal.RequireFromString("4.50")},
		{Status: models.OrderStatusPending, Amount: decimal.RequireFromString("99")},
		{Status: models.OrderStatusCancelled, Amount: decimal.RequireFromString("7")},
	}
	products := []models.Product{
		{Status: models.ProductStatusInStock},
		{Status: models.ProductStatusLowStock},
		{Status: models.ProductStatusOutOfStock},
		{Status: models.ProductStatusLowStock},
	}

	d := domain.Summarize("u1", orders, products)

	assert.True(t, d.Revenue.Equal(decimal.NewFromInt(15)), "revenue %s", d.Revenue)
	assert.Equal(t, 4, d.TotalOrders)
	assert.Equal(t, 2, d.OrdersByStatus[models.OrderStatusCompleted])
	assert.Equal(t, 0, d.OrdersByStatus[models.OrderStatusProcessing])
	assert.Equal(t, 2, d.LowStock)
	assert.Equal(t, 1, d.OutOfStock)
}

func TestFilterOrdersByStatus(t *testing.T) {
	orders := []models.Order{
		{ID: "1", Status: models.OrderStatusPending},
		{ID: "2", Status: models.OrderStatusCompleted},
		{ID: "3", Status: models.OrderStatusPending},
	}

	assert.Len(t, domain.FilterOrdersByStatus(orders, "all"), 3)
	pending := domain.FilterOrdersByStatus(orders, "pending")
	require.Len(t, pending, 2)
	assert.Equal(t, "3", pending[1].ID)
	assert.Empty(t, domain.FilterOrdersByStatus(orders, "shipped"))
}
