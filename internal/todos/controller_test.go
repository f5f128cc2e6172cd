package todos_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/logging"
	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/store"
	"github.com/jimdaga/vendorhub/internal/todos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("connection refused")

// fakeRemote records calls and fails every one of them while fail is set
type fakeRemote struct {
	mu    sync.Mutex
	fail  bool
	list  []models.Todo
	calls []string
	// serverID, when set, is assigned to created todos
	serverID string
}

func (f *fakeRemote) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.fail {
		return errOffline
	}
	return nil
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *fakeRemote) List(_ context.Context, userID string) ([]models.Todo, error) {
	if err := f.record("list " + userID); err != nil {
		return nil, err
	}
	return f.list, nil
}

func (f *fakeRemote) Create(_ context.Context, todo models.Todo) (*models.Todo, error) {
	if err := f.record("create " + todo.Title); err != nil {
		return nil, err
	}
	if f.serverID != "" {
		todo.ID = f.serverID
	}
	return &todo, nil
}

func (f *fakeRemote) Update(_ context.Context, id string, changes models.TodoChanges) (*models.Todo, error) {
	if err := f.record("update " + id); err != nil {
		return nil, err
	}
	updated := changes.Apply(models.Todo{ID: id, UserID: "u1", Title: "server", Priority: models.PriorityLow, Category: "general"})
	return &updated, nil
}

func (f *fakeRemote) Delete(_ context.Context, id string) error {
	return f.record("delete " + id)
}

func (f *fakeRemote) ToggleComplete(_ context.Context, id string, completed bool) (*models.Todo, error) {
	if err := f.record(fmt.Sprintf("toggle %s %t", id, completed)); err != nil {
		return nil, err
	}
	return &models.Todo{ID: id, Completed: completed}, nil
}

var now0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newClock() *domain.Clock {
	n := 0
	return domain.NewClock(func() time.Time {
		n++
		return now0.Add(time.Duration(n) * time.Second)
	})
}

func newCache(t *testing.T) *domain.Helpers {
	t.Helper()
	s := store.New(store.Config{DatabaseURL: filepath.Join(t.TempDir(), "vendor.db")}, logging.Discard(), domain.Tables()...)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return domain.New(s)
}

func newController(t *testing.T, remote todos.Remote, cache todos.Cache) *todos.Controller {
	t.Helper()
	c := todos.NewController(todos.Options{Remote: remote, Cache: cache, Clock: newClock(), Logger: logging.Discard()})
	require.NoError(t, c.Load(context.Background(), "u1"))
	return c
}

func cachedIDs(t *testing.T, cache *domain.Helpers) []string {
	t.Helper()
	list, err := cache.GetTodosByUser(context.Background(), "u1")
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, td := range list {
		out = append(out, td.ID)
	}
	return out
}

func TestLoadWithoutRemoteFallsBackToSamples(t *testing.T) {
	c := newController(t, nil, newCache(t))

	assert.Len(t, c.Todos(), 3)
	assert.Empty(t, c.Err())
	assert.False(t, c.Loading())
}

func TestLoadPrefersRemoteAndMirrorsIt(t *testing.T) {
	ctx := context.Background()
	cache := newCache(t)
	stale := todo("stale", false, models.PriorityLow, now0)
	_, err := cache.SaveTodo(ctx, stale)
	require.NoError(t, err)

	remote := &fakeRemote{list: []models.Todo{todo("remote", false, models.PriorityHigh, now0)}}
	c := newController(t, remote, cache)

	assert.Equal(t, []string{"remote"}, titles(c.Todos()))
	assert.Equal(t, []string{"id_remote"}, cachedIDs(t, cache))
}

func TestLoadFailureUsesCacheAndSetsBanner(t *testing.T) {
	ctx := context.Background()
	cache := newCache(t)
	_, err := cache.SaveTodo(ctx, todo("cached", false, models.PriorityLow, now0))
	require.NoError(t, err)

	c := newController(t, &fakeRemote{fail: true}, cache)

	assert.Equal(t, []string{"cached"}, titles(c.Todos()))
	assert.Equal(t, todos.MsgLoadFailed, c.Err())

	c.ClearError()
	assert.Empty(t, c.Err())
}

func TestLoadEmptyUserClearsList(t *testing.T) {
	c := newController(t, nil, nil)
	require.NotEmpty(t, c.Todos())

	require.NoError(t, c.Load(context.Background(), ""))
	assert.Empty(t, c.Todos())
	assert.Empty(t, c.UserID())

	_, err := c.Create(context.Background(), todos.Input{Title: "Restock"})
	assert.ErrorIs(t, err, todos.ErrNoUser)
}

func TestCreateSurvivesRemoteFailure(t *testing.T) {
	ctx := context.Background()
	cache := newCache(t)
	remote := &fakeRemote{}
	c := newController(t, remote, cache)
	remote.fail = true

	created, err := c.Create(ctx, todos.Input{Title: "Call supplier"})
	require.NoError(t, err)

	list := c.Todos()
	assert.Equal(t, created.ID, list[0].ID, "new todo goes to the head")
	assert.False(t, created.Completed)
	assert.Equal(t, models.PriorityMedium, created.Priority)
	assert.Equal(t, "general", created.Category)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, todos.MsgCreateFailed, c.Err())
	assert.Contains(t, cachedIDs(t, cache), created.ID)
}

func TestCreateAdoptsServerCopy(t *testing.T) {
	ctx := context.Background()
	cache := newCache(t)
	remote := &fakeRemote{serverID: "todo_server_1"}
	c := newController(t, remote, cache)

	created, err := c.Create(ctx, todos.Input{Title: "Call supplier"})
	require.NoError(t, err)

	assert.Equal(t, "todo_server_1", created.ID)
	assert.Equal(t, "todo_server_1", c.Todos()[0].ID)
	assert.Equal(t, []string{"todo_server_1"}, cachedIDs(t, cache))
	assert.Empty(t, c.Err())
}

func TestCreateRejectsInvalidInputWithoutCallingRemote(t *testing.T) {
	remote := &fakeRemote{}
	c := newController(t, remote, nil)

	_, err := c.Create(context.Background(), todos.Input{Title: " "})
	var verr *todos.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"list u1"}, remote.Calls())
	assert.Empty(t, c.Todos())
}

func TestUpdateSurvivesRemoteFailure(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{list: []models.Todo{todo("old", false, models.PriorityLow, now0)}}
	c := newController(t, remote, nil)
	remote.fail = true

	updated, err := c.Update(ctx, "id_old", models.TodoChanges{Title: ptr("  new  "), Priority: ptr(models.PriorityHigh)})
	require.NoError(t, err)

	got, ok := c.Get("id_old")
	require.True(t, ok)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.True(t, got.UpdatedAt.After(now0))
	assert.Equal(t, updated, got)
	assert.Equal(t, todos.MsgUpdateFailed, c.Err())
}

func TestUpdateAdoptsServerCopy(t *testing.T) {
	remote := &fakeRemote{list: []models.Todo{todo("old", false, models.PriorityLow, now0)}}
	c := newController(t, remote, nil)

	_, err := c.Update(context.Background(), "id_old", models.TodoChanges{Completed: ptr(true)})
	require.NoError(t, err)

	got, _ := c.Get("id_old")
	assert.Equal(t, "server", got.Title)
	assert.True(t, got.Completed)
}

func TestDeleteRollsBackOnRemoteFailure(t *testing.T) {
	ctx := context.Background()
	cache := newCache(t)
	remote := &fakeRemote{list: []models.Todo{
		todo("a", false, models.PriorityLow, now0),
		todo("b", false, models.PriorityLow, now0),
		todo("c", false, models.PriorityLow, now0),
	}}
	c := newController(t, remote, cache)
	remote.fail = true

	require.NoError(t, c.Delete(ctx, "id_b"))

	assert.Equal(t, []string{"a", "b", "c"}, titles(c.Todos()))
	assert.Contains(t, cachedIDs(t, cache), "id_b")
	assert.Equal(t, todos.MsgDeleteFailed, c.Err())
}

func TestDeleteRemovesOnSuccess(t *testing.T) {
	cache := newCache(t)
	remote := &fakeRemote{list: []models.Todo{todo("a", false, models.PriorityLow, now0)}}
	c := newController(t, remote, cache)

	require.NoError(t, c.Delete(context.Background(), "id_a"))
	assert.Empty(t, c.Todos())
	assert.Empty(t, cachedIDs(t, cache))
	assert.Contains(t, remote.Calls(), "delete id_a")
}

func TestToggleRevertsOnRemoteFailure(t *testing.T) {
	original := todo("a", false, models.PriorityLow, now0)
	remote := &fakeRemote{list: []models.Todo{original}}
	c := newController(t, remote, nil)
	remote.fail = true

	got, err := c.ToggleComplete(context.Background(), "id_a")
	require.NoError(t, err)

	assert.False(t, got.Completed)
	current, _ := c.Get("id_a")
	assert.Equal(t, original, current)
	assert.Equal(t, todos.MsgUpdateFailed, c.Err())
	assert.Contains(t, remote.Calls(), "toggle id_a true")
}

func TestToggleKeepsFlipOnSuccess(t *testing.T) {
	remote := &fakeRemote{list: []models.Todo{todo("a", false, models.PriorityLow, now0)}}
	c := newController(t, remote, nil)

	got, err := c.ToggleComplete(context.Background(), "id_a")
	require.NoError(t, err)
	assert.True(t, got.Completed)

	current, _ := c.Get("id_a")
	assert.True(t, current.Completed)
	assert.Empty(t, c.Err())
}

func TestMutationsOnUnknownIDSkipRemote(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	c := newController(t, remote, nil)

	_, err := c.Update(ctx, "missing", models.TodoChanges{Completed: ptr(true)})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, c.Delete(ctx, "missing"), store.ErrNotFound)
	_, err = c.ToggleComplete(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Equal(t, []string{"list u1"}, remote.Calls())
}

func TestNextMutationClearsBanner(t *testing.T) {
	remote := &fakeRemote{list: []models.Todo{todo("a", false, models.PriorityLow, now0)}}
	c := newController(t, remote, nil)

	remote.fail = true
	_, _ = c.ToggleComplete(context.Background(), "id_a")
	require.NotEmpty(t, c.Err())

	remote.fail = false
	_, err := c.ToggleComplete(context.Background(), "id_a")
	require.NoError(t, err)
	assert.Empty(t, c.Err())
}

func TestSampleTodosSurviveFirstEdit(t *testing.T) {
	ctx := context.Background()
	cache := newCache(t)

	c := newController(t, nil, cache)
	samples := c.Todos()
	require.Len(t, samples, 3)
	assert.Len(t, cachedIDs(t, cache), 3)

	toggled, err := c.ToggleComplete(ctx, samples[0].ID)
	require.NoError(t, err)

	restarted := newController(t, nil, cache)
	list := restarted.Todos()
	require.Len(t, list, 3)
	got, ok := restarted.Get(samples[0].ID)
	require.True(t, ok)
	assert.Equal(t, toggled.Completed, got.Completed)
}

func TestCacheListenersMayReadController(t *testing.T) {
	cache := newCache(t)
	c := newController(t, nil, cache)

	var seen []int
	unsubscribe := cache.Todos().Subscribe(func(store.Event) {
		seen = append(seen, len(c.Todos()))
	})
	t.Cleanup(unsubscribe)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Create(context.Background(), todos.Input{Title: "Restock"})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("create blocked on a listener reading the controller")
	}
	assert.Equal(t, []int{4}, seen)
}
