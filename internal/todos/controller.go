// Package todos holds the vendor todo list: an optimistic controller that
// applies mutations locally before the remote API confirms them, plus the
// filter and sort rules views apply on top.
package todos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/seed"
	"github.com/jimdaga/vendorhub/internal/store"
)

// Banner messages recorded when the remote API fails
const (
	MsgLoadFailed   = "failed to load todos"
	MsgCreateFailed = "failed to create todo"
	MsgUpdateFailed = "failed to update todo"
	MsgDeleteFailed = "failed to delete todo"
)

// ErrNoUser is returned by mutations before a user is loaded
var ErrNoUser = errors.New("no user loaded")

// Remote persists todos on a server
type Remote interface {
	List(ctx context.Context, userID string) ([]models.Todo, error)
	Create(ctx context.Context, todo models.Todo) (*models.Todo, error)
	Update(ctx context.Context, id string, changes models.TodoChanges) (*models.Todo, error)
	Delete(ctx context.Context, id string) error
	ToggleComplete(ctx context.Context, id string, completed bool) (*models.Todo, error)
}

// Cache mirrors the list locally so it survives restarts
type Cache interface {
	SaveTodo(ctx context.Context, todo models.Todo) (*models.Todo, error)
	GetTodosByUser(ctx context.Context, userID string) ([]models.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

// Options configures a Controller. Remote and Cache are optional.
type Options struct {
	Remote Remote
	Cache  Cache
	Clock  *domain.Clock
	Logger *slog.Logger
}

// Controller owns one user's todo list.
//
// Create and update keep their local result when the remote call fails;
// delete and toggle roll back. Remote failures never surface as returned
// errors: they set a banner message readable through Err.
//
// Cache writes happen outside the controller lock, so listeners on the todos
// table may read the controller. They must not mutate it synchronously.
type Controller struct {
	remote Remote
	cache  Cache
	clock  *domain.Clock
	logger *slog.Logger

	mu      sync.Mutex
	userID  string
	todos   []models.Todo
	loading bool
	banner  string
	// loadGen discards list results that arrive after the user changed
	loadGen uint64
}

// NewController creates an empty controller
func NewController(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = domain.NewClock(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		remote: opts.Remote,
		cache:  opts.Cache,
		clock:  opts.Clock,
		logger: opts.Logger,
		todos:  []models.Todo{},
	}
}

// Todos returns a copy of the current list, in controller order
func (c *Controller) Todos() []models.Todo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Todo{}, c.todos...)
}

// Get returns the todo with id
func (c *Controller) Get(id string) (models.Todo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.todos[i], true
	}
	return models.Todo{}, false
}

// UserID returns the loaded user
func (c *Controller) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Loading reports whether a Load is in flight
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the banner message of the last remote failure, or ""
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

// ClearError dismisses the banner
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.banner = ""
}

// Load replaces the list with userID's todos. The remote list wins when it is
// reachable; otherwise the cache is used, then the sample todos. An empty
// userID clears the list.
func (c *Controller) Load(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.loadGen++
	gen := c.loadGen
	c.userID = userID
	c.banner = ""
	if userID == "" {
		c.todos = []models.Todo{}
		c.loading = false
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	list, banner, err := c.fetch(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen {
		return nil
	}
	c.loading = false
	if err != nil {
		return err
	}
	c.todos = list
	c.banner = banner
	return nil
}

func (c *Controller) fetch(ctx context.Context, userID string) ([]models.Todo, string, error) {
	if c.remote != nil {
		list, err := c.remote.List(ctx, userID)
		if err == nil {
			c.mirror(ctx, userID, list)
			return list, "", nil
		}
		c.logger.Error("Failed to fetch todos", "user_id", userID, "error", err)
		local, lerr := c.local(ctx, userID)
		return local, MsgLoadFailed, lerr
	}
	local, err := c.local(ctx, userID)
	return local, "", err
}

func (c *Controller) local(ctx context.Context, userID string) ([]models.Todo, error) {
	if c.cache != nil {
		cached, err := c.cache.GetTodosByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to read cached todos: %w", err)
		}
		if len(cached) > 0 {
			return cached, nil
		}
	}
	samples, err := seed.SampleTodos(userID, c.clock.Now())
	if err != nil {
		return nil, err
	}
	// Cached samples keep the list whole once the first one is edited
	for _, t := range samples {
		c.cacheSave(ctx, t)
	}
	return samples, nil
}

// mirror makes the cache hold exactly list for userID
func (c *Controller) mirror(ctx context.Context, userID string, list []models.Todo) {
	if c.cache == nil {
		return
	}
	keep := make(map[string]bool, len(list))
	for _, t := range list {
		keep[t.ID] = true
		c.cacheSave(ctx, t)
	}
	cached, err := c.cache.GetTodosByUser(ctx, userID)
	if err != nil {
		c.logger.Warn("Failed to read todo cache", "user_id", userID, "error", err)
		return
	}
	for _, t := range cached {
		if !keep[t.ID] {
			c.cacheDelete(ctx, t.ID)
		}
	}
}

// Create validates in and adds the todo at the head of the list. When the
// remote accepts it, the server copy replaces the local one.
func (c *Controller) Create(ctx context.Context, in Input) (models.Todo, error) {
	now := c.clock.Now()
	if err := ValidateInput(in, now); err != nil {
		return models.Todo{}, err
	}
	in = in.Normalize()

	c.mu.Lock()
	if c.userID == "" {
		c.mu.Unlock()
		return models.Todo{}, ErrNoUser
	}
	c.banner = ""
	local := models.Todo{
		ID:          domain.NewID("todo"),
		UserID:      c.userID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Category:    in.Category,
		DueDate:     in.DueDate,
	}
	local.Stamp(now)
	c.todos = append([]models.Todo{local}, c.todos...)
	c.mu.Unlock()
	c.cacheSave(ctx, local)

	if c.remote == nil {
		return local, nil
	}

	created, err := c.remote.Create(ctx, local)
	if err != nil {
		c.fail(MsgCreateFailed, "create", local.ID, err)
		return local, nil
	}

	c.mu.Lock()
	i := c.indexLocked(local.ID)
	if i < 0 {
		// Removed while the request was in flight
		c.mu.Unlock()
		return *created, nil
	}
	c.todos[i] = *created
	c.mu.Unlock()

	if created.ID != local.ID {
		c.cacheDelete(ctx, local.ID)
	}
	c.cacheSave(ctx, *created)
	return *created, nil
}

// Update merges changes into the todo and re-stamps it. The merged copy stays
// when the remote call fails.
func (c *Controller) Update(ctx context.Context, id string, changes models.TodoChanges) (models.Todo, error) {
	if err := ValidateChanges(changes); err != nil {
		return models.Todo{}, err
	}
	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		changes.Title = &title
	}

	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return models.Todo{}, fmt.Errorf("todo %s: %w", id, store.ErrNotFound)
	}
	c.banner = ""
	merged := changes.Apply(c.todos[i])
	merged.Touch(c.clock.Now())
	c.todos[i] = merged
	c.mu.Unlock()
	c.cacheSave(ctx, merged)

	if c.remote == nil {
		return merged, nil
	}

	updated, err := c.remote.Update(ctx, id, changes)
	if err != nil {
		c.fail(MsgUpdateFailed, "update", id, err)
		return merged, nil
	}

	c.mu.Lock()
	i = c.indexLocked(id)
	if i >= 0 {
		c.todos[i] = *updated
	}
	c.mu.Unlock()

	if i >= 0 {
		c.cacheSave(ctx, *updated)
	}
	return *updated, nil
}

// Delete removes the todo. It is put back in its old position when the remote
// call fails.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("todo %s: %w", id, store.ErrNotFound)
	}
	c.banner = ""
	removed := c.todos[i]
	c.todos = append(c.todos[:i:i], c.todos[i+1:]...)
	c.mu.Unlock()
	c.cacheDelete(ctx, id)

	if c.remote == nil {
		return nil
	}

	if err := c.remote.Delete(ctx, id); err != nil {
		c.fail(MsgDeleteFailed, "delete", id, err)

		c.mu.Lock()
		if c.indexLocked(id) >= 0 || c.userID != removed.UserID {
			c.mu.Unlock()
			return nil
		}
		at := min(i, len(c.todos))
		c.todos = append(c.todos[:at:at], append([]models.Todo{removed}, c.todos[at:]...)...)
		c.mu.Unlock()
		c.cacheSave(ctx, removed)
	}
	return nil
}

// ToggleComplete flips the completed flag. The flip is reverted when the
// remote call fails.
func (c *Controller) ToggleComplete(ctx context.Context, id string) (models.Todo, error) {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return models.Todo{}, fmt.Errorf("todo %s: %w", id, store.ErrNotFound)
	}
	c.banner = ""
	prev := c.todos[i]
	toggled := prev
	toggled.Completed = !prev.Completed
	toggled.Touch(c.clock.Now())
	c.todos[i] = toggled
	c.mu.Unlock()
	c.cacheSave(ctx, toggled)

	if c.remote == nil {
		return toggled, nil
	}

	if _, err := c.remote.ToggleComplete(ctx, id, toggled.Completed); err != nil {
		c.fail(MsgUpdateFailed, "toggle", id, err)

		c.mu.Lock()
		i := c.indexLocked(id)
		if i < 0 || c.todos[i].Completed != toggled.Completed {
			c.mu.Unlock()
			return prev, nil
		}
		c.todos[i].Completed = prev.Completed
		c.todos[i].UpdatedAt = prev.UpdatedAt
		reverted := c.todos[i]
		c.mu.Unlock()

		c.cacheSave(ctx, reverted)
		return reverted, nil
	}
	return toggled, nil
}

func (c *Controller) fail(msg, op, id string, err error) {
	c.logger.Error("Remote todo request failed", "op", op, "todo_id", id, "error", err)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.banner = msg
}

func (c *Controller) indexLocked(id string) int {
	for i, t := range c.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// cacheSave and cacheDelete keep the mirror best effort: the in-memory list
// stays authoritative for the session. They run without c.mu held, since
// store writes notify bus listeners synchronously and a listener may read
// the controller.
func (c *Controller) cacheSave(ctx context.Context, t models.Todo) {
	if c.cache == nil {
		return
	}
	if _, err := c.cache.SaveTodo(ctx, t); err != nil {
		c.logger.Warn("Failed to cache todo", "todo_id", t.ID, "error", err)
	}
}

func (c *Controller) cacheDelete(ctx context.Context, id string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.DeleteTodo(ctx, id); err != nil {
		c.logger.Warn("Failed to drop cached todo", "todo_id", id, "error", err)
	}
}
