package domain

import (
	"context"

	"github.com/jimdaga/vendorhub/internal/models"
)

// SaveTodo writes a todo as-is into the local cache. Ids and timestamps are
// owned by the todo controller, so nothing is stamped here.
func (h *Helpers) SaveTodo(ctx context.Context, todo models.Todo) (*models.Todo, error) {
	if todo.ID == "" || todo.UserID == "" {
		return nil, invalid("cached todo needs an id and a user")
	}
	return h.todos.Put(ctx, &todo)
}

// GetTodo returns a cached todo or nil
func (h *Helpers) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	return h.todos.Get(ctx, id)
}

// GetTodosByUser lists a user's cached todos, newest first
func (h *Helpers) GetTodosByUser(ctx context.Context, userID string) ([]models.Todo, error) {
	return h.todos.Query(ctx, byUser(userID))
}

// DeleteTodo removes a cached todo
func (h *Helpers) DeleteTodo(ctx context.Context, id string) error {
	return h.todos.Delete(ctx, id)
}
