package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/store"
	"github.com/jimdaga/vendorhub/internal/todoapi"
	"github.com/jimdaga/vendorhub/internal/todos"
)

func (hs *handlers) listTodos(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		badRequest(c, "userId is required")
		return
	}
	list, err := hs.h.GetTodosByUser(c.Request.Context(), userID)
	if err != nil {
		hs.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// createTodo stores the posted todo. A client-chosen id is kept, so retrying
// the same create is idempotent.
func (hs *handlers) createTodo(c *gin.Context) {
	var in models.Todo
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid todo body")
		return
	}
	if strings.TrimSpace(in.UserID) == "" {
		badRequest(c, "userId is required")
		return
	}

	// The due date may lie in the past for todos authored while offline
	input := todos.Input{Title: in.Title, Description: in.Description, Priority: in.Priority, Category: in.Category}
	now := hs.h.Now()
	if err := todos.ValidateInput(input, now); err != nil {
		hs.respondError(c, err)
		return
	}
	input = input.Normalize()

	todo := models.Todo{
		ID:          in.ID,
		UserID:      in.UserID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   in.Completed,
		Priority:    input.Priority,
		Category:    input.Category,
		DueDate:     in.DueDate,
	}
	if todo.ID == "" {
		todo.ID = domain.NewID("todo")
	}
	todo.Stamp(now)
	if !in.CreatedAt.IsZero() {
		todo.CreatedAt = in.CreatedAt.UTC()
	}

	saved, err := hs.h.SaveTodo(c.Request.Context(), todo)
	if err != nil {
		hs.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (hs *handlers) updateTodo(c *gin.Context) {
	var changes models.TodoChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		badRequest(c, "invalid todo changes")
		return
	}
	if err := todos.ValidateChanges(changes); err != nil {
		hs.respondError(c, err)
		return
	}
	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		changes.Title = &title
	}

	hs.modifyTodo(c, func(t models.Todo) models.Todo {
		return changes.Apply(t)
	})
}

func (hs *handlers) toggleTodo(c *gin.Context) {
	var req todoapi.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid toggle body")
		return
	}
	hs.modifyTodo(c, func(t models.Todo) models.Todo {
		t.Completed = req.Completed
		return t
	})
}

func (hs *handlers) modifyTodo(c *gin.Context, change func(models.Todo) models.Todo) {
	ctx := c.Request.Context()
	id := c.Param("id")

	existing, err := hs.h.GetTodo(ctx, id)
	if err != nil {
		hs.respondError(c, err)
		return
	}
	if existing == nil {
		hs.respondError(c, fmt.Errorf("todo %s: %w", id, store.ErrNotFound))
		return
	}

	updated := change(*existing)
	updated.Touch(hs.h.Now())

	saved, err := hs.h.SaveTodo(ctx, updated)
	if err != nil {
		hs.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// deleteTodo succeeds for absent ids too
func (hs *handlers) deleteTodo(c *gin.Context) {
	id := c.Param("id")
	if err := hs.h.DeleteTodo(c.Request.Context(), id); err != nil {
		hs.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}
