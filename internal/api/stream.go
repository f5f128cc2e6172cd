package api

import (
	"io"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/reactive"
)

// latest holds the newest result set; older unsent sets are overwritten
type latest[T any] struct {
	mu      sync.Mutex
	value   T
	pending chan struct{}
}

func newLatest[T any]() *latest[T] {
	return &latest[T]{pending: make(chan struct{}, 1)}
}

func (l *latest[T]) set(v T) {
	l.mu.Lock()
	l.value = v
	l.mu.Unlock()
	select {
	case l.pending <- struct{}{}:
	default:
	}
}

func (l *latest[T]) get() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// streamOrders pushes the user's order list as server-sent events, once on
// connect and again after every change to the orders table
func (hs *handlers) streamOrders(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("id")
	tab := c.Query("status")

	updates := newLatest[[]models.Order]()
	q := reactive.NewQuery(hs.h.Orders(), hs.logger)
	q.OnChange(func(rows []models.Order) {
		updates.set(domain.FilterOrdersByStatus(rows, tab))
	})
	reactive.BindUser(ctx, q, userID)
	defer q.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-updates.pending:
			c.SSEvent("orders", updates.get())
			return true
		}
	})
}
