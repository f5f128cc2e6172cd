// Package api serves the vendor HTTP API: the reference todo endpoints used
// by the remote todo client, and the vendor read and mutation endpoints.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/health"
	"github.com/jimdaga/vendorhub/internal/store"
	"github.com/jimdaga/vendorhub/internal/todoapi"
)

// RollupEnqueuer schedules a metrics rollup for a user
type RollupEnqueuer interface {
	EnqueueRollup(ctx context.Context, userID string) error
}

// Deps are the collaborators of the HTTP handlers. Enqueuer and SyncStatus
// are optional.
type Deps struct {
	Store      *store.Store
	Helpers    *domain.Helpers
	Enqueuer   RollupEnqueuer
	SyncStatus func() string
	Logger     *slog.Logger
}

type handlers struct {
	store      *store.Store
	h          *domain.Helpers
	enqueuer   RollupEnqueuer
	syncStatus func() string
	logger     *slog.Logger
}

// NewRouter wires every route onto a new gin engine
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SyncStatus == nil {
		deps.SyncStatus = func() string { return "offline" }
	}
	hs := &handlers{
		store:      deps.Store,
		h:          deps.Helpers,
		enqueuer:   deps.Enqueuer,
		syncStatus: deps.SyncStatus,
		logger:     deps.Logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(deps.Logger))

	r.GET("/health", gin.WrapF(health.NewHandler(deps.Store.Ready)))

	api := r.Group("/api")
	{
		todos := api.Group("/todos")
		todos.GET("", hs.listTodos)
		todos.POST("", hs.createTodo)
		todos.PUT("/:id", hs.updateTodo)
		todos.DELETE("/:id", hs.deleteTodo)
		todos.PATCH("/:id/toggle", hs.toggleTodo)

		api.POST("/users", hs.ensureUser)

		users := api.Group("/users/:id")
		users.GET("/orders", hs.listOrders)
		users.GET("/orders/export", hs.exportOrders)
		users.GET("/orders/stream", hs.streamOrders)
		users.GET("/products", hs.listProducts)
		users.GET("/analytics", hs.listAnalytics)
		users.POST("/analytics", hs.recordMetric)
		users.GET("/dashboard", hs.dashboard)

		api.PATCH("/orders/:id/status", hs.updateOrderStatus)
		api.PATCH("/products/:id/stock", hs.updateProductStock)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, todoapi.ErrorResponse{Error: "not found"})
	})

	return r
}

// requestID echoes the caller's request id, or assigns one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(todoapi.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(todoapi.RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}
