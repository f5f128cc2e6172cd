package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/store"
	"github.com/jimdaga/vendorhub/internal/todoapi"
	"github.com/jimdaga/vendorhub/internal/todos"
)

// validationResponse adds the per-field problems to the error body
type validationResponse struct {
	todoapi.ErrorResponse
	Problems map[string]string `json:"problems"`
}

// respondError maps err onto a status code. Storage failures are logged and
// hidden behind a generic message.
func (hs *handlers) respondError(c *gin.Context, err error) {
	var verr *todos.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, validationResponse{
			ErrorResponse: todoapi.ErrorResponse{Error: verr.Error()},
			Problems:      verr.Problems,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, todoapi.ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, todoapi.ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotReady):
		c.JSON(http.StatusServiceUnavailable, todoapi.ErrorResponse{Error: "storage not ready"})
	default:
		hs.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, todoapi.ErrorResponse{Error: "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, todoapi.ErrorResponse{Error: msg})
}
