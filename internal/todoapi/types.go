// Package todoapi is the client for the remote todo persistence API
package todoapi

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Route paths shared by the client and the reference server
const (
	TodosPath       = "/api/todos"
	RequestIDHeader = "X-Request-ID"
)

// ToggleRequest is the body of PATCH /api/todos/:id/toggle
type ToggleRequest struct {
	Completed bool `json:"completed"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RemoteRequestError wraps every failed call: transport errors, timeouts and
// non-2xx responses alike
type RemoteRequestError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteRequestError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("todo api %s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("todo api %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("todo api %s: status %d", e.Op, e.StatusCode)
	}
}

func (e *RemoteRequestError) Unwrap() error { return e.Err }

// Timeout reports whether the request ran out of time. Timeouts are safe to
// retry.
func (e *RemoteRequestError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}
