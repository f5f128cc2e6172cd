package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jimdaga/vendorhub/internal/models"
)

// DefaultTimeout bounds every request when no timeout is configured
const DefaultTimeout = 10 * time.Second

// Client talks to the remote todo API. It implements todos.Remote.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A non-positive timeout means
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// List returns a user's todos
func (c *Client) List(ctx context.Context, userID string) ([]models.Todo, error) {
	var list []models.Todo
	path := TodosPath + "?userId=" + url.QueryEscape(userID)
	if err := c.do(ctx, "list", http.MethodGet, path, "", nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Todo{}
	}
	return list, nil
}

// Create stores todo remotely. The local id travels as the request id so the
// response can be matched to the optimistic copy.
func (c *Client) Create(ctx context.Context, todo models.Todo) (*models.Todo, error) {
	var created models.Todo
	if err := c.do(ctx, "create", http.MethodPost, TodosPath, todo.ID, todo, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies changes to the todo with id
func (c *Client) Update(ctx context.Context, id string, changes models.TodoChanges) (*models.Todo, error) {
	var updated models.Todo
	if err := c.do(ctx, "update", http.MethodPut, todoPath(id), id, changes, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the todo with id
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, todoPath(id), id, nil, nil)
}

// ToggleComplete sets the completed flag of the todo with id
func (c *Client) ToggleComplete(ctx context.Context, id string, completed bool) (*models.Todo, error) {
	var updated models.Todo
	err := c.do(ctx, "toggle", http.MethodPatch, todoPath(id)+"/toggle", id, ToggleRequest{Completed: completed}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func todoPath(id string) string {
	return TodosPath + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op, method, path, requestID string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return &RemoteRequestError{Op: op, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RemoteRequestError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteRequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr ErrorResponse
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &RemoteRequestError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteRequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
