package todos

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/jimdaga/vendorhub/internal/models"
)

// Status filter values
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// PriorityAll disables the priority filter
const PriorityAll = "all"

// Filter narrows a todo list. Zero values match everything.
type Filter struct {
	Search   string
	Status   string
	Priority string
}

// ParseFilter validates the status and priority filter values
func ParseFilter(search, status, priority string) (Filter, error) {
	f := Filter{
		Search:   search,
		Status:   strings.ToLower(strings.TrimSpace(status)),
		Priority: strings.ToLower(strings.TrimSpace(priority)),
	}
	switch f.Status {
	case "", StatusAll, StatusPending, StatusCompleted:
	default:
		return Filter{}, fmt.Errorf("unknown status filter %q", status)
	}
	if f.Priority != "" && f.Priority != PriorityAll && !models.Priority(f.Priority).Valid() {
		return Filter{}, fmt.Errorf("unknown priority filter %q", priority)
	}
	return f, nil
}

// Active reports whether any filter is set
func (f Filter) Active() bool {
	return f.Search != "" ||
		(f.Status != "" && f.Status != StatusAll) ||
		(f.Priority != "" && f.Priority != PriorityAll)
}

// Match reports whether t passes every filter
func (f Filter) Match(t models.Todo) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}

	switch f.Status {
	case StatusPending:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}

	if f.Priority != "" && f.Priority != PriorityAll && string(t.Priority) != f.Priority {
		return false
	}
	return true
}

// Compare orders todos for display: open before completed, then higher
// priority, then earlier due date when both have one, otherwise newest first.
func Compare(a, b models.Todo) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
		return c
	}
	if a.DueDate != nil && b.DueDate != nil {
		return a.DueDate.Compare(*b.DueDate)
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// View returns the filtered, sorted copy of list
func View(list []models.Todo, f Filter) []models.Todo {
	out := make([]models.Todo, 0, len(list))
	for _, t := range list {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, Compare)
	return out
}

// Count holds the status totals shown above the list
type Count struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Counts tallies the unfiltered list
func Counts(list []models.Todo) Count {
	c := Count{Total: len(list)}
	for _, t := range list {
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}
