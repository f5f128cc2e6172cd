package models

import "time"

// Priority of a todo
type Priority string

// Priority constants
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Todo defaults
const (
	DefaultPriority = PriorityMedium
	DefaultCategory = "general"
)

// Rank orders priorities: high > medium > low. Unknown priorities rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Todo is a vendor task
type Todo struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"not null;index" json:"userId"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"not null" json:"description"`
	Completed   bool       `gorm:"not null" json:"completed"`
	Priority    Priority   `gorm:"not null" json:"priority"`
	Category    string     `gorm:"not null" json:"category"`
	DueDate     *time.Time `json:"dueDate"`
	Timestamps
}

func (Todo) TableName() string { return TableTodos }

func (t Todo) PrimaryKey() string { return t.ID }

// Overdue reports whether an open todo is past its due date
func (t Todo) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(now)
}

// TodoChanges is a partial update. Nil fields are left untouched.
type TodoChanges struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Completed    *bool      `json:"completed,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
	Category     *string    `json:"category,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"clearDueDate,omitempty"`
}

// Apply merges the changes into t and returns the result
func (c TodoChanges) Apply(t Todo) Todo {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Completed != nil {
		t.Completed = *c.Completed
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.Category != nil {
		t.Category = *c.Category
	}
	if c.ClearDueDate {
		t.DueDate = nil
	} else if c.DueDate != nil {
		due := *c.DueDate
		t.DueDate = &due
	}
	return t
}
