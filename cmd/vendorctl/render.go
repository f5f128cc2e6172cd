package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/todos"
)

func renderTodos(w io.Writer, list []models.Todo, counts todos.Count, now time.Time) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No todos found")
		fmt.Fprintf(w, "%d pending, %d completed\n", counts.Pending, counts.Completed)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "", "Title", "Priority", "Category", "Due"})
	for _, todo := range list {
		t.AppendRow(table.Row{
			todo.ID,
			checkbox(todo.Completed),
			todo.Title,
			todo.Priority,
			todo.Category,
			dueLabel(todo, now),
		})
	}
	t.Render()
	fmt.Fprintf(w, "%d pending, %d completed\n", counts.Pending, counts.Completed)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func dueLabel(t models.Todo, now time.Time) string {
	if t.DueDate == nil {
		return ""
	}
	label := t.DueDate.UTC().Format(dateLayout)
	if t.Overdue(now) {
		label += " overdue"
	}
	return label
}
