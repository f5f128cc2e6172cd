package todos

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/kaptinlin/jsonschema"
)

//go:embed todo.schema.json
var todoSchemaJSON []byte

var todoSchema = mustCompile(todoSchemaJSON)

func mustCompile(data []byte) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(data)
	if err != nil {
		panic(fmt.Sprintf("failed to compile todo schema: %v", err))
	}
	return schema
}

// Input is the user-authored part of a todo
type Input struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	Category    string          `json:"category"`
	DueDate     *time.Time      `json:"dueDate"`
}

// ValidationError lists every problem found in a todo input, keyed by field
// (or by schema keyword when the schema reports it)
type ValidationError struct {
	Problems map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Problems))
	for k := range e.Problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", k, e.Problems[k]))
	}
	return "todo validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(key, msg string) {
	if e.Problems == nil {
		e.Problems = make(map[string]string)
	}
	if _, ok := e.Problems[key]; !ok {
		e.Problems[key] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Normalize trims the input and fills the priority and category defaults
func (in Input) Normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.Priority == "" {
		in.Priority = models.DefaultPriority
	}
	if in.Category == "" {
		in.Category = models.DefaultCategory
	}
	return in
}

// ValidateInput checks a new todo. A due date may not fall before the start
// of the day containing now.
func ValidateInput(in Input, now time.Time) error {
	in = in.Normalize()

	var verr ValidationError
	if in.Title == "" {
		verr.add("title", "title is required")
	}
	checkSchema(map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"priority":    string(in.Priority),
		"category":    in.Category,
	}, &verr)

	if in.DueDate != nil && in.DueDate.Before(startOfDay(now)) {
		verr.add("dueDate", "due date cannot be in the past")
	}
	return verr.orNil()
}

// ValidateChanges checks a partial update. Only the fields present are checked.
func ValidateChanges(changes models.TodoChanges) error {
	var verr ValidationError
	fields := make(map[string]any)

	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		if title == "" {
			verr.add("title", "title is required")
		}
		fields["title"] = title
	}
	if changes.Description != nil {
		fields["description"] = *changes.Description
	}
	if changes.Priority != nil {
		fields["priority"] = string(*changes.Priority)
	}
	if changes.Category != nil {
		fields["category"] = *changes.Category
	}
	if changes.Completed != nil {
		fields["completed"] = *changes.Completed
	}
	checkSchema(fields, &verr)
	return verr.orNil()
}

func checkSchema(fields map[string]any, verr *ValidationError) {
	result := todoSchema.Validate(fields)
	if result.IsValid() {
		return
	}
	for keyword, evalErr := range result.Errors {
		verr.add(keyword, evalErr.Error())
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
