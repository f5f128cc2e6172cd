// Package seed loads the demo data a fresh vendor account starts with.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

// Fixture is the parsed demo data file
type Fixture struct {
	Orders   []OrderFixture   `yaml:"orders"`
	Products []ProductFixture `yaml:"products"`
	Metrics  []MetricFixture  `yaml:"metrics"`
	Todos    []TodoFixture    `yaml:"todos"`
}

// OrderFixture describes one demo order
type OrderFixture struct {
	Customer string          `yaml:"customer"`
	Amount   decimal.Decimal `yaml:"amount"`
	Status   string          `yaml:"status"`
	Items    int             `yaml:"items"`
	DaysAgo  int             `yaml:"days_ago"`
}

// ProductFixture describes one demo product
type ProductFixture struct {
	Name  string          `yaml:"name"`
	Price decimal.Decimal `yaml:"price"`
	Stock int             `yaml:"stock"`
}

// MetricFixture describes one demo analytics point
type MetricFixture struct {
	Metric  string  `yaml:"metric"`
	Value   float64 `yaml:"value"`
	DaysAgo int     `yaml:"days_ago"`
}

// TodoFixture describes one sample todo
type TodoFixture struct {
	Title           string          `yaml:"title"`
	Description     string          `yaml:"description"`
	Priority        models.Priority `yaml:"priority"`
	Category        string          `yaml:"category"`
	Completed       bool            `yaml:"completed"`
	DueInHours      *int            `yaml:"due_in_hours"`
	CreatedHoursAgo int             `yaml:"created_hours_ago"`
}

// Parse decodes a fixture, rejecting unknown keys
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse seed fixture: %w", err)
	}

	for i, o := range f.Orders {
		if _, ok := models.ParseOrderStatus(o.Status); !ok {
			return nil, fmt.Errorf("seed order %d: unknown status %q", i, o.Status)
		}
	}
	for i, t := range f.Todos {
		if t.Title == "" {
			return nil, fmt.Errorf("seed todo %d: missing title", i)
		}
	}
	return &f, nil
}

// Demo returns the embedded demo fixture
func Demo() (*Fixture, error) {
	return Parse(demoYAML)
}

// Result counts what a seeding run wrote
type Result struct {
	Orders   int
	Products int
	Metrics  int
	Skipped  bool
}

// DemoData writes the demo orders, products and metrics for userID.
// Skips when the user already has orders. Rows are written one at a time:
// a failure part way leaves the rows written so far in place and the
// returned Result says how far it got.
func DemoData(ctx context.Context, h *domain.Helpers, userID string, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	existing, err := h.GetOrdersByUser(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if len(existing) > 0 {
		logger.Info("Seed data already exists, skipping", "user_id", userID)
		return Result{Skipped: true}, nil
	}

	fixture, err := Demo()
	if err != nil {
		return Result{}, err
	}

	var res Result
	now := h.Now()

	for _, o := range fixture.Orders {
		status, _ := models.ParseOrderStatus(o.Status)
		_, err := h.CreateOrder(ctx, domain.OrderInput{
			UserID:   userID,
			Customer: o.Customer,
			Amount:   o.Amount,
			Status:   status,
			Date:     now.AddDate(0, 0, -o.DaysAgo),
			Items:    o.Items,
		})
		if err != nil {
			return res, fmt.Errorf("failed to seed order for %s: %w", o.Customer, err)
		}
		res.Orders++
	}

	for _, p := range fixture.Products {
		_, err := h.CreateProduct(ctx, domain.ProductInput{
			UserID: userID,
			Name:   p.Name,
			Price:  p.Price,
			Stock:  p.Stock,
		})
		if err != nil {
			return res, fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
		res.Products++
	}

	for _, m := range fixture.Metrics {
		date := now.AddDate(0, 0, -m.DaysAgo)
		if _, err := h.RecordMetric(ctx, userID, m.Metric, m.Value, &date); err != nil {
			return res, fmt.Errorf("failed to seed metric %s: %w", m.Metric, err)
		}
		res.Metrics++
	}

	logger.Info("Seeded demo data",
		"user_id", userID,
		"orders", res.Orders,
		"products", res.Products,
		"metrics", res.Metrics,
	)
	return res, nil
}

// SampleTodos builds the sample todos shown when neither the remote API nor
// the local cache has anything. Ids are stable per user.
func SampleTodos(userID string, now time.Time) ([]models.Todo, error) {
	fixture, err := Demo()
	if err != nil {
		return nil, err
	}

	todos := make([]models.Todo, 0, len(fixture.Todos))
	for i, f := range fixture.Todos {
		todo := models.Todo{
			ID:          fmt.Sprintf("todo_sample_%s_%d", userID, i+1),
			UserID:      userID,
			Title:       f.Title,
			Description: f.Description,
			Completed:   f.Completed,
			Priority:    f.Priority,
			Category:    f.Category,
		}
		if todo.Priority == "" {
			todo.Priority = models.DefaultPriority
		}
		if todo.Category == "" {
			todo.Category = models.DefaultCategory
		}
		if f.DueInHours != nil {
			due := now.Add(time.Duration(*f.DueInHours) * time.Hour)
			todo.DueDate = &due
		}
		todo.Stamp(now.Add(-time.Duration(f.CreatedHoursAgo) * time.Hour))
		todo.Touch(now)
		todos = append(todos, todo)
	}
	return todos, nil
}
