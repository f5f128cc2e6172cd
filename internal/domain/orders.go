package domain

import (
	"context"
	"strings"
	"time"

	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderInput carries the caller-supplied order fields
type OrderInput struct {
	UserID   string             `json:"userId"`
	Customer string             `json:"customer"`
	Amount   decimal.Decimal    `json:"amount"`
	Status   models.OrderStatus `json:"status"`
	Date     time.Time          `json:"date"`
	Items    int                `json:"items"`
}

// CreateOrder validates and stores a new order. Status defaults to Pending
// and Date to today.
func (h *Helpers) CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	if in.UserID == "" {
		return nil, invalid("order requires a user")
	}
	if in.Amount.IsNegative() {
		return nil, invalid("order amount %s is negative", in.Amount)
	}
	if in.Items < 1 {
		return nil, invalid("order needs at least one item, got %d", in.Items)
	}
	if in.Status == "" {
		in.Status = models.OrderStatusPending
	}
	if !in.Status.Valid() {
		return nil, invalid("order status %q", in.Status)
	}

	now := h.clock.Now()
	if in.Date.IsZero() {
		in.Date = now
	}

	order := &models.Order{
		ID:       NewID("order"),
		UserID:   in.UserID,
		Customer: strings.TrimSpace(in.Customer),
		Amount:   in.Amount.Round(2),
		Status:   in.Status,
		Date:     datatypes.Date(in.Date),
		Items:    in.Items,
	}
	order.Stamp(now)

	return h.orders.Put(ctx, order)
}

// GetOrder returns the order or nil when absent
func (h *Helpers) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return h.orders.Get(ctx, id)
}

// GetOrdersByUser lists a user's orders, newest first
func (h *Helpers) GetOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return h.orders.Query(ctx, byUser(userID))
}

// UpdateOrderStatus moves an order to status
func (h *Helpers) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalid("order status %q", status)
	}

	order, err := h.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, notFound("order", id)
	}

	order.Status = status
	order.Touch(h.clock.Now())

	return h.orders.Put(ctx, order)
}

// FilterOrdersByStatus implements the orders screen tabs: "all" or any status
// name, matched case-insensitively. An unknown tab matches nothing.
func FilterOrdersByStatus(orders []models.Order, tab string) []models.Order {
	if tab == "" || strings.EqualFold(tab, "all") {
		return orders
	}
	status, ok := models.ParseOrderStatus(tab)
	if !ok {
		return []models.Order{}
	}

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}
