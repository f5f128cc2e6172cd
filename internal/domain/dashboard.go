package domain

import (
	"context"

	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/shopspring/decimal"
)

// Dashboard summarises a user's orders and catalogue
type Dashboard struct {
	UserID         string                     `json:"userId"`
	Revenue        decimal.Decimal            `json:"revenue"`
	TotalOrders    int                        `json:"totalOrders"`
	OrdersByStatus map[models.OrderStatus]int `json:"ordersByStatus"`
	TotalProducts  int                        `json:"totalProducts"`
	LowStock       int                        `json:"lowStock"`
	OutOfStock     int                        `json:"outOfStock"`
}

// Summarize computes the dashboard from already loaded records.
// Revenue counts completed orders only.
func Summarize(userID string, orders []models.Order, products []models.Product) Dashboard {
	d := Dashboard{
		UserID:         userID,
		Revenue:        decimal.Zero,
		TotalOrders:    len(orders),
		OrdersByStatus: make(map[models.OrderStatus]int, len(models.OrderStatuses)),
		TotalProducts:  len(products),
	}
	for _, status := range models.OrderStatuses {
		d.OrdersByStatus[status] = 0
	}

	for _, o := range orders {
		d.OrdersByStatus[o.Status]++
		if o.Status == models.OrderStatusCompleted {
			d.Revenue = d.Revenue.Add(o.Amount)
		}
	}
	for _, p := range products {
		switch p.Status {
		case models.ProductStatusLowStock:
			d.LowStock++
		case models.ProductStatusOutOfStock:
			d.OutOfStock++
		}
	}
	return d
}

// GetDashboard loads a user's orders and products and summarises them
func (h *Helpers) GetDashboard(ctx context.Context, userID string) (Dashboard, error) {
	orders, err := h.GetOrdersByUser(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	products, err := h.GetProductsByUser(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	return Summarize(userID, orders, products), nil
}
