package domain

import (
	"context"
	"strings"

	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/shopspring/decimal"
)

// ProductInput carries the caller-supplied product fields. Status is not
// among them: it is always derived from Stock.
type ProductInput struct {
	UserID string          `json:"userId"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
}

// CreateProduct validates and stores a new product
func (h *Helpers) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.UserID == "" {
		return nil, invalid("product requires a user")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("product name is required")
	}
	if in.Price.IsNegative() {
		return nil, invalid("product price %s is negative", in.Price)
	}
	if in.Stock < 0 {
		return nil, invalid("product stock %d is negative", in.Stock)
	}

	product := &models.Product{
		ID:     NewID("product"),
		UserID: in.UserID,
		Name:   name,
		Price:  in.Price.Round(2),
	}
	product.SetStock(in.Stock)
	product.Stamp(h.clock.Now())

	return h.products.Put(ctx, product)
}

// GetProduct returns the product or nil when absent
func (h *Helpers) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return h.products.Get(ctx, id)
}

// GetProductsByUser lists a user's products, newest first
func (h *Helpers) GetProductsByUser(ctx context.Context, userID string) ([]models.Product, error) {
	return h.products.Query(ctx, byUser(userID))
}

// UpdateProductStock sets the stock level and recomputes the status
func (h *Helpers) UpdateProductStock(ctx context.Context, id string, stock int) (*models.Product, error) {
	if stock < 0 {
		return nil, invalid("product stock %d is negative", stock)
	}

	product, err := h.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, notFound("product", id)
	}

	product.SetStock(stock)
	product.Touch(h.clock.Now())

	return h.products.Put(ctx, product)
}
