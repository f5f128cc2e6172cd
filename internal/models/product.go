package models

import "github.com/shopspring/decimal"

// ProductStatus is derived from stock and never set on its own
type ProductStatus string

// Product status constants
const (
	ProductStatusOutOfStock ProductStatus = "Out of Stock"
	ProductStatusLowStock   ProductStatus = "Low Stock"
	ProductStatusInStock    ProductStatus = "In Stock"
)

// LowStockThreshold is the first stock level considered fully in stock
const LowStockThreshold = 10

// StatusForStock derives the product status from a stock level
func StatusForStock(stock int) ProductStatus {
	switch {
	case stock <= 0:
		return ProductStatusOutOfStock
	case stock < LowStockThreshold:
		return ProductStatusLowStock
	default:
		return ProductStatusInStock
	}
}

// Product is an item in the vendor's catalogue
type Product struct {
	ID     string          `gorm:"primaryKey" json:"id"`
	UserID string          `gorm:"not null;index" json:"userId"`
	Name   string          `gorm:"not null" json:"name"`
	Price  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock  int             `gorm:"not null" json:"stock"`
	Status ProductStatus   `gorm:"not null" json:"status"`
	Timestamps
}

func (Product) TableName() string { return TableProducts }

func (p Product) PrimaryKey() string { return p.ID }

// SetStock updates stock and keeps Status consistent with it
func (p *Product) SetStock(stock int) {
	p.Stock = stock
	p.Status = StatusForStock(stock)
}
