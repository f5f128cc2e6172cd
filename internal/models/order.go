package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

// Order status constants
const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists the valid statuses in display order
var OrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled}

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseOrderStatus matches a status case-insensitively ("completed" -> Completed)
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, known := range OrderStatuses {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Order is a customer order. Only its status changes after creation.
type Order struct {
	ID       string          `gorm:"primaryKey" json:"id"`
	UserID   string          `gorm:"not null;index" json:"userId"`
	Customer string          `gorm:"not null" json:"customer"`
	Amount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status   OrderStatus     `gorm:"not null" json:"status"`
	Date     datatypes.Date  `json:"date"`
	Items    int             `gorm:"not null" json:"items"`
	Timestamps
}

func (Order) TableName() string { return TableOrders }

func (o Order) PrimaryKey() string { return o.ID }
