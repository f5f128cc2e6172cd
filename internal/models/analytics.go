package models

import "time"

// Common metric names
const (
	MetricRevenue = "revenue"
	MetricOrders  = "orders"
)

// AnalyticsMetric is one point of an append-only per-user time series
type AnalyticsMetric struct {
	ID     string    `gorm:"primaryKey" json:"id"`
	UserID string    `gorm:"not null;index" json:"userId"`
	Metric string    `gorm:"not null" json:"metric"`
	Value  float64   `gorm:"not null" json:"value"`
	Date   time.Time `gorm:"not null" json:"date"`
	Timestamps
}

func (AnalyticsMetric) TableName() string { return TableAnalytics }

func (m AnalyticsMetric) PrimaryKey() string { return m.ID }
