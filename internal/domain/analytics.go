package domain

import (
	"context"
	"strings"
	"time"

	"github.com/jimdaga/vendorhub/internal/models"
)

// RecordMetric appends one point to a user's metric series. A nil date means
// the time of the call.
func (h *Helpers) RecordMetric(ctx context.Context, userID, metric string, value float64, date *time.Time) (*models.AnalyticsMetric, error) {
	if userID == "" {
		return nil, invalid("metric requires a user")
	}
	metric = strings.TrimSpace(metric)
	if metric == "" {
		return nil, invalid("metric name is required")
	}

	now := h.clock.Now()
	at := now
	if date != nil {
		at = date.UTC()
	}

	entry := &models.AnalyticsMetric{
		ID:     NewID("analytics"),
		UserID: userID,
		Metric: metric,
		Value:  value,
		Date:   at,
	}
	entry.Stamp(now)

	return h.analytics.Put(ctx, entry)
}

// GetAnalyticsByUser lists a user's metric points, newest first, optionally
// restricted to one metric
func (h *Helpers) GetAnalyticsByUser(ctx context.Context, userID, metric string) ([]models.AnalyticsMetric, error) {
	opts := byUser(userID)
	if metric != "" {
		opts.Where["metric"] = metric
	}
	return h.analytics.Query(ctx, opts)
}
