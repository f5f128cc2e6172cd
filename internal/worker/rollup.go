package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/models"
)

// Rollup appends the current revenue and order count of userID to the
// analytics table
func Rollup(ctx context.Context, h *domain.Helpers, userID string) (domain.Dashboard, error) {
	d, err := h.GetDashboard(ctx, userID)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("failed to summarize user %s: %w", userID, err)
	}

	now := h.Now()
	if _, err := h.RecordMetric(ctx, userID, models.MetricRevenue, d.Revenue.InexactFloat64(), &now); err != nil {
		return d, fmt.Errorf("failed to record revenue: %w", err)
	}
	if _, err := h.RecordMetric(ctx, userID, models.MetricOrders, float64(d.TotalOrders), &now); err != nil {
		return d, fmt.Errorf("failed to record order count: %w", err)
	}
	return d, nil
}

// handleRollupMetrics processes TaskRollupMetrics
func handleRollupMetrics(logger *slog.Logger, h *domain.Helpers) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload rollupPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.UserID == "" {
			// Invalid payload - don't retry
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}

		user, err := h.GetUser(ctx, payload.UserID)
		if err != nil {
			return fmt.Errorf("failed to fetch user: %w", err)
		}
		if user == nil {
			logger.Error("User not found", "user_id", payload.UserID)
			return fmt.Errorf("user not found: %w", asynq.SkipRetry)
		}

		d, err := Rollup(ctx, h, user.ID)
		if err != nil {
			return err
		}

		logger.Info("Metrics rolled up",
			"user_id", user.ID,
			"revenue", d.Revenue.String(),
			"orders", d.TotalOrders,
		)
		return nil
	}
}

// handleScheduledRollup processes TaskScheduledMetricsRollup: every user is
// rolled up, and one failing user does not stop the rest
func handleScheduledRollup(logger *slog.Logger, h *domain.Helpers) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		users, err := h.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		var errs []error
		for _, u := range users {
			if _, err := Rollup(ctx, h, u.ID); err != nil {
				logger.Error("Rollup failed", "user_id", u.ID, "error", err)
				errs = append(errs, err)
			}
		}

		logger.Info("Scheduled rollup finished", "users", len(users), "failed", len(errs))
		return errors.Join(errs...)
	}
}
