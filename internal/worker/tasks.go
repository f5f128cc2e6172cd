package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskRollupMetrics          = "metrics:rollup"
	TaskScheduledMetricsRollup = "metrics:scheduled_rollup"
)

// rollupPayload is the payload of TaskRollupMetrics
type rollupPayload struct {
	UserID string `json:"user_id"`
}

// NewRollupTask builds the per-user rollup task
func NewRollupTask(userID string) (*asynq.Task, error) {
	payload, err := json.Marshal(rollupPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskRollupMetrics,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
		asynq.Retention(24*time.Hour),
	), nil
}

// Enqueuer submits tasks to the worker queue
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer connects to the queue at redisURL
func NewEnqueuer(redisURL string) (*Enqueuer, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &Enqueuer{client: asynq.NewClient(opt)}, nil
}

// Close closes the queue connection
func (e *Enqueuer) Close() error {
	return e.client.Close()
}

// EnqueueRollup schedules a metric rollup for userID. Rollups for the same
// user are collapsed for a minute, so a burst of order changes yields one run.
func (e *Enqueuer) EnqueueRollup(ctx context.Context, userID string) error {
	task, err := NewRollupTask(userID)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, asynq.Unique(time.Minute))
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		return fmt.Errorf("failed to enqueue rollup: %w", err)
	}
	return nil
}
