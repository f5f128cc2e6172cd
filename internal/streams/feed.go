package streams

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jimdaga/vendorhub/internal/store"
)

// Feed is a running change feed
type Feed struct {
	origin string
	stop   func()
}

// Status reports the sync status shown to users: StatusOffline when no feed
// is running
func (f *Feed) Status() string {
	if f == nil {
		return StatusOffline
	}
	return StatusStreaming
}

// Origin returns the id this process publishes under
func (f *Feed) Origin() string {
	if f == nil {
		return ""
	}
	return f.origin
}

// Stop halts both directions of the feed
func (f *Feed) Stop() {
	if f != nil {
		f.stop()
	}
}

// StartFeed mirrors local changes of s to the stream at redisURL and relays
// changes from other processes back into s. Both loops run in background
// goroutines until Stop.
func StartFeed(redisURL, origin string, s *store.Store, logger *slog.Logger) (*Feed, error) {
	publisher, err := NewPublisher(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create change publisher: %w", err)
	}
	consumer, err := NewChangeConsumer(redisURL, origin, logger)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create change consumer: %w", err)
	}

	mirror := NewMirror(publisher, origin, 0, logger)
	mirror.Attach(s)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := mirror.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Change mirror stopped with error", "error", err)
		}
	}()
	go func() {
		if err := consumer.ConsumeChanges(ctx, HandleChange(s, origin, logger)); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Change consumer stopped with error", "error", err)
		}
	}()

	logger.Info("Change feed started", "origin", origin, "stream", StreamChanges)

	return &Feed{
		origin: origin,
		stop: func() {
			mirror.Detach()
			cancel()
			_ = consumer.Close()
			_ = publisher.Close()
		},
	}, nil
}
