package streams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChangeConsumer consumes change events from Redis Streams. Each process
// reads through its own consumer group so every process sees every change.
type ChangeConsumer struct {
	rdb          *redis.Client
	groupName    string
	consumerName string
	logger       *slog.Logger
}

// GroupName is the consumer group of the process identified by origin
func GroupName(origin string) string {
	return "vendorhub-" + origin
}

// NewChangeConsumer creates a new ChangeConsumer instance
func NewChangeConsumer(redisURL, origin string, logger *slog.Logger) (*ChangeConsumer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	// Read timeout must exceed the XReadGroup Block duration (5s)
	// to avoid spurious i/o timeout errors on idle streams.
	opts.ReadTimeout = 10 * time.Second

	client := redis.NewClient(opts)

	// Start ID "$": a new process only cares about changes from now on
	err = client.XGroupCreateMkStream(context.Background(), StreamChanges, GroupName(origin), "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &ChangeConsumer{
		rdb:          client,
		groupName:    GroupName(origin),
		consumerName: origin,
		logger:       logger,
	}, nil
}

// ConsumeChanges runs a blocking loop consuming changes from the stream
func (c *ChangeConsumer) ConsumeChanges(ctx context.Context, handler func(ChangeEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupName,
			Consumer: c.consumerName,
			Streams:  []string{StreamChanges, ">"},
			Count:    50,
			Block:    5 * time.Second,
		}).Result()

		if err == redis.Nil {
			continue
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Blocking reads return a timeout when no messages arrive
			// within the Block duration; that is normal.
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			c.logger.Error("Failed to read from stream", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				c.process(ctx, message, handler)
			}
		}
	}
}

func (c *ChangeConsumer) process(ctx context.Context, message redis.XMessage, handler func(ChangeEvent) error) {
	payloadStr, ok := message.Values["payload"].(string)
	if !ok {
		c.logger.Error("Invalid message payload", "message_id", message.ID)
		c.ack(ctx, message.ID)
		return
	}

	var ev ChangeEvent
	if err := json.Unmarshal([]byte(payloadStr), &ev); err != nil {
		c.logger.Error("Failed to unmarshal change", "error", err, "message_id", message.ID)
		c.ack(ctx, message.ID)
		return
	}

	if err := handler(ev); err != nil {
		c.logger.Error("Handler failed", "error", err, "table", ev.Table, "id", ev.ID)
		// Message stays in PEL for retry, don't ACK
		return
	}
	c.ack(ctx, message.ID)
}

func (c *ChangeConsumer) ack(ctx context.Context, id string) {
	if err := c.rdb.XAck(ctx, StreamChanges, c.groupName, id).Err(); err != nil {
		c.logger.Error("Failed to ACK message", "error", err, "message_id", id)
	}
}

// Close closes the Redis client connection
func (c *ChangeConsumer) Close() error {
	return c.rdb.Close()
}
