package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/koios/api-widget/pkg/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Updater re-runs render passes
type Updater interface {
	Update(ctx context.Context, ids ...models.InstanceID) error
	UpdateAll(ctx context.Context) error
}

// Consumer re-renders widgets when the foreground app reports a saved snapshot
type Consumer struct {
	client  *Client
	updater Updater
	logger  *zap.Logger
}

// NewConsumer creates a new Redis consumer
func NewConsumer(client *Client, updater Updater, logger *zap.Logger) *Consumer {
	return &Consumer{
		client:  client,
		updater: updater,
		logger:  logger,
	}
}

// Start consumes snapshot updates until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Redis consumer for snapshot updates")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Redis consumer stopped")
			return nil
		default:
			if err := c.consumeMessages(ctx); err != nil {
				c.logger.Error("Error consuming messages, will retry",
					zap.Error(err),
					zap.Duration("retry_delay", 5*time.Second))
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(5 * time.Second):
				}
			}
		}
	}
}

func (c *Consumer) consumeMessages(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		streams, err := c.client.ReadFromStream(ctx, 10, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Check if connection is healthy
			if !c.client.IsHealthy(ctx) {
				return fmt.Errorf("Redis connection unhealthy: %w", err)
			}
			c.logger.Error("Error reading from stream", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				c.handleStreamMessage(ctx, message)
			}
		}
	}
}

// handleStreamMessage updates the instance named by widget_id, or every
// instance when the entry carries none
func (c *Consumer) handleStreamMessage(ctx context.Context, msg redis.XMessage) {
	c.logger.Debug("Received snapshot update",
		zap.String("message_id", msg.ID),
		zap.Int("fields_count", len(msg.Values)))

	id, ok, err := widgetIDFromValues(msg.Values)
	if err != nil {
		c.logger.Error("Dropping malformed snapshot update",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		// Acknowledge the message to prevent reprocessing bad data
		_ = c.client.AcknowledgeMessage(ctx, msg.ID)
		return
	}

	if ok {
		err = c.updater.Update(ctx, id)
	} else {
		err = c.updater.UpdateAll(ctx)
	}
	if err != nil {
		c.logger.Error("Failed to update widgets after snapshot update",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}

	if err := c.client.AcknowledgeMessage(ctx, msg.ID); err != nil {
		c.logger.Error("Failed to acknowledge message",
			zap.Error(err),
			zap.String("message_id", msg.ID))
	}
}

// widgetIDFromValues reports the targeted instance. Absent or invalid (0)
// ids target all instances.
func widgetIDFromValues(values map[string]interface{}) (models.InstanceID, bool, error) {
	raw, present := values["widget_id"]
	if !present {
		return models.InvalidInstanceID, false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return models.InvalidInstanceID, false, strconv.ErrSyntax
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return models.InvalidInstanceID, false, err
	}
	id := models.InstanceID(n)
	if id == models.InvalidInstanceID {
		return id, false, nil
	}
	return id, true, nil
}
