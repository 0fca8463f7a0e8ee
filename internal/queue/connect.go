package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	connectAttempts     = 10
	connectInitialDelay = 2 * time.Second
	connectMaxDelay     = 30 * time.Second
)

// connectDelay is the wait before retry attempt n (0-based): exponential, capped.
func connectDelay(attempt int) time.Duration {
	if attempt > 4 {
		return connectMaxDelay
	}
	return min(connectInitialDelay*time.Duration(1<<uint(attempt)), connectMaxDelay)
}

// Dial connects to RabbitMQ, retrying with backoff while the broker starts up.
func Dial(ctx context.Context, amqpURL string, logger *zap.Logger) (*RabbitMQQueue, error) {
	return dialWith(ctx, logger, connectAttempts, connectDelay, func() (*RabbitMQQueue, error) {
		return NewRabbitMQQueue(amqpURL, logger)
	})
}

func dialWith(ctx context.Context, logger *zap.Logger, attempts int, delay func(int) time.Duration, connect func() (*RabbitMQQueue, error)) (*RabbitMQQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		q, err := connect()
		if err == nil {
			return q, nil
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		wait := delay(attempt)
		logger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", attempts),
			zap.Duration("retry_delay", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, lastErr)
}
