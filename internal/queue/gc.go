package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultGCInterval is how often the worker sweeps the DLQ
	DefaultGCInterval = time.Hour
	gcTimeout         = 2 * time.Minute
)

// GarbageCollector purges dead-lettered jobs once they are older than the
// retention period, so failed brain dumps stay inspectable for a while
// without the DLQ growing forever.
type GarbageCollector struct {
	dlqPurger DLQPurger
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
}

// NewGarbageCollector creates a new garbage collector. A nil purger makes
// every sweep a no-op; a non-positive interval means DefaultGCInterval.
func NewGarbageCollector(purger DLQPurger, interval time.Duration, retention time.Duration, logger *zap.Logger) *GarbageCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	return &GarbageCollector{
		dlqPurger: purger,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Start sweeps once immediately and then every interval until ctx is
// cancelled, returning ctx.Err(). Sweep failures are logged, not returned.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	gc.logger.Info("dlq_gc_started",
		zap.Duration("interval", gc.interval),
		zap.Duration("retention", gc.retention),
	)

	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()

	for {
		if err := gc.collect(ctx); err != nil && ctx.Err() == nil {
			gc.logger.Error("dlq_gc_failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (gc *GarbageCollector) collect(ctx context.Context) error {
	if gc.dlqPurger == nil || ctx.Err() != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, gcTimeout)
	defer cancel()

	n, err := gc.dlqPurger.PurgeOlderThan(ctx, gc.retention)
	if err != nil {
		return fmt.Errorf("DLQ purge (%d purged before failure): %w", n, err)
	}
	if n > 0 {
		gc.logger.Info("dlq_gc_purged", zap.Int("count", n), zap.Duration("retention", gc.retention))
	}
	return nil
}
