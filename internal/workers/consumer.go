package workers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/benvon/life-rpg/internal/queue"
)

// JobSource delivers queued jobs
type JobSource interface {
	Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error)
}

// JobProcessor handles one delivered job, settling the message itself
type JobProcessor interface {
	ProcessJob(ctx context.Context, msg queue.MessageInterface) error
}

// RunConsumer processes jobs from source until ctx is cancelled, running at
// most prefetch jobs at once. In-flight jobs finish before it returns. It
// returns queue.ErrDeliveryClosed if the broker stops delivering first.
func RunConsumer(ctx context.Context, source JobSource, prefetch int, processor JobProcessor, logger *zap.Logger) error {
	if prefetch < 1 {
		prefetch = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	msgs, errs, err := source.Consume(ctx, prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	logger.Info("worker_consuming", zap.Int("prefetch", prefetch))

	var inflight errgroup.Group
	inflight.SetLimit(prefetch)
	defer func() { _ = inflight.Wait() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case consumeErr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(consumeErr, queue.ErrDeliveryClosed) {
				return consumeErr
			}
			logger.Warn("job_delivery_error", zap.Error(consumeErr))
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return queue.ErrDeliveryClosed
			}
			inflight.Go(func() error {
				job := msg.GetJob()
				if err := processor.ProcessJob(ctx, msg); err != nil {
					logger.Error("failed_to_process_job",
						zap.Error(err),
						zap.String("job_id", job.ID.String()),
						zap.String("job_type", string(job.Type)),
					)
				}
				return nil
			})
		}
	}
}
