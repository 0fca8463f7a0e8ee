package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/database"
	logpkg "github.com/benvon/life-rpg/internal/logger"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/queue"
	"github.com/benvon/life-rpg/internal/services/ai"
	"github.com/benvon/life-rpg/internal/services/braindump"
	"github.com/benvon/life-rpg/internal/services/quests"
	"github.com/benvon/life-rpg/internal/telemetry"
)

// CompanionNoteTTL is how long a queued companion note stays worth writing
const CompanionNoteTTL = 24 * time.Hour

// errInvalidJob marks jobs that can never succeed; they go straight to the DLQ
var errInvalidJob = errors.New("invalid job")

// Materializer turns a classified brain dump into quests or journal entries
type Materializer interface {
	Apply(ctx context.Context, dump *models.BrainDump) (*quests.Result, error)
}

// BrainDumpProcessor handles process_brain_dump and companion_note jobs
type BrainDumpProcessor struct {
	dumps        database.BrainDumpRepositoryInterface
	materializer Materializer
	companion    ai.CompanionProvider
	jobQueue     queue.Enqueuer
	logger       *zap.Logger
	now          func() time.Time
}

// NewBrainDumpProcessor creates a new processor. companion may be nil, in
// which case no companion notes are written.
func NewBrainDumpProcessor(
	dumps database.BrainDumpRepositoryInterface,
	materializer Materializer,
	companion ai.CompanionProvider,
	jobQueue queue.Enqueuer,
	logger *zap.Logger,
) *BrainDumpProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrainDumpProcessor{
		dumps:        dumps,
		materializer: materializer,
		companion:    companion,
		jobQueue:     jobQueue,
		logger:       logger,
		now:          time.Now,
	}
}

// ProcessJob processes a job based on its type and settles the message
func (p *BrainDumpProcessor) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	ctx, span := telemetry.StartJobSpan(ctx, string(job.Type), job.ID, job.RetryCount)
	defer span.End()

	var err error
	switch job.Type {
	case queue.JobTypeProcessBrainDump:
		err = p.processBrainDump(ctx, job)
	case queue.JobTypeCompanionNote:
		err = p.processCompanionNote(ctx, job)
	default:
		err = fmt.Errorf("%w: unknown job type %s", errInvalidJob, job.Type)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "job failed")
		return p.handleJobError(ctx, msg, job, err)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

// loadDump fetches the job's brain dump and checks ownership
func (p *BrainDumpProcessor) loadDump(ctx context.Context, job *queue.Job) (*models.BrainDump, error) {
	if job.BrainDumpID == nil {
		return nil, fmt.Errorf("%w: brain_dump_id is required", errInvalidJob)
	}

	dump, err := p.dumps.GetByID(ctx, *job.BrainDumpID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", errInvalidJob, err)
		}
		return nil, fmt.Errorf("failed to get brain dump: %w", err)
	}

	if dump.UserID != job.UserID {
		return nil, fmt.Errorf("%w: brain dump does not belong to user", errInvalidJob)
	}
	return dump, nil
}

func (p *BrainDumpProcessor) processBrainDump(ctx context.Context, job *queue.Job) error {
	dump, err := p.loadDump(ctx, job)
	if err != nil {
		return err
	}

	if dump.Status == models.BrainDumpStatusProcessed {
		p.logger.Info("brain_dump_already_processed", zap.String("brain_dump_id", dump.ID.String()))
		return nil
	}

	if dump.Classification == nil {
		dump.Classification = braindump.Classify(dump.RawText)
		dump.Status = models.BrainDumpStatusClassified
	}

	result, err := p.materializer.Apply(ctx, dump)
	if err != nil {
		return fmt.Errorf("failed to materialize brain dump: %w", err)
	}

	// A failed update leaves the dump classified; the retry re-applies it and
	// finds its records already stored.
	now := p.now()
	dump.Status = models.BrainDumpStatusProcessed
	dump.ProcessedAt = &now
	dump.Error = nil
	if err := p.dumps.Update(ctx, dump); err != nil {
		return fmt.Errorf("failed to update brain dump: %w", err)
	}

	p.logger.Info("brain_dump_processed",
		zap.String("brain_dump_id", dump.ID.String()),
		zap.String("user_id", dump.UserID.String()),
		zap.String("action", string(result.Action)),
		zap.Int("quests", len(result.Quests)),
		zap.Int("journal_entries", len(result.Journal)),
		zap.Int("already_stored", result.Existing),
	)

	if p.companion != nil && p.jobQueue != nil {
		noteJob := queue.NewJob(queue.JobTypeCompanionNote, dump.UserID, &dump.ID)
		notAfter := now.Add(CompanionNoteTTL)
		noteJob.NotAfter = &notAfter
		if err := p.jobQueue.Enqueue(ctx, noteJob); err != nil {
			p.logger.Warn("companion_note_enqueue_failed",
				zap.String("brain_dump_id", dump.ID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (p *BrainDumpProcessor) processCompanionNote(ctx context.Context, job *queue.Job) error {
	if p.companion == nil {
		p.logger.Debug("companion_note_skipped", zap.String("job_id", job.ID.String()))
		return nil
	}

	dump, err := p.loadDump(ctx, job)
	if err != nil {
		return err
	}
	if dump.CompanionNote != nil {
		return nil
	}

	note, err := p.companion.CompanionNote(ai.WithLogIDs(ctx, dump.UserID, dump.ID), dump.RawText, dump.Classification)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyNote) {
			return fmt.Errorf("%w: %w", errInvalidJob, err)
		}
		return err
	}

	dump.CompanionNote = &note
	if err := p.dumps.Update(ctx, dump); err != nil {
		return fmt.Errorf("failed to store companion note: %w", err)
	}

	p.logger.Info("companion_note_written",
		zap.String("brain_dump_id", dump.ID.String()),
		zap.Int("note_length", len(note)),
	)
	return nil
}

// handleJobError settles a failed job. Retriable failures are republished
// with a delay and an incremented retry count; everything else is
// dead-lettered.
func (p *BrainDumpProcessor) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("retry_count", job.RetryCount),
		zap.Error(err),
	}

	if errors.Is(err, errInvalidJob) {
		p.logger.Warn("job_rejected", fields...)
		if nackErr := msg.Nack(false); nackErr != nil {
			p.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return err
	}

	if job.CanRetry() && p.jobQueue != nil {
		delay := ai.GetRetryDelay(err, job.RetryCount)
		if ai.IsQuotaError(err) {
			p.logger.Warn("job_quota_exhausted", append(fields, zap.Duration("retry_in", delay))...)
		} else if ai.IsRateLimitError(err) {
			p.logger.Warn("job_rate_limited", append(fields, zap.Duration("retry_in", delay))...)
		} else {
			p.logger.Warn("job_failed_will_retry", append(fields, zap.Duration("retry_in", delay))...)
		}

		if enqueueErr := p.jobQueue.Enqueue(ctx, job.RetryAfter(delay)); enqueueErr != nil {
			if nackErr := msg.Nack(true); nackErr != nil {
				p.logger.Warn("job_nack_failed", zap.Error(nackErr))
			}
			return fmt.Errorf("failed to re-enqueue job: %w", enqueueErr)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			p.logger.Warn("job_ack_failed", zap.Error(ackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	p.logger.Error("job_failed_max_retries", fields...)
	if job.Type == queue.JobTypeProcessBrainDump {
		p.markFailed(ctx, job, err)
	}
	if nackErr := msg.Nack(false); nackErr != nil {
		p.logger.Warn("job_nack_failed", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}

// markFailed records the final error on the brain dump
func (p *BrainDumpProcessor) markFailed(ctx context.Context, job *queue.Job, cause error) {
	if job.BrainDumpID == nil {
		return
	}
	dump, err := p.dumps.GetByID(ctx, *job.BrainDumpID)
	if err != nil {
		p.logger.Warn("brain_dump_mark_failed_lookup", zap.Error(err))
		return
	}
	msg := logpkg.SanitizeError(cause)
	dump.Status = models.BrainDumpStatusFailed
	dump.Error = &msg
	if err := p.dumps.Update(ctx, dump); err != nil {
		p.logger.Warn("brain_dump_mark_failed_update", zap.Error(err))
	}
}
