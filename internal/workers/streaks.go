package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/services/progression"
)

// DefaultStreakSweepSchedule runs the sweep shortly after midnight UTC
const DefaultStreakSweepSchedule = "5 0 * * *"

// StreakResetter zeroes the current streak of characters idle since before cutoff
type StreakResetter interface {
	ResetStaleStreaks(ctx context.Context, cutoff time.Time) (int64, error)
}

// StreakSweeper resets broken streaks on a cron schedule
type StreakSweeper struct {
	characters StreakResetter
	schedule   cron.Schedule
	expr       string
	logger     *zap.Logger
	now        func() time.Time
}

// ParseSchedule parses a standard 5-field cron expression
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(strings.TrimSpace(expr))
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return sched, nil
}

// NewStreakSweeper creates a sweeper for the given cron expression
func NewStreakSweeper(characters StreakResetter, expr string, logger *zap.Logger) (*StreakSweeper, error) {
	if expr == "" {
		expr = DefaultStreakSweepSchedule
	}
	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreakSweeper{
		characters: characters,
		schedule:   sched,
		expr:       expr,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Sweep resets every streak whose last activity day is before yesterday (UTC)
func (s *StreakSweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := progression.StreakCutoff(s.now())
	n, err := s.characters.ResetStaleStreaks(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale streaks: %w", err)
	}
	s.logger.Info("streak_sweep_completed",
		zap.Int64("reset_count", n),
		zap.Time("cutoff", cutoff),
	)
	return n, nil
}

// Run sweeps on schedule until ctx is cancelled
func (s *StreakSweeper) Run(ctx context.Context) error {
	s.logger.Info("streak_sweeper_started", zap.String("schedule", s.expr))
	for {
		now := s.now().UTC()
		next := s.schedule.Next(now)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("streak_sweep_failed", zap.Error(err))
		}
	}
}
