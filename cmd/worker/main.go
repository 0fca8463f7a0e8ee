package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/benvon/life-rpg/internal/config"
	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/logger"
	"github.com/benvon/life-rpg/internal/queue"
	"github.com/benvon/life-rpg/internal/services/ai"
	"github.com/benvon/life-rpg/internal/services/quests"
	"github.com/benvon/life-rpg/internal/telemetry"
	"github.com/benvon/life-rpg/internal/workers"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(telemetry.ServiceWorker, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.String("streak_sweep_schedule", cfg.StreakSweepSchedule),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, _ := telemetry.Setup(ctx, cfg.OTELEnabled, telemetry.ServiceWorker, cfg.OTELEndpoint, zapLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	jobQueue, err := queue.Dial(ctx, cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq", zap.Int("prefetch", cfg.RabbitMQPrefetch))

	companion := newCompanion(cfg, zapLogger, debugMode)

	dumpRepo := database.NewBrainDumpRepository(db)
	materializer := quests.NewMaterializer(database.NewQuestRepository(db), database.NewJournalRepository(db))
	processor := workers.NewBrainDumpProcessor(dumpRepo, materializer, companion, jobQueue, zapLogger)

	sweeper, err := workers.NewStreakSweeper(database.NewCharacterRepository(db), cfg.StreakSweepSchedule, zapLogger)
	if err != nil {
		zapLogger.Fatal("invalid_streak_sweep_schedule", zap.Error(err))
	}

	dlqGC := queue.NewGarbageCollector(jobQueue, queue.DefaultGCInterval, cfg.DLQRetention, zapLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return workers.RunConsumer(gctx, jobQueue, cfg.RabbitMQPrefetch, processor, zapLogger)
	})
	g.Go(func() error {
		if err := dlqGC.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})

	zapLogger.Info("worker_started")
	if err := g.Wait(); err != nil {
		zapLogger.Error("worker_stopped_with_error", zap.Error(err))
		return
	}
	zapLogger.Info("worker_stopped")
}

// newCompanion builds the optional LLM companion. Without an API key the
// worker still processes brain dumps; it just skips companion notes.
func newCompanion(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) ai.CompanionProvider {
	apiKey := cfg.AIAPIKey()
	if apiKey == "" {
		zapLogger.Info("companion_notes_disabled", zap.String("provider", cfg.AIProvider))
		return nil
	}

	provider, err := ai.NewDefaultRegistry().GetProvider(cfg.AIProvider, ai.ProviderConfig{
		APIKey:    apiKey,
		Model:     cfg.AIModel,
		BaseURL:   cfg.AIBaseURL,
		Logger:    zapLogger,
		DebugMode: debugMode,
	})
	if err != nil {
		zapLogger.Warn("failed_to_create_ai_provider_companion_disabled", zap.Error(err))
		return nil
	}
	zapLogger.Info("initialized_ai_provider",
		zap.String("provider", cfg.AIProvider),
		zap.String("model", cfg.AIModel),
	)
	return provider
}
