package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/config"
	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/handlers"
	"github.com/benvon/life-rpg/internal/logger"
	"github.com/benvon/life-rpg/internal/middleware"
	"github.com/benvon/life-rpg/internal/queue"
	"github.com/benvon/life-rpg/internal/services/braindump"
	"github.com/benvon/life-rpg/internal/services/progression"
	"github.com/benvon/life-rpg/internal/telemetry"
)

const (
	version        = "1.0.0"
	reloadInterval = time.Minute
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	openAPIPath := flag.String("openapi", "", "Serve this OpenAPI document instead of the built-in one")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(telemetry.ServiceAPI, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("identity_header", cfg.IdentityHeader),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, tracing := telemetry.Setup(ctx, cfg.OTELEnabled, telemetry.ServiceAPI, cfg.OTELEndpoint, zapLogger)
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

	redisClient, err := middleware.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	limiterStore, err := middleware.NewRedisLimiterStore(redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}
	zapLogger.Info("connected_to_redis")

	jobQueue, err := queue.Dial(ctx, cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

	userRepo := database.NewUserRepository(db)
	dumpRepo := database.NewBrainDumpRepository(db)
	questRepo := database.NewQuestRepository(db)
	journalRepo := database.NewJournalRepository(db)
	characterRepo := database.NewCharacterRepository(db)
	achievementRepo := database.NewAchievementRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	classifier := braindump.NewClassifier()
	engine := progression.NewEngine(characterRepo, zapLogger)

	classifyHandler := handlers.NewClassifyHandler(classifier)
	brainDumpHandler := handlers.NewBrainDumpHandler(dumpRepo, classifier, engine, jobQueue, zapLogger)
	questHandler := handlers.NewQuestHandler(questRepo, engine, zapLogger)
	journalHandler := handlers.NewJournalHandler(journalRepo, zapLogger)
	characterHandler := handlers.NewCharacterHandler(characterRepo, achievementRepo, zapLogger)
	healthChecker := handlers.NewHealthChecker(zapLogger).
		WithCheck("database", db.HealthCheck).
		WithCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }).
		WithCheck("rabbitmq", jobQueue.HealthCheck)

	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, reloadInterval)
	rateLimitReloader := middleware.NewRateLimitReloader(limiterStore, ratelimitConfigRepo, "", zapLogger, reloadInterval)

	// gorilla/mux runs middleware in registration order: first registered is outermost.
	r := mux.NewRouter()
	if tracing {
		r.Use(otelmux.Middleware(telemetry.ServiceAPI))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(corsReloader.Middleware())
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.Audit(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.Version(version)).Methods("GET")
	openAPIHandler, err := handlers.NewOpenAPIHandler(*openAPIPath)
	if err != nil {
		zapLogger.Fatal("openapi_load_failed", zap.Error(err))
	}
	openAPIHandler.RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.Identity(userRepo, cfg.IdentityHeader, zapLogger))
	apiRouter.Use(rateLimitReloader.Middleware())

	classifyHandler.RegisterRoutes(apiRouter)
	journalHandler.RegisterRoutes(apiRouter)
	characterHandler.RegisterRoutes(apiRouter)
	brainDumpHandler.RegisterRoutes(apiRouter.PathPrefix("/brain-dumps").Subrouter())
	questHandler.RegisterRoutes(apiRouter.PathPrefix("/quests").Subrouter())

	// Preflight requests match here so the CORS middleware above can answer them.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   middleware.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go corsReloader.Start(ctx)
	go rateLimitReloader.Start(ctx)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("server_failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
