package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database connection string (defaults to DATABASE_URL)")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	zapLogger, err := logger.NewProductionLogger("life-rpg-migrate", false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}
	if *dsn == "" {
		zapLogger.Fatal("database_url_required")
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		zapLogger.Fatal("migration_source_failed", zap.Error(err))
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, *dsn)
	if err != nil {
		zapLogger.Fatal("migrator_init_failed", zap.Error(err))
	}
	defer func() { _, _ = m.Close() }()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			zapLogger.Fatal("migration_version_failed", zap.Error(err))
		}
		zapLogger.Info("migration_version", zap.Uint("version", v), zap.Bool("dirty", dirty))
	case forceSet:
		if err := m.Force(*force); err != nil {
			zapLogger.Fatal("migration_force_failed", zap.Error(err))
		}
		zapLogger.Info("migration_forced", zap.Int("version", *force))
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			zapLogger.Fatal("migration_up_failed", zap.Error(err))
		}
		zapLogger.Info("migrations_applied")
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			zapLogger.Fatal("migration_down_failed", zap.Error(err))
		}
		zapLogger.Info("migrations_reverted")
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			zapLogger.Fatal("migration_steps_failed", zap.Error(err))
		}
		zapLogger.Info("migration_steps_applied", zap.Int("steps", *steps))
	default:
		fmt.Println("usage: migrate [-dsn <connection-string>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}
