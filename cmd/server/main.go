package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/config"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/database"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/logging"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/routes"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/services"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/store"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/store/memory"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/store/postgres"
)

func main() {
	// Structured logging (JSON to stdout)
	stdoutHandler := logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var (
		st           store.Store
		db           *gorm.DB
		pgLogHandler *logging.PGHandler
	)
	cleanupDone := make(chan struct{})

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		st = memory.New()
		slog.Warn("using in-memory store; data is lost on restart")
	default:
		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		st = postgres.New(db)

		// PostgreSQL log handler (ERROR+ async batch)
		if cfg.LogToDB {
			pgLogHandler = logging.NewPGHandler(db, 5*time.Second)
			slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, pgLogHandler)))
			logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)
		}
	}
	slog.Info("store ready", "driver", cfg.StoreDriver, "auth", cfg.AuthEnabled())

	// Services
	syncService := services.NewSyncService(st, cfg.SyncTimeout, cfg.ReadTimeout)

	// Handlers
	syncHandler := handlers.NewSyncHandler(syncService)
	healthHandler := handlers.NewHealthHandler(syncService, cfg.StoreDriver)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	app := routes.NewApp(cfg, syncHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(cfg.SyncTimeout + 5*time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if db != nil {
		if err := database.Close(db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
