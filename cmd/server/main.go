package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jimdaga/vendorhub/internal/api"
	"github.com/jimdaga/vendorhub/internal/config"
	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/logging"
	"github.com/jimdaga/vendorhub/internal/seed"
	"github.com/jimdaga/vendorhub/internal/store"
	"github.com/jimdaga/vendorhub/internal/streams"
	"github.com/jimdaga/vendorhub/internal/worker"
)

const (
	modeServer   = "server"
	modeWorker   = "worker"
	modeEmbedded = "embedded"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	switch cfg.Mode {
	case modeServer, modeWorker, modeEmbedded:
	default:
		return fmt.Errorf("unknown MODE %q", cfg.Mode)
	}
	if cfg.Mode != modeServer && !cfg.WorkerEnabled() {
		return fmt.Errorf("MODE=%s requires REDIS_URL", cfg.Mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := store.New(store.Config{DatabaseURL: cfg.DatabaseURL}, logger, domain.Tables()...)
	if err := s.Initialize(ctx); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	defer s.Close()

	h := domain.New(s)

	if cfg.SeedDemoData && cfg.Mode != modeWorker {
		seedDemo(ctx, h, cfg, logger)
	}

	if cfg.Mode == modeWorker {
		stopScheduler, err := worker.StartScheduler(cfg, logger)
		if err != nil {
			return err
		}
		defer stopScheduler()
		return worker.Run(cfg, h, logger)
	}

	deps := api.Deps{Store: s, Helpers: h, Logger: logger}

	feed := startFeed(cfg, s, logger)
	defer feed.Stop()
	deps.SyncStatus = feed.Status

	if cfg.WorkerEnabled() {
		enqueuer, err := worker.NewEnqueuer(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer enqueuer.Close()
		deps.Enqueuer = enqueuer
	}

	if cfg.Mode == modeEmbedded {
		stopWorker, err := worker.Start(cfg, h, logger)
		if err != nil {
			return err
		}
		defer stopWorker()

		stopScheduler, err := worker.StartScheduler(cfg, logger)
		if err != nil {
			return err
		}
		defer stopScheduler()
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "mode", cfg.Mode, "sync", feed.Status())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedDemo makes sure the demo account exists and has data. Failures leave
// partial data behind and are only logged.
func seedDemo(ctx context.Context, h *domain.Helpers, cfg *config.Config, logger *slog.Logger) {
	user, err := h.EnsureUser(ctx, domain.UserInput{
		Email:        cfg.DemoUserEmail,
		Name:         "John Vendor",
		BusinessName: "Green Market Store",
	})
	if err != nil {
		logger.Error("Failed to create demo user", "email", cfg.DemoUserEmail, "error", err)
		return
	}
	if _, err := seed.DemoData(ctx, h, user.ID, logger); err != nil {
		logger.Error("Demo seed incomplete", "user_id", user.ID, "error", err)
	}
}

// startFeed returns nil when the change feed is disabled or unreachable; a
// nil feed reports the offline status
func startFeed(cfg *config.Config, s *store.Store, logger *slog.Logger) *streams.Feed {
	if cfg.SyncURL == "" {
		return nil
	}
	host, _ := os.Hostname()
	origin := fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])

	feed, err := streams.StartFeed(cfg.SyncURL, origin, s, logger)
	if err != nil {
		logger.Warn("Change feed unavailable, running offline", "error", err)
		return nil
	}
	return feed
}
