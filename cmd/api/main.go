package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/critterhq/critter-widget/backend/internal/config"
	"github.com/critterhq/critter-widget/backend/internal/handler"
	"github.com/critterhq/critter-widget/backend/internal/logger"
	"github.com/critterhq/critter-widget/backend/internal/model/agentcfg"
	chatservice "github.com/critterhq/critter-widget/backend/internal/service/chat"
	"github.com/critterhq/critter-widget/backend/internal/webhook"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logger.L.Warn("no .env file loaded, using system environment only", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	store := newStore(ctx, cfg.Database)
	webhookClient := webhook.NewClient(cfg.Webhook.Timeout)
	chatSvc := chatservice.NewService(store, webhookClient)

	router := handler.NewRouter(store, chatSvc)
	startServer(ctx, cfg.Server, router)
}

// newStore prefers PostgreSQL and falls back to the in-memory store when no
// database is configured or reachable, so the service still runs for demos
// and local development.
func newStore(ctx context.Context, dbCfg config.DatabaseConfig) agentcfg.Store {
	if dbCfg.URL == "" {
		logger.L.Info("DATABASE_URL not set, using in-memory agent store")
		return agentcfg.NewMemoryStore()
	}

	store, err := agentcfg.NewPostgresStore(ctx, dbCfg.URL)
	if err != nil {
		logger.L.Warn("database unavailable, falling back to in-memory agent store", "error", err)
		return agentcfg.NewMemoryStore()
	}
	logger.L.Info("connected to PostgreSQL agent store")
	return store
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.L.Info("widget backend listening", "addr", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		logger.L.Error("server error", "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
