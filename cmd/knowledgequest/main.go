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

	"github.com/letsssgooo/knowledgeQuest/internal/auth"
	"github.com/letsssgooo/knowledgeQuest/internal/authoring"
	"github.com/letsssgooo/knowledgeQuest/internal/client"
	"github.com/letsssgooo/knowledgeQuest/internal/config"
	"github.com/letsssgooo/knowledgeQuest/internal/lib/slogcustom"
	"github.com/letsssgooo/knowledgeQuest/internal/quiz"
	"github.com/letsssgooo/knowledgeQuest/internal/storage"
	"github.com/letsssgooo/knowledgeQuest/internal/storage/postgres"
	"github.com/letsssgooo/knowledgeQuest/internal/storage/sqlite"
	"github.com/letsssgooo/knowledgeQuest/internal/web"
)

const (
	rehydrateTimeout = 30 * time.Second
	shutdownTimeout  = 10 * time.Second
	backendBurst     = 5
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := setupLogger(cfg.LogLevel)
	slog.SetDefault(log)
	slog.Info("starting knowledge quest...", "addr", cfg.Addr, "api", cfg.APIBaseURL, "store", cfg.SessionStore)

	store, err := setupStorage(cfg)
	if err != nil {
		slog.Error("failed to open session storage", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close session storage", "err", err)
		}
	}()

	manager := auth.NewManager(store)

	api := client.NewHTTPClient(cfg.APIBaseURL,
		client.WithHooks(manager),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRateLimit(cfg.BackendRPS, backendBurst),
	)

	srv, err := web.New(web.Deps{
		Auth:         auth.NewAuth(manager, api),
		API:          api,
		Engine:       quiz.NewEngine(),
		Workspace:    authoring.NewWorkspace(),
		Messages:     web.NewMessages(cfg.Locale),
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		slog.Error("failed to create web server", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// пока хранилище загружается, защищенные страницы отвечают экраном загрузки
	go func() {
		ctx, cancelFunc := context.WithTimeout(ctx, rehydrateTimeout)
		defer cancelFunc()

		if err := manager.Rehydrate(ctx); err != nil {
			slog.Error("failed to rehydrate sessions", "err", err)
			stop()
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Addr)
	}()

	select {
	case err = <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("web server stopped", "err", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down...")
	}

	shutdownCtx, cancelFunc := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelFunc()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down web server", "err", err)
	}
}

func setupLogger(level slog.Level) *slog.Logger {
	return slog.New(slogcustom.NewCustomHandler(os.Stdout, level))
}

func setupStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.SessionStore {
	case config.StoreSQLite:
		return sqlite.NewStorage(cfg.SQLitePath)
	case config.StorePostgres:
		return postgres.NewStorage(cfg.PostgresDSN)
	default:
		return storage.NewMemoryStorage(), nil
	}
}
