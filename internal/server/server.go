// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

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

	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/config"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/handlers"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// App is the configured web application.
type App struct {
	Echo     *echo.Echo
	Resolver *assets.Resolver
	// Env is the live environment, nil when serving precompiled assets.
	Env *assets.Environment

	close func() error
}

// New builds the application and installs its resolver as assets.Default.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	stack, err := newAssetStack(cfg, logger, cfg.Assets.Compile)
	if err != nil {
		return nil, fmt.Errorf("failed to set up assets: %w", err)
	}
	if stack.repo != nil && cfg.Cache.MaxAge > 0 {
		pruneCache(ctx, stack.repo, cfg.Cache.MaxAge, logger)
	}
	assets.SetDefault(stack.resolver)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	// Middleware
	setupMiddleware(e, cfg, stack.resolver)

	// Routes
	mountAssets(e, cfg, stack, logger)
	var stats handlers.CacheStats
	if stack.repo != nil {
		stats = stack.repo
	}
	setupRoutes(e, handlers.New(stats))

	return &App{Echo: e, Resolver: stack.resolver, Env: stack.env, close: stack.close}, nil
}

// Close releases the asset cache.
func (a *App) Close() error {
	return a.close()
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"compile", cfg.Assets.Compile,
		"debug", cfg.Assets.Debug,
	)

	app, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			slog.Error("failed to close asset cache", "error", closeErr)
		}
	}()

	// Start server
	return startWithGracefulShutdown(ctx, app.Echo, cfg)
}

// pruneCache drops cache rows that were not rewritten within maxAge. A
// failure only costs a rebuild, so it is logged.
func pruneCache(ctx context.Context, repo *repository.Repository, maxAge time.Duration, logger *slog.Logger) {
	removed, err := repo.PruneCacheEntries(ctx, time.Now().Add(-maxAge))
	if err != nil {
		logger.Warn("failed to prune asset cache", "error", err)
		return
	}
	logger.Info("pruned asset cache", "removed", removed, "max_age", maxAge)
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers) {
	e.GET("/health", h.Health)
	e.GET("/", h.Home)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	// Channel for server errors
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal, cancellation or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("shutting down server", "reason", ctx.Err())
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
