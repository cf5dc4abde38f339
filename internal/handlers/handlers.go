// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/appcontext"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/templates"
	"github.com/labstack/echo/v4"
)

// CacheStats reports on the persistent asset metadata cache.
type CacheStats interface {
	CountCacheEntries(ctx context.Context) (int64, error)
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	cache CacheStats
}

// New creates a new Handlers instance. cache may be nil when asset
// metadata is only cached in memory.
func New(cache CacheStats) *Handlers {
	return &Handlers{cache: cache}
}

// Health returns the health status and where assets are resolved from.
func (h *Handlers) Health(c echo.Context) error {
	r := appcontext.From(c).Assets

	source := "public"
	switch {
	case r.Registry() != nil:
		source = "environment"
	case r.Manifest() != nil:
		source = "manifest"
	}

	status := map[string]any{
		"status": "ok",
		"assets": source,
	}
	if h.cache != nil {
		count, err := h.cache.CountCacheEntries(c.Request().Context())
		if err != nil {
			slog.WarnContext(c.Request().Context(), "failed to count asset cache entries", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]any{"status": "degraded", "assets": source})
		}
		status["cache_entries"] = count
	}

	return c.JSON(http.StatusOK, status)
}

// Home renders the home page.
func (h *Handlers) Home(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Home())
}
