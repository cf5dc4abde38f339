// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/appcontext"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/config"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func setupMiddleware(e *echo.Echo, cfg *config.Config, resolver *assets.Resolver) {
	e.Pre(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			ctx := appcontext.WithRequestID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
		},
	}))
	e.Use(requestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())
	e.Use(staticCacheHeaders(cfg.Assets.Prefix))
	e.Use(assetsToContext(resolver))
}

// requestLogger returns middleware that logs requests using slog.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if id := appcontext.RequestID(c.Request().Context()); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
			} else {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// staticCacheHeaders adds cache headers below the assets prefix.
// Digested assets are immutable, but only successful responses may be
// cached that way: a stale digest redirects to the current one.
func staticCacheHeaders(prefix string) echo.MiddlewareFunc {
	prefix = "/" + strings.Trim(prefix, "/") + "/"
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, prefix) {
				res := c.Response()
				if assets.HasDigest(path) {
					res.Writer = &cacheControlWriter{ResponseWriter: res.Writer}
				} else {
					// Logical paths change with every edit
					res.Header().Set("Cache-Control", "no-cache")
				}
			}
			return next(c)
		}
	}
}

// cacheControlWriter picks Cache-Control once the status is known.
type cacheControlWriter struct {
	http.ResponseWriter
}

func (w *cacheControlWriter) WriteHeader(code int) {
	switch code {
	case http.StatusOK, http.StatusPartialContent, http.StatusNotModified:
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	default:
		w.Header().Set("Cache-Control", "no-cache")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheControlWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
