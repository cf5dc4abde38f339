// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/templates"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders error pages for echo. Asset errors raised while
// rendering a page are reported as 500 with the asset named in the
// message, so misconfigured precompile lists are visible in development.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong."

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		message = fmt.Sprint(he.Message)
	case errors.Is(err, assets.ErrAssetFiltered),
		errors.Is(err, assets.ErrAbsoluteAssetPath),
		errors.Is(err, assets.ErrAssetNotFound):
		message = err.Error()
	}

	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed", "error", err, "path", c.Request().URL.Path)
	}

	title := http.StatusText(code)
	if title == "" {
		title = "Error"
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if renderErr := Render(c, code, templates.Error(fmt.Sprintf("%d", code), title, message)); renderErr != nil {
		slog.Error("failed to render error page", "error", renderErr)
	}
}
