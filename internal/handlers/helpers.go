// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"codeberg.org/oliverandrich/go-webapp-assets/internal/appcontext"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render renders a templ component with the given status code. The
// resolver of a custom context wins over the one in the request context.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	ctx := c.Request().Context()
	if cc, ok := c.(*appcontext.Context); ok && cc.Assets != nil {
		ctx = appcontext.WithResolver(ctx, cc.Assets)
	}

	if err := component.Render(ctx, buf); err != nil {
		return err
	}

	return c.HTMLBlob(statusCode, buf.Bytes())
}
