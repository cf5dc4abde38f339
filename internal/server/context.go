// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"strconv"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/appcontext"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"github.com/labstack/echo/v4"
)

// debugParam switches a single request to debug assets, e.g.
// /?debug_assets=1.
const debugParam = "debug_assets"

// assetsToContext wraps the Echo context with our custom Context and
// stores the resolver in the request context for templates.
func assetsToContext(resolver *assets.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := resolver
			if v := c.QueryParam(debugParam); v != "" {
				if debug, err := strconv.ParseBool(v); err == nil {
					r = r.WithDebug(debug)
				}
			}

			ctx := appcontext.WithResolver(c.Request().Context(), r)
			c.SetRequest(c.Request().WithContext(ctx))

			cc := &appcontext.Context{
				Context:   c,
				Assets:    r,
				RequestID: appcontext.RequestID(ctx),
			}
			return next(cc)
		}
	}
}
