// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context and the helpers that
// carry the asset resolver through context.Context.
package appcontext

import (
	"context"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/ctxkeys"
	"github.com/labstack/echo/v4"
)

// Context is a custom Echo context with the resolver for this request.
type Context struct {
	echo.Context
	Assets    *assets.Resolver
	RequestID string
}

// From returns c as *Context, or wraps it with the process-wide resolver
// when the middleware did not run.
func From(c echo.Context) *Context {
	if cc, ok := c.(*Context); ok {
		return cc
	}
	return &Context{Context: c, Assets: Resolver(c.Request().Context())}
}

// WithResolver returns a copy of ctx carrying r.
func WithResolver(ctx context.Context, r *assets.Resolver) context.Context {
	return context.WithValue(ctx, ctxkeys.Resolver{}, r)
}

// Resolver returns the resolver stored in ctx, or assets.Default().
func Resolver(ctx context.Context) *assets.Resolver {
	if r, ok := ctx.Value(ctxkeys.Resolver{}).(*assets.Resolver); ok && r != nil {
		return r
	}
	return assets.Default()
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkeys.RequestID{}, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkeys.RequestID{}).(string)
	return id
}
