// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"net/http"
	"testing"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/appcontext"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCacheHeaders(t *testing.T) {
	const digested = "/assets/application-2fd4e1c67a2d28fced849ee1bb76e739.js"

	tests := []struct {
		name     string
		path     string
		status   int
		expected string
	}{
		{"digested asset", digested, http.StatusOK, "public, max-age=31536000, immutable"},
		{"digested not modified", digested, http.StatusNotModified, "public, max-age=31536000, immutable"},
		{"stale digest redirect", digested, http.StatusFound, "no-cache"},
		{"digested not found", digested, http.StatusNotFound, "no-cache"},
		{"logical asset", "/assets/application.js", http.StatusOK, "no-cache"},
		{"outside prefix", "/images/logo-2fd4e1c67a2d28fced849ee1bb76e739.png", http.StatusOK, ""},
		{"prefix lookalike", "/assetsfoo/application.js", http.StatusOK, ""},
	}

	mw := staticCacheHeaders("/assets")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c, rec := testutil.NewEchoContext(e, http.MethodGet, tt.path, nil)

			err := mw(func(c echo.Context) error { return c.NoContent(tt.status) })(c)
			require.NoError(t, err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.expected, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestAssetsToContext(t *testing.T) {
	resolver := assets.New(assets.Config{Prefix: "/assets"})

	tests := []struct {
		name  string
		query string
		debug bool
	}{
		{"default", "", false},
		{"enabled", "?debug_assets=1", true},
		{"explicitly disabled", "?debug_assets=false", false},
		{"garbage", "?debug_assets=maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c, _ := testutil.NewEchoContext(e, http.MethodGet, "/"+tt.query, nil)

			var got *appcontext.Context
			err := assetsToContext(resolver)(func(c echo.Context) error {
				got = appcontext.From(c)
				return nil
			})(c)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.debug, got.Assets.Config().Debug)
			assert.Same(t, got.Assets, appcontext.Resolver(got.Request().Context()))
		})
	}
}
