// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/appcontext"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/handlers"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/repository"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/templates"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.NotNil(t, handlers.New(nil))
}

func TestHealth(t *testing.T) {
	h := handlers.New(nil)
	e := echo.New()

	t.Run("default resolver", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(e, http.MethodGet, "/health", nil)
		require.NoError(t, h.Health(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","assets":"public"}`, rec.Body.String())
	})

	t.Run("manifest", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(e, http.MethodGet, "/health", nil)
		cc := &appcontext.Context{Context: c, Assets: assets.New(assets.DefaultConfig(), assets.WithManifest(assets.NewManifest("")))}
		require.NoError(t, h.Health(cc))
		assert.JSONEq(t, `{"status":"ok","assets":"manifest"}`, rec.Body.String())
	})

	t.Run("environment", func(t *testing.T) {
		env, err := assets.NewEnvironment(assets.WithPaths(testutil.WriteAssetFixtures(t)))
		require.NoError(t, err)
		c, rec := testutil.NewEchoContext(e, http.MethodGet, "/health", nil)
		cc := &appcontext.Context{Context: c, Assets: assets.New(assets.DefaultConfig(), assets.WithRegistry(env))}
		require.NoError(t, h.Health(cc))
		assert.JSONEq(t, `{"status":"ok","assets":"environment"}`, rec.Body.String())
	})
}

func TestHealth_CacheEntries(t *testing.T) {
	repo := repository.New(testutil.NewTestDB(t))
	require.NoError(t, repo.PutCacheEntry(t.Context(), "a", []byte("x")))
	require.NoError(t, repo.PutCacheEntry(t.Context(), "b", []byte("y")))

	h := handlers.New(repo)
	c, rec := testutil.NewEchoContext(echo.New(), http.MethodGet, "/health", nil)
	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","assets":"public","cache_entries":2}`, rec.Body.String())
}

func TestHealth_CacheUnavailable(t *testing.T) {
	db := testutil.NewTestDB(t)
	h := handlers.New(repository.New(db))
	require.NoError(t, db.Close())

	c, rec := testutil.NewEchoContext(echo.New(), http.MethodGet, "/health", nil)
	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","assets":"public"}`, rec.Body.String())
}

func TestHome(t *testing.T) {
	h := handlers.New(nil)
	e := echo.New()

	m := assets.NewManifest("")
	m.Assets["application.js"] = "application-0123456789abcdef.js"
	r := assets.New(assets.DefaultConfig(), assets.WithManifest(m))

	req := testutil.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(appcontext.WithResolver(req.Context(), r))
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)
	c.SetRequest(req)

	require.NoError(t, h.Home(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, `<script src="/assets/application-0123456789abcdef.js"></script>`)
	assert.Contains(t, body, `<link href="/stylesheets/application.css" media="screen" rel="stylesheet" />`)
}

func TestHome_FilteredAssetFails(t *testing.T) {
	h := handlers.New(nil)
	e := echo.New()

	env, err := assets.NewEnvironment(assets.WithPaths(testutil.WriteAssetFixtures(t)))
	require.NoError(t, err)
	testutil.WriteFile(t, env.Paths()[0], "application.js", "var app;\n")
	r := assets.New(assets.Config{
		Prefix:             "/assets",
		RaiseRuntimeErrors: true,
		Precompile:         assets.Matchers{assets.Literal("application.css")},
	}, assets.WithRegistry(env))

	c, _ := testutil.NewEchoContext(e, http.MethodGet, "/", nil)
	c.SetRequest(c.Request().WithContext(appcontext.WithResolver(c.Request().Context(), r)))

	err = h.Home(c)
	require.ErrorIs(t, err, assets.ErrAssetFiltered)
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		err      error
		code     int
		contains string
	}{
		{"http error", echo.NewHTTPError(http.StatusNotFound, "no such page"), http.StatusNotFound, "no such page"},
		{"asset error", &assets.AssetFilteredError{LogicalPath: "admin.js"}, http.StatusInternalServerError, "admin.js"},
		{"wrapped asset error", fmt.Errorf("render: %w", &assets.AssetNotFoundError{LogicalPath: "x.css"}), http.StatusInternalServerError, "x.css"},
		{"other error", errors.New("boom"), http.StatusInternalServerError, "Something went wrong."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)
			handlers.ErrorHandler(tt.err, c)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
			assert.NotContains(t, rec.Body.String(), "boom")
		})
	}

	t.Run("head", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(e, http.MethodHead, "/", nil)
		handlers.ErrorHandler(echo.ErrNotFound, c)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestRender_UsesCustomContextResolver(t *testing.T) {
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)
	cc := &appcontext.Context{Context: c, Assets: assets.New(assets.Config{Prefix: "/assets", Host: "cdn.example.com"})}

	require.NoError(t, handlers.Render(cc, http.StatusCreated, templates.JavascriptIncludeTag(nil, "app")))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `<script src="//cdn.example.com/javascripts/app.js"></script>`, rec.Body.String())
}
