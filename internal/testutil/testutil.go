// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/database"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// AssetFixtures is the fixture asset tree written by WriteAssetFixtures.
var AssetFixtures = map[string]string{
	"foo.js":         "var foo;\n",
	"foo.css":        ".foo {}\n",
	"bar.js":         "//= require foo\nvar bar;\n",
	"bar.css":        "/*\n *= require foo\n */\n.bar {}\n",
	"dependency.js":  "var dependency;\n",
	"dependency.css": ".dependency {}\n",
	"file1.js":       "//= require dependency\nvar file1;\n",
	"file1.css":      "/*\n *= require dependency\n */\n.file1 {}\n",
	"file2.js":       "//= require dependency\nvar file2;\n",
	"file2.css":      "/*\n *= require dependency\n */\n.file2 {}\n",
	"logo.png":       "\x89PNG\r\n\x1a\nlogo",
	"url.js.tmpl":    "var url = '{{ javascript_path \"foo\" }}';\n",
	"url.css.tmpl":   "p { background: url({{ asset_path \"logo.png\" }}); }\n",

	"error/missing.css.tmpl": "p { background: url({{ asset_path \"does_not_exist.png\" }}); }\n",
}

// WriteAssetFixtures writes AssetFixtures into a new temporary directory
// and returns its path.
func WriteAssetFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range AssetFixtures {
		WriteFile(t, dir, name, content)
	}
	return dir
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// NewTestDB creates an in-memory SQLite database for tests.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	return httptest.NewRequest(method, path, body)
}

// NewLogger returns a debug level text logger writing to w.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
