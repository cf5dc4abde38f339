// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/config"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/database"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/repository"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func runTask(t *testing.T, action cli.ActionFunc, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cli.Command{
		Name:   "test",
		Flags:  append(config.Flags(), ResolveFlags()...),
		Writer: &out,
		Action: action,
	}
	err := cmd.Run(context.Background(), append([]string{"test", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestPrecompileAndClobber(t *testing.T) {
	src := testutil.WriteAssetFixtures(t)
	testutil.WriteFile(t, src, "application.js", "//= require foo\nvar app;\n")
	public := t.TempDir()
	out := filepath.Join(public, "assets")

	_, err := runTask(t, Precompile, "--public-dir", public, "--assets-path", src)
	require.NoError(t, err)

	m, err := assets.LoadManifest(filepath.Join(out, assets.ManifestName))
	require.NoError(t, err)
	p, ok := m.Lookup("application.js")
	require.True(t, ok)
	_, err = os.Stat(filepath.Join(out, p))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, p+".gz"))
	require.NoError(t, err)

	// resolve against the manifest
	got, err := runTask(t, Resolve, "--public-dir", public, "--assets-path", src, "--assets-compile=false",
		"--type", "javascript", "application")
	require.NoError(t, err)
	assert.Equal(t, "/assets/"+p+"\n", got)

	_, err = runTask(t, Clobber, "--public-dir", public)
	require.NoError(t, err)
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestClobber_ClearsCache(t *testing.T) {
	public := t.TempDir()
	dsn := filepath.Join(t.TempDir(), "cache.db")

	db, err := database.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, repository.New(db).PutCacheEntry(t.Context(), "asset", []byte("x")))
	require.NoError(t, db.Close())

	_, err = runTask(t, Clobber, "--public-dir", public, "--cache-dsn", dsn)
	require.NoError(t, err)

	db, err = database.Open(dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	count, err := repository.New(db).CountCacheEntries(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestResolve(t *testing.T) {
	src := testutil.WriteAssetFixtures(t)
	env, err := assets.NewEnvironment(assets.WithPaths(src))
	require.NoError(t, err)
	foo, err := env.Lookup("foo.js")
	require.NoError(t, err)
	logo, err := env.Lookup("logo.png")
	require.NoError(t, err)

	base := []string{
		"--public-dir", t.TempDir(), "--assets-path", src, "--assets-compile", "--assets-debug=false",
		"--precompile", "foo.js", "--precompile", "logo.png",
	}

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"javascript path", []string{"--type", "js", "foo"}, "/assets/" + foo.DigestPath() + "\n"},
		{"image url", []string{"--url", "logo.png"}, "http://localhost:8080/assets/" + logo.DigestPath() + "\n"},
		{"tag", []string{"--type", "javascript", "--tag", "foo"}, `<script src="/assets/` + foo.DigestPath() + `"></script>` + "\n"},
		{"several", []string{"--type", "js", "foo", "http://example.com/x.js"}, "/assets/" + foo.DigestPath() + "\nhttp://example.com/x.js\n"},
		{"asset host", []string{"--asset-host", "cdn.example.com", "logo.png"}, "//cdn.example.com/assets/" + logo.DigestPath() + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runTask(t, Resolve, append(base, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	src := testutil.WriteAssetFixtures(t)
	base := []string{"--public-dir", t.TempDir(), "--assets-path", src, "--assets-compile"}

	_, err := runTask(t, Resolve, base...)
	require.Error(t, err)

	_, err = runTask(t, Resolve, append(base, "--type", "video", "foo")...)
	require.Error(t, err)

	_, err = runTask(t, Resolve, append(base, "--tag", "logo.png")...)
	require.Error(t, err)

	_, err = runTask(t, Resolve, append(base, "--raise-runtime-errors", "/assets/foo.js")...)
	require.ErrorIs(t, err, assets.ErrAbsoluteAssetPath)
}
