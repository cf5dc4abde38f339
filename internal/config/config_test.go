// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestBuildBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		expected string
	}{
		{
			name:     "default port",
			cfg:      &Config{Server: ServerConfig{Host: "example.com", Port: 80}},
			expected: "http://example.com",
		},
		{
			name:     "custom port",
			cfg:      &Config{Server: ServerConfig{Host: "localhost", Port: 8080}},
			expected: "http://localhost:8080",
		},
		{
			name:     "wildcard host",
			cfg:      &Config{Server: ServerConfig{Host: "0.0.0.0", Port: 3000}},
			expected: "http://localhost:3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildBaseURL(tt.cfg))
		})
	}
}

func TestFlags(t *testing.T) {
	flags := Flags()

	// Should have all expected flags
	assert.NotEmpty(t, flags)

	flagNames := make(map[string]bool)
	for _, f := range flags {
		for _, name := range f.Names() {
			flagNames[name] = true
		}
	}

	for _, name := range []string{
		"config", "host", "port", "base-url", "public-dir", "log-level", "cache-dsn", "cache-max-age",
		"assets-prefix", "asset-host", "assets-path", "assets-compile", "assets-debug",
		"digest-algorithm", "manifest", "precompile", "raise-runtime-errors", "raise-on-missing",
	} {
		assert.True(t, flagNames[name], "should have %s flag", name)
	}
}

func runWith(t *testing.T, args []string, check func(*Config)) {
	t.Helper()
	app := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			check(NewFromCLI(cmd))
			return nil
		},
	}
	require.NoError(t, app.Run(context.Background(), append([]string{"test"}, args...)))
}

func TestNewFromCLI(t *testing.T) {
	runWith(t, nil, func(cfg *Config) {
		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.Empty(t, cfg.Cache.DSN)
		assert.Equal(t, 720*time.Hour, cfg.Cache.MaxAge)

		assert.Equal(t, "/assets", cfg.Assets.Prefix)
		assert.Equal(t, []string{"./app/assets"}, cfg.Assets.Paths)
		assert.True(t, cfg.Assets.Digest)
		assert.True(t, cfg.Assets.Gzip)
		assert.Equal(t, devMode, cfg.Assets.Compile)
		assert.Equal(t, devMode, cfg.Assets.Debug)
		assert.Equal(t, devMode, cfg.Assets.RaiseRuntimeErrors)
		assert.False(t, cfg.Assets.RaiseOnMissing)
		assert.Equal(t, "md5", cfg.Assets.DigestAlgorithm)

		// output dir and manifest are derived from the public dir
		assert.Equal(t, filepath.Join("public", "assets"), cfg.Assets.OutputDir)
		assert.Equal(t, filepath.Join("public", "assets", "manifest.json"), cfg.Assets.Manifest)
	})
}

func TestNewFromCLI_WithCustomValues(t *testing.T) {
	args := []string{
		"--host", "0.0.0.0",
		"--port", "9000",
		"--base-url", "https://example.com",
		"--log-level", "debug",
		"--cache-dsn", "./data/test.db",
		"--cache-max-age", "2h",
		"--asset-host", "assets%d.example.com",
		"--assets-path", "./a",
		"--assets-path", "./b",
		"--assets-compile",
		"--assets-digest=false",
		"--digest-algorithm", "blake3",
		"--output-dir", "./dist",
		"--precompile", "admin.js",
		"--precompile", "/\\.svg$/",
		"--raise-on-missing",
	}
	runWith(t, args, func(cfg *Config) {
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "https://example.com", cfg.Server.BaseURL)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "./data/test.db", cfg.Cache.DSN)
		assert.Equal(t, 2*time.Hour, cfg.Cache.MaxAge)
		assert.Equal(t, "assets%d.example.com", cfg.Assets.Host)
		assert.Equal(t, []string{"./a", "./b"}, cfg.Assets.Paths)
		assert.True(t, cfg.Assets.Compile)
		assert.False(t, cfg.Assets.Digest)
		assert.Equal(t, "blake3", cfg.Assets.DigestAlgorithm)
		assert.Equal(t, "./dist", cfg.Assets.OutputDir)
		assert.Equal(t, filepath.Join("dist", "manifest.json"), cfg.Assets.Manifest)
		assert.True(t, cfg.Assets.RaiseOnMissing)

		rc, err := cfg.ResolverConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", rc.BaseURL)
		assert.True(t, rc.DisableDigest)
		assert.True(t, rc.Precompile.Match("admin.js"))
		assert.True(t, rc.Precompile.Match("icons/star.svg"))
		assert.False(t, rc.Precompile.Match("application.js"))
		assert.NotNil(t, rc.PublicFS)
	})
}

func TestAssetsConfig_Matchers(t *testing.T) {
	c := &AssetsConfig{}
	m, err := c.Matchers()
	require.NoError(t, err)
	assert.True(t, m.Match("application.js"))
	assert.False(t, m.Match("other.js"))

	c.Precompile = []string{"/([/"}
	_, err = c.Matchers()
	require.Error(t, err)

	_, err = (&Config{Assets: *c}).ResolverConfig()
	require.Error(t, err)
}

func TestNewFromCLI_EnvSources(t *testing.T) {
	t.Setenv("ASSETS_PREFIX", "/static")
	t.Setenv("ASSET_HOST", "cdn.example.com")
	t.Setenv("ASSETS_RAISE_ON_MISSING", "true")

	runWith(t, nil, func(cfg *Config) {
		assert.Equal(t, "/static", cfg.Assets.Prefix)
		assert.Equal(t, "cdn.example.com", cfg.Assets.Host)
		assert.True(t, cfg.Assets.RaiseOnMissing)
		assert.Equal(t, filepath.Join("public", "static"), cfg.Assets.OutputDir)
	})
}
