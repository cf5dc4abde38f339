// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/config"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/database"
	appmiddleware "codeberg.org/oliverandrich/go-webapp-assets/internal/middleware"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// assetStack is everything needed to resolve and serve assets.
type assetStack struct {
	resolver *assets.Resolver
	env      *assets.Environment    // nil when serving precompiled assets
	repo     *repository.Repository // nil without a cache DSN
	close    func() error
}

// openCache opens the SQLite asset cache.
func openCache(cfg *config.Config) (*repository.Repository, func() error, error) {
	db, err := database.Open(cfg.Cache.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open asset cache: %w", err)
	}
	return repository.New(db), db.Close, nil
}

// newEnvironment creates the live environment, backed by the SQLite
// cache when a DSN is configured.
func newEnvironment(cfg *config.Config, logger *slog.Logger) (*assets.Environment, *repository.Repository, func() error, error) {
	var repo *repository.Repository
	closer := func() error { return nil }
	opts := []assets.EnvironmentOption{
		assets.WithPaths(cfg.Assets.Paths...),
		assets.WithVersion(cfg.Assets.Version),
		assets.WithDigestAlgorithm(cfg.Assets.DigestAlgorithm),
		assets.WithEnvironmentLogger(logger),
	}

	if cfg.Cache.DSN != "" {
		var err error
		if repo, closer, err = openCache(cfg); err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, assets.WithCache(repository.NewAssetCache(repo, logger)))
	}

	env, err := assets.NewEnvironment(opts...)
	if err != nil {
		_ = closer()
		return nil, nil, nil, err
	}
	return env, repo, closer, nil
}

// newAssetStack builds the resolver from the configuration: a live
// environment when compiling, the manifest otherwise.
func newAssetStack(cfg *config.Config, logger *slog.Logger, compile bool) (*assetStack, error) {
	rc, err := cfg.ResolverConfig()
	if err != nil {
		return nil, err
	}
	rc.Logger = logger

	if compile {
		env, repo, closer, err := newEnvironment(cfg, logger)
		if err != nil {
			return nil, err
		}
		resolver := assets.New(rc, assets.WithRegistry(assets.TraceLookups(env, logger)))
		env.SetHelper(resolver)
		logger.Debug("compiling assets on request", "paths", env.Paths())
		return &assetStack{resolver: resolver, env: env, repo: repo, close: closer}, nil
	}

	manifest, err := assets.LoadManifest(cfg.Assets.Manifest)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("asset manifest not found, falling back to public paths", "manifest", cfg.Assets.Manifest)
		return &assetStack{resolver: assets.New(rc), close: func() error { return nil }}, nil
	case err != nil:
		return nil, err
	}
	logger.Debug("asset manifest loaded", "manifest", manifest.Path(), "assets", len(manifest.Assets))
	return &assetStack{
		resolver: assets.New(rc, assets.WithManifest(manifest)),
		close:    func() error { return nil },
	}, nil
}

// mountAssets serves the assets prefix from the environment or the
// precompiled output directory, and the public folder at /.
func mountAssets(e *echo.Echo, cfg *config.Config, stack *assetStack, logger *slog.Logger) {
	prefix := "/" + strings.Trim(cfg.Assets.Prefix, "/")

	if stack.env != nil {
		h := http.StripPrefix(prefix, appmiddleware.Trace(logger)(stack.env))
		e.Any(prefix+"/*", echo.WrapHandler(h))
	} else {
		e.Static(prefix, cfg.Assets.OutputDir)
	}

	if cfg.Server.PublicDir != "" {
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root: cfg.Server.PublicDir,
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Request().URL.Path, prefix+"/")
			},
		}))
	}
}
