// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/config"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/precompile"
	"github.com/urfave/cli/v3"
)

// Precompile compiles the configured assets into the output directory.
func Precompile(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)

	stack, err := newAssetStack(cfg, logger, true)
	if err != nil {
		return err
	}
	defer func() { _ = stack.close() }()

	matchers, err := cfg.Assets.Matchers()
	if err != nil {
		return err
	}

	_, err = precompile.Run(ctx, stack.env, precompile.Options{
		Dir:      cfg.Assets.OutputDir,
		Manifest: cfg.Assets.Manifest,
		Matchers: matchers,
		Gzip:     cfg.Assets.Gzip,
		Logger:   logger,
	})
	return err
}

// Clobber removes the precompiled assets and clears the asset cache.
func Clobber(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := precompile.Clobber(cfg.Assets.OutputDir); err != nil {
		return err
	}
	logger.Info("removed precompiled assets", "dir", cfg.Assets.OutputDir)

	if cfg.Cache.DSN == "" {
		return nil
	}
	repo, closer, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	if err := repo.ClearCache(ctx); err != nil {
		return fmt.Errorf("failed to clear asset cache: %w", err)
	}
	logger.Info("cleared asset cache", "dsn", cfg.Cache.DSN)
	return nil
}

// ResolveFlags are the flags of the resolve command.
func ResolveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "type",
			Value: "asset",
			Usage: "Asset type (asset, javascript, stylesheet, image)",
		},
		&cli.BoolFlag{
			Name:  "tag",
			Usage: "Print include tags instead of paths (javascript and stylesheet only)",
		},
		&cli.BoolFlag{
			Name:  "url",
			Usage: "Print absolute URLs",
		},
	}
}

// Resolve prints the path, URL or tag for every argument, resolved the
// same way the server would.
func Resolve(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return errors.New("resolve: at least one asset name is required")
	}
	t, err := assets.ParseType(cmd.String("type"))
	if err != nil {
		return err
	}

	cfg := config.NewFromCLI(cmd)
	logger := newLogger(io.Discard, cfg.Log.Level, cfg.Log.Format)

	stack, err := newAssetStack(cfg, logger, cfg.Assets.Compile)
	if err != nil {
		return err
	}
	defer func() { _ = stack.close() }()

	out := cmd.Root().Writer
	for _, name := range cmd.Args().Slice() {
		s, err := resolveOne(stack.resolver, name, t, cmd.Bool("tag"), cmd.Bool("url"))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, s); err != nil {
			return err
		}
	}
	return nil
}

func resolveOne(r *assets.Resolver, name string, t assets.Type, tag, url bool) (string, error) {
	if tag {
		switch t {
		case assets.TypeJavascript:
			return r.JavascriptIncludeTag(nil, name)
		case assets.TypeStylesheet:
			return r.StylesheetLinkTag(nil, name)
		default:
			return "", fmt.Errorf("resolve: --tag needs --type javascript or stylesheet, got %s", t)
		}
	}
	return r.Resolve(name, assets.Options{Type: t, URL: url})
}
