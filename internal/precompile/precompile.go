// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package precompile writes digested copies of the assets of an
// Environment to disk together with the manifest used in production.
package precompile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"github.com/klauspost/compress/gzip"
)

// Options control a precompile run.
type Options struct {
	// Dir receives the digested files and the manifest.
	Dir string
	// Manifest overrides the manifest path. Defaults to Dir/manifest.json.
	Manifest string
	// Matchers selects the logical paths to compile. Nil selects
	// assets.DefaultPrecompile().
	Matchers assets.Matchers
	// Gzip writes a .gz sibling for text assets.
	Gzip   bool
	Logger *slog.Logger
}

// Run compiles every matching asset of env into opts.Dir and updates the
// manifest. Entries of a previous run are kept so that pages rendered
// against an older manifest still find their files.
func Run(ctx context.Context, env *assets.Environment, opts Options) (*assets.Manifest, error) {
	if opts.Dir == "" {
		return nil, errors.New("precompile: output directory is required")
	}
	if opts.Matchers == nil {
		opts.Matchers = assets.DefaultPrecompile()
	}
	if opts.Manifest == "" {
		opts.Manifest = filepath.Join(opts.Dir, assets.ManifestName)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	manifest, err := assets.LoadManifest(opts.Manifest)
	if errors.Is(err, fs.ErrNotExist) {
		manifest, err = assets.NewManifest(opts.Manifest), nil
	}
	if err != nil {
		return nil, err
	}

	compiled := 0
	err = env.Each(func(logicalPath string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !opts.Matchers.Match(logicalPath) {
			return nil
		}

		asset, err := env.Lookup(logicalPath)
		if err != nil {
			return fmt.Errorf("failed to compile %s: %w", logicalPath, err)
		}
		size, written, err := writeAsset(env, asset, opts)
		if err != nil {
			return err
		}
		manifest.Add(asset, size)
		compiled++

		if written {
			logger.InfoContext(ctx, "compiled asset", "logical_path", logicalPath, "digest_path", asset.DigestPath())
		} else {
			logger.DebugContext(ctx, "asset up to date", "logical_path", logicalPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := manifest.Save(); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "precompile finished", "assets", compiled, "manifest", opts.Manifest)
	return manifest, nil
}

// writeAsset writes the digested file unless it already exists. It
// returns the size of the compiled source.
func writeAsset(env *assets.Environment, asset *assets.Asset, opts Options) (int64, bool, error) {
	target := filepath.Join(opts.Dir, filepath.FromSlash(asset.DigestPath()))

	if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
		if !opts.Gzip || !compressible(asset.ContentType) || exists(target+".gz") {
			return info.Size(), false, nil
		}
	}

	src, err := env.Source(asset)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read %s: %w", asset.LogicalPath, err)
	}
	if err := writeFile(target, src); err != nil {
		return 0, false, err
	}

	if opts.Gzip && compressible(asset.ContentType) {
		if err := writeGzip(target+".gz", src, asset); err != nil {
			return 0, false, err
		}
	}

	if !asset.ModTime.IsZero() {
		_ = os.Chtimes(target, asset.ModTime, asset.ModTime)
	}
	return int64(len(src)), true, nil
}

func writeFile(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil { //nolint:gosec // public assets directory
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // public assets are world readable
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}
	return nil
}

func writeGzip(target string, src []byte, asset *assets.Asset) error {
	f, err := os.CreateTemp(filepath.Dir(target), ".gz-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer func() { _ = os.Remove(f.Name()) }()

	zw, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		_ = f.Close()
		return err
	}
	zw.Name = filepath.Base(asset.DigestPath())
	zw.ModTime = asset.ModTime

	if _, err := zw.Write(src); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to compress %s: %w", asset.LogicalPath, err)
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to compress %s: %w", asset.LogicalPath, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil { //nolint:gosec // public assets are world readable
		return err
	}
	return os.Rename(f.Name(), target)
}

// compressible reports whether content of this type benefits from gzip.
func compressible(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	switch {
	case strings.HasPrefix(ct, "text/"):
		return true
	case ct == "application/javascript", ct == "application/json", ct == "image/svg+xml", ct == "application/xml":
		return true
	}
	return false
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Clobber removes the output directory and everything in it.
func Clobber(dir string) error {
	if dir == "" || dir == "/" || dir == "." {
		return fmt.Errorf("precompile: refusing to clobber %q", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clobber %s: %w", dir, err)
	}
	return nil
}
