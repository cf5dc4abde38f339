// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"errors"
	"log/slog"
	"time"
)

// Asset is a registry entry.
type Asset struct {
	LogicalPath string
	Filename    string
	ContentType string
	Digest      string
	ModTime     time.Time
	// Parts lists the logical paths composing the asset in declared
	// order, the asset itself included. A plain file has one part.
	Parts []string
}

// DigestPath returns the logical path with the digest inserted before the
// extension.
func (a *Asset) DigestPath() string {
	return digestPath(a.LogicalPath, a.Digest)
}

// Registry resolves logical paths to assets. Lookup returns an error
// matching ErrAssetNotFound when the logical path is unknown.
type Registry interface {
	Lookup(logicalPath string) (*Asset, error)
}

// RegistryFunc adapts a function to a Registry.
type RegistryFunc func(logicalPath string) (*Asset, error)

func (f RegistryFunc) Lookup(logicalPath string) (*Asset, error) {
	return f(logicalPath)
}

// TraceLookups wraps reg so that every lookup is logged before the result
// is handed back unchanged.
func TraceLookups(reg Registry, logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return RegistryFunc(func(logicalPath string) (*Asset, error) {
		start := time.Now()
		asset, err := reg.Lookup(logicalPath)
		attrs := []any{
			"logical_path", logicalPath,
			"duration", time.Since(start),
		}
		switch {
		case err == nil && asset != nil:
			attrs = append(attrs, "digest", asset.Digest)
		case err == nil, errors.Is(err, ErrAssetNotFound):
			attrs = append(attrs, "found", false)
		default:
			attrs = append(attrs, "error", err)
		}
		logger.Debug("asset lookup", attrs...)
		return asset, err
	})
}
