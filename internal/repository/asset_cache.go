// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// AssetCache persists the asset environment's metadata cache in SQLite so
// digests survive restarts. Database errors are logged and reported as
// cache misses.
type AssetCache struct {
	repo    *Repository
	logger  *slog.Logger
	timeout time.Duration
}

// NewAssetCache creates an AssetCache backed by repo.
func NewAssetCache(repo *Repository, logger *slog.Logger) *AssetCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetCache{repo: repo, logger: logger, timeout: 5 * time.Second}
}

func (c *AssetCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	entry, err := c.repo.GetCacheEntry(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("failed to read asset cache", "error", err)
		}
		return nil, false
	}
	return entry.Value, true
}

func (c *AssetCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.repo.PutCacheEntry(ctx, key, value); err != nil {
		c.logger.Warn("failed to write asset cache", "error", err)
	}
}
