// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vinovest/sqlx"
)

// ErrNotFound is returned when a record is not found
var ErrNotFound = errors.New("record not found")

// Repository wraps sqlx for database operations
type Repository struct {
	db *sqlx.DB
}

// New creates a new Repository instance
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// wrapError converts driver errors to repository errors
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CacheEntry is a row of the asset metadata cache.
type CacheEntry struct {
	Key       string    `db:"key"`
	Value     []byte    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GetCacheEntry retrieves a cache entry by key
func (r *Repository) GetCacheEntry(ctx context.Context, key string) (*CacheEntry, error) {
	var entry CacheEntry
	err := r.db.GetContext(ctx, &entry, `SELECT key, value, updated_at FROM asset_cache WHERE key = ?`, key)
	if err != nil {
		return nil, wrapError(err)
	}
	return &entry, nil
}

// PutCacheEntry inserts or replaces a cache entry
func (r *Repository) PutCacheEntry(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO asset_cache (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	return err
}

// CountCacheEntries returns the number of cached records
func (r *Repository) CountCacheEntries(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM asset_cache`); err != nil {
		return 0, err
	}
	return count, nil
}

// PruneCacheEntries deletes entries not updated since before and returns
// how many were removed
func (r *Repository) PruneCacheEntries(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM asset_cache WHERE updated_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ClearCache deletes all cache entries
func (r *Repository) ClearCache(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM asset_cache`)
	return err
}
