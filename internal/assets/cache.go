// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"io/fs"
	"os"
	"sync"
	"time"
)

// Cache stores encoded asset metadata between lookups. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	entries map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *MemoryCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// fileStamp identifies the state of a file or directory an asset was
// built from.
type fileStamp struct {
	Name    string `cbor:"1,keyasint"`
	Size    int64  `cbor:"2,keyasint"`
	ModTime int64  `cbor:"3,keyasint"`
}

func stampOf(name string, info fs.FileInfo) fileStamp {
	return fileStamp{Name: name, Size: info.Size(), ModTime: info.ModTime().UnixNano()}
}

func (s fileStamp) fresh() bool {
	info, err := os.Stat(s.Name)
	if err != nil {
		return false
	}
	return info.Size() == s.Size && info.ModTime().UnixNano() == s.ModTime
}

// cacheRecord is the cached form of a built asset.
type cacheRecord struct {
	LogicalPath string      `cbor:"1,keyasint"`
	Filename    string      `cbor:"2,keyasint"`
	ContentType string      `cbor:"3,keyasint"`
	Digest      string      `cbor:"4,keyasint"`
	Parts       []string    `cbor:"5,keyasint"`
	Stamps      []fileStamp `cbor:"6,keyasint"`
}

func (r *cacheRecord) fresh() bool {
	for _, s := range r.Stamps {
		if !s.fresh() {
			return false
		}
	}
	return true
}

func (r *cacheRecord) modTime() time.Time {
	var latest int64
	for _, s := range r.Stamps {
		if s.ModTime > latest {
			latest = s.ModTime
		}
	}
	return time.Unix(0, latest)
}

func (r *cacheRecord) asset() *Asset {
	return &Asset{
		LogicalPath: r.LogicalPath,
		Filename:    r.Filename,
		ContentType: r.ContentType,
		Digest:      r.Digest,
		ModTime:     r.modTime(),
		Parts:       append([]string(nil), r.Parts...),
	}
}

// addStamps merges stamps into r, skipping duplicates.
func (r *cacheRecord) addStamps(stamps ...fileStamp) {
	for _, s := range stamps {
		dup := false
		for _, existing := range r.Stamps {
			if existing.Name == s.Name {
				dup = true
				break
			}
		}
		if !dup {
			r.Stamps = append(r.Stamps, s)
		}
	}
}
