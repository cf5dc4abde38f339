// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestName is the file name written by the precompile task.
const ManifestName = "manifest.json"

// FileInfo describes one digested file of a manifest.
type FileInfo struct {
	LogicalPath string    `json:"logical_path"`
	MTime       time.Time `json:"mtime"`
	Size        int64     `json:"size"`
	Digest      string    `json:"digest"`
}

// Manifest maps logical paths to digested filenames. A loaded manifest is
// read-only and safe for concurrent readers; Add is meant for the
// precompile task only.
type Manifest struct {
	Files  map[string]FileInfo `json:"files"`
	Assets map[string]string   `json:"assets"`

	path string
}

// NewManifest returns an empty manifest that Save writes to path.
func NewManifest(path string) *Manifest {
	return &Manifest{
		Files:  make(map[string]FileInfo),
		Assets: make(map[string]string),
		path:   path,
	}
}

// LoadManifest reads a manifest from disk. Files ending in .yml or .yaml
// are read as a flat logical → digested mapping.
func LoadManifest(path string) (*Manifest, error) {
	m, err := LoadManifestFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return nil, err
	}
	m.path = path
	return m, nil
}

// LoadManifestFS reads a manifest from fsys, e.g. an embedded build.
func LoadManifestFS(fsys fs.FS, name string) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data, name)
}

// ParseManifest decodes manifest data; name selects the format by
// extension.
func ParseManifest(data []byte, name string) (*Manifest, error) {
	m := NewManifest("")

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &m.Assets); err != nil {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", name, err)
		}
	default:
		if len(data) == 0 {
			return m, nil
		}
		if err := json.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", name, err)
		}
	}

	if m.Assets == nil {
		m.Assets = make(map[string]string)
	}
	if m.Files == nil {
		m.Files = make(map[string]FileInfo)
	}
	return m, nil
}

// Path returns the file the manifest was loaded from or is saved to.
func (m *Manifest) Path() string {
	return m.path
}

// Lookup returns the digested filename for a logical path.
func (m *Manifest) Lookup(logicalPath string) (string, bool) {
	p, ok := m.Assets[logicalPath]
	return p, ok
}

// Digest returns the digest for a logical path, taken from the files
// section or parsed from the digested filename.
func (m *Manifest) Digest(logicalPath string) (string, bool) {
	p, ok := m.Assets[logicalPath]
	if !ok {
		return "", false
	}
	if info, ok := m.Files[p]; ok && info.Digest != "" {
		return info.Digest, true
	}
	_, digest, ok := parseDigestPath(p)
	return digest, ok
}

// Add records a compiled asset.
func (m *Manifest) Add(a *Asset, size int64) {
	p := a.DigestPath()
	m.Assets[a.LogicalPath] = p
	m.Files[p] = FileInfo{
		LogicalPath: a.LogicalPath,
		MTime:       a.ModTime,
		Size:        size,
		Digest:      a.Digest,
	}
}

// Save writes the manifest as JSON, replacing the previous file atomically.
func (m *Manifest) Save() error {
	if m.path == "" {
		return fmt.Errorf("manifest has no path")
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil { //nolint:gosec // public assets directory
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // public assets are world readable
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}
