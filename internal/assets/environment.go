// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"bytes"
	"errors"
	"fmt"
	"hash"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// templateExt marks source files rendered with text/template before use.
const templateExt = ".tmpl"

// Environment is a filesystem-backed Registry. Files are looked up in the
// search paths in order; "require" directives compose bundles and .tmpl
// files may call the path helpers on other assets.
type Environment struct {
	paths     []string
	version   string
	algorithm string
	newHash   func() hash.Hash
	cache     Cache
	helper    PathHelper
	logger    *slog.Logger
	mu        sync.RWMutex
}

// EnvironmentOption configures an Environment.
type EnvironmentOption func(*Environment)

// WithPaths appends search paths.
func WithPaths(paths ...string) EnvironmentOption {
	return func(e *Environment) {
		for _, p := range paths {
			e.AppendPath(p)
		}
	}
}

// WithVersion mixes v into every digest, so changing it expires all
// digested URLs at once.
func WithVersion(v string) EnvironmentOption {
	return func(e *Environment) {
		e.version = v
	}
}

// WithDigestAlgorithm selects md5 (default), sha1, sha256, blake2b or blake3.
func WithDigestAlgorithm(name string) EnvironmentOption {
	return func(e *Environment) {
		e.algorithm = strings.ToLower(name)
	}
}

// WithCache stores asset metadata in c instead of a fresh MemoryCache.
func WithCache(c Cache) EnvironmentOption {
	return func(e *Environment) {
		e.cache = c
	}
}

// WithHelper sets the PathHelper available to .tmpl assets.
func WithHelper(h PathHelper) EnvironmentOption {
	return func(e *Environment) {
		e.helper = h
	}
}

// WithEnvironmentLogger sets the logger.
func WithEnvironmentLogger(l *slog.Logger) EnvironmentOption {
	return func(e *Environment) {
		e.logger = l
	}
}

// NewEnvironment creates an Environment.
func NewEnvironment(opts ...EnvironmentOption) (*Environment, error) {
	e := &Environment{algorithm: DigestMD5}
	for _, opt := range opts {
		opt(e)
	}

	newHash, err := hashFunc(e.algorithm)
	if err != nil {
		return nil, err
	}
	e.newHash = newHash

	if e.cache == nil {
		e.cache = NewMemoryCache()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// AppendPath adds a search path with the lowest priority.
func (e *Environment) AppendPath(p string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paths = append(e.paths, p)
}

// Paths returns the search paths in lookup order.
func (e *Environment) Paths() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.paths)
}

// SetHelper sets the PathHelper available to .tmpl assets. Usually the
// Resolver that wraps this environment.
func (e *Environment) SetHelper(h PathHelper) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.helper = h
}

func (e *Environment) pathHelper() PathHelper {
	e.mu.RLock()
	h := e.helper
	e.mu.RUnlock()
	if h != nil {
		return h
	}
	return New(Config{Prefix: "/assets"}, WithRegistry(e))
}

// Lookup returns the asset for logicalPath.
func (e *Environment) Lookup(logicalPath string) (*Asset, error) {
	asset, _, err := e.lookup(logicalPath, nil)
	return asset, err
}

// Body returns the processed content of the asset's own file, without
// the parts it requires.
func (e *Environment) Body(a *Asset) ([]byte, error) {
	p, err := e.processLogical(a.LogicalPath, []string{a.LogicalPath})
	if err != nil {
		return nil, err
	}
	return p.body, nil
}

// Source returns the concatenated content of all parts of the asset.
func (e *Environment) Source(a *Asset) ([]byte, error) {
	var b bytes.Buffer
	for _, part := range a.Parts {
		p, err := e.processLogical(part, []string{part})
		if err != nil {
			return nil, err
		}
		appendPart(&b, p.body)
	}
	return b.Bytes(), nil
}

// Each calls fn for every logical path in the search paths, in sorted
// order. Files shadowed by an earlier search path are reported once.
func (e *Environment) Each(fn func(logicalPath string) error) error {
	seen := make(map[string]bool)
	var all []string

	for _, root := range e.Paths() {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if strings.HasPrefix(d.Name(), ".") && p != root {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			lp := strings.TrimSuffix(filepath.ToSlash(rel), templateExt)
			if !seen[lp] {
				seen[lp] = true
				all = append(all, lp)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(all)
	for _, lp := range all {
		if err := fn(lp); err != nil {
			return err
		}
	}
	return nil
}

// cacheKey scopes cached records to the digest settings and search paths.
func (e *Environment) cacheKey(logicalPath string) string {
	return strings.Join(append([]string{"asset", e.algorithm, e.version, logicalPath}, e.Paths()...), "\n")
}

func (e *Environment) lookup(logicalPath string, stack []string) (*Asset, *cacheRecord, error) {
	lp, ok := cleanLogicalPath(logicalPath)
	if !ok {
		return nil, nil, &AssetNotFoundError{LogicalPath: logicalPath}
	}
	if slices.Contains(stack, lp) {
		return nil, nil, fmt.Errorf("%w: %s", ErrCircularReference, strings.Join(append(stack, lp), " -> "))
	}

	key := e.cacheKey(lp)
	if data, ok := e.cache.Get(key); ok {
		var rec cacheRecord
		if err := cbor.Unmarshal(data, &rec); err == nil && rec.fresh() {
			return rec.asset(), &rec, nil
		}
	}

	rec, err := e.build(lp, append(slices.Clone(stack), lp))
	if err != nil {
		return nil, nil, err
	}

	if data, err := cbor.Marshal(rec); err == nil {
		e.cache.Set(key, data)
	} else {
		e.logger.Warn("failed to encode asset cache record", "logical_path", lp, "error", err)
	}
	return rec.asset(), rec, nil
}

// build processes lp and everything it requires. stack ends with lp.
func (e *Environment) build(lp string, stack []string) (*cacheRecord, error) {
	self, err := e.processLogical(lp, stack)
	if err != nil {
		return nil, err
	}

	rec := &cacheRecord{
		LogicalPath: lp,
		Filename:    self.filename,
		ContentType: contentType(lp),
	}
	rec.addStamps(self.stamps...)

	parts, stamps, err := e.resolveParts(lp, self, stack)
	if err != nil {
		return nil, err
	}
	rec.Parts = parts
	rec.addStamps(stamps...)

	h := e.newHash()
	h.Write([]byte(e.version)) //nolint:errcheck // hash writes never fail
	var src bytes.Buffer
	for _, part := range parts {
		p := self
		if part != lp {
			if p, err = e.processLogical(part, stack); err != nil {
				return nil, err
			}
		}
		appendPart(&src, p.body)
		for _, dep := range p.deps {
			h.Write([]byte(dep.Digest)) //nolint:errcheck // hash writes never fail
			rec.addStamps(dep.Stamps...)
		}
		rec.addStamps(p.stamps...)
	}
	h.Write(src.Bytes()) //nolint:errcheck // hash writes never fail
	rec.Digest = fmt.Sprintf("%x", h.Sum(nil))

	return rec, nil
}

// resolveParts expands the directives of lp into its ordered, deduplicated
// list of parts.
func (e *Environment) resolveParts(lp string, self *processed, stack []string) ([]string, []fileStamp, error) {
	var parts []string
	var stamps []fileStamp
	selfAdded := false

	add := func(names ...string) {
		for _, n := range names {
			if !slices.Contains(parts, n) {
				parts = append(parts, n)
			}
		}
	}

	require := func(name string) error {
		_, rec, err := e.lookup(name, stack)
		if err != nil {
			return fmt.Errorf("%s: require %s: %w", lp, name, err)
		}
		add(rec.Parts...)
		stamps = append(stamps, rec.Stamps...)
		return nil
	}

	for _, d := range self.directives {
		switch d.name {
		case "require":
			if err := require(e.expandRequire(lp, d.arg)); err != nil {
				return nil, nil, err
			}
		case "require_self":
			add(lp)
			selfAdded = true
		case "require_tree", "require_directory":
			names, dirStamps, err := e.listDirectory(lp, d.arg, d.name == "require_tree")
			if err != nil {
				return nil, nil, err
			}
			stamps = append(stamps, dirStamps...)
			for _, n := range names {
				if n == lp {
					continue
				}
				if err := require(n); err != nil {
					return nil, nil, err
				}
			}
		default:
			return nil, nil, fmt.Errorf("%s:%d: unknown directive %q", lp, d.line, d.name)
		}
	}

	if !selfAdded {
		add(lp)
	}
	return parts, stamps, nil
}

// expandRequire turns a require argument into a logical path: relative
// to lp when it starts with ./ or ../, with lp's extension when missing.
func (e *Environment) expandRequire(lp, arg string) string {
	arg = strings.Trim(arg, `"'`)
	if strings.HasPrefix(arg, "./") || strings.HasPrefix(arg, "../") {
		arg = path.Join(path.Dir(lp), arg)
	}
	if path.Ext(arg) == "" {
		arg += path.Ext(lp)
	}
	return arg
}

// listDirectory returns the logical paths below dir (relative to lp) that
// share lp's extension.
func (e *Environment) listDirectory(lp, dir string, recursive bool) ([]string, []fileStamp, error) {
	logicalDir := path.Join(path.Dir(lp), strings.Trim(dir, `"'`))
	if strings.HasPrefix(logicalDir, "..") {
		return nil, nil, fmt.Errorf("%s: directory %s is outside the search paths", lp, dir)
	}
	ext := path.Ext(lp)

	var names []string
	var stamps []fileStamp
	found := false

	for _, root := range e.Paths() {
		base := filepath.Join(root, filepath.FromSlash(logicalDir))
		info, err := os.Stat(base)
		if err != nil || !info.IsDir() {
			continue
		}
		found = true

		err = filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if info, err := d.Info(); err == nil {
					stamps = append(stamps, stampOf(p, info))
				}
				if p != base && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.ToSlash(rel), templateExt)
			if path.Ext(name) == ext && !slices.Contains(names, name) {
				names = append(names, name)
			}
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list %s: %w", base, err)
		}
	}

	if !found {
		return nil, nil, fmt.Errorf("%s: %w: directory %s", lp, ErrAssetNotFound, dir)
	}
	sort.Strings(names)
	return names, stamps, nil
}

// findFile returns the first file in the search paths providing lp.
func (e *Environment) findFile(lp string) (string, fs.FileInfo, error) {
	for _, root := range e.Paths() {
		base := filepath.Join(root, filepath.FromSlash(lp))
		for _, candidate := range []string{base, base + templateExt} {
			info, err := os.Stat(candidate)
			if err == nil && info.Mode().IsRegular() {
				return candidate, info, nil
			}
		}
	}
	return "", nil, &AssetNotFoundError{LogicalPath: lp}
}

func cleanLogicalPath(p string) (string, bool) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", false
	}
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	return p, true
}

func contentType(lp string) string {
	if ct := mime.TypeByExtension(path.Ext(lp)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// appendPart concatenates bundle parts, keeping each on its own lines.
func appendPart(b *bytes.Buffer, body []byte) {
	if b.Len() > 0 && !bytes.HasSuffix(b.Bytes(), []byte("\n")) {
		b.WriteByte('\n')
	}
	b.Write(body)
}
