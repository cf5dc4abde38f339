// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package assets computes public paths, URLs and markup for static assets.
//
// A Resolver consults either a live Registry (usually an Environment)
// or a precompiled Manifest, inserts content digests into filenames and
// enforces the precompile list. Sources nobody knows about fall back to
// the public folder layout (/javascripts, /stylesheets, /images).
package assets

import (
	"errors"
	"hash/crc32"
	"io/fs"
	"log/slog"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Options tune a single resolution.
type Options struct {
	Type Type
	// Debug marks the path as a single bundle part (?body=1). Parts are not
	// checked against the precompile list.
	Debug bool
	// URL requests an absolute URL instead of a path.
	URL bool
}

// Resolver computes asset paths. It is safe for concurrent use.
type Resolver struct {
	cfg      Config
	registry Registry
	manifest *Manifest
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry makes reg the authoritative source of assets.
func WithRegistry(reg Registry) Option {
	return func(r *Resolver) {
		r.registry = reg
	}
}

// WithManifest resolves through m when no registry is configured.
func WithManifest(m *Manifest) Option {
	return func(r *Resolver) {
		r.manifest = m
	}
}

// New creates a resolver for cfg.
func New(cfg Config, opts ...Option) *Resolver {
	r := &Resolver{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the resolver configuration.
func (r *Resolver) Config() Config {
	return r.cfg
}

// Registry returns the configured registry or nil.
func (r *Resolver) Registry() Registry {
	return r.registry
}

// Manifest returns the configured manifest or nil.
func (r *Resolver) Manifest() *Manifest {
	return r.manifest
}

// WithDebug returns a copy of r with debug mode set to debug.
func (r *Resolver) WithDebug(debug bool) *Resolver {
	if r.cfg.Debug == debug {
		return r
	}
	c := *r
	c.cfg.Debug = debug
	return &c
}

// AssetPath returns the path for source.
func (r *Resolver) AssetPath(source string) (string, error) {
	return r.Resolve(source, Options{})
}

// AssetURL returns the absolute URL for source.
func (r *Resolver) AssetURL(source string) (string, error) {
	return r.Resolve(source, Options{URL: true})
}

// JavascriptPath returns the path for a javascript, adding .js if needed.
func (r *Resolver) JavascriptPath(source string) (string, error) {
	return r.Resolve(source, Options{Type: TypeJavascript})
}

// JavascriptURL is JavascriptPath as an absolute URL.
func (r *Resolver) JavascriptURL(source string) (string, error) {
	return r.Resolve(source, Options{Type: TypeJavascript, URL: true})
}

// StylesheetPath returns the path for a stylesheet, adding .css if needed.
func (r *Resolver) StylesheetPath(source string) (string, error) {
	return r.Resolve(source, Options{Type: TypeStylesheet})
}

// StylesheetURL is StylesheetPath as an absolute URL.
func (r *Resolver) StylesheetURL(source string) (string, error) {
	return r.Resolve(source, Options{Type: TypeStylesheet, URL: true})
}

// ImagePath returns the path for an image.
func (r *Resolver) ImagePath(source string) (string, error) {
	return r.Resolve(source, Options{Type: TypeImage})
}

// ImageURL is ImagePath as an absolute URL.
func (r *Resolver) ImageURL(source string) (string, error) {
	return r.Resolve(source, Options{Type: TypeImage, URL: true})
}

// Resolve computes the path or URL for source.
func (r *Resolver) Resolve(source string, opts Options) (string, error) {
	if source == "" {
		return "", nil
	}
	if IsURL(source) {
		return source, nil
	}

	name, tail := splitTail(source)
	name = withExtension(name, opts.Type)

	if !opts.Debug {
		if err := r.checkErrors(name, opts.Type); err != nil {
			return "", err
		}
	}

	p := name
	if !strings.HasPrefix(name, "/") {
		var err error
		if p, err = r.computeAssetPath(name, opts); err != nil {
			return "", err
		}
	}

	if root := strings.TrimRight(r.cfg.RelativeURLRoot, "/"); root != "" && !strings.HasPrefix(p, root+"/") {
		p = root + p
	}
	if host := r.computeHost(p, opts.URL); host != "" {
		p = host + p
	}

	if strings.HasPrefix(tail, "?") && strings.Contains(p, "?") {
		tail = "&" + tail[1:]
	}
	return p + tail, nil
}

// AssetDigest returns the digest for source, or "" when it is unknown.
func (r *Resolver) AssetDigest(source string) (string, error) {
	name := LogicalName(source, TypeAsset)
	res, err := r.lookup(name, true)
	if err != nil {
		return "", err
	}
	if res == nil {
		if r.cfg.RaiseOnMissing {
			return "", &AssetNotFoundError{LogicalPath: name}
		}
		return "", nil
	}
	return res.digest, nil
}

// AssetDigestPath returns the digested filename for source, or source
// unchanged when it is unknown.
func (r *Resolver) AssetDigestPath(source string) (string, error) {
	name := LogicalName(source, TypeAsset)
	res, err := r.lookup(name, true)
	if err != nil {
		return "", err
	}
	if res == nil {
		if r.cfg.RaiseOnMissing {
			return "", &AssetNotFoundError{LogicalPath: name}
		}
		return source, nil
	}
	return res.digestPath, nil
}

// checkErrors raises for filtered assets and for prefixed sources that
// are known under their logical name.
func (r *Resolver) checkErrors(name string, t Type) error {
	if !r.cfg.RaiseRuntimeErrors || r.registry == nil {
		return nil
	}

	asset, err := r.find(name)
	if err != nil {
		return err
	}
	if asset != nil {
		if !r.allowed(asset) {
			return &AssetFilteredError{LogicalPath: asset.LogicalPath}
		}
		return nil
	}

	prefix := strings.TrimRight(r.cfg.Prefix, "/") + "/"
	if strings.HasPrefix(name, prefix) {
		short := strings.TrimPrefix(name, prefix)
		if asset, _ := r.find(short); asset != nil {
			return &AbsoluteAssetPathError{Source: name, ShortPath: short, Type: t}
		}
	}
	return nil
}

func (r *Resolver) computeAssetPath(name string, opts Options) (string, error) {
	res, err := r.lookup(name, !opts.Debug)
	if err != nil {
		return "", err
	}
	if res != nil {
		p := res.digestPath
		if r.cfg.DisableDigest {
			p = res.logicalPath
		}
		if opts.Debug {
			p += "?body=1"
		}
		prefix := r.cfg.Prefix
		if prefix == "" {
			prefix = "/"
		}
		return path.Join(prefix, p), nil
	}

	public := opts.Type.PublicDir() + "/" + name
	if r.cfg.RaiseOnMissing && !r.inPublic(public) {
		return "", &AssetNotFoundError{LogicalPath: name}
	}
	return public, nil
}

type lookupResult struct {
	logicalPath string
	digestPath  string
	digest      string
}

// lookup resolves name through the registry, or the manifest when no
// registry is configured. A nil result means the caller falls back to
// the public folder.
func (r *Resolver) lookup(name string, filter bool) (*lookupResult, error) {
	if r.registry != nil {
		asset, err := r.find(name)
		if err != nil {
			if r.cfg.RaiseRuntimeErrors {
				return nil, err
			}
			r.log().Warn("asset lookup failed", "logical_path", name, "error", err)
			return nil, nil
		}
		if asset == nil {
			return nil, nil
		}
		if filter && !r.allowed(asset) {
			if r.cfg.RaiseRuntimeErrors {
				return nil, &AssetFilteredError{LogicalPath: asset.LogicalPath}
			}
			r.log().Warn("asset not in precompile list", "logical_path", asset.LogicalPath)
			return nil, nil
		}
		return &lookupResult{
			logicalPath: asset.LogicalPath,
			digestPath:  asset.DigestPath(),
			digest:      asset.Digest,
		}, nil
	}

	if r.manifest != nil {
		p, ok := r.manifest.Lookup(name)
		if !ok {
			return nil, nil
		}
		digest, _ := r.manifest.Digest(name)
		return &lookupResult{logicalPath: name, digestPath: p, digest: digest}, nil
	}

	return nil, nil
}

// find looks name up in the registry; unknown names yield (nil, nil).
func (r *Resolver) find(name string) (*Asset, error) {
	if r.registry == nil || strings.HasPrefix(name, "/") {
		return nil, nil
	}
	asset, err := r.registry.Lookup(name)
	if errors.Is(err, ErrAssetNotFound) {
		return nil, nil
	}
	return asset, err
}

func (r *Resolver) log() *slog.Logger {
	if r.cfg.Logger != nil {
		return r.cfg.Logger
	}
	return slog.Default()
}

func (r *Resolver) allowed(asset *Asset) bool {
	return r.cfg.Precompile == nil || r.cfg.Precompile.Match(asset.LogicalPath)
}

func (r *Resolver) inPublic(p string) bool {
	if r.cfg.PublicFS == nil {
		return false
	}
	info, err := fs.Stat(r.cfg.PublicFS, strings.TrimPrefix(p, "/"))
	return err == nil && !info.IsDir()
}

// computeHost returns the host part prepended to p, without trailing slash.
func (r *Resolver) computeHost(p string, absolute bool) string {
	host := r.cfg.Host
	if r.cfg.HostFunc != nil {
		host = r.cfg.HostFunc(p)
	}
	host = strings.TrimRight(host, "/")

	if host == "" {
		if absolute {
			return strings.TrimRight(r.cfg.BaseURL, "/")
		}
		return ""
	}

	if strings.Contains(host, "%d") {
		shard := crc32.ChecksumIEEE([]byte(p)) % 4
		host = strings.Replace(host, "%d", strconv.FormatUint(uint64(shard), 10), 1)
	}

	if IsURL(host) {
		if absolute && strings.HasPrefix(host, "//") {
			return r.scheme() + ":" + host
		}
		return host
	}
	if absolute {
		return r.scheme() + "://" + host
	}
	return "//" + host
}

func (r *Resolver) scheme() string {
	if u, err := url.Parse(r.cfg.BaseURL); err == nil && u.Scheme != "" {
		return u.Scheme
	}
	return "http"
}
