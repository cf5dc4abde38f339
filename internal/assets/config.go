// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"io/fs"
	"log/slog"
	"sync/atomic"
)

// Config controls how a Resolver computes paths. It is read-only once
// handed to New.
type Config struct { //nolint:govet // fieldalignment not critical for config structs
	// Prefix is the URL path digested assets are served under.
	Prefix string
	// Host is an optional asset host: "cdn.example.com", "assets%d.example.com"
	// or a full "https://cdn.example.com".
	Host string
	// HostFunc computes the asset host per source and wins over Host.
	HostFunc func(source string) string
	// BaseURL is used by the URL helpers when no asset host is set.
	BaseURL string
	// RelativeURLRoot is prepended when the application is mounted below /.
	RelativeURLRoot string

	// Debug expands bundles into one tag per part.
	Debug bool
	// DisableDigest resolves through the registry or manifest but emits
	// logical paths instead of digest paths.
	DisableDigest bool

	// RaiseRuntimeErrors turns filtered assets and prefixed sources into
	// errors. When false they degrade to the public path and are logged.
	RaiseRuntimeErrors bool
	// RaiseOnMissing returns ErrAssetNotFound for sources that neither the
	// registry, the manifest nor the public folder know about.
	RaiseOnMissing bool

	// Precompile lists the assets the registry may resolve. A nil list
	// disables the check.
	Precompile Matchers
	// PublicFS is the public folder used to confirm assets living outside
	// the pipeline.
	PublicFS fs.FS

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used by Default.
func DefaultConfig() Config {
	return Config{
		Prefix:     "/assets",
		Precompile: DefaultPrecompile(),
	}
}

var defaultResolver atomic.Pointer[Resolver]

func init() {
	defaultResolver.Store(New(DefaultConfig()))
}

// Default returns the process-wide resolver.
func Default() *Resolver {
	return defaultResolver.Load()
}

// SetDefault replaces the process-wide resolver. It is meant to be called
// once at boot.
func SetDefault(r *Resolver) {
	defaultResolver.Store(r)
}
