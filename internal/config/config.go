// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var (
	configPath = "config.toml"
	configFile = altsrc.NewStringPtrSourcer(&configPath)
)

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server ServerConfig
	Log    LogConfig
	Cache  CacheConfig
	Assets AssetsConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host      string
	Port      int
	BaseURL   string
	PublicDir string // served at / for files outside the pipeline
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// CacheConfig selects where asset metadata is cached. An empty DSN keeps
// the cache in memory.
type CacheConfig struct {
	DSN    string
	MaxAge time.Duration // entries not rewritten for this long are pruned on start
}

type AssetsConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Prefix          string   // URL prefix, e.g. /assets
	Host            string   // asset host, may contain %d
	Paths           []string // search paths of the live environment
	Compile         bool     // serve from the live environment instead of the manifest
	Debug           bool     // expand bundles into one tag per part
	Digest          bool     // insert digests into filenames
	Version         string   // mixed into every digest
	DigestAlgorithm string   // md5, sha1, sha256, blake2b, blake3
	Manifest        string   // manifest path, defaults to <output-dir>/manifest.json
	OutputDir       string   // precompile target
	Precompile      []string // literals, globs or /regexp/ entries
	Gzip            bool     // write .gz siblings when precompiling

	RaiseRuntimeErrors bool
	RaiseOnMissing     bool
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:      cmd.String("host"),
			Port:      int(cmd.Int("port")),
			BaseURL:   cmd.String("base-url"),
			PublicDir: cmd.String("public-dir"),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Cache: CacheConfig{
			DSN:    cmd.String("cache-dsn"),
			MaxAge: cmd.Duration("cache-max-age"),
		},
		Assets: AssetsConfig{
			Prefix:             cmd.String("assets-prefix"),
			Host:               cmd.String("asset-host"),
			Paths:              cmd.StringSlice("assets-path"),
			Compile:            cmd.Bool("assets-compile"),
			Debug:              cmd.Bool("assets-debug"),
			Digest:             cmd.Bool("assets-digest"),
			Version:            cmd.String("assets-version"),
			DigestAlgorithm:    cmd.String("digest-algorithm"),
			Manifest:           cmd.String("manifest"),
			OutputDir:          cmd.String("output-dir"),
			Precompile:         cmd.StringSlice("precompile"),
			Gzip:               cmd.Bool("gzip"),
			RaiseRuntimeErrors: cmd.Bool("raise-runtime-errors"),
			RaiseOnMissing:     cmd.Bool("raise-on-missing"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}
	if cfg.Assets.OutputDir == "" {
		cfg.Assets.OutputDir = filepath.Join(cfg.Server.PublicDir, filepath.FromSlash(cfg.Assets.Prefix))
	}
	if cfg.Assets.Manifest == "" {
		cfg.Assets.Manifest = filepath.Join(cfg.Assets.OutputDir, assets.ManifestName)
	}

	return cfg
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	if cfg.Server.Port == 80 {
		return fmt.Sprintf("http://%s", host)
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.Server.Port)
}

// Matchers parses the precompile list. An empty list selects the default
// list: application.js, application.css and every non-JS/CSS file.
func (c *AssetsConfig) Matchers() (assets.Matchers, error) {
	if len(c.Precompile) == 0 {
		return assets.DefaultPrecompile(), nil
	}
	return assets.ParseMatchers(c.Precompile)
}

// ResolverConfig translates the configuration into resolver settings.
func (c *Config) ResolverConfig() (assets.Config, error) {
	matchers, err := c.Assets.Matchers()
	if err != nil {
		return assets.Config{}, err
	}

	rc := assets.Config{
		Prefix:             c.Assets.Prefix,
		Host:               c.Assets.Host,
		BaseURL:            c.Server.BaseURL,
		Debug:              c.Assets.Debug,
		DisableDigest:      !c.Assets.Digest,
		RaiseRuntimeErrors: c.Assets.RaiseRuntimeErrors,
		RaiseOnMissing:     c.Assets.RaiseOnMissing,
		Precompile:         matchers,
	}
	if c.Server.PublicDir != "" {
		rc.PublicFS = os.DirFS(c.Server.PublicDir)
	}
	return rc, nil
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Value:       "config.toml",
			Usage:       "Path to configuration file",
			Destination: &configPath,
			Sources:     cli.EnvVars("CONFIG"),
		},
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the application, used by the *_url helpers",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.StringFlag{
			Name:    "public-dir",
			Value:   "./public",
			Usage:   "Public folder served at /",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PUBLIC_DIR"), toml.TOML("server.public_dir", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "cache-dsn",
			Usage:   "SQLite DSN for the asset metadata cache (in memory if empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CACHE_DSN"), toml.TOML("cache.dsn", configFile)),
		},
		&cli.DurationFlag{
			Name:    "cache-max-age",
			Value:   30 * 24 * time.Hour,
			Usage:   "Prune cached asset metadata older than this on start (0 disables)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CACHE_MAX_AGE"), toml.TOML("cache.max_age", configFile)),
		},
		// Asset flags
		&cli.StringFlag{
			Name:    "assets-prefix",
			Value:   "/assets",
			Usage:   "URL prefix digested assets are served under",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_PREFIX"), toml.TOML("assets.prefix", configFile)),
		},
		&cli.StringFlag{
			Name:    "asset-host",
			Usage:   "Asset host (cdn.example.com, assets%d.example.com or a full URL)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSET_HOST"), toml.TOML("assets.host", configFile)),
		},
		&cli.StringSliceFlag{
			Name:    "assets-path",
			Value:   []string{"./app/assets"},
			Usage:   "Asset search paths, in lookup order",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_PATH"), toml.TOML("assets.paths", configFile)),
		},
		&cli.BoolFlag{
			Name:    "assets-compile",
			Value:   devMode,
			Usage:   "Compile assets on request instead of using the manifest",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_COMPILE"), toml.TOML("assets.compile", configFile)),
		},
		&cli.BoolFlag{
			Name:    "assets-debug",
			Value:   devMode,
			Usage:   "Expand bundles into one tag per part",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_DEBUG"), toml.TOML("assets.debug", configFile)),
		},
		&cli.BoolFlag{
			Name:    "assets-digest",
			Value:   true,
			Usage:   "Insert content digests into asset filenames",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_DIGEST"), toml.TOML("assets.digest", configFile)),
		},
		&cli.StringFlag{
			Name:    "assets-version",
			Usage:   "Version mixed into every digest",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_VERSION"), toml.TOML("assets.version", configFile)),
		},
		&cli.StringFlag{
			Name:    "digest-algorithm",
			Value:   assets.DigestMD5,
			Usage:   "Digest algorithm (md5, sha1, sha256, blake2b, blake3)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_DIGEST_ALGORITHM"), toml.TOML("assets.digest_algorithm", configFile)),
		},
		&cli.StringFlag{
			Name:    "manifest",
			Usage:   "Manifest path (defaults to <output-dir>/manifest.json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_MANIFEST"), toml.TOML("assets.manifest", configFile)),
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Usage:   "Precompile output directory (defaults to <public-dir>/<assets-prefix>)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_OUTPUT_DIR"), toml.TOML("assets.output_dir", configFile)),
		},
		&cli.StringSliceFlag{
			Name:    "precompile",
			Usage:   "Precompile list entries: names, globs or /regexp/",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_PRECOMPILE"), toml.TOML("assets.precompile", configFile)),
		},
		&cli.BoolFlag{
			Name:    "gzip",
			Value:   true,
			Usage:   "Write gzip variants of text assets when precompiling",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_GZIP"), toml.TOML("assets.gzip", configFile)),
		},
		&cli.BoolFlag{
			Name:    "raise-runtime-errors",
			Value:   devMode,
			Usage:   "Fail on filtered assets and prefixed asset paths instead of logging",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_RAISE_RUNTIME_ERRORS"), toml.TOML("assets.raise_runtime_errors", configFile)),
		},
		&cli.BoolFlag{
			Name:    "raise-on-missing",
			Usage:   "Fail on assets found nowhere instead of using the public path",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETS_RAISE_ON_MISSING"), toml.TOML("assets.raise_on_missing", configFile)),
		},
	}
}
