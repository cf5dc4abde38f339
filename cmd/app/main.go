// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/config"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/server"
	"github.com/urfave/cli/v3"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "Serve, compile and resolve web assets",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the web application",
				Action: server.Run,
			},
			{
				Name:   "precompile",
				Usage:  "Compile assets into the output directory and write the manifest",
				Action: server.Precompile,
			},
			{
				Name:   "clobber",
				Usage:  "Remove compiled assets",
				Action: server.Clobber,
			},
			{
				Name:      "resolve",
				Usage:     "Print the path, URL or tag of assets",
				ArgsUsage: "NAME...",
				Flags:     server.ResolveFlags(),
				Action:    server.Resolve,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
