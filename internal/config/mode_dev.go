// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build dev

package config

// devMode selects development defaults: assets are compiled on request,
// bundles are expanded and runtime errors are raised.
const devMode = true
