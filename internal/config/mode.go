// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

package config

// devMode selects development defaults. Production builds read assets
// from the precompiled manifest.
const devMode = false
