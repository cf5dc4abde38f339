// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the resolver. Use errors.Is to match them.
var (
	ErrAbsoluteAssetPath = errors.New("absolute asset path")
	ErrAssetFiltered     = errors.New("asset filtered out by precompile list")
	ErrAssetNotFound     = errors.New("asset not found")
	ErrCircularReference = errors.New("circular asset reference")
)

// AbsoluteAssetPathError is returned when a helper receives a path that
// already carries the assets prefix although the asset is known to the
// registry under its logical name.
type AbsoluteAssetPathError struct {
	Source    string
	ShortPath string
	Type      Type
}

func (e *AbsoluteAssetPathError) Error() string {
	helper := "asset_path"
	if e.Type != TypeAsset {
		helper = e.Type.String() + "_path"
	}
	return fmt.Sprintf("asset path %q starts with the assets prefix, use %s(%q) instead", e.Source, helper, e.ShortPath)
}

func (e *AbsoluteAssetPathError) Unwrap() error { return ErrAbsoluteAssetPath }

// AssetFilteredError is returned when an asset exists but is not part of
// the precompile list.
type AssetFilteredError struct {
	LogicalPath string
}

func (e *AssetFilteredError) Error() string {
	return fmt.Sprintf("asset %q is not in the precompile list", e.LogicalPath)
}

func (e *AssetFilteredError) Unwrap() error { return ErrAssetFiltered }

// AssetNotFoundError is returned when an asset is neither in the registry,
// the manifest nor the public folder.
type AssetNotFoundError struct {
	LogicalPath string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset %q not found", e.LogicalPath)
}

func (e *AssetNotFoundError) Unwrap() error { return ErrAssetNotFound }
