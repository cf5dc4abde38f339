// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"fmt"
	"html/template"
)

// PathHelper is the capability shared by views and assets being
// processed: anything that can turn a source into a path.
type PathHelper interface {
	Resolve(source string, opts Options) (string, error)
	AssetDigestPath(source string) (string, error)
}

// FuncMap exposes the helpers to html/template.
//
//	{{ javascript_include_tag "application" }}
//	{{ stylesheet_link_tag_with (attrs "media" "print") "print" }}
//	<img src="{{ image_path "logo.png" }}">
func (r *Resolver) FuncMap() template.FuncMap {
	return template.FuncMap{
		"asset_path":        r.AssetPath,
		"asset_url":         r.AssetURL,
		"javascript_path":   r.JavascriptPath,
		"javascript_url":    r.JavascriptURL,
		"stylesheet_path":   r.StylesheetPath,
		"stylesheet_url":    r.StylesheetURL,
		"image_path":        r.ImagePath,
		"image_url":         r.ImageURL,
		"asset_digest":      r.AssetDigest,
		"asset_digest_path": r.AssetDigestPath,
		"attrs":             makeAttrs,
		"javascript_include_tag": func(sources ...string) (template.HTML, error) {
			s, err := r.JavascriptIncludeTag(nil, sources...)
			return template.HTML(s), err //nolint:gosec // attributes are escaped by renderAttrs
		},
		"javascript_include_tag_with": func(attrs Attrs, sources ...string) (template.HTML, error) {
			s, err := r.JavascriptIncludeTag(attrs, sources...)
			return template.HTML(s), err //nolint:gosec // attributes are escaped by renderAttrs
		},
		"stylesheet_link_tag": func(sources ...string) (template.HTML, error) {
			s, err := r.StylesheetLinkTag(nil, sources...)
			return template.HTML(s), err //nolint:gosec // attributes are escaped by renderAttrs
		},
		"stylesheet_link_tag_with": func(attrs Attrs, sources ...string) (template.HTML, error) {
			s, err := r.StylesheetLinkTag(attrs, sources...)
			return template.HTML(s), err //nolint:gosec // attributes are escaped by renderAttrs
		},
	}
}

func makeAttrs(kv ...string) (Attrs, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("attrs: odd number of arguments")
	}
	a := make(Attrs, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		a[kv[i]] = kv[i+1]
	}
	return a, nil
}
