// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates exposes the asset helpers to templ components. Each
// helper reads the resolver of the current request from the context.
package templates

import (
	"context"
	"io"

	"codeberg.org/oliverandrich/go-webapp-assets/internal/appcontext"
	"codeberg.org/oliverandrich/go-webapp-assets/internal/assets"
	"github.com/a-h/templ"
)

// AssetPath returns the path for source.
func AssetPath(ctx context.Context, source string) (string, error) {
	return appcontext.Resolver(ctx).AssetPath(source)
}

// AssetURL returns the absolute URL for source.
func AssetURL(ctx context.Context, source string) (string, error) {
	return appcontext.Resolver(ctx).AssetURL(source)
}

// JavascriptPath returns the path for a javascript.
func JavascriptPath(ctx context.Context, source string) (string, error) {
	return appcontext.Resolver(ctx).JavascriptPath(source)
}

// StylesheetPath returns the path for a stylesheet.
func StylesheetPath(ctx context.Context, source string) (string, error) {
	return appcontext.Resolver(ctx).StylesheetPath(source)
}

// ImagePath returns the path for an image.
func ImagePath(ctx context.Context, source string) (string, error) {
	return appcontext.Resolver(ctx).ImagePath(source)
}

// AssetDigestPath returns the digested filename for source.
func AssetDigestPath(ctx context.Context, source string) (string, error) {
	return appcontext.Resolver(ctx).AssetDigestPath(source)
}

// JavascriptIncludeTag renders <script> tags for sources.
//
//	@templates.JavascriptIncludeTag(nil, "application")
func JavascriptIncludeTag(attrs assets.Attrs, sources ...string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := appcontext.Resolver(ctx).JavascriptIncludeTag(attrs, sources...)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	})
}

// StylesheetLinkTag renders <link rel="stylesheet"> tags for sources.
func StylesheetLinkTag(attrs assets.Attrs, sources ...string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := appcontext.Resolver(ctx).StylesheetLinkTag(attrs, sources...)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	})
}

// ImageTag renders an <img> tag for source.
func ImageTag(source, alt string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		src, err := ImagePath(ctx, source)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, `<img src="`+templ.EscapeString(src)+`" alt="`+templ.EscapeString(alt)+`" />`)
		return err
	})
}
