// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"html"
	"slices"
	"strings"
)

// Attrs are extra HTML attributes for the tag builders. The key "debug"
// is reserved: "false" disables bundle expansion for a single call.
type Attrs map[string]string

// JavascriptIncludeTag returns one <script> tag per source, joined by
// newlines. Duplicate tags are dropped. In debug mode registry bundles
// expand to one tag per part.
func (r *Resolver) JavascriptIncludeTag(attrs Attrs, sources ...string) (string, error) {
	return r.includeTags(TypeJavascript, attrs, sources, func(src string, attrs Attrs) string {
		attrs["src"] = src
		return "<script" + renderAttrs(attrs) + "></script>"
	})
}

// StylesheetLinkTag returns one <link rel="stylesheet"> tag per source.
// media defaults to "screen".
func (r *Resolver) StylesheetLinkTag(attrs Attrs, sources ...string) (string, error) {
	return r.includeTags(TypeStylesheet, attrs, sources, func(href string, attrs Attrs) string {
		attrs["href"] = href
		if _, ok := attrs["media"]; !ok {
			attrs["media"] = "screen"
		}
		if _, ok := attrs["rel"]; !ok {
			attrs["rel"] = "stylesheet"
		}
		return "<link" + renderAttrs(attrs) + " />"
	})
}

func (r *Resolver) includeTags(t Type, attrs Attrs, sources []string, render func(string, Attrs) string) (string, error) {
	debug := r.cfg.Debug
	base := make(Attrs, len(attrs))
	for k, v := range attrs {
		if k == "debug" {
			debug = debug && v != "false"
			continue
		}
		base[k] = v
	}

	tags := make([]string, 0, len(sources))
	seen := make(map[string]bool)
	for _, source := range sources {
		paths, err := r.tagPaths(source, t, debug)
		if err != nil {
			return "", err
		}
		for _, p := range paths {
			a := make(Attrs, len(base)+3)
			for k, v := range base {
				a[k] = v
			}
			tag := render(p, a)
			if seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return strings.Join(tags, "\n"), nil
}

// tagPaths resolves source into the paths that get a tag of their own.
// Sources with a query or anchor are never expanded, so the tail is kept.
func (r *Resolver) tagPaths(source string, t Type, debug bool) ([]string, error) {
	if debug && r.registry != nil && source != "" && !IsURL(source) {
		name, tail := splitTail(source)
		if tail == "" && !strings.HasPrefix(name, "/") {
			name = withExtension(name, t)
			if err := r.checkErrors(name, t); err != nil {
				return nil, err
			}
			asset, err := r.find(name)
			if err != nil && r.cfg.RaiseRuntimeErrors {
				return nil, err
			}
			if asset != nil && r.allowed(asset) {
				paths := make([]string, 0, len(asset.Parts))
				for _, part := range asset.Parts {
					p, err := r.Resolve(part, Options{Type: t, Debug: true})
					if err != nil {
						return nil, err
					}
					paths = append(paths, p)
				}
				return paths, nil
			}
		}
	}

	p, err := r.Resolve(source, Options{Type: t})
	if err != nil {
		return nil, err
	}
	return []string{p}, nil
}

func renderAttrs(attrs Attrs) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attrs[k]))
		b.WriteByte('"')
	}
	return b.String()
}
