// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"text/template"
)

// processed is the result of reading and processing a single file.
type processed struct {
	filename   string
	body       []byte
	directives []directive
	// deps are the registry assets referenced through path helpers.
	deps   []*cacheRecord
	stamps []fileStamp
}

func (e *Environment) processLogical(lp string, stack []string) (*processed, error) {
	filename, info, err := e.findFile(lp)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(filename) //nolint:gosec // filename comes from the search paths
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	directives, body := parseDirectives(src)
	p := &processed{
		filename:   filename,
		directives: directives,
		stamps:     []fileStamp{stampOf(filename, info)},
	}

	if strings.HasSuffix(filename, templateExt) {
		if body, p.deps, err = e.render(lp, filename, body, stack); err != nil {
			return nil, err
		}
	}
	p.body = body
	return p, nil
}

// render executes a .tmpl body with the path helpers. Every registry asset
// referenced through a helper becomes a dependency; unknown ones are left
// to the helper's fallback.
func (e *Environment) render(lp, filename string, body []byte, stack []string) ([]byte, []*cacheRecord, error) {
	helper := e.pathHelper()
	var deps []*cacheRecord

	depend := func(source string, t Type) error {
		if source == "" || IsURL(source) {
			return nil
		}
		name, _ := splitTail(source)
		if strings.HasPrefix(name, "/") {
			return nil
		}
		_, rec, err := e.lookup(withExtension(name, t), stack)
		switch {
		case err == nil:
			deps = append(deps, rec)
		case errors.Is(err, ErrAssetNotFound):
		default:
			return err
		}
		return nil
	}

	ref := func(t Type, url bool) func(string) (string, error) {
		return func(source string) (string, error) {
			if err := depend(source, t); err != nil {
				return "", err
			}
			return helper.Resolve(source, Options{Type: t, URL: url})
		}
	}

	funcs := template.FuncMap{
		"asset_path":      ref(TypeAsset, false),
		"asset_url":       ref(TypeAsset, true),
		"javascript_path": ref(TypeJavascript, false),
		"javascript_url":  ref(TypeJavascript, true),
		"stylesheet_path": ref(TypeStylesheet, false),
		"stylesheet_url":  ref(TypeStylesheet, true),
		"image_path":      ref(TypeImage, false),
		"image_url":       ref(TypeImage, true),
		"asset_digest_path": func(source string) (string, error) {
			if err := depend(source, TypeAsset); err != nil {
				return "", err
			}
			return helper.AssetDigestPath(source)
		},
	}

	tmpl, err := template.New(path.Base(filename)).Funcs(funcs).Parse(string(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	var b bytes.Buffer
	if err := tmpl.Execute(&b, map[string]any{"LogicalPath": lp}); err != nil {
		return nil, nil, fmt.Errorf("failed to render %s: %w", filename, err)
	}
	return b.Bytes(), deps, nil
}
