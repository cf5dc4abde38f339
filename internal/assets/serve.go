// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"bytes"
	"errors"
	"net/http"
	"path"
	"strings"
)

// ServeHTTP serves assets by logical or digest path relative to the
// mount point, e.g. /application-<digest>.js. With ?body=1 only the
// asset's own file is served instead of the whole bundle. A stale digest
// redirects to the current one.
func (e *Environment) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	p := strings.TrimPrefix(r.URL.Path, "/")
	if strings.Contains(p, "..") {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	logical, digest, fingerprinted := parseDigestPath(p)
	asset, err := e.Lookup(logical)
	if fingerprinted && errors.Is(err, ErrAssetNotFound) {
		asset, err = e.Lookup(p)
		fingerprinted = false
	}
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			http.NotFound(w, r)
			return
		}
		e.logger.Error("failed to build asset", "path", p, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if fingerprinted && digest != asset.Digest {
		target := path.Base(asset.DigestPath())
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		// relative, so the mount prefix stripped from r.URL is kept
		w.Header().Set("Location", target)
		w.WriteHeader(http.StatusFound)
		return
	}

	var body []byte
	if r.URL.Query().Get("body") == "1" {
		body, err = e.Body(asset)
	} else {
		body, err = e.Source(asset)
	}
	if err != nil {
		e.logger.Error("failed to read asset", "path", p, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("ETag", `"`+asset.Digest+`"`)
	http.ServeContent(w, r, asset.LogicalPath, asset.ModTime, bytes.NewReader(body))
}
