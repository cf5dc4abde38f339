// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Type selects the default extension and public directory used when
// computing asset paths.
type Type int

const (
	TypeAsset Type = iota
	TypeJavascript
	TypeStylesheet
	TypeImage
)

func (t Type) String() string {
	switch t {
	case TypeJavascript:
		return "javascript"
	case TypeStylesheet:
		return "stylesheet"
	case TypeImage:
		return "image"
	default:
		return "asset"
	}
}

// Extension returns the extension appended to sources of this type.
func (t Type) Extension() string {
	switch t {
	case TypeJavascript:
		return ".js"
	case TypeStylesheet:
		return ".css"
	default:
		return ""
	}
}

// PublicDir returns the public folder directory for sources of this type.
func (t Type) PublicDir() string {
	switch t {
	case TypeJavascript:
		return "/javascripts"
	case TypeStylesheet:
		return "/stylesheets"
	case TypeImage:
		return "/images"
	default:
		return ""
	}
}

// ParseType parses a type name as accepted on the command line.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "", "asset":
		return TypeAsset, nil
	case "javascript", "js":
		return TypeJavascript, nil
	case "stylesheet", "css":
		return TypeStylesheet, nil
	case "image", "img":
		return TypeImage, nil
	}
	return TypeAsset, fmt.Errorf("unknown asset type %q", s)
}

var uriPattern = regexp.MustCompile(`(?i)^[-a-z]+://|^(?:cid|data):|^//`)

// IsURL reports whether source is an absolute URL that must never be
// rewritten.
func IsURL(source string) bool {
	return uriPattern.MatchString(source)
}

// splitTail separates a query string or fragment from source.
func splitTail(source string) (string, string) {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		return source[:i], source[i:]
	}
	return source, ""
}

// withExtension appends the default extension of t unless source already
// ends with it.
func withExtension(source string, t Type) string {
	ext := t.Extension()
	if ext == "" || path.Ext(source) == ext {
		return source
	}
	return source + ext
}

// LogicalName returns the registry name for source: tail removed and the
// type's extension applied.
func LogicalName(source string, t Type) string {
	name, _ := splitTail(source)
	return withExtension(name, t)
}

// digestPath inserts digest before the final extension of logicalPath.
func digestPath(logicalPath, digest string) string {
	if digest == "" {
		return logicalPath
	}
	ext := path.Ext(logicalPath)
	if ext == "" || strings.Contains(ext, "/") {
		return logicalPath + "-" + digest
	}
	return strings.TrimSuffix(logicalPath, ext) + "-" + digest + ext
}

var digestPattern = regexp.MustCompile(`^(.+)-([0-9a-f]{7,128})(\.[^./]+)?$`)

// parseDigestPath splits a digested filename into its logical path and
// digest. ok is false when p carries no digest.
func parseDigestPath(p string) (logicalPath, digest string, ok bool) {
	m := digestPattern.FindStringSubmatch(p)
	if m == nil {
		return p, "", false
	}
	return m[1] + m[3], m[2], true
}

// HasDigest reports whether the last element of p is a digested
// filename such as application-<digest>.js.
func HasDigest(p string) bool {
	_, _, ok := parseDigestPath(path.Base(p))
	return ok
}
