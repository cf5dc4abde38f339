// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURL(t *testing.T) {
	for _, s := range []string{"http://a.com/x", "https://a.com", "//a.com/x.js", "data:text/plain,x", "cid:part1", "ftp-proxy://host/file"} {
		assert.True(t, IsURL(s), s)
	}
	for _, s := range []string{"foo.js", "/foo.js", "foo/bar", "http:/foo", "mailto"} {
		assert.False(t, IsURL(s), s)
	}
}

func TestLogicalName(t *testing.T) {
	tests := []struct {
		source   string
		typ      Type
		expected string
	}{
		{"foo", TypeJavascript, "foo.js"},
		{"foo.js", TypeJavascript, "foo.js"},
		{"foo.min", TypeJavascript, "foo.min.js"},
		{"foo?v=1", TypeStylesheet, "foo.css"},
		{"foo.css#x", TypeStylesheet, "foo.css"},
		{"logo", TypeImage, "logo"},
		{"foo", TypeAsset, "foo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, LogicalName(tt.source, tt.typ), tt.source)
	}
}

func TestDigestPath(t *testing.T) {
	assert.Equal(t, "foo-abc1234.js", digestPath("foo.js", "abc1234"))
	assert.Equal(t, "dir/foo.min-abc1234.js", digestPath("dir/foo.min.js", "abc1234"))
	assert.Equal(t, "LICENSE-abc1234", digestPath("LICENSE", "abc1234"))
	assert.Equal(t, "foo.js", digestPath("foo.js", ""))

	for _, lp := range []string{"foo.js", "dir/foo.min.js", "LICENSE", "with-dash.css"} {
		logical, digest, ok := parseDigestPath(digestPath(lp, "0123456789abcdef"))
		require.True(t, ok, lp)
		assert.Equal(t, lp, logical)
		assert.Equal(t, "0123456789abcdef", digest)
	}

	_, _, ok := parseDigestPath("with-dash.css")
	assert.False(t, ok)
}

func TestParseType(t *testing.T) {
	tests := map[string]Type{
		"":           TypeAsset,
		"asset":      TypeAsset,
		"js":         TypeJavascript,
		"JavaScript": TypeJavascript,
		"css":        TypeStylesheet,
		"stylesheet": TypeStylesheet,
		"image":      TypeImage,
	}
	for s, expected := range tests {
		got, err := ParseType(s)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
		assert.Equal(t, expected.String(), got.String())
	}

	_, err := ParseType("video")
	require.Error(t, err)
}

func TestHasDigest(t *testing.T) {
	assert.True(t, HasDigest("/assets/application-0123456789abcdef.js"))
	assert.True(t, HasDigest("/assets/sub/logo-abcdef1.png"))
	assert.False(t, HasDigest("/assets/application.js"))
	assert.False(t, HasDigest("/assets/with-dash.css"))
	assert.False(t, HasDigest("/assets/abc-012/app.js"))
}
