// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDirectives(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		directives []directive
		body       string
	}{
		{
			name: "no directives",
			src:  "var a;\n",
			body: "var a;\n",
		},
		{
			name:       "line comments",
			src:        "//= require foo\n//= require_self\nvar a;\n",
			directives: []directive{{name: "require", arg: "foo", line: 1}, {name: "require_self", line: 2}},
			body:       "var a;\n",
		},
		{
			name:       "block comment",
			src:        "/*\n *= require foo\n *= require_tree .\n */\n.a {}\n",
			directives: []directive{{name: "require", arg: "foo", line: 2}, {name: "require_tree", arg: ".", line: 3}},
			body:       "/*\n */\n.a {}\n",
		},
		{
			name:       "one line block",
			src:        "/*= require foo */\n.a {}\n",
			directives: []directive{{name: "require", arg: "foo", line: 1}},
			body:       ".a {}\n",
		},
		{
			name:       "hash comments and blank lines",
			src:        "\n# comment\n#= require foo\n\nx = 1\n",
			directives: []directive{{name: "require", arg: "foo", line: 3}},
			body:       "\n# comment\n\nx = 1\n",
		},
		{
			name:       "directives after code are ignored",
			src:        "//= require foo\nvar a;\n//= require bar\n",
			directives: []directive{{name: "require", arg: "foo", line: 1}},
			body:       "var a;\n//= require bar\n",
		},
		{
			name:       "quoted argument",
			src:        "//= require \"foo bar\"\n",
			directives: []directive{{name: "require", arg: `"foo bar"`, line: 1}},
			body:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directives, body := parseDirectives([]byte(tt.src))
			assert.Equal(t, tt.directives, directives)
			assert.Equal(t, tt.body, string(body))
		})
	}
}
