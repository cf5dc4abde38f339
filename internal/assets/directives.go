// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"bytes"
	"regexp"
	"strings"
)

type directive struct {
	name string
	arg  string
	line int
}

var directivePattern = regexp.MustCompile(`^\s*(?://|/\*+|\*|#)=\s*(\w+)(?:\s+(.*?))?\s*(?:\*/)?\s*$`)

// parseDirectives reads the directives from the leading comment block of
// src and returns them together with src minus the directive lines.
func parseDirectives(src []byte) ([]directive, []byte) {
	lines := bytes.SplitAfter(src, []byte("\n"))

	var directives []directive
	drop := make(map[int]bool)
	inBlock := false

	for i, raw := range lines {
		line := strings.TrimSpace(string(raw))

		switch {
		case inBlock:
			if strings.Contains(line, "*/") {
				inBlock = false
			}
		case strings.HasPrefix(line, "/*"):
			inBlock = !strings.Contains(line[2:], "*/")
		case line == "", strings.HasPrefix(line, "//"), strings.HasPrefix(line, "#"):
		default:
			return directives, removeLines(lines, drop)
		}

		if m := directivePattern.FindStringSubmatch(line); m != nil {
			directives = append(directives, directive{name: m[1], arg: strings.TrimSpace(m[2]), line: i + 1})
			drop[i] = true
			// a one-line "/*= require foo */" closes its own block
			if strings.HasSuffix(line, "*/") {
				inBlock = false
			}
		}
	}
	return directives, removeLines(lines, drop)
}

func removeLines(lines [][]byte, drop map[int]bool) []byte {
	if len(drop) == 0 {
		return bytes.Join(lines, nil)
	}
	var b bytes.Buffer
	for i, l := range lines {
		if !drop[i] {
			b.Write(l)
		}
	}
	return b.Bytes()
}
