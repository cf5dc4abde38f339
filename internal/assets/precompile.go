// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Matcher decides whether a logical path belongs to the precompile list.
type Matcher interface {
	Match(logicalPath string) bool
}

// Literal matches a logical path exactly, or as a glob when it contains
// glob metacharacters.
type Literal string

func (l Literal) Match(logicalPath string) bool {
	s := string(l)
	if strings.ContainsAny(s, "*?[") {
		ok, err := path.Match(s, logicalPath)
		return err == nil && ok
	}
	return s == logicalPath
}

// Pattern matches logical paths against a regular expression.
type Pattern struct {
	*regexp.Regexp
}

func (p Pattern) Match(logicalPath string) bool {
	return p.MatchString(logicalPath)
}

// MatcherFunc adapts a predicate to a Matcher.
type MatcherFunc func(logicalPath string) bool

func (f MatcherFunc) Match(logicalPath string) bool {
	return f(logicalPath)
}

// Matchers is an ordered precompile list. A logical path passes when any
// matcher accepts it.
type Matchers []Matcher

func (m Matchers) Match(logicalPath string) bool {
	for _, matcher := range m {
		if matcher.Match(logicalPath) {
			return true
		}
	}
	return false
}

// ParseMatcher turns a configuration entry into a Matcher. Entries
// wrapped in slashes ("/application\.(js|css)$/") become patterns,
// everything else is a literal or glob.
func ParseMatcher(s string) (Matcher, error) {
	if len(s) > 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid precompile pattern %q: %w", s, err)
		}
		return Pattern{re}, nil
	}
	return Literal(s), nil
}

// ParseMatchers parses every entry with ParseMatcher.
func ParseMatchers(entries []string) (Matchers, error) {
	m := make(Matchers, 0, len(entries))
	for _, e := range entries {
		if e == "" {
			continue
		}
		matcher, err := ParseMatcher(e)
		if err != nil {
			return nil, err
		}
		m = append(m, matcher)
	}
	return m, nil
}

// LooseAppAssets accepts everything that is not a javascript or
// stylesheet: images, fonts and other files are always precompiled.
func LooseAppAssets(logicalPath string) bool {
	switch path.Ext(logicalPath) {
	case ".js", ".css":
		return false
	}
	return true
}

// DefaultPrecompile returns the default precompile list: loose non-JS/CSS
// assets plus application.js and application.css.
func DefaultPrecompile() Matchers {
	return Matchers{
		MatcherFunc(LooseAppAssets),
		Pattern{regexp.MustCompile(`(?:/|\\|\A)application\.(css|js)$`)},
	}
}
