// vi:set ai sm nu ts=4 sw=4 fileencoding=utf-8:
/*
########################################################################################
#   _____            _       _____       _                                           #
#  |  __ \          | |     |  __ \     | |                                          #
#  | |__) |  _   _  | |__   | |__) |  _| | ___  ___                                  #
#  |  ___/  | | | | | '_ \  |  _  /  | | |/ _ \/ __|                                 #
#  | |      | |_| | | | | | | | \ \  |_| |  __/\__ \                                 #
#  |_|       \__,_| |_| |_| |_|  \_\\__,_|_|\___||___/                                #
#                                                                                      #
########################################################################################
*/
// @[00]@| pushrules 1.0.0
// @[01]@|
// @[10]@| Copyright (c) 2026 by the quietloom project contributors.
// @[11]@| Distributed under the terms and conditions of the BSD-3-Clause
// @[12]@| License as described in the accompanying LICENSE file.
// @[13]@|
////////////////////////////////////////////////////////////////////////////////////////
//                                                                                    //
//                                 Glob Matcher Tests                                 //
//                                                                                    //
// Exercises both glob dialects and the backslash-escaping edge cases.
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package pushrules

import "testing"

func TestGlobWordBoundaryBody(t *testing.T) {
	g := newGlobMatcher()

	cases := []struct {
		pattern string
		body    string
		want    bool
		msg     string
	}{
		{"foobaz", "aaa FoobaZ zzz", true, "case-insensitive substring match"},
		{"foobaz", "aa xFoobaZ yy", false, "must land on a word boundary (prefix)"},
		{"foobaz", "aa foobazx yy", false, "must land on a word boundary (suffix)"},
		{"f?o*baz", "aaa FoobarbaZ zzz", true, "* matches any run, ? matches one char"},
		{"f?o*baz", "aa foobaz yy", true, "* matches zero characters"},
		{"f?o*baz", "aa fobbaz yy", false, "? must match exactly one character"},
		{"f?o*baz", "aa fiiobaz yy", false, "? must not match two characters"},
		{"f?o*baz", "aa xfooxbaz yy", false, "prefix must sit on a word boundary"},
		{"f?o*baz", "aa fooxbazx yy", false, "suffix must sit on a word boundary"},
		{`f\oobaz`, `F\oobaz`, true, "a literal backslash matches itself"},
		{`f\?obaz`, `F\oobaz`, true, "? escaped past a literal backslash matches any one character"},
	}
	for _, c := range cases {
		got := g.Match(c.pattern, c.body, DialectWordBoundary)
		if got != c.want {
			t.Errorf("%s: Match(%q, %q) = %v, want %v", c.msg, c.pattern, c.body, got, c.want)
		}
	}
}

func TestGlobFullValueNonBody(t *testing.T) {
	g := newGlobMatcher()

	cases := []struct {
		pattern string
		value   string
		want    bool
		msg     string
	}{
		{"foobaz", "FoobaZ", true, "case-insensitive exact match"},
		{"foobaz", "xFoobaZ", false, "anchored at the start"},
		{"foobaz", "FoobaZz", false, "anchored at the end"},
		{"f?o*baz", "FoobarbaZ", true, "wildcards in a full-value match"},
		{"f?o*baz", "foobaz", true, "* matches zero characters"},
		{"f?o*baz", "fobbaz", false, "? must match exactly one character"},
		{"f?o*baz", "fiiobaz", false, "? must not match two characters"},
		{"f?o*baz", "xfooxbaz", false, "anchored at the start"},
		{"f?o*baz", "fooxbazx", false, "anchored at the end"},
		{"f?o*baz", "x\nfooxbaz", false, "pattern may not span a newline (prefix)"},
		{"f?o*baz", "fooxbaz\nx", false, "pattern may not span a newline (suffix)"},
	}
	for _, c := range cases {
		got := g.Match(c.pattern, c.value, DialectFullValue)
		if got != c.want {
			t.Errorf("%s: Match(%q, %q) = %v, want %v", c.msg, c.pattern, c.value, got, c.want)
		}
	}
}

func TestGlobUnmatchedPatternsAreNeverErrors(t *testing.T) {
	g := newGlobMatcher()
	// A pattern with unbalanced glob metacharacters must still either
	// compile to something or be silently treated as non-matching -- it
	// must never panic.
	for _, p := range []string{"", "*", "?", "**", "??", `\`, `\\`} {
		_ = g.Match(p, "anything", DialectFullValue)
		_ = g.Match(p, "anything", DialectWordBoundary)
	}
}

func TestGlobMatchAnyOf(t *testing.T) {
	g := newGlobMatcher()
	if !g.MatchAnyOf("hello", []string{"goodbye", "hel*"}, DialectFullValue) {
		t.Errorf("expected one of the patterns to match")
	}
	if g.MatchAnyOf("hello", []string{"goodbye", "nope"}, DialectFullValue) {
		t.Errorf("expected no pattern to match")
	}
}

func TestGlobCachesCompiledPatterns(t *testing.T) {
	g := newGlobMatcher()
	key := globCacheKey{pattern: "foo*", dialect: DialectFullValue}
	if _, ok := g.cache.Get(key); ok {
		t.Fatalf("pattern should not be cached before first use")
	}
	g.Match("foo*", "foobar", DialectFullValue)
	if _, ok := g.cache.Get(key); !ok {
		t.Errorf("pattern should be cached after first use")
	}
}
