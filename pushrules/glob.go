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
//                                    Glob Matcher                                    //
//                                                                                    //
// Compiles and memoizes the word-boundary and full-value glob dialects (C2).
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package pushrules

import (
	"regexp"
	"strings"
)

// Dialect selects which of the two glob dialects a pattern compiles under.
type Dialect int

const (
	// DialectFullValue anchors the compiled pattern at both ends of the
	// whole haystack. Used for every event_match key except content.body.
	DialectFullValue Dialect = iota

	// DialectWordBoundary wraps the compiled pattern in word-boundary
	// assertions and matches as a substring anywhere in the haystack.
	// Used for content.body.
	DialectWordBoundary

	// DialectLiteralWordBoundary is DialectWordBoundary without glob
	// interpretation: the pattern is taken as a literal string, with no
	// `*`/`?`/`\` metacharacter handling at all. Used for
	// contains_display_name, where the display name must never be read as
	// a pattern (spec.md §9, Open Question i).
	DialectLiteralWordBoundary
)

// globCacheKey is the (pattern, dialect) pair patterns are memoized by, per
// spec.md §4.2's "implementations SHOULD memoize by (pattern, dialect)".
type globCacheKey struct {
	pattern string
	dialect Dialect
}

// globToRegex translates the glob grammar (`*` and `?` are wildcards
// everywhere, including right after a backslash; a backslash itself is
// always a literal backslash and never escapes anything) into an
// equivalent Go regexp fragment, not yet anchored or wrapped. Unrecognized
// runes are passed through regexp.QuoteMeta so the result is always a
// valid expression.
func globToRegex(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '\\':
			b.WriteString(regexp.QuoteMeta(`\`))
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

// compileGlob compiles pattern under the given dialect. A pattern that
// fails to compile (which should not normally happen, since globToRegex only
// ever emits quoted literals and `.`/`.*`) is treated as never-matching
// rather than surfaced as an error -- invariant 3 in the data model: pattern
// compilation is total.
func compileGlob(pattern string, dialect Dialect) (*regexp.Regexp, bool) {
	var body string
	if dialect == DialectLiteralWordBoundary {
		body = regexp.QuoteMeta(pattern)
	} else {
		body = globToRegex(pattern)
	}
	var full string
	switch dialect {
	case DialectWordBoundary, DialectLiteralWordBoundary:
		full = `(?i)\b(?:` + body + `)\b`
	default:
		full = `(?i)^(?:` + body + `)$`
	}
	re, err := regexp.Compile(full)
	if err != nil {
		return nil, false
	}
	return re, true
}

// globMatcher compiles and memoizes glob patterns for an Evaluator.
type globMatcher struct {
	cache *patternCache
}

func newGlobMatcher() *globMatcher {
	return &globMatcher{cache: newPatternCache(4096)}
}

// Match reports whether haystack matches pattern under dialect. A pattern
// that cannot be compiled never matches, and is never reported as an error.
func (g *globMatcher) Match(pattern, haystack string, dialect Dialect) bool {
	key := globCacheKey{pattern: pattern, dialect: dialect}
	re, ok := g.cache.Get(key)
	if !ok {
		re, compiled := compileGlob(pattern, dialect)
		if !compiled {
			g.cache.PutMiss(key)
			return false
		}
		g.cache.Put(key, re)
		return re.MatchString(haystack)
	}
	if re == nil {
		return false
	}
	return re.MatchString(haystack)
}

// MatchAnyOf reports whether haystack matches any of patterns under
// dialect. None of the condition kinds in condition.go call it;
// contains_display_name uses Match with DialectLiteralWordBoundary.
func (g *globMatcher) MatchAnyOf(haystack string, patterns []string, dialect Dialect) bool {
	for _, p := range patterns {
		if g.Match(p, haystack, dialect) {
			return true
		}
	}
	return false
}
