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
//                                   Pattern Cache                                    //
//                                                                                    //
// A bounded, lock-protected memo of compiled glob patterns.
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package pushrules

import (
	"regexp"
	"sync"
)

// patternCache is a bounded, lock-protected memo of compiled glob patterns
// keyed by (pattern, dialect), per the pattern-compilation-reuse design
// note in spec.md §9. Eviction is least-recently-used: order lists keys
// from least to most recently used, a hit in Get moves its key to the back,
// and once the cache is full the key at the front is dropped.
type patternCache struct {
	mu       sync.Mutex
	limit    int
	entries  map[globCacheKey]*regexp.Regexp
	order    []globCacheKey
}

func newPatternCache(limit int) *patternCache {
	return &patternCache{
		limit:   limit,
		entries: make(map[globCacheKey]*regexp.Regexp, limit),
	}
}

// Get returns the cached regexp for key, and whether key has been seen
// before at all (a nil regexp with ok=true means "known to not compile").
func (c *patternCache) Get(key globCacheKey) (*regexp.Regexp, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	re, ok := c.entries[key]
	if ok {
		for i, k := range c.order {
			if k == key {
				copy(c.order[i:], c.order[i+1:])
				c.order[len(c.order)-1] = key
				break
			}
		}
	}
	return re, ok
}

// Put memoizes a successfully-compiled pattern.
func (c *patternCache) Put(key globCacheKey, re *regexp.Regexp) {
	c.put(key, re)
}

// PutMiss memoizes that a pattern failed to compile, so repeated evaluation
// of a malformed pattern doesn't pay for recompilation every time.
func (c *patternCache) PutMiss(key globCacheKey) {
	c.put(key, nil)
}

func (c *patternCache) put(key globCacheKey, re *regexp.Regexp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.limit {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = re
}
