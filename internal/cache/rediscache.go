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
//                                     Rule Cache                                     //
//                                                                                    //
// Redis-backed read-through cache in front of a RuleStore (C7).
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

// Package cache is a redis-backed read-through cache in front of
// bulkpush.RuleStore.GetRulesFor, grounded on dayuer-nanobot-go's
// internal/redis package: a thin wrapper storing JSON-marshaled values
// under a TTL, with every Redis error treated as a cache miss rather than
// surfaced to the caller. Graceful fallback: a cache error or miss always
// falls through to the underlying store (spec.md §4.5's "a cache-layer
// error is not a collaborator failure, it is a transparent fallback").
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quietloom/pushrules/bulkpush"
	"github.com/quietloom/pushrules/pushrules"
)

// RuleCache wraps a bulkpush.RuleStore with a read-through redis cache
// keyed by "rules:<user_id>:<room_id>".
type RuleCache struct {
	client *redis.Client
	next   bulkpush.RuleStore
	ttl    time.Duration
}

// NewRuleCache builds a RuleCache. ttl of zero defaults to 30 seconds,
// short enough that a stale cache entry after a rule edit self-heals
// quickly without requiring explicit invalidation.
func NewRuleCache(client *redis.Client, next bulkpush.RuleStore, ttl time.Duration) *RuleCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RuleCache{client: client, next: next, ttl: ttl}
}

func ruleCacheKey(userID, roomID string) string {
	return "rules:" + userID + ":" + roomID
}

// GetRulesFor implements bulkpush.RuleStore. A Redis failure (network
// error, unmarshal error) is logged and falls through to the underlying
// store; it is never returned to the caller as an error in its own
// right.
func (c *RuleCache) GetRulesFor(ctx context.Context, userID, roomID string) ([]pushrules.Rule, error) {
	key := ruleCacheKey(userID, roomID)

	if rules, ok := c.get(ctx, key); ok {
		return rules, nil
	}

	rules, err := c.next.GetRulesFor(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, rules)
	return rules, nil
}

func (c *RuleCache) get(ctx context.Context, key string) ([]pushrules.Rule, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[rulecache] get failed (%s): %v", key, err)
		}
		return nil, false
	}
	var rules []pushrules.Rule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		log.Printf("[rulecache] unmarshal failed (%s): %v", key, err)
		return nil, false
	}
	return rules, true
}

func (c *RuleCache) set(ctx context.Context, key string, rules []pushrules.Rule) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(rules)
	if err != nil {
		log.Printf("[rulecache] marshal failed (%s): %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[rulecache] set failed (%s): %v", key, err)
	}
}

// Invalidate drops the cached entry for a user/room pair, for callers
// that edit a rule list and want the next lookup to bypass the cache
// rather than wait out the TTL.
func (c *RuleCache) Invalidate(ctx context.Context, userID, roomID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, ruleCacheKey(userID, roomID)).Err(); err != nil {
		log.Printf("[rulecache] invalidate failed (%s:%s): %v", userID, roomID, err)
	}
}
