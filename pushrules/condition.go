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
//                                Condition Evaluator                                 //
//                                                                                    //
// Implements each push-rule condition kind against a flattened event (C3).
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package pushrules

import (
	"regexp"
	"strconv"
)

// memberCountPattern parses the room_member_count "is" field: an optional
// comparison operator followed by a non-negative integer, e.g. ">=10",
// "<5", "==3", "2" (bare number means "==").
var memberCountPattern = regexp.MustCompile(`^(==|>=|<=|>|<)?(\d+)$`)

// eventMatch implements condition kind 1.
func (e *Evaluator) eventMatch(cond Condition) bool {
	key, hasKey := cond.str("key")
	pattern, hasPattern := cond.str("pattern")
	if !hasKey || !hasPattern {
		return false
	}
	val, ok := e.flat.GetString(key)
	if !ok {
		return false
	}
	dialect := DialectFullValue
	if key == "content.body" {
		dialect = DialectWordBoundary
	}
	return e.glob.Match(pattern, val, dialect)
}

// containsDisplayName implements condition kind 2. The display name is
// matched literally, never as a glob pattern (spec.md §9, Open Question
// i): DialectLiteralWordBoundary treats every rune of displayName,
// including `*`, `?`, and `\`, as itself.
func (e *Evaluator) containsDisplayName(displayName string) bool {
	if displayName == "" {
		return false
	}
	body, ok := e.flat.GetString("content.body")
	if !ok {
		return false
	}
	return e.glob.Match(displayName, body, DialectLiteralWordBoundary)
}

// roomMemberCount implements condition kind 3.
func (e *Evaluator) roomMemberCount(cond Condition) bool {
	is, ok := cond.str("is")
	if !ok {
		return false
	}
	m := memberCountPattern.FindStringSubmatch(is)
	if m == nil {
		return false
	}
	op := m[1]
	if op == "" {
		op = "=="
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return false
	}
	count := e.facts.RoomMemberCount
	switch op {
	case "==":
		return count == n
	case ">=":
		return count >= n
	case "<=":
		return count <= n
	case ">":
		return count > n
	case "<":
		return count < n
	default:
		return false
	}
}

// senderNotificationPermission implements condition kind 4.
func (e *Evaluator) senderNotificationPermission(cond Condition) bool {
	key, ok := cond.str("key")
	if !ok {
		return false
	}
	required, ok := e.facts.NotificationPowers[key]
	if !ok {
		required = 50
	}
	return e.facts.SenderPowerLevel >= required
}

// isUserMention implements condition kind 5.
func (e *Evaluator) isUserMention(userID string) bool {
	return e.mentions.HasMentions && e.mentions.UserMentions[userID]
}

// isRoomMention implements condition kind 6. The source field is an opaque,
// pre-sanitized boolean supplied by the caller (spec.md §9, Open Question
// ii) -- the evaluator never guesses at the m.mentions.room wire shape.
func (e *Evaluator) isRoomMention() bool {
	return e.mentions.HasMentions && e.mentions.HasRoomMention
}

// exactEventMatch implements condition kind 7 (gated by
// MSC3758ExactEventMatch). No coercion: values must share both type and
// value, and string comparison is case-sensitive.
func (e *Evaluator) exactEventMatch(cond Condition) bool {
	if !e.opts.MSC3758ExactEventMatch {
		return false
	}
	key, hasKey := cond.str("key")
	want, hasValue := cond["value"]
	if !hasKey || !hasValue {
		return false
	}
	got, ok := e.flat.Get(key)
	if !ok {
		return false
	}
	return scalarTypeEqual(got, want)
}

// exactEventPropertyContains implements condition kind 8 (gated by
// MSC3966ExactEventPropertyContains).
func (e *Evaluator) exactEventPropertyContains(cond Condition) bool {
	if !e.opts.MSC3966ExactEventPropertyContains {
		return false
	}
	key, hasKey := cond.str("key")
	want, hasValue := cond["value"]
	if !hasKey || !hasValue {
		return false
	}
	got, ok := e.flat.Get(key)
	if !ok {
		return false
	}
	list, ok := got.([]any)
	if !ok {
		return false
	}
	for _, el := range list {
		if scalarTypeEqual(el, want) {
			return true
		}
	}
	return false
}

// relatedEventMatch implements condition kind 9 (gated by
// RelatedEventMatchEnabled).
func (e *Evaluator) relatedEventMatch(cond Condition) bool {
	if !e.opts.RelatedEventMatchEnabled {
		return false
	}
	relType, ok := cond.str("rel_type")
	if !ok {
		return false
	}
	rel, ok := e.facts.RelatedEvents[relType]
	if !ok {
		return false
	}
	if rel.hasFallbackKey && rel.IsFallingBack && !cond.boolOr("include_fallbacks", false) {
		return false
	}

	key, hasKey := cond.str("key")
	pattern, hasPattern := cond.str("pattern")
	switch {
	case !hasKey && !hasPattern:
		return true
	case hasKey != hasPattern:
		return false
	}
	val, ok := rel.Flat.GetString(key)
	if !ok {
		return false
	}
	return e.glob.Match(pattern, val, DialectFullValue)
}

// scalarTypeEqual compares two scalar values for equality without any type
// coercion: a string never equals a bool, an int never equals a float, and
// null only equals null.
func scalarTypeEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	default:
		ai, aok := toInt64(a)
		bi, bok := toInt64(b)
		return aok && bok && ai == bi
	}
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	default:
		return 0, false
	}
}
