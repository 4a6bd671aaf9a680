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
//                                       Types                                        //
//                                                                                    //
// Shared scalar, flattened-event, condition, rule, and option types for the matcher.
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

// Package pushrules implements the push-rule matcher for a federated chat
// homeserver: flattening a room event into a dotted-path map, compiling and
// applying user-supplied glob patterns, evaluating condition records against
// that flattened form, and reducing an action list to a notify/tweaks pair.
//
// The matcher is synchronous and performs no I/O. It is safe to share a
// *Evaluator across goroutines once constructed; FlattenedEvent values are
// read-only after Flatten returns them.
package pushrules

// Scalar is any leaf value a flattened event or condition may carry: string,
// bool, int, int32, int64, float64, or nil. List-valued fields are already
// restricted to those element types by the flattener.
type Scalar = any

// FlattenedEvent is the dotted-path -> scalar|[]scalar map produced by
// Flatten. With FlattenOptions.EscapeKeys set, a dot inside an original key
// is escaped and never reads as a path boundary; without it, such dots are
// kept literally and are indistinguishable from nesting.
type FlattenedEvent map[string]any

// Get looks up a key, returning (value, true) if present. A FlattenedEvent
// is nil-safe: looking up any key in a nil map reports absent, matching
// invariant 2 in the data model (absent keys never match and never error).
func (f FlattenedEvent) Get(key string) (any, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f[key]
	return v, ok
}

// GetString returns the value at key as a string, or ("", false) if the key
// is absent or not string-typed.
func (f FlattenedEvent) GetString(key string) (string, bool) {
	v, ok := f.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// RoomVersionFlags is a set of room-version feature tokens, e.g.
// "extensible_events". Constructed once per room version and passed to
// Flatten and to NewEvaluator.
type RoomVersionFlags map[string]bool

// Has reports whether the named feature flag is present.
func (f RoomVersionFlags) Has(name string) bool {
	return f != nil && f[name]
}

// RelatedEvent is a pre-flattened related event plus the one boolean fact
// the evaluator needs about it: whether it was auto-populated as a reply
// fallback. The caller (the bulk driver, in the full system) is responsible
// for flattening related events before handing them to the matcher; the
// matcher never recurses into raw content again.
type RelatedEvent struct {
	Flat           FlattenedEvent `json:"flat"`
	IsFallingBack  bool           `json:"is_falling_back"`
	hasFallbackKey bool
}

// NewRelatedEvent builds a RelatedEvent from an already-flattened map,
// reading im.vector.is_falling_back out of it if present. The field counts
// as marking a reply fallback as long as it's present at all, unless its
// value is the literal boolean false -- a present empty string (what a real
// client sends for "falsy but present") still marks the event as a
// fallback. Absent entirely, it does not.
func NewRelatedEvent(flat FlattenedEvent) RelatedEvent {
	re := RelatedEvent{Flat: flat}
	if v, ok := flat.Get("im.vector.is_falling_back"); ok {
		re.hasFallbackKey = true
		b, isBool := v.(bool)
		re.IsFallingBack = !(isBool && !b)
	}
	return re
}

// EventFacts carries the ambient room/event facts the condition evaluator
// needs beyond the flattened event itself: member count, sender power
// level, the notification-power table, and any related events (already
// flattened by the caller).
type EventFacts struct {
	RoomMemberCount    int                     `json:"room_member_count"`
	SenderPowerLevel   int                     `json:"sender_power_level"`
	NotificationPowers map[string]int          `json:"notification_powers"`
	RelatedEvents      map[string]RelatedEvent `json:"related_events"`
}

// MentionFacts carries the sanitized mention data the caller derives from
// content before handing the event to the matcher. The evaluator treats
// these as authoritative and never re-derives them from raw content.
type MentionFacts struct {
	HasMentions    bool            `json:"has_mentions"`
	UserMentions   map[string]bool `json:"user_mentions"`
	HasRoomMention bool            `json:"has_room_mention"`
}

// Condition is a single condition record from a push rule: a "kind" plus
// kind-specific keys. Conditions are immutable inputs; the evaluator may
// cache compiled patterns derived from them but must never mutate the map.
type Condition map[string]any

// Kind returns the condition's "kind" field, or "" if missing/non-string.
func (c Condition) Kind() string {
	s, _ := c["kind"].(string)
	return s
}

func (c Condition) str(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

func (c Condition) boolOr(key string, def bool) bool {
	if v, ok := c[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Action is one element of a rule's action list: either a bare string
// ("notify", "dont_notify", "coalesce") or a set_tweak mapping. Represented
// as `any` at the wire boundary; TweaksForActions interprets a list of these.
type Action = any

// Rule is a single prioritized push rule as returned by a RuleStore
// collaborator: ordered list of conditions (all must match) plus the
// actions to take when they do.
type Rule struct {
	RuleID     string      `json:"rule_id"`
	Conditions []Condition `json:"conditions"`
	Actions    []Action    `json:"actions"`
	Enabled    bool        `json:"enabled"`
	Default    bool        `json:"default"`
}

// Options are the construction-time feature flags for an Evaluator. They
// are never read from process-wide state -- every Evaluator is independently
// configured, which keeps evaluation deterministic and testable.
type Options struct {
	RelatedEventMatchEnabled          bool             `json:"related_event_match_enabled"`
	MSC3931Enabled                    bool             `json:"msc3931_enabled"`
	MSC3758ExactEventMatch            bool             `json:"msc3758_exact_event_match"`
	MSC3966ExactEventPropertyContains bool             `json:"msc3966_exact_event_property_contains"`
	MSC3873EscapeEventMatchKey        bool             `json:"msc3873_escape_event_match_key"`
	RoomVersionFeatureFlags           RoomVersionFlags `json:"room_version_feature_flags"`
}
