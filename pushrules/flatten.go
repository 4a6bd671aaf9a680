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
//                                     Flattener                                      //
//                                                                                    //
// Turns a nested room event into a dotted-path scalar map (C1).
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package pushrules

import "strings"

// markupKey is the MSC1767 "markup" content field the extensible-events
// compatibility hook reads from.
const markupKey = "org.matrix.msc1767.markup"

// FlattenOptions controls Flatten's behavior. The zero value flattens with
// no key escaping and no room-version hooks, matching a plain room.
type FlattenOptions struct {
	// EscapeKeys, when true, rewrites each original key segment (backslash
	// then dot) before joining with the path delimiter, so that a literal
	// dot inside a key can never be confused with a path boundary
	// (MSC3873).
	EscapeKeys bool

	// MSC3931Enabled gates whether RoomVersionFlags is consulted at all. When
	// false, room-version-specific hooks never run, even if RoomVersionFlags
	// carries flags that would otherwise trigger one -- the same
	// enabled-flag-gates-a-whole-feature pattern as RelatedEventMatchEnabled/
	// MSC3758ExactEventMatch/MSC3966ExactEventPropertyContains in
	// condition.go.
	MSC3931Enabled bool

	// RoomVersionFlags gates room-version-specific flattening hooks, e.g.
	// "extensible_events". Only consulted when MSC3931Enabled is true.
	RoomVersionFlags RoomVersionFlags
}

// Flatten turns a nested event (or any nested map[string]any) into a mapping
// from dotted path to scalar or list-of-scalars. Nested maps disappear:
// their leaves surface at "parent.child.leaf". Non-scalar list elements
// (maps, lists) are dropped, and values that are neither scalar nor list nor
// map are dropped entirely. Flatten never errors: malformed input yields a
// best-effort result (invariant 3 in the data model -- total, never raised).
func Flatten(event map[string]any, opts FlattenOptions) FlattenedEvent {
	out := make(FlattenedEvent)
	flattenInto(out, "", event, opts.EscapeKeys)

	if opts.MSC3931Enabled && opts.RoomVersionFlags.Has("extensible_events") {
		applyExtensibleEventsHook(out, event)
	}
	return out
}

func flattenInto(out FlattenedEvent, prefix string, value any, escape bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return
	}
	for k, v := range m {
		path := joinPath(prefix, flattenKeySegment(k, escape))
		switch t := v.(type) {
		case map[string]any:
			flattenInto(out, path, t, escape)
		case []any:
			out[path] = filterScalars(t)
		default:
			if isScalar(v) {
				out[path] = v
			}
			// else: binary/unrepresentable value, dropped.
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func flattenKeySegment(key string, escape bool) string {
	if !escape {
		return key
	}
	key = strings.ReplaceAll(key, `\`, `\\`)
	key = strings.ReplaceAll(key, `.`, `\.`)
	return key
}

func filterScalars(list []any) []any {
	out := make([]any, 0, len(list))
	for _, el := range list {
		if isScalar(el) {
			out = append(out, el)
		}
	}
	return out
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int32, int64, float64, nil:
		return true
	default:
		return false
	}
}

// applyExtensibleEventsHook implements the MSC1767 compatibility behavior:
// find the first content.<markupKey> element whose mimetype is text/plain
// (the default when mimetype is absent), lowercase its body, and store the
// result at the literal path "content.body", overwriting whatever was
// there. The markup list itself flattens to [] on its own, since its
// elements are maps and get filtered out by the normal list handling above.
func applyExtensibleEventsHook(out FlattenedEvent, event map[string]any) {
	content, ok := event["content"].(map[string]any)
	if !ok {
		return
	}
	markup, ok := content[markupKey].([]any)
	if !ok {
		return
	}
	for _, item := range markup {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		mimetype, _ := entry["mimetype"].(string)
		if mimetype == "" {
			mimetype = "text/plain"
		}
		if mimetype != "text/plain" {
			continue
		}
		body, ok := entry["body"].(string)
		if !ok {
			continue
		}
		out["content.body"] = strings.ToLower(body)
		return
	}
}
