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
//                                  Flattener Tests                                   //
//                                                                                    //
// Exercises the flattening rules and the extensible-events hook.
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package pushrules

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlattenSimple(t *testing.T) {
	input := map[string]any{"foo": "abc"}
	got := Flatten(input, FlattenOptions{})
	want := FlattenedEvent{"foo": "abc"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenNested(t *testing.T) {
	input := map[string]any{"foo": map[string]any{"bar": "abc"}}
	got := Flatten(input, FlattenOptions{})
	want := FlattenedEvent{"foo.bar": "abc"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenEscapedDotsInKeys(t *testing.T) {
	input := map[string]any{"m.foo": map[string]any{`b\ar`: "abc"}}

	got := Flatten(input, FlattenOptions{})
	want := FlattenedEvent{`m.foo.b\ar`: "abc"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unescaped Flatten() mismatch (-want +got):\n%s", diff)
	}

	got = Flatten(input, FlattenOptions{EscapeKeys: true})
	want = FlattenedEvent{`m\.foo.b\\ar`: "abc"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("escaped Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenNonString(t *testing.T) {
	input := map[string]any{
		"woo":  "woo",
		"foo":  true,
		"bar":  1,
		"baz":  nil,
		"fuzz": []any{"woo", true, 1, nil, []any{}, map[string]any{}},
		"boo":  map[string]any{},
	}
	got := Flatten(input, FlattenOptions{})
	want := FlattenedEvent{
		"woo":  "woo",
		"foo":  true,
		"bar":  1,
		"baz":  nil,
		"fuzz": []any{"woo", true, 1, nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenEvent(t *testing.T) {
	event := map[string]any{
		"room_id": "!test:test",
		"type":    "m.room.message",
		"sender":  "@alice:test",
		"content": map[string]any{
			"msgtype":       "m.text",
			"body":          "Hello world!",
			"format":        "org.matrix.custom.html",
			"formatted_body": "<h1>Hello world!</h1>",
		},
	}
	got := Flatten(event, FlattenOptions{})
	want := FlattenedEvent{
		"content.msgtype":        "m.text",
		"content.body":           "Hello world!",
		"content.format":         "org.matrix.custom.html",
		"content.formatted_body": "<h1>Hello world!</h1>",
		"room_id":                "!test:test",
		"sender":                 "@alice:test",
		"type":                   "m.room.message",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenExtensibleEvents(t *testing.T) {
	event := map[string]any{
		"room_id": "!test:test",
		"type":    "m.room.message",
		"sender":  "@alice:test",
		"content": map[string]any{
			markupKey: []any{
				map[string]any{"mimetype": "text/plain", "body": "Hello world!"},
				map[string]any{"mimetype": "text/html", "body": "<h1>Hello world!</h1>"},
			},
		},
	}

	// Without the feature flag, there's no special behavior: the markup
	// list flattens away to [] like any other list-of-maps.
	got := Flatten(event, FlattenOptions{})
	want := FlattenedEvent{
		"room_id":                  "!test:test",
		"sender":                   "@alice:test",
		"type":                     "m.room.message",
		"content." + markupKey:     []any{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("without flag: Flatten() mismatch (-want +got):\n%s", diff)
	}

	// RoomVersionFlags alone, without MSC3931Enabled, must not trigger the
	// hook -- MSC3931 is a separate gate on whether room-version flags are
	// consulted at all, not just a namer for which flags exist.
	got = Flatten(event, FlattenOptions{RoomVersionFlags: RoomVersionFlags{"extensible_events": true}})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flag set without MSC3931Enabled: Flatten() mismatch (-want +got):\n%s", diff)
	}

	// With both MSC3931Enabled and the flag, the first text/plain markup
	// entry is lowercased and promoted to content.body.
	got = Flatten(event, FlattenOptions{
		MSC3931Enabled:   true,
		RoomVersionFlags: RoomVersionFlags{"extensible_events": true},
	})
	want = FlattenedEvent{
		"content.body":           "hello world!",
		"room_id":                "!test:test",
		"sender":                 "@alice:test",
		"type":                   "m.room.message",
		"content." + markupKey:   []any{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("with flag: Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenMissingKeyNeverMatches(t *testing.T) {
	flat := Flatten(map[string]any{"foo": "bar"}, FlattenOptions{})
	if _, ok := flat.Get("content.body"); ok {
		t.Errorf("expected absent key to report not-ok")
	}
	if v, ok := flat.GetString("content.body"); ok || v != "" {
		t.Errorf("expected absent key GetString to report not-ok, got (%q, %v)", v, ok)
	}

	var nilFlat FlattenedEvent
	if _, ok := nilFlat.Get("anything"); ok {
		t.Errorf("nil FlattenedEvent should report every key as absent")
	}
}
