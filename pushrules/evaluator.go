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
//                                     Evaluator                                      //
//                                                                                    //
// Dispatches condition records to their matching condition-kind handler.
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package pushrules

// Evaluator answers condition-match queries for a single event, shared
// read-only across every recipient the bulk driver considers for that
// event. It is stateless across events and performs no I/O; its only
// internal state is the glob pattern cache, which exists purely to avoid
// recompiling the same patterns for every rule of every user.
type Evaluator struct {
	flat     FlattenedEvent
	mentions MentionFacts
	facts    EventFacts
	opts     Options
	glob     *globMatcher
}

// NewEvaluator builds an Evaluator for one event. flat should be the output
// of Flatten for that event; facts and mentions carry the ambient data the
// condition kinds in spec.md §4.3 need beyond the event body itself.
func NewEvaluator(flat FlattenedEvent, mentions MentionFacts, facts EventFacts, opts Options) *Evaluator {
	return &Evaluator{
		flat:     flat,
		mentions: mentions,
		facts:    facts,
		opts:     opts,
		glob:     newGlobMatcher(),
	}
}

// Matches evaluates a single condition record against this event for the
// given recipient. Unknown kinds, and kinds disabled via Options, return
// false; no condition kind ever panics or returns an error -- see spec.md
// §4.3 and §7.
func (e *Evaluator) Matches(cond Condition, userID, displayName string) bool {
	switch cond.Kind() {
	case "event_match":
		return e.eventMatch(cond)
	case "contains_display_name":
		return e.containsDisplayName(displayName)
	case "room_member_count":
		return e.roomMemberCount(cond)
	case "sender_notification_permission":
		return e.senderNotificationPermission(cond)
	case "org.matrix.msc3952.is_user_mention":
		return e.isUserMention(userID)
	case "org.matrix.msc3952.is_room_mention":
		return e.isRoomMention()
	case "com.beeper.msc3758.exact_event_match":
		return e.exactEventMatch(cond)
	case "org.matrix.msc3966.exact_event_property_contains":
		return e.exactEventPropertyContains(cond)
	case "im.nheko.msc3664.related_event_match":
		return e.relatedEventMatch(cond)
	default:
		return false
	}
}

// MatchesAll reports whether every condition in conds matches, short-
// circuiting on the first failure. A rule with no conditions matches
// vacuously, same as the underlying per-condition semantics.
func (e *Evaluator) MatchesAll(conds []Condition, userID, displayName string) bool {
	for _, c := range conds {
		if !e.Matches(c, userID, displayName) {
			return false
		}
	}
	return true
}
