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
//                                 Bulk Driver Types                                  //
//                                                                                    //
// Membership, staging row, and event-context types for the bulk driver.
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

// Package bulkpush implements the bulk push-rule driver (C5): it takes one
// room event, fans it out across the room's candidate recipients, and
// stages a push-action outcome per user by driving the pushrules matcher
// (C1-C4) against each recipient's rule list.
//
// The driver itself performs I/O only at its three collaborator boundaries
// -- rule lookup, membership resolution, and the staging write -- matching
// the synchronous/async split in spec.md §5: the matcher stays synchronous
// and pure, only the driver awaits anything.
package bulkpush

import "github.com/quietloom/pushrules/pushrules"

// Membership is a user's relationship to a room at some point in its
// event graph.
type Membership string

const (
	MembershipJoin   Membership = "join"
	MembershipInvite Membership = "invite"
	MembershipLeave  Membership = "leave"
	MembershipBan    Membership = "ban"
	MembershipNone   Membership = "none"
)

// visibleTo reports whether a user with this membership at the event's
// previous-event frontier may see an event gated by historyVisibility.
// Only "joined" and "invited" history visibility restrict on membership;
// any other value (e.g. "shared", "world_readable") is not gated here.
func (m Membership) visibleTo(historyVisibility string) bool {
	switch historyVisibility {
	case "joined":
		return m == MembershipJoin
	case "invited":
		return m == MembershipJoin || m == MembershipInvite
	default:
		return true
	}
}

// StagingRow is one emitted outcome: the result of evaluating one event
// against one user's rule list, ready for a StagingWriter to persist.
type StagingRow struct {
	EventID   string
	UserID    string
	Actions   []pushrules.Action
	Notify    bool
	Highlight bool
	Pushable  bool
	Tweaks    map[string]any
}

// EventContext carries everything the driver needs about one event beyond
// its raw content: the candidate recipient set, history-visibility gating
// inputs, and the ambient facts (mentions, member count, power levels,
// related events) the matcher's condition kinds consume.
type EventContext struct {
	EventID           string
	RoomID            string
	Sender            string
	HistoryVisibility string
	PrevEventIDs      []string

	// Candidates is the room's joined local member set before appservice
	// exclusion and sender exclusion are applied.
	Candidates []string

	// ExcludeSender, when true (the default the caller should normally
	// set), drops Sender from the candidate set regardless of membership.
	ExcludeSender bool

	DisplayNames map[string]string
	Facts        pushrules.EventFacts
	Mentions     pushrules.MentionFacts
	Options      pushrules.Options
}
