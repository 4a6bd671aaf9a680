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
//                              Collaborator Interfaces                               //
//                                                                                    //
// The rule store, membership resolver, appservice registry, and staging writer the bulk driver depends on.
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package bulkpush

import (
	"context"

	"github.com/quietloom/pushrules/pushrules"
)

// RuleStore resolves a user's ordered push rules for a room (spec.md §6).
// The driver treats the returned order as priority order: the first
// enabled rule whose conditions all match wins. Precedence between
// default and user-defined rules is not resolved here (Non-goal).
type RuleStore interface {
	GetRulesFor(ctx context.Context, userID, roomID string) ([]pushrules.Rule, error)
}

// MembershipResolver answers what a user's membership was at a given
// previous-event frontier, for history-visibility gating.
type MembershipResolver interface {
	MembershipAt(ctx context.Context, userID string, prevEventIDs []string) (Membership, error)
}

// AppserviceRegistry reports whether a user ID belongs to an application
// service's exclusive namespace; such users never receive local push.
type AppserviceRegistry interface {
	IsExclusiveUser(userID string) bool
}

// StagingWriter persists one event's batch of staging rows. The batch is
// written atomically; row order within it carries no meaning.
type StagingWriter interface {
	Write(ctx context.Context, rows []StagingRow) error
}
