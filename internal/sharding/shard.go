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
//                                    Shard Router                                    //
//                                                                                    //
// Rendezvous-hash routing of per-user evaluation work across workers (C8).
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

// Package sharding routes per-user evaluation work across a fixed pool
// of worker goroutines for one event's fan-out, so that each user's
// condition evaluation stays pinned to one worker for the lifetime of
// that event (spec.md §5's "serializes writes to that worker's slice of
// the staging batch without a shared lock").
//
// The routing itself is rendezvous (highest random weight) hashing via
// github.com/dgryski/go-rendezvous, the same consistent-hashing
// dependency the rest of the example pack pulls in for node selection;
// unlike a modulo hash, adding or removing a worker only reshuffles the
// assignments that actually belonged to the changed node.
package sharding

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-rendezvous"
)

// Router assigns a user ID to one of a fixed set of named workers.
type Router struct {
	rv      *rendezvous.Rendezvous
	workers []string
}

// NewRouter builds a Router over workers, a fixed set of worker names
// (e.g. "0", "1", ... for a goroutine-pool index, or a shard identifier
// in a multi-process deployment). workers must be non-empty.
func NewRouter(workers []string) *Router {
	cp := make([]string, len(workers))
	copy(cp, workers)
	return &Router{
		rv:      rendezvous.New(cp, hashString),
		workers: cp,
	}
}

func hashString(s string) uint64 {
	return xxhash.Sum64String(s)
}

// WorkerFor returns the worker a user ID is pinned to for this Router's
// worker set. The same user ID always maps to the same worker as long as
// the worker set is unchanged.
func (r *Router) WorkerFor(userID string) string {
	return r.rv.Lookup(userID)
}

// Partition splits userIDs into one slice per worker, in WorkerFor order,
// keyed by worker name -- the shape C5 needs to fan a single event's
// candidate set out across its worker pool in one pass.
func (r *Router) Partition(userIDs []string) map[string][]string {
	out := make(map[string][]string, len(r.workers))
	for _, w := range r.workers {
		out[w] = nil
	}
	for _, userID := range userIDs {
		w := r.WorkerFor(userID)
		out[w] = append(out[w], userID)
	}
	return out
}
