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
//                                    Bulk Driver                                     //
//                                                                                    //
// Fans one event out across its candidate recipients and stages the outcome (C5).
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package bulkpush

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/quietloom/pushrules/internal/sharding"
	"github.com/quietloom/pushrules/internal/telemetry"
	"github.com/quietloom/pushrules/pushrules"
)

// MalformedRuleError marks a per-user rule-store failure that must not
// abort the rest of the batch (spec.md §7: "input malformed at driver
// level" is a log-and-skip, distinct from a collaborator being
// unreachable, which is a retryable failure that aborts the whole
// batch). A RuleStore implementation that can tell "this one row is
// corrupt" apart from "the store is unreachable" should wrap the former
// in MalformedRuleError; any other error from GetRulesFor is treated as
// a collaborator failure.
type MalformedRuleError struct {
	UserID string
	Cause  error
}

func (e *MalformedRuleError) Error() string {
	return "bulkpush: malformed rule row for " + e.UserID + ": " + e.Cause.Error()
}

func (e *MalformedRuleError) Unwrap() error { return e.Cause }

// Driver is the bulk push-rule evaluator (C5). It owns no state of its
// own beyond its collaborators; a Driver is safe to reuse, and safe to
// call concurrently for different events as long as the caller serializes
// concurrent calls for the *same* event (spec.md §5).
type Driver struct {
	Rules       RuleStore
	Membership  MembershipResolver
	Appservices AppserviceRegistry
	Staging     StagingWriter

	// Telemetry is optional; a nil value (the default) disables
	// instrumentation entirely rather than requiring callers to construct
	// a disabled Telemetry themselves.
	Telemetry *telemetry.Telemetry
}

// NewDriver builds a Driver from its four collaborators, with
// instrumentation disabled. Set the Telemetry field afterward to enable
// New Relic segments per spec.md's C9.
func NewDriver(rules RuleStore, membership MembershipResolver, appservices AppserviceRegistry, staging StagingWriter) *Driver {
	return &Driver{Rules: rules, Membership: membership, Appservices: appservices, Staging: staging}
}

// Evaluate runs the bulk push-rule procedure of spec.md §4.5 for one
// event: flatten once, narrow the candidate set, gate on history
// visibility, evaluate each remaining user's rules in priority order, and
// write the resulting batch of staging rows.
//
// A nil event is treated as a flattening failure and aborts the whole
// call, matching "a flattening failure aborts the whole event (it is
// unusable)". A MalformedRuleError for one user is logged via logf and
// that user is skipped without aborting the rest of the batch; any other
// error from a collaborator (rule store, membership resolver, staging
// writer) aborts the call and no staging row is written.
func (d *Driver) Evaluate(ctx context.Context, event map[string]any, ec EventContext, logf func(format string, args ...any)) ([]StagingRow, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	if event == nil {
		return nil, errors.New("bulkpush: nil event cannot be flattened")
	}

	txn := d.Telemetry.StartEventTransaction(ec.EventID)
	defer txn.End()

	flattenSeg := txn.Segment("flatten")
	flat := pushrules.Flatten(event, pushrules.FlattenOptions{
		EscapeKeys:       ec.Options.MSC3873EscapeEventMatchKey,
		MSC3931Enabled:   ec.Options.MSC3931Enabled,
		RoomVersionFlags: ec.Options.RoomVersionFeatureFlags,
	})
	eval := pushrules.NewEvaluator(flat, ec.Mentions, ec.Facts, ec.Options)
	flattenSeg.End()

	candidates, err := d.candidateUsers(ctx, ec)
	if err != nil {
		return nil, err
	}

	var rows []StagingRow
	for _, userID := range candidates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		userSeg := txn.Segment("evaluate_user")
		row, matched, err := d.evaluateUser(ctx, eval, ec, userID, logf)
		userSeg.End()
		if err != nil {
			return nil, err
		}
		if matched {
			rows = append(rows, row)
		}
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(rows) == 0 {
		return rows, nil
	}
	stagingSeg := txn.Segment("staging_write")
	err = d.Staging.Write(ctx, rows)
	stagingSeg.End()
	if err != nil {
		return nil, errors.Wrap(err, "bulkpush: writing staging rows")
	}
	return rows, nil
}

// evaluateUser resolves one user's rules and runs them against eval,
// returning the staging row to emit (if any matched rule produced a
// non-empty outcome). A malformed-rule-row error is logged via logf and
// reported as "no row, no error" so the caller treats it as a skip; any
// other error from the RuleStore is a collaborator failure and is
// returned to the caller to abort the whole batch.
func (d *Driver) evaluateUser(ctx context.Context, eval *pushrules.Evaluator, ec EventContext, userID string, logf func(format string, args ...any)) (StagingRow, bool, error) {
	rules, err := d.Rules.GetRulesFor(ctx, userID, ec.RoomID)
	if err != nil {
		var malformed *MalformedRuleError
		if errors.As(err, &malformed) {
			logf("bulkpush: skipping user %s: %v", userID, err)
			return StagingRow{}, false, nil
		}
		return StagingRow{}, false, errors.Wrapf(err, "bulkpush: fetching rules for %s", userID)
	}

	actions, matched := firstMatchingRule(eval, rules, userID, ec.DisplayNames[userID])
	if !matched {
		return StagingRow{}, false, nil
	}

	notify, tweaks := pushrules.TweaksForActions(actions)
	if !notify && len(tweaks) == 0 {
		return StagingRow{}, false, nil
	}
	highlight, _ := tweaks["highlight"].(bool)
	return StagingRow{
		EventID:   ec.EventID,
		UserID:    userID,
		Actions:   actions,
		Notify:    notify,
		Highlight: highlight,
		Pushable:  true,
		Tweaks:    tweaks,
	}, true, nil
}

// EvaluateSharded is Evaluate's concurrent counterpart (C8): it fans the
// candidate set out across router's worker partitions and evaluates each
// partition on its own goroutine. Every user is still pinned to exactly
// one worker for this event, so per-worker state (here, just each
// goroutine's own append to its slice of the batch) never needs a shared
// lock -- only the final merge into one staging write is synchronized.
// The resulting row order is unspecified, matching spec.md §4.5's "within
// that batch ordering is irrelevant".
func (d *Driver) EvaluateSharded(ctx context.Context, event map[string]any, ec EventContext, router *sharding.Router, logf func(format string, args ...any)) ([]StagingRow, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	if event == nil {
		return nil, errors.New("bulkpush: nil event cannot be flattened")
	}

	txn := d.Telemetry.StartEventTransaction(ec.EventID)
	defer txn.End()

	flattenSeg := txn.Segment("flatten")
	flat := pushrules.Flatten(event, pushrules.FlattenOptions{
		EscapeKeys:       ec.Options.MSC3873EscapeEventMatchKey,
		MSC3931Enabled:   ec.Options.MSC3931Enabled,
		RoomVersionFlags: ec.Options.RoomVersionFeatureFlags,
	})
	eval := pushrules.NewEvaluator(flat, ec.Mentions, ec.Facts, ec.Options)
	flattenSeg.End()

	candidates, err := d.candidateUsers(ctx, ec)
	if err != nil {
		return nil, err
	}

	partitions := router.Partition(candidates)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		rows     []StagingRow
		firstErr error
	)
	for _, group := range partitions {
		group := group
		if len(group) == 0 {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			var workerRows []StagingRow
			for _, userID := range group {
				if ctx.Err() != nil {
					return
				}
				userSeg := txn.Segment("evaluate_user")
				row, matched, err := d.evaluateUser(ctx, eval, ec, userID, logf)
				userSeg.End()
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				if matched {
					workerRows = append(workerRows, row)
				}
			}
			mu.Lock()
			rows = append(rows, workerRows...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(rows) == 0 {
		return rows, nil
	}
	stagingSeg := txn.Segment("staging_write")
	err = d.Staging.Write(ctx, rows)
	stagingSeg.End()
	if err != nil {
		return nil, errors.Wrap(err, "bulkpush: writing staging rows")
	}
	return rows, nil
}

// firstMatchingRule returns the actions of the first enabled rule whose
// conditions all match, in the order rules is given (priority order is a
// RuleStore/caller concern, unchanged Non-goal).
func firstMatchingRule(eval *pushrules.Evaluator, rules []pushrules.Rule, userID, displayName string) ([]pushrules.Action, bool) {
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if eval.MatchesAll(rule.Conditions, userID, displayName) {
			return rule.Actions, true
		}
	}
	return nil, false
}

// candidateUsers narrows ec.Candidates down to the set of users eligible
// for push on this event: appservice-exclusive users and (by default) the
// sender are dropped, then history-visibility gating removes anyone whose
// membership at the event's previous-event frontier didn't permit them to
// see it.
func (d *Driver) candidateUsers(ctx context.Context, ec EventContext) ([]string, error) {
	var out []string
	for _, userID := range ec.Candidates {
		if ec.ExcludeSender && userID == ec.Sender {
			continue
		}
		if d.Appservices != nil && d.Appservices.IsExclusiveUser(userID) {
			continue
		}

		if ec.HistoryVisibility == "joined" || ec.HistoryVisibility == "invited" {
			membership, err := d.Membership.MembershipAt(ctx, userID, ec.PrevEventIDs)
			if err != nil {
				return nil, errors.Wrapf(err, "bulkpush: resolving membership for %s", userID)
			}
			if !membership.visibleTo(ec.HistoryVisibility) {
				continue
			}
		}
		out = append(out, userID)
	}
	return out, nil
}
