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
//                                  Rule Store Tests                                  //
//                                                                                    //
// Exercises schema creation, rule round-tripping, and staging writes.
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package rulestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quietloom/pushrules/bulkpush"
	"github.com/quietloom/pushrules/pushrules"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("error opening database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetRulesForEmptyDB(t *testing.T) {
	s := openTestStore(t)
	rules, err := s.GetRulesFor(context.Background(), "@user:test", "!room:test")
	if err != nil {
		t.Errorf("error querying empty db: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("empty db didn't yield an empty rule list, got %v", rules)
	}
}

func TestPutAndGetRules(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rule := pushrules.Rule{
		RuleID: ".m.rule.contains_display_name",
		Conditions: []pushrules.Condition{
			{"kind": "contains_display_name"},
		},
		Actions: []pushrules.Action{
			"notify",
			map[string]any{"set_tweak": "highlight"},
		},
		Enabled: true,
		Default: true,
	}
	if err := s.PutRule(ctx, "@user:test", "!room:test", 0, rule); err != nil {
		t.Fatalf("error inserting rule: %v", err)
	}

	rules, err := s.GetRulesFor(ctx, "@user:test", "!room:test")
	if err != nil {
		t.Fatalf("error querying rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if diff := cmp.Diff(rule, rules[0]); diff != "" {
		t.Errorf("round-tripped rule mismatch (-want +got):\n%s", diff)
	}

	other, err := s.GetRulesFor(ctx, "@other:test", "!room:test")
	if err != nil {
		t.Fatalf("error querying rules for unrelated user: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no rules for an unrelated user, got %v", other)
	}
}

func TestRulePriorityOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	second := pushrules.Rule{RuleID: "second", Enabled: true}
	first := pushrules.Rule{RuleID: "first", Enabled: true}
	if err := s.PutRule(ctx, "@user:test", "!room:test", 1, second); err != nil {
		t.Fatalf("error inserting second rule: %v", err)
	}
	if err := s.PutRule(ctx, "@user:test", "!room:test", 0, first); err != nil {
		t.Fatalf("error inserting first rule: %v", err)
	}

	rules, err := s.GetRulesFor(ctx, "@user:test", "!room:test")
	if err != nil {
		t.Fatalf("error querying rules: %v", err)
	}
	if len(rules) != 2 || rules[0].RuleID != "first" || rules[1].RuleID != "second" {
		t.Errorf("expected rules ordered by priority, got %v", rules)
	}
}

func TestStagingWrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := []bulkpush.StagingRow{
		{
			EventID:   "$event1",
			UserID:    "@user:test",
			Actions:   []pushrules.Action{"notify"},
			Notify:    true,
			Highlight: false,
			Pushable:  true,
			Tweaks:    map[string]any{"sound": "default"},
		},
	}
	if err := s.Write(ctx, rows); err != nil {
		t.Fatalf("error writing staging rows: %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT count(*) FROM event_push_actions_staging WHERE event_id = ?`, "$event1").Scan(&count); err != nil {
		t.Fatalf("error counting staging rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 staging row, got %d", count)
	}
}

func TestOpenCreatesSchemaOnlyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("error on first open: %v", err)
	}
	if err := s1.PutRule(context.Background(), "@user:test", "!room:test", 0, pushrules.Rule{RuleID: "r", Enabled: true}); err != nil {
		t.Fatalf("error inserting rule: %v", err)
	}
	s1.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file to exist: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("error on second open: %v", err)
	}
	defer s2.Close()

	rules, err := s2.GetRulesFor(context.Background(), "@user:test", "!room:test")
	if err != nil {
		t.Fatalf("error querying rules after reopen: %v", err)
	}
	if len(rules) != 1 {
		t.Errorf("expected the rule inserted before reopening to survive, got %v", rules)
	}
}
