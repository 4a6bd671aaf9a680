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
//                                     Rule Store                                     //
//                                                                                    //
// sqlite-backed RuleStore and StagingWriter (C6).
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

// Package rulestore is a sqlite-backed implementation of
// bulkpush.RuleStore and bulkpush.StagingWriter, grounded on
// cmd/go-gma-server/database.go: a raw *sql.DB opened against
// github.com/mattn/go-sqlite3, with the schema created via a single
// inline "create table" block the first time the database file doesn't
// exist, and no ORM in between.
package rulestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/quietloom/pushrules/bulkpush"
	"github.com/quietloom/pushrules/pushrules"
)

// Store is a sqlite-backed RuleStore and StagingWriter. The zero value is
// not usable; construct one with Open.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite database at path and
// ensures the rules/staging schema exists, mirroring dbOpen's
// stat-then-create-or-open structure in the teacher's database.go.
func Open(path string) (*Store, error) {
	_, statErr := os.Stat(path)
	needsSchema := os.IsNotExist(statErr)

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, errors.Wrapf(err, "rulestore: opening sqlite database %q", path)
	}

	if needsSchema {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "rulestore: creating schema in %q", path)
		}
	}
	return &Store{db: db}, nil
}

const schema = `
	create table rules (
		rule_row_id integer primary key,
		user_id     text    not null,
		room_id     text    not null,
		rule_id     text    not null,
		priority    integer not null,
		conditions  text    not null,
		actions     text    not null,
		enabled     integer(1) not null,
		is_default  integer(1) not null
	);
	create table event_push_actions_staging (
		staging_row_id integer primary key,
		event_id  text    not null,
		user_id   text    not null,
		actions   text    not null,
		notify    integer(1) not null,
		highlight integer(1) not null,
		pushable  integer(1) not null,
		tweaks    text    not null,
			unique (event_id, user_id)
	);
`

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetRulesFor implements bulkpush.RuleStore: it returns the user's rules
// for the room in ascending order of the priority they were stored with
// -- this module does not resolve precedence between default and
// user-defined rules (Non-goal); the stored priority alone decides order.
func (s *Store) GetRulesFor(ctx context.Context, userID, roomID string) ([]pushrules.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, conditions, actions, enabled, is_default
		FROM rules
		WHERE user_id = ? AND room_id = ?
		ORDER BY priority ASC`, userID, roomID)
	if err != nil {
		return nil, errors.Wrapf(err, "rulestore: querying rules for %s in %s", userID, roomID)
	}
	defer rows.Close()

	var out []pushrules.Rule
	for rows.Next() {
		var (
			ruleID             string
			conditionsJSON     string
			actionsJSON        string
			enabled, isDefault int
		)
		if err := rows.Scan(&ruleID, &conditionsJSON, &actionsJSON, &enabled, &isDefault); err != nil {
			return nil, &bulkpush.MalformedRuleError{UserID: userID, Cause: err}
		}

		var conditions []pushrules.Condition
		if err := json.Unmarshal([]byte(conditionsJSON), &conditions); err != nil {
			return nil, &bulkpush.MalformedRuleError{UserID: userID, Cause: err}
		}
		var actions []pushrules.Action
		if err := json.Unmarshal([]byte(actionsJSON), &actions); err != nil {
			return nil, &bulkpush.MalformedRuleError{UserID: userID, Cause: err}
		}

		out = append(out, pushrules.Rule{
			RuleID:     ruleID,
			Conditions: conditions,
			Actions:    actions,
			Enabled:    enabled != 0,
			Default:    isDefault != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "rulestore: reading rule rows for %s in %s", userID, roomID)
	}
	return out, nil
}

// PutRule inserts a single prioritized rule row. priority orders
// GetRulesFor's result ascending. An existing row with the same rule_id is
// not replaced: putting the same rule twice stores two rows.
func (s *Store) PutRule(ctx context.Context, userID, roomID string, priority int, rule pushrules.Rule) error {
	conditionsJSON, err := json.Marshal(rule.Conditions)
	if err != nil {
		return errors.Wrap(err, "rulestore: marshaling conditions")
	}
	actionsJSON, err := json.Marshal(rule.Actions)
	if err != nil {
		return errors.Wrap(err, "rulestore: marshaling actions")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rules (user_id, room_id, rule_id, priority, conditions, actions, enabled, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, roomID, rule.RuleID, priority, string(conditionsJSON), string(actionsJSON),
		boolToInt(rule.Enabled), boolToInt(rule.Default))
	if err != nil {
		return errors.Wrapf(err, "rulestore: inserting rule %s for %s in %s", rule.RuleID, userID, roomID)
	}
	return nil
}

// Write implements bulkpush.StagingWriter: it inserts the whole batch in
// one transaction, matching spec.md §4.5's "staging rows for a single
// event are written atomically as one batch".
func (s *Store) Write(ctx context.Context, rows []bulkpush.StagingRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "rulestore: beginning staging transaction")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO event_push_actions_staging
			(event_id, user_id, actions, notify, highlight, pushable, tweaks)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "rulestore: preparing staging insert")
	}
	defer stmt.Close()

	for _, row := range rows {
		actionsJSON, err := json.Marshal(row.Actions)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "rulestore: marshaling actions for %s/%s", row.EventID, row.UserID)
		}
		tweaksJSON, err := json.Marshal(row.Tweaks)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "rulestore: marshaling tweaks for %s/%s", row.EventID, row.UserID)
		}
		if _, err := stmt.ExecContext(ctx, row.EventID, row.UserID, string(actionsJSON),
			boolToInt(row.Notify), boolToInt(row.Highlight), boolToInt(row.Pushable), string(tweaksJSON)); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "rulestore: inserting staging row for %s/%s", row.EventID, row.UserID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "rulestore: committing staging transaction")
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
