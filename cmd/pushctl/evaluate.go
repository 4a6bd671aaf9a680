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
//                                  pushctl evaluate                                  //
//                                                                                    //
// Runs the matcher against a fixture event and rule list (C10).
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quietloom/pushrules/pushrules"
)

var evaluateFixturePath string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a fixture event against a fixture rule list",
	RunE:  runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVarP(&evaluateFixturePath, "file", "f", "-", "fixture JSON file, or - for stdin")
}

// fixture is the on-disk shape pushctl evaluate reads: one event plus the
// ambient facts and rule list a RuleStore/bulk driver would otherwise supply,
// so C1-C4 can run standalone with no collaborators.
type fixture struct {
	Event       map[string]any         `json:"event"`
	UserID      string                 `json:"user_id"`
	DisplayName string                 `json:"display_name"`
	Options     pushrules.Options      `json:"options"`
	Facts       pushrules.EventFacts   `json:"facts"`
	Mentions    pushrules.MentionFacts `json:"mentions"`
	Rules       []pushrules.Rule       `json:"rules"`
}

// outcome is the staged result pushctl evaluate prints: the first matching
// rule (if any) and the notify/tweaks pair it reduces to, mirroring the
// shape a RuleStore/StagingWriter pipeline would produce for this user.
type outcome struct {
	MatchedRule string         `json:"matched_rule,omitempty"`
	Notify      bool           `json:"notify"`
	Highlight   bool           `json:"highlight"`
	Tweaks      map[string]any `json:"tweaks"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	fx, err := readFixture(evaluateFixturePath)
	if err != nil {
		return errors.Wrap(err, "pushctl: reading fixture")
	}

	out, err := evaluateFixture(fx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// evaluateFixture runs C1->C3->C4 against fx in-process: flatten the event
// once, then walk fx.Rules in order and return the first enabled rule whose
// conditions all match, reduced to its notify/tweaks outcome. No rule
// matching produces the zero outcome (Notify: false, an empty Tweaks map).
func evaluateFixture(fx fixture) (outcome, error) {
	if fx.Event == nil {
		return outcome{}, errors.New("pushctl: fixture has no \"event\" object")
	}

	flat := pushrules.Flatten(fx.Event, pushrules.FlattenOptions{
		EscapeKeys:       fx.Options.MSC3873EscapeEventMatchKey,
		MSC3931Enabled:   fx.Options.MSC3931Enabled,
		RoomVersionFlags: fx.Options.RoomVersionFeatureFlags,
	})
	eval := pushrules.NewEvaluator(flat, fx.Mentions, fx.Facts, fx.Options)

	out := outcome{Tweaks: map[string]any{}}
	for _, rule := range fx.Rules {
		if !rule.Enabled {
			continue
		}
		if !eval.MatchesAll(rule.Conditions, fx.UserID, fx.DisplayName) {
			continue
		}
		notify, tweaks := pushrules.TweaksForActions(rule.Actions)
		highlight, _ := tweaks["highlight"].(bool)
		out = outcome{
			MatchedRule: rule.RuleID,
			Notify:      notify,
			Highlight:   highlight,
			Tweaks:      tweaks,
		}
		break
	}
	return out, nil
}

func readFixture(path string) (fixture, error) {
	var r io.Reader
	if path == "-" || path == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fixture{}, err
		}
		defer f.Close()
		r = f
	}
	return decodeFixture(r)
}

func decodeFixture(r io.Reader) (fixture, error) {
	var fx fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return fixture{}, fmt.Errorf("decoding fixture JSON: %w", err)
	}
	return fx, nil
}
