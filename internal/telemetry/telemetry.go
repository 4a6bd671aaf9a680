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
//                                     Telemetry                                      //
//                                                                                    //
// New Relic segment helpers around the bulk driver's phases (C9).
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

// Package telemetry wraps New Relic segments around the bulk driver's
// phases, grounded on the teacher's own instrumentation setup in
// cmd/go-gma-server/main.go: a *newrelic.Application built once from
// ConfigAppName/ConfigFromEnvironment, with transactions and segments
// started and ended around whatever hot path is being measured.
package telemetry

import (
	"os"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Telemetry holds the process-wide New Relic application handle. A nil
// *Telemetry (or one built with Disabled) is safe to call every method
// on; every wrapper becomes a no-op, matching the teacher's
// InstrumentCode on/off switch in main.go.
type Telemetry struct {
	app *newrelic.Application
}

// New builds a Telemetry reporting under appName, reading the rest of its
// configuration from the environment (NEW_RELIC_APP_NAME,
// NEW_RELIC_LICENSE_KEY), exactly as the teacher's main.go does.
func New(appName string) (*Telemetry, error) {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(appName),
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigDebugLogger(os.Stdout),
	)
	if err != nil {
		return nil, err
	}
	return &Telemetry{app: app}, nil
}

// Disabled returns a Telemetry whose every method is a no-op, for callers
// that don't want instrumentation overhead (tests, pushctl).
func Disabled() *Telemetry { return &Telemetry{} }

// Shutdown waits up to the given timeout for queued data to flush,
// matching the teacher's own 30-second shutdown wait in main.go.
func (t *Telemetry) Shutdown(timeout time.Duration) {
	if t == nil || t.app == nil {
		return
	}
	t.app.Shutdown(timeout)
}

// StartEventTransaction begins one transaction per event evaluated by the
// bulk driver, named "bulkpush.evaluate:" plus the event ID. Phases are
// measured by the segments started under it.
func (t *Telemetry) StartEventTransaction(eventID string) *EventTransaction {
	if t == nil || t.app == nil {
		return &EventTransaction{}
	}
	return &EventTransaction{txn: t.app.StartTransaction("bulkpush.evaluate:" + eventID)}
}

// EventTransaction scopes one Driver.Evaluate call. Callers start a named
// segment around each phase (flatten, per-user evaluate, staging write)
// and End it when that phase completes.
type EventTransaction struct {
	txn *newrelic.Transaction
}

// Segment starts a named segment under this transaction. Callers must End
// the returned segment when the phase completes; a nil receiver (no
// instrumentation configured) returns a Segment whose End is a no-op.
func (e *EventTransaction) Segment(name string) *Segment {
	if e == nil || e.txn == nil {
		return &Segment{}
	}
	return &Segment{seg: e.txn.StartSegment(name)}
}

// End finishes the transaction.
func (e *EventTransaction) End() {
	if e == nil || e.txn == nil {
		return
	}
	e.txn.End()
}

// Segment is one named span within an EventTransaction.
type Segment struct {
	seg *newrelic.Segment
}

// End finishes the segment.
func (s *Segment) End() {
	if s == nil || s.seg == nil {
		return
	}
	s.seg.End()
}
