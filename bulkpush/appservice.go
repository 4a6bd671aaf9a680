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
//                                Appservice Exclusion                                //
//                                                                                    //
// Recognizes users owned by an application service's exclusive namespace.
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package bulkpush

import (
	"regexp"
	"strings"
)

// ExclusiveUserRegistry is the concrete AppserviceRegistry this module
// ships: one compiled regex ORing together every exclusive user-namespace
// pattern across all registered application services, grounded on
// synapse's own `_make_exclusive_regex` (it likewise folds every service's
// exclusive namespaces into a single alternation compiled once, rather
// than testing each service's patterns in a loop per lookup). The
// compile-once idiom follows the teacher's own `regexp.MustCompile` usage
// in application.go; a namespace that fails to compile is skipped without
// being logged.
type ExclusiveUserRegistry struct {
	re *regexp.Regexp
}

// NewExclusiveUserRegistry compiles namespaces, a flat list of exclusive
// user-ID regex patterns pulled from every application service's
// registration (synapse's namespaces.users[].regex where exclusive=true).
// A pattern that fails to compile on its own is skipped rather than
// aborting the whole registry -- one malformed appservice registration
// must not disable exclusion for every other service.
func NewExclusiveUserRegistry(namespaces []string) *ExclusiveUserRegistry {
	var parts []string
	for _, ns := range namespaces {
		if _, err := regexp.Compile(ns); err != nil {
			continue
		}
		parts = append(parts, "(?:"+ns+")")
	}
	if len(parts) == 0 {
		return &ExclusiveUserRegistry{}
	}
	return &ExclusiveUserRegistry{re: regexp.MustCompile("^(?:" + strings.Join(parts, "|") + ")$")}
}

// IsExclusiveUser reports whether userID matches any exclusive appservice
// namespace. A registry with no namespaces registered never excludes
// anyone.
func (r *ExclusiveUserRegistry) IsExclusiveUser(userID string) bool {
	if r == nil || r.re == nil {
		return false
	}
	return r.re.MatchString(userID)
}
