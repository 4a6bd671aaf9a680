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
//                                 Action Classifier                                  //
//                                                                                    //
// Reduces a rule's action list to a notify/tweaks pair (C4).
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package pushrules

// TweaksForActions reduces a rule's action list to (notify, tweaks), per
// spec.md §4.4. Each element of actions is either the bare string "notify",
// "dont_notify", or "coalesce", or a mapping {"set_tweak": NAME} /
// {"set_tweak": NAME, "value": V}. Later entries for the same tweak name
// win.
func TweaksForActions(actions []Action) (notify bool, tweaks map[string]any) {
	tweaks = make(map[string]any)
	for _, a := range actions {
		switch v := a.(type) {
		case string:
			if v == "notify" {
				notify = true
			}
		case map[string]any:
			name, ok := v["set_tweak"].(string)
			if !ok {
				continue
			}
			if value, hasValue := v["value"]; hasValue {
				tweaks[name] = value
			} else {
				tweaks[name] = true
			}
		}
	}
	return notify, tweaks
}
