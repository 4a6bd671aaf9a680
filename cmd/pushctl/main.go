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
//                                      pushctl                                       //
//                                                                                    //
// Command entry point wiring the evaluate subcommand.
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

// Command pushctl is a developer aid for the push-rule matcher: it runs the
// flattener, glob matcher, and condition evaluator (C1-C4) directly against a
// fixture event and a fixture rule list, with no rule store, membership
// resolver, or staging writer involved, and prints the staged outcome as
// JSON. It exists so a rule author can check a pattern against a sample
// event without a running homeserver, the same single-cmd-binary-wraps-
// the-library convention as the teacher's own go-gma-server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pushctl",
	Short: "pushctl — offline push-rule evaluation",
	Long:  "pushctl runs the push-rule matcher against a fixture event and rule list without a running homeserver.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
