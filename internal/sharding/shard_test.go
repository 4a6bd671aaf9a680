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
//                                 Shard Router Tests                                 //
//                                                                                    //
// Exercises routing stability and partition coverage.
//                                                                                    //
////////////////////////////////////////////////////////////////////////////////////////

package sharding

import "testing"

func TestWorkerForIsStable(t *testing.T) {
	r := NewRouter([]string{"w0", "w1", "w2", "w3"})
	first := r.WorkerFor("@alice:test")
	for i := 0; i < 10; i++ {
		if got := r.WorkerFor("@alice:test"); got != first {
			t.Errorf("WorkerFor(%q) = %q on call %d, want stable %q", "@alice:test", got, i, first)
		}
	}
}

func TestWorkerForDistributesAcrossWorkers(t *testing.T) {
	r := NewRouter([]string{"w0", "w1", "w2", "w3"})
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[r.WorkerFor(userIDFor(i))] = true
	}
	if len(seen) < 2 {
		t.Errorf("expected users to spread across more than one worker, got %v", seen)
	}
}

func TestPartitionCoversEveryUserExactlyOnce(t *testing.T) {
	r := NewRouter([]string{"w0", "w1", "w2"})
	users := []string{"@a:test", "@b:test", "@c:test", "@d:test", "@e:test"}
	parts := r.Partition(users)

	seen := map[string]int{}
	for _, group := range parts {
		for _, u := range group {
			seen[u]++
		}
	}
	for _, u := range users {
		if seen[u] != 1 {
			t.Errorf("expected %s to appear exactly once across partitions, got %d", u, seen[u])
		}
	}
}

func TestPartitionAgreesWithWorkerFor(t *testing.T) {
	r := NewRouter([]string{"w0", "w1", "w2"})
	users := []string{"@a:test", "@b:test", "@c:test"}
	parts := r.Partition(users)

	for worker, group := range parts {
		for _, u := range group {
			if got := r.WorkerFor(u); got != worker {
				t.Errorf("Partition placed %s under %q but WorkerFor says %q", u, worker, got)
			}
		}
	}
}

func userIDFor(i int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	return "@user" + string(alphabet[i%len(alphabet)]) + string(rune('0'+i%10)) + ":test"
}
