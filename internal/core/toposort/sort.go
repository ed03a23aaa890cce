// Copyright 2026 The xdeps Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package toposort implements reverse-postorder topological sort over a
// directed relation given as a successor function, generalized from
// cuelang.org/go/internal/core/toposort's Graph/Sort machinery (which
// operates over adt.Feature-keyed nodes) to a generic comparable node type,
// since this module's nodes are reference and task handles rather than CUE
// struct features.
//
// Unlike cuelang.org/go's Sort, which always produces a total order by
// breaking cycles (selecting an entry point and continuing), this package
// rejects cycles outright: a cycle here can only arise from user error
// (e.g. a <- a+1), so it is reported as CycleDetected rather than repaired.
package toposort

import "github.com/opennumeric/xdeps/errors"

// Successors returns the outgoing edges of a node. Nodes absent from the
// relation are treated as having no successors.
type Successors[N comparable] func(n N) []N

// Sort returns every node reachable from seeds, in an order such that every
// node precedes all of its successors (reverse postorder). Ties among nodes
// with no ordering constraint between them are broken by the order in which
// seeds and each node's successors are listed, so that sorting the same
// graph from the same seed order is deterministic.
//
// If a cycle is reachable from seeds, Sort returns an *errors.CycleError
// whose Path lists the cycle, starting and ending on the same node.
func Sort[N comparable](seeds []N, succ Successors[N]) ([]N, error) {
	state := &sortState[N]{
		succ:    succ,
		visited: make(map[N]visitMark, len(seeds)),
	}
	// Seeds and successors are visited last-to-first, so that after the
	// final reversal unconstrained nodes appear in their listed order.
	for i := len(seeds) - 1; i >= 0; i-- {
		if err := state.visit(seeds[i], nil); err != nil {
			return nil, err
		}
	}
	// visit appends in postorder (a node's successors are appended before
	// the node itself); reversing yields the required order, where every
	// node precedes all of its successors.
	reversed := make([]N, len(state.order))
	for i, n := range state.order {
		reversed[len(state.order)-1-i] = n
	}
	return reversed, nil
}

type visitMark uint8

const (
	unvisited visitMark = iota
	inProgress
	done
)

type sortState[N comparable] struct {
	succ    Successors[N]
	visited map[N]visitMark
	order   []N
}

func (s *sortState[N]) visit(n N, path []N) error {
	switch s.visited[n] {
	case done:
		return nil
	case inProgress:
		start := 0
		for i, p := range path {
			if p == n {
				start = i
				break
			}
		}
		cycle := append(append([]N{}, path[start:]...), n)
		anyPath := make([]any, len(cycle))
		for i, node := range cycle {
			anyPath[i] = node
		}
		return &errors.CycleError{Path: anyPath}
	}

	s.visited[n] = inProgress
	path = append(path, n)
	succ := s.succ(n)
	for i := len(succ) - 1; i >= 0; i-- {
		if err := s.visit(succ[i], path); err != nil {
			return err
		}
	}
	s.visited[n] = done
	s.order = append(s.order, n)
	return nil
}
