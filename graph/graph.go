// Package graph provides a small directed-graph type used to exercise the
// msg package's shared-pointer and cycle-preservation semantics end to
// end, plus the tree/ring/random/fully-connected builders used by
// cmd/graphtool and by the msg package's round-trip tests.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package graph

import (
	"math/rand"

	"github.com/NVIDIA/deepmsg/msg"
)

// Node is one vertex of a directed graph: an ID and a set of outgoing
// edges, each possibly shared with (or looping back to) another node
// reachable from the same root.
type Node struct {
	ID    int32
	Edges []*Node
}

var _ msg.Descriptor = (*Node)(nil)

// Declare enumerates Node's fields in a fixed order: ID first, then Edges
// as a container of shared pointers so a DAG or cycle round-trips without
// duplicating nodes.
func (n *Node) Declare(m *msg.Message) error {
	if err := msg.Var(m, &n.ID); err != nil {
		return err
	}
	return msg.SharedPtrSlice[Node, *Node](m, &n.Edges)
}

// MakeBTree builds a complete binary tree of n nodes, node i's children at
// 2i+1 and 2i+2, and returns the root.
func MakeBTree(n int) *Node {
	if n <= 0 {
		return nil
	}
	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = &Node{ID: int32(i)}
	}
	for i := range nodes {
		l, r := 2*i+1, 2*i+2
		if l < n {
			nodes[i].Edges = append(nodes[i].Edges, nodes[l])
		}
		if r < n {
			nodes[i].Edges = append(nodes[i].Edges, nodes[r])
		}
	}
	return nodes[0]
}

// MakeRing builds a cycle of n nodes, each pointing to the next and the
// last pointing back to the first - the minimal case that actually
// exercises cycle preservation.
func MakeRing(n int) *Node {
	if n <= 0 {
		return nil
	}
	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = &Node{ID: int32(i)}
	}
	for i := range nodes {
		nodes[i].Edges = append(nodes[i].Edges, nodes[(i+1)%n])
	}
	return nodes[0]
}

// MakeFullyConnected builds n nodes each pointing to every node, including
// itself - n^2 edges total, matching the original MEL graph generator.
func MakeFullyConnected(n int) *Node {
	if n <= 0 {
		return nil
	}
	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = &Node{ID: int32(i)}
	}
	for i := range nodes {
		for j := range nodes {
			nodes[i].Edges = append(nodes[i].Edges, nodes[j])
		}
	}
	return nodes[0]
}

// MakeRandom builds n nodes with a random edge list per node, using seed
// for reproducibility (the reference scenario uses seed 1234567).
func MakeRandom(n int, seed int64) *Node {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = &Node{ID: int32(i)}
	}
	for i := range nodes {
		degree := rng.Intn(n)
		for k := 0; k < degree; k++ {
			j := rng.Intn(n)
			nodes[i].Edges = append(nodes[i].Edges, nodes[j])
		}
	}
	return nodes[0]
}

// Count walks the graph reachable from root, counting each distinct node
// (by pointer identity) exactly once - used by tests to assert a
// round-tripped graph has the same shape as the original.
func Count(root *Node) int {
	seen := make(map[*Node]bool)
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		for _, e := range n.Edges {
			walk(e)
		}
	}
	walk(root)
	return len(seen)
}
