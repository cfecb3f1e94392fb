// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package barcode

// Node is a distinct barcode pair together with the indices of the reads
// that carried it. Reads is sorted in ascending order and is never empty.
type Node struct {
	Pair
	Reads []int
}

// Weight returns the number of reads collapsed into the node.
func (n *Node) Weight() int { return len(n.Reads) }

// Collapse merges reads with identical barcode pairs into one node. Nodes
// are returned in order of their first read, so the result is a pure
// function of the input order.
func Collapse(pairs []Pair) []Node {
	index := make(map[Pair]int, len(pairs))
	var nodes []Node
	for i, p := range pairs {
		if n, ok := index[p]; ok {
			nodes[n].Reads = append(nodes[n].Reads, i)
			continue
		}
		index[p] = len(nodes)
		nodes = append(nodes, Node{Pair: p, Reads: []int{i}})
	}
	return nodes
}

// Expand returns one node per read. It is the node model used when
// duplicate pairs are not collapsed.
func Expand(pairs []Pair) []Node {
	nodes := make([]Node, len(pairs))
	for i, p := range pairs {
		nodes[i] = Node{Pair: p, Reads: []int{i}}
	}
	return nodes
}

// NodePairs returns the barcode pair of every node.
func NodePairs(nodes []Node) []Pair {
	pairs := make([]Pair, len(nodes))
	for i := range nodes {
		pairs[i] = nodes[i].Pair
	}
	return pairs
}
