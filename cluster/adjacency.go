package cluster

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/grailbio/bcluster/lsh"
)

// Adjacency is the explicit candidate relation: the neighbours of node i are
// all other nodes that share at least one bucket with i. It is symmetric and
// has no self loops.
type Adjacency struct {
	sets []*roaring.Bitmap
}

// BuildAdjacency unions every shared bucket of idx into the neighbour set of
// each of its members. A bucket of size k costs k bitmap unions; pairs are
// never enumerated.
func BuildAdjacency(idx *lsh.Index) *Adjacency {
	a := &Adjacency{sets: make([]*roaring.Bitmap, idx.Nodes)}
	for i := range a.sets {
		a.sets[i] = roaring.New()
	}
	for _, t := range idx.Tables {
		for _, members := range t.Buckets {
			if len(members) < 2 {
				continue
			}
			bucket := roaring.BitmapOf(members...)
			for _, m := range members {
				a.sets[m].Or(bucket)
			}
		}
	}
	for i, s := range a.sets {
		s.Remove(uint32(i))
		s.RunOptimize()
	}
	return a
}

// Len returns the number of nodes.
func (a *Adjacency) Len() int { return len(a.sets) }

// Neighbors returns the neighbours of i in ascending order.
func (a *Adjacency) Neighbors(i uint32) []uint32 { return a.sets[i].ToArray() }

// Adjacent reports whether i and j share a bucket.
func (a *Adjacency) Adjacent(i, j uint32) bool { return a.sets[i].Contains(j) }

// Degree returns the number of neighbours of i.
func (a *Adjacency) Degree(i uint32) int { return int(a.sets[i].GetCardinality()) }

// Edges returns the number of undirected edges.
func (a *Adjacency) Edges() uint64 {
	var n uint64
	for _, s := range a.sets {
		n += s.GetCardinality()
	}
	return n / 2
}

// Density returns the fraction of node pairs in members that are adjacent.
// members must belong to one component. A single node has density 1.
func (a *Adjacency) Density(members []uint32) float64 {
	if len(members) < 2 {
		return 1
	}
	set := roaring.BitmapOf(members...)
	var edges uint64
	for _, m := range members {
		edges += a.sets[m].AndCardinality(set)
	}
	n := float64(len(members))
	return float64(edges) / (n * (n - 1))
}

// Components computes the connected components by walking every edge. It
// returns the same partition as Find, and exists mainly to cross-check it.
func (a *Adjacency) Components() [][]uint32 {
	d := NewDisjointSet(len(a.sets))
	for i, s := range a.sets {
		it := s.Iterator()
		for it.HasNext() {
			d.Union(uint32(i), it.Next())
		}
	}
	return d.Components()
}
