package cluster

import "github.com/grailbio/bcluster/lsh"

// Stats represents high-level statistics of one clustering run.
type Stats struct {
	// Reads is the number of input barcode pairs.
	Reads int
	// Nodes is the number of graph nodes; less than Reads when duplicate
	// pairs were collapsed.
	Nodes int
	// Templates is C(L, L-E).
	Templates int
	// Index merges the statistics of every template table.
	Index lsh.TableStats
	// Unions counts the union operations that merged two distinct sets.
	Unions int
	// Clusters is the number of connected components.
	Clusters int
	// Singletons counts clusters with exactly one node.
	Singletons int
	// LargestCluster is the node count of the largest cluster.
	LargestCluster int
	// LargestClusterReads is the read count of the cluster with the most
	// reads.
	LargestClusterReads int
}

// Merge adds the field values of the two Stats objects and creates new
// Stats. Largest* fields take the maximum.
func (s Stats) Merge(o Stats) Stats {
	s.Reads += o.Reads
	s.Nodes += o.Nodes
	s.Templates += o.Templates
	s.Index = s.Index.Merge(o.Index)
	s.Unions += o.Unions
	s.Clusters += o.Clusters
	s.Singletons += o.Singletons
	if o.LargestCluster > s.LargestCluster {
		s.LargestCluster = o.LargestCluster
	}
	if o.LargestClusterReads > s.LargestClusterReads {
		s.LargestClusterReads = o.LargestClusterReads
	}
	return s
}
