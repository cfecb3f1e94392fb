package cluster

import (
	"encoding/binary"
	"fmt"
	"sort"
	"time"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bcluster/barcode"
	"github.com/grailbio/bcluster/lsh"
)

// Cluster is one connected component.
type Cluster struct {
	// ID is the position of the cluster in Partition.Clusters.
	ID int
	// Nodes lists node ids in ascending order.
	Nodes []int
	// Reads lists the input read indices of all nodes, ascending.
	Reads []int
}

// Size returns the number of nodes in the cluster.
func (c *Cluster) Size() int { return len(c.Nodes) }

// ReadCount returns the number of reads in the cluster. It equals Size
// unless duplicate pairs were collapsed.
func (c *Cluster) ReadCount() int { return len(c.Reads) }

// Partition is the result of Find. Clusters are ordered by their smallest
// read index. A Partition is not modified after Find returns it.
type Partition struct {
	// Nodes are the graph nodes; Cluster.Nodes indexes into it.
	Nodes    []barcode.Node
	Clusters []Cluster
	Stats    Stats
}

// ReadClusters returns, for every input read, the ID of its cluster.
func (p *Partition) ReadClusters() []int {
	out := make([]int, p.Stats.Reads)
	for _, c := range p.Clusters {
		for _, r := range c.Reads {
			out[r] = c.ID
		}
	}
	return out
}

// Fingerprint returns a stable 64-bit digest of the partition of reads. Two
// runs over the same input with the same options produce the same
// fingerprint.
func (p *Partition) Fingerprint() uint64 {
	buf := make([]byte, 0, 8*(p.Stats.Reads+len(p.Clusters)))
	for _, c := range p.Clusters {
		buf = binary.AppendUvarint(buf, uint64(len(c.Reads)))
		for _, r := range c.Reads {
			buf = binary.AppendUvarint(buf, uint64(r))
		}
	}
	return farm.Fingerprint64(buf)
}

// Find clusters the given barcode pairs; pairs[i] belongs to read i. It
// fails with errors.Invalid on bad options or malformed input, and with
// errors.OOM when the index would exceed the configured limits. No partial
// result is returned with an error.
func Find(pairs []barcode.Pair, opts Opts) (*Partition, error) {
	if err := validate(&opts); err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, errors.E(errors.Invalid, "no barcode pairs to cluster")
	}
	for i, p := range pairs {
		if err := p.Validate(opts.BarcodeLength); err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("read %d", i), err)
		}
	}
	templates, err := lsh.NewTemplateSet(opts.BarcodeLength, opts.ErrorTolerance)
	if err != nil {
		return nil, err
	}

	t0 := time.Now()
	var nodes []barcode.Node
	if opts.CollapseDuplicates {
		nodes = barcode.Collapse(pairs)
	} else {
		nodes = barcode.Expand(pairs)
	}
	if entries := 2 * int64(len(nodes)) * int64(templates.Len()); entries > opts.MaxIndexEntries {
		return nil, errors.E(errors.OOM, fmt.Sprintf(
			"index needs %d entries (%d nodes x %d templates x 2 orientations), limit is %d",
			entries, len(nodes), templates.Len(), opts.MaxIndexEntries))
	}
	log.Printf("cluster: %d reads, %d nodes, %d templates (L=%d, E=%d)",
		len(pairs), len(nodes), templates.Len(), opts.BarcodeLength, opts.ErrorTolerance)

	stats := Stats{Reads: len(pairs), Nodes: len(nodes), Templates: templates.Len()}
	forest := NewDisjointSet(len(nodes))
	lshOpts := lsh.Opts{Parallelism: opts.Parallelism, MaxBucketSize: opts.MaxBucketSize}
	err = lsh.Stream(templates, barcode.NodePairs(nodes), lshOpts, func(t *lsh.Table) error {
		// Stream serializes calls, so the forest has a single writer.
		stats.Index = stats.Index.Merge(t.Stats())
		for _, members := range t.Buckets {
			stats.Unions += forest.UnionAll(members)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t1 := time.Now()

	p := newPartition(nodes, forest.Components(), stats)
	log.Printf("cluster: %d clusters (%d singletons, largest %d nodes / %d reads) in %v, fingerprint %016x",
		p.Stats.Clusters, p.Stats.Singletons, p.Stats.LargestCluster, p.Stats.LargestClusterReads,
		t1.Sub(t0), p.Fingerprint())
	return p, nil
}

// UnionIndex folds every bucket of a materialized index into a new forest.
// Find does the same thing table by table without holding the whole index.
func UnionIndex(idx *lsh.Index) *DisjointSet {
	forest := NewDisjointSet(idx.Nodes)
	for _, t := range idx.Tables {
		for _, members := range t.Buckets {
			forest.UnionAll(members)
		}
	}
	return forest
}

func newPartition(nodes []barcode.Node, comps [][]uint32, stats Stats) *Partition {
	p := &Partition{
		Nodes:    nodes,
		Clusters: make([]Cluster, len(comps)),
	}
	for i, comp := range comps {
		c := &p.Clusters[i]
		c.ID = i
		c.Nodes = make([]int, len(comp))
		for j, n := range comp {
			c.Nodes[j] = int(n)
			c.Reads = append(c.Reads, nodes[n].Reads...)
		}
		if len(comp) > 1 {
			sort.Ints(c.Reads)
		}
		if len(comp) == 1 {
			stats.Singletons++
		}
		if len(comp) > stats.LargestCluster {
			stats.LargestCluster = len(comp)
		}
		if len(c.Reads) > stats.LargestClusterReads {
			stats.LargestClusterReads = len(c.Reads)
		}
	}
	stats.Clusters = len(comps)
	p.Stats = stats
	return p
}
