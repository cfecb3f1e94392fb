// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lsh

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/bcluster/barcode"
)

// Key identifies one bucket. The template id and both projections are
// separate fields, so keys never collide through an ambiguous
// concatenation.
type Key struct {
	Template int
	P1, P2   string
}

// Table is the bucket table of a single template. Bucket members are node
// ids in ascending order, without duplicates.
type Table struct {
	Template Template
	Buckets  map[Key][]uint32
}

// TableStats summarizes one table.
type TableStats struct {
	// Buckets is the number of distinct keys.
	Buckets int
	// Shared is the number of buckets with two or more members. Only these
	// contribute edges.
	Shared int
	// Largest is the size of the largest bucket.
	Largest int
	// Entries is the total number of bucket memberships.
	Entries int
}

// Merge adds the counters of o to s. Largest takes the maximum.
func (s TableStats) Merge(o TableStats) TableStats {
	s.Buckets += o.Buckets
	s.Shared += o.Shared
	s.Entries += o.Entries
	if o.Largest > s.Largest {
		s.Largest = o.Largest
	}
	return s
}

// Stats computes the table statistics.
func (t *Table) Stats() TableStats {
	s := TableStats{Buckets: len(t.Buckets)}
	for _, members := range t.Buckets {
		s.Entries += len(members)
		if len(members) > 1 {
			s.Shared++
		}
		if len(members) > s.Largest {
			s.Largest = len(members)
		}
	}
	return s
}

// EachShared calls fn for every bucket with at least two members. Buckets
// are visited in key order so that callers observe a deterministic
// sequence.
func (t *Table) EachShared(fn func(key Key, members []uint32)) {
	keys := make([]Key, 0, len(t.Buckets))
	for key, members := range t.Buckets {
		if len(members) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].P1 != keys[j].P1 {
			return keys[i].P1 < keys[j].P1
		}
		return keys[i].P2 < keys[j].P2
	})
	for _, key := range keys {
		fn(key, t.Buckets[key])
	}
}

// Opts controls index construction.
type Opts struct {
	// Parallelism is the number of tables built concurrently.
	Parallelism int
	// MaxBucketSize, if positive, is the largest bucket a table may hold.
	// Exceeding it fails the build with an errors.OOM error.
	MaxBucketSize int
}

// NewTable builds the table for template t. forward[i] and flipped[i] are
// the two orientations of node i.
func NewTable(t Template, forward, flipped []barcode.Pair, maxBucketSize int) (*Table, error) {
	if len(forward) != len(flipped) {
		panic(fmt.Sprintf("forward/flipped length mismatch: %d, %d", len(forward), len(flipped)))
	}
	buckets := make(map[Key][]uint32)
	buf := make([]byte, 0, 2*len(t.Positions))
	insert := func(p barcode.Pair, id uint32) error {
		buf = t.Project(buf[:0], p.B1)
		n1 := len(buf)
		buf = t.Project(buf, p.B2)
		// One allocation per key; both fields share the backing string.
		s := string(buf)
		key := Key{Template: t.ID, P1: s[:n1], P2: s[n1:]}
		members := buckets[key]
		// Nodes are inserted in ascending order, so a repeat insertion of the
		// same node (a pair that equals its own flip) is always at the end.
		if n := len(members); n > 0 && members[n-1] == id {
			return nil
		}
		if maxBucketSize > 0 && len(members) >= maxBucketSize {
			return errors.E(errors.OOM,
				fmt.Sprintf("template %d: bucket %s/%s exceeds %d members", t.ID, key.P1, key.P2, maxBucketSize))
		}
		buckets[key] = append(members, id)
		return nil
	}
	for i := range forward {
		id := uint32(i)
		if err := insert(forward[i], id); err != nil {
			return nil, err
		}
		if err := insert(flipped[i], id); err != nil {
			return nil, err
		}
	}
	return &Table{Template: t, Buckets: buckets}, nil
}

// Stream builds the table of every template in ts over the given node
// pairs and passes each finished table to sink. Tables are built by up to
// opts.Parallelism workers; calls to sink are serialized, so sink may
// mutate state it owns without further locking. The first error from a
// table build or from sink is returned.
func Stream(ts *TemplateSet, pairs []barcode.Pair, opts Opts, sink func(*Table) error) error {
	if err := checkPairs(ts, pairs); err != nil {
		return err
	}
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	flipped := make([]barcode.Pair, len(pairs))
	for i, p := range pairs {
		flipped[i] = p.Flip()
	}
	templates := ts.All()
	log.Debug.Printf("lsh: building %d tables over %d nodes, parallelism %d",
		len(templates), len(pairs), parallelism)

	var mu sync.Mutex
	return traverse.Limit(parallelism).Each(len(templates), func(i int) error {
		table, err := NewTable(templates[i], pairs, flipped, opts.MaxBucketSize)
		if err != nil {
			return err
		}
		log.Debug.Printf("lsh: template %d %v: %d buckets", table.Template.ID, table.Template.Positions, len(table.Buckets))
		mu.Lock()
		defer mu.Unlock()
		return sink(table)
	})
}

func checkPairs(ts *TemplateSet, pairs []barcode.Pair) error {
	if len(pairs) == 0 {
		return errors.E(errors.Invalid, "no barcode pairs to index")
	}
	if uint64(len(pairs)) > math.MaxUint32 {
		return errors.E(errors.OOM, fmt.Sprintf("%d nodes exceeds the node id space", len(pairs)))
	}
	for i, p := range pairs {
		if err := p.Validate(ts.Length()); err != nil {
			return errors.E(errors.Invalid, fmt.Sprintf("node %d", i), err)
		}
	}
	return nil
}

// Index holds the tables of every template, indexed by template id.
type Index struct {
	Templates *TemplateSet
	Tables    []*Table
	Nodes     int
}

// Build materializes all tables at once. Prefer Stream when the tables are
// only consumed once, since it keeps at most opts.Parallelism tables alive.
func Build(ts *TemplateSet, pairs []barcode.Pair, opts Opts) (*Index, error) {
	idx := &Index{
		Templates: ts,
		Tables:    make([]*Table, ts.Len()),
		Nodes:     len(pairs),
	}
	err := Stream(ts, pairs, opts, func(t *Table) error {
		idx.Tables[t.Template.ID] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Stats merges the statistics of every table.
func (idx *Index) Stats() TableStats {
	var s TableStats
	for _, t := range idx.Tables {
		s = s.Merge(t.Stats())
	}
	return s
}
