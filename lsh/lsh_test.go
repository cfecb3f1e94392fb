// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lsh

import (
	"math/rand"
	"os"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/bcluster/barcode"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateCount(t *testing.T) {
	tests := []struct {
		length, tolerance, want int
	}{
		{10, 2, 45},
		{10, 0, 1},
		{5, 0, 1},
		{4, 3, 4},
		{6, 3, 20},
		{16, 4, 1820},
	}
	for _, test := range tests {
		ts, err := NewTemplateSet(test.length, test.tolerance)
		require.NoError(t, err)
		expect.EQ(t, ts.Len(), test.want, "L=%d E=%d", test.length, test.tolerance)
		expect.EQ(t, len(ts.All()), test.want, "L=%d E=%d", test.length, test.tolerance)
	}
}

func TestTemplateOrder(t *testing.T) {
	ts, err := NewTemplateSet(4, 2)
	require.NoError(t, err)
	want := [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	templates := ts.All()
	require.Len(t, templates, len(want))
	for i, tmpl := range templates {
		assert.Equal(t, i, tmpl.ID)
		assert.Equal(t, want[i], tmpl.Positions)
	}
}

func TestTemplateIteratorRestart(t *testing.T) {
	ts, err := NewTemplateSet(8, 3)
	require.NoError(t, err)
	first := ts.All()

	it := ts.Iterator()
	for i := 0; i < 5; i++ {
		require.True(t, it.Scan())
	}
	// A partially consumed iterator doesn't affect a new one.
	assert.Equal(t, first, ts.All())

	other, err := NewTemplateSet(8, 3)
	require.NoError(t, err)
	assert.Equal(t, first, other.All())

	for it.Scan() {
	}
	assert.False(t, it.Scan())
}

func TestNewTemplateSetErrors(t *testing.T) {
	for _, test := range []struct{ length, tolerance int }{
		{0, 0}, {-1, 0}, {5, 5}, {5, 6}, {5, -1},
	} {
		_, err := NewTemplateSet(test.length, test.tolerance)
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Invalid, err), "L=%d E=%d: %v", test.length, test.tolerance, err)
	}
	_, err := NewTemplateSet(60, 30)
	require.Error(t, err)
	assert.True(t, errors.Is(errors.OOM, err), "%v", err)
}

func TestProject(t *testing.T) {
	tmpl := Template{ID: 3, Positions: []int{0, 2, 3}}
	expect.EQ(t, tmpl.ProjectString("ACGTA"), "AGT")
	expect.EQ(t, string(tmpl.Project([]byte("x"), "TTCC")), "xTCC")
}

func TestBinomial(t *testing.T) {
	n, ok := binomial(10, 8)
	expect.True(t, ok)
	expect.EQ(t, n, 45)
	n, ok = binomial(52, 5)
	expect.True(t, ok)
	expect.EQ(t, n, 2598960)
	_, ok = binomial(100, 50)
	expect.False(t, ok)
}

func mutate(r *rand.Rand, s string, positions []int) string {
	b := []byte(s)
	for _, p := range positions {
		orig := b[p]
		for b[p] == orig {
			b[p] = "ACGT"[r.Intn(4)]
		}
	}
	return string(b)
}

func randomBarcode(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[r.Intn(4)]
	}
	return string(b)
}

// Every pair of barcode pairs within the tolerance shares a key under some
// template.
func TestPigeonhole(t *testing.T) {
	const length, tolerance = 10, 2
	ts, err := NewTemplateSet(length, tolerance)
	require.NoError(t, err)
	templates := ts.All()
	r := rand.New(rand.NewSource(0))
	for iter := 0; iter < 200; iter++ {
		a := barcode.Pair{B1: randomBarcode(r, length), B2: randomBarcode(r, length)}
		positions := r.Perm(length)[:r.Intn(tolerance+1)]
		b := barcode.Pair{B1: mutate(r, a.B1, positions), B2: a.B2}
		if r.Intn(2) == 0 {
			b = barcode.Pair{B1: a.B1, B2: mutate(r, a.B2, positions)}
		}
		require.True(t, a.Mismatches(b) <= tolerance)
		found := false
		for _, tmpl := range templates {
			if tmpl.ProjectString(a.B1) == tmpl.ProjectString(b.B1) &&
				tmpl.ProjectString(a.B2) == tmpl.ProjectString(b.B2) {
				found = true
				break
			}
		}
		assert.True(t, found, "%v %v", a, b)
	}
}

func TestNewTable(t *testing.T) {
	tmpl := Template{ID: 7, Positions: []int{0, 1, 2}}
	forward := []barcode.Pair{
		{B1: "AAAT", B2: "CCCG"},
		{B1: "AAAC", B2: "CCCA"}, // same projections as node 0
		{B1: "ACGT", B2: "ACGT"}, // equals its own flip
		{B1: "CGGG", B2: "ATTT"}, // the flip of node 0
	}
	flipped := make([]barcode.Pair, len(forward))
	for i, p := range forward {
		flipped[i] = p.Flip()
	}
	table, err := NewTable(tmpl, forward, flipped, 0)
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 1, 3}, table.Buckets[Key{Template: 7, P1: "AAA", P2: "CCC"}])
	assert.Equal(t, []uint32{0, 3}, table.Buckets[Key{Template: 7, P1: "CGG", P2: "ATT"}])
	assert.Equal(t, []uint32{1}, table.Buckets[Key{Template: 7, P1: "TGG", P2: "GTT"}])
	assert.Equal(t, []uint32{2}, table.Buckets[Key{Template: 7, P1: "ACG", P2: "ACG"}])

	var shared [][]uint32
	table.EachShared(func(key Key, members []uint32) {
		assert.Equal(t, 7, key.Template)
		shared = append(shared, members)
	})
	assert.Len(t, shared, 2)

	stats := table.Stats()
	expect.EQ(t, stats.Buckets, 4)
	expect.EQ(t, stats.Shared, 2)
	expect.EQ(t, stats.Largest, 3)
	// Node 2 is inserted once; the others twice.
	expect.EQ(t, stats.Entries, 7)
}

func TestKeyFieldsAreDistinct(t *testing.T) {
	a := Key{Template: 1, P1: "AC", P2: "G"}
	b := Key{Template: 1, P1: "A", P2: "CG"}
	c := Key{Template: 11, P1: "A", P2: "CG"}
	m := map[Key]int{a: 1, b: 2, c: 3}
	assert.Len(t, m, 3)
}

func TestMaxBucketSize(t *testing.T) {
	ts, err := NewTemplateSet(4, 1)
	require.NoError(t, err)
	pairs := make([]barcode.Pair, 10)
	for i := range pairs {
		pairs[i] = barcode.Pair{B1: "AAAA", B2: "CCCC"}
	}
	_, err = Build(ts, pairs, Opts{Parallelism: 2, MaxBucketSize: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.OOM, err), "%v", err)

	idx, err := Build(ts, pairs, Opts{Parallelism: 2, MaxBucketSize: 10})
	require.NoError(t, err)
	expect.EQ(t, idx.Stats().Largest, 10)
}

func TestBuild(t *testing.T) {
	ts, err := NewTemplateSet(6, 2)
	require.NoError(t, err)
	r := rand.New(rand.NewSource(2))
	pairs := make([]barcode.Pair, 300)
	for i := range pairs {
		pairs[i] = barcode.Pair{B1: randomBarcode(r, 6), B2: randomBarcode(r, 6)}
	}
	idx1, err := Build(ts, pairs, Opts{Parallelism: 4})
	require.NoError(t, err)
	idx2, err := Build(ts, pairs, Opts{Parallelism: 1})
	require.NoError(t, err)

	require.Len(t, idx1.Tables, ts.Len())
	expect.EQ(t, idx1.Nodes, len(pairs))
	for i := range idx1.Tables {
		assert.Equal(t, i, idx1.Tables[i].Template.ID)
		assert.Equal(t, idx1.Tables[i].Buckets, idx2.Tables[i].Buckets)
		for key, members := range idx1.Tables[i].Buckets {
			assert.Equal(t, i, key.Template)
			for j := 1; j < len(members); j++ {
				assert.True(t, members[j-1] < members[j])
			}
		}
	}
	expect.EQ(t, idx1.Stats(), idx2.Stats())
}

func TestStreamSerializesSink(t *testing.T) {
	ts, err := NewTemplateSet(8, 2)
	require.NoError(t, err)
	pairs := []barcode.Pair{{B1: "ACGTACGT", B2: "TTTTAAAA"}, {B1: "ACGTACGA", B2: "TTTTAAAA"}}
	seen := map[int]bool{}
	calls := 0
	err = Stream(ts, pairs, Opts{Parallelism: 8}, func(table *Table) error {
		calls++
		seen[table.Template.ID] = true
		return nil
	})
	require.NoError(t, err)
	expect.EQ(t, calls, ts.Len())
	expect.EQ(t, len(seen), ts.Len())
}

func TestStreamErrors(t *testing.T) {
	ts, err := NewTemplateSet(4, 1)
	require.NoError(t, err)
	noop := func(*Table) error { return nil }

	err = Stream(ts, nil, Opts{Parallelism: 1}, noop)
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Invalid, err))

	err = Stream(ts, []barcode.Pair{{B1: "ACGT", B2: "ACG"}}, Opts{Parallelism: 1}, noop)
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Invalid, err))

	sinkErr := errors.E(errors.Precondition, "sink failed")
	err = Stream(ts, []barcode.Pair{{B1: "ACGT", B2: "ACGT"}}, Opts{Parallelism: 2}, func(*Table) error { return sinkErr })
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Precondition, err))
}

func TestMain(m *testing.M) {
	shutdown := grail.Init()
	defer shutdown()
	os.Exit(m.Run())
}
