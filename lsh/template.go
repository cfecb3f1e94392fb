// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lsh

import (
	"fmt"
	"math"

	"github.com/grailbio/base/errors"
)

// maxTemplates caps C(L, L-E). Every template costs one bucket table over
// all nodes, so anything beyond this is not a realistic workload.
const maxTemplates = 1 << 20

// Template is a sorted subset of barcode positions. ID is the index of the
// subset in the lexicographic enumeration of all subsets of its size, so it
// depends only on (L, E).
type Template struct {
	ID        int
	Positions []int
}

// Project appends the bases of s at t.Positions to dst and returns the
// extended slice.
func (t Template) Project(dst []byte, s string) []byte {
	for _, p := range t.Positions {
		dst = append(dst, s[p])
	}
	return dst
}

// ProjectString returns the projection of s as a new string.
func (t Template) ProjectString(s string) string {
	return string(t.Project(make([]byte, 0, len(t.Positions)), s))
}

// TemplateSet enumerates all templates for barcode length L and error
// tolerance E. It is immutable and safe for concurrent use.
type TemplateSet struct {
	length, tolerance int
	n                 int
}

// NewTemplateSet returns the template set for barcodes of the given length
// tolerating up to tolerance substitutions. It requires 0 <= tolerance <
// length.
func NewTemplateSet(length, tolerance int) (*TemplateSet, error) {
	if length <= 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("barcode length must be positive, got %d", length))
	}
	if tolerance < 0 || tolerance >= length {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("error tolerance must be in [0, %d), got %d", length, tolerance))
	}
	n, ok := binomial(length, length-tolerance)
	if !ok || n > maxTemplates {
		return nil, errors.E(errors.OOM,
			fmt.Sprintf("C(%d, %d) templates exceeds the limit of %d", length, length-tolerance, maxTemplates))
	}
	return &TemplateSet{length: length, tolerance: tolerance, n: n}, nil
}

// Len returns the number of templates, C(L, L-E).
func (ts *TemplateSet) Len() int { return ts.n }

// Length returns the barcode length L.
func (ts *TemplateSet) Length() int { return ts.length }

// Tolerance returns the error tolerance E.
func (ts *TemplateSet) Tolerance() int { return ts.tolerance }

// Iterator returns a new iterator positioned before the first template.
// Each call starts a fresh enumeration.
//
// Example:
//   it := ts.Iterator()
//   for it.Scan() {
//      t := it.Template()
//      .. use t ..
//   }
func (ts *TemplateSet) Iterator() *TemplateIterator {
	return &TemplateIterator{n: ts.length, k: ts.length - ts.tolerance, id: -1}
}

// All returns every template in ID order.
func (ts *TemplateSet) All() []Template {
	templates := make([]Template, 0, ts.n)
	for it := ts.Iterator(); it.Scan(); {
		templates = append(templates, it.Template())
	}
	return templates
}

// TemplateIterator walks the k-subsets of {0,...,n-1} in lexicographic
// order. It is not thread safe.
type TemplateIterator struct {
	n, k int
	comb []int
	id   int
	done bool
}

// Scan advances to the next template. It returns false once all templates
// have been produced.
func (it *TemplateIterator) Scan() bool {
	if it.done {
		return false
	}
	if it.comb == nil {
		it.comb = make([]int, it.k)
		for i := range it.comb {
			it.comb[i] = i
		}
		it.id = 0
		return true
	}
	// Find the rightmost position that can still be incremented.
	i := it.k - 1
	for i >= 0 && it.comb[i] == i+it.n-it.k {
		i--
	}
	if i < 0 {
		it.done = true
		return false
	}
	it.comb[i]++
	for j := i + 1; j < it.k; j++ {
		it.comb[j] = it.comb[j-1] + 1
	}
	it.id++
	return true
}

// Template returns the current template. The returned positions are a copy
// and may be retained.
//
// REQUIRES: the last call to Scan returned true.
func (it *TemplateIterator) Template() Template {
	positions := make([]int, len(it.comb))
	copy(positions, it.comb)
	return Template{ID: it.id, Positions: positions}
}

// binomial computes C(n, k), reporting false on overflow.
func binomial(n, k int) (int, bool) {
	if k > n-k {
		k = n - k
	}
	r := 1
	for i := 1; i <= k; i++ {
		// r*(n-k+i) is divisible by i at every step.
		m := n - k + i
		if r > math.MaxInt/m {
			return 0, false
		}
		r = r * m / i
	}
	return r, true
}
