// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package barcode

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Pair is the barcode pair carried by one read pair: B1 is taken from the
// start of R1 and B2 from the start of R2.
type Pair struct {
	B1, B2 string
}

// Flip returns the pair as it reads when the fragment was sequenced from the
// opposite strand: (revcomp(B2), revcomp(B1)).
func (p Pair) Flip() Pair {
	return Pair{B1: ReverseComplement(p.B2), B2: ReverseComplement(p.B1)}
}

// String implements fmt.Stringer.
func (p Pair) String() string {
	return p.B1 + "/" + p.B2
}

// Validate checks that both barcodes have the given length.
func (p Pair) Validate(length int) error {
	if len(p.B1) != length || len(p.B2) != length {
		return errors.E(errors.Invalid,
			fmt.Sprintf("barcode pair %v: lengths %d,%d, want %d", p, len(p.B1), len(p.B2), length))
	}
	return nil
}

// Hamming returns the number of positions at which s1 and s2 differ.
//
// It panics if s1 and s2 have different lengths.
func Hamming(s1, s2 string) int {
	if len(s1) != len(s2) {
		panic(fmt.Sprintf("s1 and s2 must have equal length: '%s', '%s'", s1, s2))
	}
	d := 0
	for i := 0; i < len(s1); i++ {
		if s1[i] != s2[i] {
			d++
		}
	}
	return d
}

// Mismatches returns the number of positions i at which p and o differ in
// either barcode, i.e. |{i : p.B1[i] != o.B1[i] or p.B2[i] != o.B2[i]}|.
// Two pairs share an LSH bucket for some template with tolerance E iff this
// value is at most E (in one of the two orientations).
func (p Pair) Mismatches(o Pair) int {
	if len(p.B1) != len(o.B1) || len(p.B2) != len(o.B2) || len(p.B1) != len(p.B2) {
		panic(fmt.Sprintf("pairs must have equal lengths: '%v', '%v'", p, o))
	}
	d := 0
	for i := 0; i < len(p.B1); i++ {
		if p.B1[i] != o.B1[i] || p.B2[i] != o.B2[i] {
			d++
		}
	}
	return d
}
