// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package lsh implements template-based locality-sensitive hashing of
// barcode pairs.
//
// A template is a subset of L-E of the L barcode positions. Projecting a
// barcode through a template keeps only those positions. If two barcode
// pairs differ in at most E positions (counting a position once if either
// barcode of the pair differs there), the template that drops exactly those
// positions projects both pairs to the same strings, so the two pairs meet
// in at least one bucket. Enumerating all C(L, L-E) templates therefore
// guarantees that every pair of barcode pairs within the error budget
// shares a bucket.
//
// Each node is inserted twice per template: once with its forward pair
// (B1, B2) and once with the flipped pair (revcomp(B2), revcomp(B1)), so
// that fragments read from opposite strands also collide.
//
// Every template owns its own Table. Tables are built in parallel, one
// template per task, with no shared mutable state.
package lsh
