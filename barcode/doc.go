// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package barcode provides the string-level primitives shared by the
// barcode clustering packages: reverse complementation, barcode pairs, and
// collapsing of identical pairs into weighted nodes.
//
// A barcode is a fixed-length string over {A,C,G,T}. Other characters
// (typically N) are tolerated everywhere; they are copied unchanged by
// ReverseComplement and compare like any other byte.
package barcode
