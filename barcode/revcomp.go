// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package barcode

import (
	gunsafe "github.com/grailbio/base/unsafe"
)

// revCompTable maps A<->T and C<->G. Every other byte maps to itself, so
// ambiguous bases survive a reverse complement unchanged.
var revCompTable [256]byte

func init() {
	for i := range revCompTable {
		revCompTable[i] = byte(i)
	}
	revCompTable['A'] = 'T'
	revCompTable['T'] = 'A'
	revCompTable['C'] = 'G'
	revCompTable['G'] = 'C'
}

// ReverseComp8 writes the reverse-complement of src[] to dst[].
//
// It panics if len(dst) != len(src).
func ReverseComp8(dst, src []byte) {
	nByte := len(src)
	if len(dst) != nByte {
		panic("ReverseComp8 requires len(dst) == len(src).")
	}
	for idx, invIdx := 0, nByte-1; idx < nByte; idx, invIdx = idx+1, invIdx-1 {
		dst[idx] = revCompTable[src[invIdx]]
	}
}

// ReverseComp8Inplace reverse-complements ascii8[] in place.
func ReverseComp8Inplace(ascii8 []byte) {
	nByte := len(ascii8)
	nByteDiv2 := nByte >> 1
	for idx, invIdx := 0, nByte-1; idx != nByteDiv2; idx, invIdx = idx+1, invIdx-1 {
		ascii8[idx], ascii8[invIdx] = revCompTable[ascii8[invIdx]], revCompTable[ascii8[idx]]
	}
	if nByte&1 == 1 {
		ascii8[nByteDiv2] = revCompTable[ascii8[nByteDiv2]]
	}
}

// ReverseComplement returns the reverse complement of seq. For any seq over
// {A,C,G,T}, ReverseComplement(ReverseComplement(seq)) == seq.
func ReverseComplement(seq string) string {
	buf := make([]byte, len(seq))
	ReverseComp8(buf, gunsafe.StringToBytes(seq))
	return gunsafe.BytesToString(buf)
}
