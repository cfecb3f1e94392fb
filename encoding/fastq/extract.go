package fastq

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bcluster/barcode"
	pkgerrors "github.com/pkg/errors"
)

// ExtractOpts controls barcode extraction.
type ExtractOpts struct {
	// BarcodeLength is the number of leading bases of each mate that form
	// its barcode.
	BarcodeLength int
	// KeepReads retains the name and full sequence of every pair.
	KeepReads bool
	// KeepQual also retains the quality strings. Requires KeepReads.
	KeepQual bool
}

// ReadPair is the retained portion of one R1/R2 record pair.
type ReadPair struct {
	Name         string
	Seq1, Seq2   string
	Qual1, Qual2 string
}

// Barcodes is the result of extraction. Pairs[i] and, if requested,
// Reads[i] describe the i'th record pair.
type Barcodes struct {
	Pairs []barcode.Pair
	Reads []ReadPair
}

// ExtractBarcodes scans R1 and R2 in lockstep and takes the first
// opts.BarcodeLength bases of each mate as the barcode pair. It fails with
// errors.Precondition if the files hold different numbers of records, and
// with errors.Invalid if a record is malformed or shorter than the barcode.
func ExtractBarcodes(r1, r2 io.Reader, opts ExtractOpts) (*Barcodes, error) {
	if opts.BarcodeLength <= 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("barcode length must be positive, got %d", opts.BarcodeLength))
	}
	if opts.KeepQual && !opts.KeepReads {
		return nil, errors.E(errors.Invalid, "KeepQual requires KeepReads")
	}
	fields := Seq
	if opts.KeepReads {
		fields |= ID
	}
	if opts.KeepQual {
		fields |= Qual
	}
	var (
		sc     = NewPairScanner(r1, r2, fields)
		out    = &Barcodes{}
		m1, m2 Read
		l      = opts.BarcodeLength
	)
	for sc.Scan(&m1, &m2) {
		i := sc.Pairs() - 1
		if len(m1.Seq) < l || len(m2.Seq) < l {
			return nil, errors.E(errors.Invalid, fmt.Sprintf(
				"read %d: mates of length %d and %d are shorter than the barcode length %d",
				i, len(m1.Seq), len(m2.Seq), l))
		}
		if opts.KeepReads {
			out.Pairs = append(out.Pairs, barcode.Pair{B1: m1.Seq[:l], B2: m2.Seq[:l]})
			rp := ReadPair{Name: m1.Name(), Seq1: m1.Seq, Seq2: m2.Seq}
			if opts.KeepQual {
				rp.Qual1, rp.Qual2 = m1.Qual, m2.Qual
			}
			out.Reads = append(out.Reads, rp)
		} else {
			// Don't pin the whole read line behind the barcode.
			out.Pairs = append(out.Pairs, barcode.Pair{
				B1: strings.Clone(m1.Seq[:l]),
				B2: strings.Clone(m2.Seq[:l]),
			})
		}
		if n := sc.Pairs(); n%(1024*1024) == 0 {
			log.Printf("fastq: %dMi read pairs", n/(1024*1024))
		}
	}
	if err := sc.Err(); err != nil {
		if pkgerrors.Cause(err) == ErrDiscordant {
			return nil, errors.E(errors.Precondition, err)
		}
		return nil, errors.E(errors.Invalid, err)
	}
	return out, nil
}

// ReadBarcodes opens the two FASTQ files, decompressing them if their
// names carry a known compression suffix, and calls ExtractBarcodes.
func ReadBarcodes(ctx context.Context, r1Path, r2Path string, opts ExtractOpts) (_ *Barcodes, err error) {
	in1, err := file.Open(ctx, r1Path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in1, &err)
	in2, err := file.Open(ctx, r2Path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in2, &err)

	var (
		inr1 io.Reader = in1.Reader(ctx)
		inr2 io.Reader = in2.Reader(ctx)
	)
	if u1, _ := compress.NewReaderPath(inr1, in1.Name()); u1 != nil {
		inr1 = u1
	}
	if u2, _ := compress.NewReaderPath(inr2, in2.Name()); u2 != nil {
		inr2 = u2
	}
	b, err := ExtractBarcodes(inr1, inr2, opts)
	if err != nil {
		return nil, errors.E(fmt.Sprintf("extract %s, %s", r1Path, r2Path), err)
	}
	log.Printf("fastq: read %d barcode pairs from %s, %s", len(b.Pairs), r1Path, r2Path)
	return b, nil
}
