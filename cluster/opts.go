package cluster

import (
	"fmt"
	"runtime"

	"github.com/grailbio/base/errors"
)

// Opts controls clustering.
type Opts struct {
	// BarcodeLength is L, the length of each barcode in a pair.
	BarcodeLength int
	// ErrorTolerance is E, the number of substitutions two barcode pairs may
	// differ by and still be placed in the same cluster. 0 <= E < L.
	ErrorTolerance int
	// Parallelism is the number of template tables built concurrently.
	Parallelism int
	// CollapseDuplicates collapses reads with identical barcode pairs into a
	// single graph node before indexing.
	CollapseDuplicates bool

	// MaxIndexEntries bounds 2 * nodes * templates, the number of bucket
	// memberships the index will hold. Larger inputs fail with errors.OOM
	// before any table is built.
	MaxIndexEntries int64
	// MaxBucketSize, if positive, fails the run with errors.OOM when any
	// bucket grows beyond it.
	MaxBucketSize int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	BarcodeLength:      10,
	ErrorTolerance:     2,
	Parallelism:        runtime.NumCPU(),
	CollapseDuplicates: true,
	MaxIndexEntries:    1 << 33,
	MaxBucketSize:      0,
}

func validate(opts *Opts) error {
	if opts.BarcodeLength <= 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("barcode length must be positive, got %d", opts.BarcodeLength))
	}
	if opts.ErrorTolerance < 0 || opts.ErrorTolerance >= opts.BarcodeLength {
		return errors.E(errors.Invalid, fmt.Sprintf("error tolerance must be in [0, %d), got %d",
			opts.BarcodeLength, opts.ErrorTolerance))
	}
	if opts.Parallelism < 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("parallelism must be positive, got %d", opts.Parallelism))
	}
	if opts.MaxIndexEntries <= 0 {
		return errors.E(errors.Invalid, "max index entries must be positive")
	}
	if opts.MaxBucketSize < 0 {
		return errors.E(errors.Invalid, "max bucket size must be non-negative")
	}
	return nil
}
