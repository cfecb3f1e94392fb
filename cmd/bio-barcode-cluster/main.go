package main

/*
  bio-barcode-cluster groups read pairs whose leading barcodes agree up to a
  number of substitutions, in either orientation of the pair. For more
  information, see github.com/grailbio/bcluster/cluster/doc.go
*/

import (
	"context"
	"flag"
	"runtime"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bcluster/barcode"
	"github.com/grailbio/bcluster/cluster"
	"github.com/grailbio/bcluster/encoding/fastq"
	"github.com/grailbio/bcluster/lsh"
	"github.com/grailbio/bcluster/report"
)

var (
	r1Path             = flag.String("r1", "", "Input R1 FASTQ filename; .gz, .bz2 and .zst inputs are decompressed")
	r2Path             = flag.String("r2", "", "Input R2 FASTQ filename")
	outputPrefix       = flag.String("output-prefix", "", "Prefix of the output files <prefix>cluster and <prefix>cluster.summary")
	barcodeLength      = flag.Int("barcode-length", cluster.DefaultOpts.BarcodeLength, "number of leading bases of each mate that form its barcode")
	errorTolerance     = flag.Int("error-tolerance", cluster.DefaultOpts.ErrorTolerance, "maximum number of substitutions between two barcode pairs in one cluster")
	parallelism        = flag.Int("parallelism", runtime.NumCPU(), "Number of template tables to build concurrently")
	collapseDuplicates = flag.Bool("collapse-duplicates", cluster.DefaultOpts.CollapseDuplicates, "collapse reads with identical barcode pairs into one node before indexing")
	keepReads          = flag.Bool("keep-reads", false, "write read names and sequences to <prefix>cluster")
	keepQual           = flag.Bool("keep-qual", false, "also write quality strings; implies -keep-reads")
	density            = flag.Bool("density", false, "add the edge density of each cluster to the summary; builds the whole index in memory")
	gzipOutput         = flag.Bool("gzip", false, "gzip the text outputs and add a .gz suffix")
	rioOutput          = flag.Bool("rio", false, "also write the partition to <prefix>cluster.rio")
	maxIndexEntries    = flag.Int64("max-index-entries", cluster.DefaultOpts.MaxIndexEntries, "fail if the index would hold more than this many bucket entries")
	maxBucketSize      = flag.Int("max-bucket-size", 0, "fail if any bucket grows beyond this many nodes; 0 means no limit")
)

type config struct {
	r1, r2      string
	cluster     cluster.Opts
	extract     fastq.ExtractOpts
	report      report.Opts
	withDensity bool
}

func run(ctx context.Context, cfg config) (*cluster.Partition, error) {
	b, err := fastq.ReadBarcodes(ctx, cfg.r1, cfg.r2, cfg.extract)
	if err != nil {
		return nil, err
	}
	p, err := cluster.Find(b.Pairs, cfg.cluster)
	if err != nil {
		return nil, err
	}
	var adj *cluster.Adjacency
	if cfg.withDensity {
		ts, err := lsh.NewTemplateSet(cfg.cluster.BarcodeLength, cfg.cluster.ErrorTolerance)
		if err != nil {
			return nil, err
		}
		idx, err := lsh.Build(ts, barcode.NodePairs(p.Nodes), lsh.Opts{
			Parallelism:   cfg.cluster.Parallelism,
			MaxBucketSize: cfg.cluster.MaxBucketSize,
		})
		if err != nil {
			return nil, err
		}
		adj = cluster.BuildAdjacency(idx)
		log.Printf("adjacency: %d edges over %d nodes", adj.Edges(), adj.Len())
	}
	if err := report.Write(ctx, p, b.Reads, adj, cfg.report); err != nil {
		return nil, err
	}
	return p, nil
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a[len(a)-flag.NArg():], " "))
	}
	if *r1Path == "" || *r2Path == "" {
		log.Fatalf("-r1 and -r2 are required")
	}
	cfg := config{
		r1: *r1Path,
		r2: *r2Path,
		cluster: cluster.Opts{
			BarcodeLength:      *barcodeLength,
			ErrorTolerance:     *errorTolerance,
			Parallelism:        *parallelism,
			CollapseDuplicates: *collapseDuplicates,
			MaxIndexEntries:    *maxIndexEntries,
			MaxBucketSize:      *maxBucketSize,
		},
		extract: fastq.ExtractOpts{
			BarcodeLength: *barcodeLength,
			KeepReads:     *keepReads || *keepQual,
			KeepQual:      *keepQual,
		},
		report: report.Opts{
			OutputPrefix: *outputPrefix,
			Gzip:         *gzipOutput,
			Rio:          *rioOutput,
		},
		withDensity: *density,
	}
	log.Printf("bio-barcode-cluster: r1=%s r2=%s L=%d E=%d parallelism=%d collapse=%v",
		cfg.r1, cfg.r2, *barcodeLength, *errorTolerance, *parallelism, *collapseDuplicates)

	ctx := vcontext.Background()
	if _, err := run(ctx, cfg); err != nil {
		log.Fatalf(err.Error())
	}
	log.Debug.Printf("exiting")
}
