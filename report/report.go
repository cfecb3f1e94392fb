// Package report writes the results of barcode clustering.
//
// Write produces up to three files under a common prefix:
//
//   <prefix>cluster          one line per read: cluster, node, read index and,
//                            when reads were retained, the read itself.
//   <prefix>cluster.summary  one line per cluster.
//   <prefix>cluster.rio      the partition as a recordio file, readable with
//                            ReadRio.
//
// The two text files are gzip-compressed, with a ".gz" suffix, if
// Opts.Gzip is set.
package report

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/bcluster/cluster"
	"github.com/grailbio/bcluster/encoding/fastq"
	"github.com/klauspost/compress/gzip"
)

// Opts controls output.
type Opts struct {
	// OutputPrefix is prepended to every output file name.
	OutputPrefix string
	// Gzip compresses the text outputs.
	Gzip bool
	// Rio also writes the partition in recordio format.
	Rio bool
}

// Paths returns the output paths Write creates for opts.
func (o Opts) Paths() (reads, summary, rio string) {
	reads = o.OutputPrefix + "cluster"
	summary = o.OutputPrefix + "cluster.summary"
	if o.Gzip {
		reads += ".gz"
		summary += ".gz"
	}
	if o.Rio {
		rio = o.OutputPrefix + "cluster.rio"
	}
	return
}

// Write writes the outputs for p. reads, if non-nil, holds the retained
// read of every input index. adj, if non-nil, adds a density column to the
// summary; it must be built over p.Nodes.
func Write(ctx context.Context, p *cluster.Partition, reads []fastq.ReadPair, adj *cluster.Adjacency, opts Opts) error {
	if p.Stats.Reads > math.MaxUint32 {
		return errors.E(errors.OOM, fmt.Sprintf("%d reads exceed the output id space", p.Stats.Reads))
	}
	if reads != nil && len(reads) != p.Stats.Reads {
		return errors.E(errors.Invalid, fmt.Sprintf("have %d retained reads for %d reads", len(reads), p.Stats.Reads))
	}
	if adj != nil && adj.Len() != len(p.Nodes) {
		return errors.E(errors.Invalid, fmt.Sprintf("adjacency over %d nodes for %d nodes", adj.Len(), len(p.Nodes)))
	}
	readsPath, summaryPath, rioPath := opts.Paths()
	if err := writeText(ctx, readsPath, opts.Gzip, func(w io.Writer) error {
		return WriteReads(w, p, reads)
	}); err != nil {
		return err
	}
	if err := writeText(ctx, summaryPath, opts.Gzip, func(w io.Writer) error {
		return WriteSummary(w, p, adj)
	}); err != nil {
		return err
	}
	if rioPath != "" {
		if err := WriteRio(ctx, rioPath, p); err != nil {
			return err
		}
	}
	log.Printf("report: wrote %d clusters of %d reads to %s, %s", len(p.Clusters), p.Stats.Reads, readsPath, summaryPath)
	return nil
}

func writeText(ctx context.Context, path string, compress bool, fn func(w io.Writer) error) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	if !compress {
		return fn(out.Writer(ctx))
	}
	gz := gzip.NewWriter(out.Writer(ctx))
	defer func() {
		if e := gz.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return fn(gz)
}

// WriteReads writes one line per read, ordered by cluster and then by read
// index. The columns are cluster id, node id and read index, followed by the
// read name and sequences, and qualities if present, when reads is
// non-nil.
func WriteReads(w io.Writer, p *cluster.Partition, reads []fastq.ReadPair) error {
	node := make([]uint32, p.Stats.Reads)
	for i, n := range p.Nodes {
		for _, r := range n.Reads {
			node[r] = uint32(i)
		}
	}
	withQual := len(reads) > 0 && reads[0].Qual1 != ""

	tw := tsv.NewWriter(w)
	tw.WriteString("#cluster\tnode\tread")
	if reads != nil {
		tw.WriteString("name\tseq1\tseq2")
		if withQual {
			tw.WriteString("qual1\tqual2")
		}
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, c := range p.Clusters {
		for _, r := range c.Reads {
			tw.WriteUint32(uint32(c.ID))
			tw.WriteUint32(node[r])
			tw.WriteUint32(uint32(r))
			if reads != nil {
				rp := &reads[r]
				tw.WriteString(rp.Name)
				tw.WriteString(rp.Seq1)
				tw.WriteString(rp.Seq2)
				if withQual {
					tw.WriteString(rp.Qual1)
					tw.WriteString(rp.Qual2)
				}
			}
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}
