package report

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/bcluster/cluster"
)

// SummaryRow is one line of the cluster summary.
type SummaryRow struct {
	Cluster int64 `tsv:"#cluster"`
	Nodes   int64 `tsv:"nodes"`
	Reads   int64 `tsv:"reads"`
	// Representative is the barcode pair, as "B1/B2", of the cluster's node
	// with the most reads. Ties go to the lowest node id.
	Representative string `tsv:"representative"`
	// Density is the fraction of node pairs in the cluster that share a
	// bucket, or "." when not computed.
	Density string `tsv:"density"`
}

// Summarize computes the summary rows of p. adj may be nil.
func Summarize(p *cluster.Partition, adj *cluster.Adjacency) []SummaryRow {
	rows := make([]SummaryRow, len(p.Clusters))
	members := []uint32{}
	for i := range p.Clusters {
		c := &p.Clusters[i]
		rep := c.Nodes[0]
		for _, n := range c.Nodes[1:] {
			if p.Nodes[n].Weight() > p.Nodes[rep].Weight() {
				rep = n
			}
		}
		row := SummaryRow{
			Cluster:        int64(c.ID),
			Nodes:          int64(c.Size()),
			Reads:          int64(c.ReadCount()),
			Representative: p.Nodes[rep].Pair.String(),
			Density:        ".",
		}
		if adj != nil {
			members = members[:0]
			for _, n := range c.Nodes {
				members = append(members, uint32(n))
			}
			row.Density = strconv.FormatFloat(adj.Density(members), 'f', 4, 64)
		}
		rows[i] = row
	}
	return rows
}

// WriteSummary writes Summarize(p, adj) as a TSV with a header line.
func WriteSummary(w io.Writer, p *cluster.Partition, adj *cluster.Adjacency) error {
	tw := tsv.NewRowWriter(w)
	for _, row := range Summarize(p, adj) {
		if err := tw.Write(&row); err != nil {
			return err
		}
	}
	return tw.Flush()
}
