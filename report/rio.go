package report

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
	"github.com/grailbio/bcluster/cluster"
)

const (
	rioVersionHeader     = "bcluster_version"
	rioVersion           = "1"
	rioReadsHeader       = "reads"
	rioFingerprintHeader = "fingerprint"
	rioTrailerVersion    = 1
)

func init() {
	recordiozstd.Init()
}

// RioPartition is the content of a file written by WriteRio.
type RioPartition struct {
	// Reads is the number of input reads.
	Reads int
	// Fingerprint is Partition.Fingerprint of the written partition.
	Fingerprint uint64
	// Clusters in ID order.
	Clusters []cluster.Cluster
}

// WriteRio writes the clusters of p to path, one record per cluster.
func WriteRio(ctx context.Context, path string, p *cluster.Partition) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := recordio.NewWriter(out.Writer(ctx), recordio.WriterOpts{
		Marshal:      marshalCluster,
		Transformers: []string{recordiozstd.Name},
	})
	w.AddHeader(rioVersionHeader, rioVersion)
	w.AddHeader(rioReadsHeader, strconv.Itoa(p.Stats.Reads))
	w.AddHeader(rioFingerprintHeader, strconv.FormatUint(p.Fingerprint(), 16))
	w.AddHeader(recordio.KeyTrailer, true)
	for i := range p.Clusters {
		w.Append(&p.Clusters[i])
	}
	w.SetTrailer(rioTrailer(len(p.Clusters)))
	return w.Finish()
}

// ReadRio reads a file written by WriteRio.
func ReadRio(ctx context.Context, path string) (_ *RioPartition, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	return readRio(in.Reader(ctx))
}

func readRio(rs io.ReadSeeker) (*RioPartition, error) {
	scanner := recordio.NewScanner(rs, recordio.ScannerOpts{Unmarshal: unmarshalCluster})
	defer scanner.Finish() // nolint: errcheck
	out := &RioPartition{}
	var version string
	for _, kv := range scanner.Header() {
		var err error
		switch kv.Key {
		case rioVersionHeader:
			version, _ = kv.Value.(string)
		case rioReadsHeader:
			out.Reads, err = strconv.Atoi(kv.Value.(string))
		case rioFingerprintHeader:
			out.Fingerprint, err = strconv.ParseUint(kv.Value.(string), 16, 64)
		}
		if err != nil {
			return nil, errors.E(errors.Invalid, "header "+kv.Key, err)
		}
	}
	if version != rioVersion {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, errors.E(errors.Invalid, fmt.Sprintf("unsupported version %q, want %q", version, rioVersion))
	}
	n, err := parseRioTrailer(scanner.Trailer())
	if err != nil {
		return nil, err
	}
	out.Clusters = make([]cluster.Cluster, 0, n)
	for scanner.Scan() {
		out.Clusters = append(out.Clusters, *scanner.Get().(*cluster.Cluster))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func rioTrailer(nClusters int) []byte {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, int64(rioTrailerVersion)); err != nil {
		panic(err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, int64(nClusters)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func parseRioTrailer(trailer []byte) (int64, error) {
	r := bytes.NewReader(trailer)
	var version, n int64
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, errors.E(errors.Invalid, "trailer", err)
	}
	if version != rioTrailerVersion {
		return 0, errors.E(errors.Invalid, fmt.Sprintf("unrecognized trailer version: got %d, want %d", version, rioTrailerVersion))
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, errors.E(errors.Invalid, "trailer", err)
	}
	return n, nil
}

// A cluster record is the uvarint ID followed by the node and read lists,
// each as a uvarint count and uvarint deltas of the ascending ids.
func marshalCluster(scratch []byte, v interface{}) ([]byte, error) {
	c := v.(*cluster.Cluster)
	buf := scratch[:0]
	buf = binary.AppendUvarint(buf, uint64(c.ID))
	buf = appendIDs(buf, c.Nodes)
	buf = appendIDs(buf, c.Reads)
	return buf, nil
}

func appendIDs(buf []byte, ids []int) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(ids)))
	prev := 0
	for _, id := range ids {
		buf = binary.AppendUvarint(buf, uint64(id-prev))
		prev = id
	}
	return buf
}

func unmarshalCluster(in []byte) (interface{}, error) {
	c := &cluster.Cluster{}
	id, n := binary.Uvarint(in)
	if n <= 0 {
		return nil, errors.E(errors.Invalid, "corrupt cluster record")
	}
	c.ID = int(id)
	in = in[n:]
	var err error
	if c.Nodes, in, err = readIDs(in); err != nil {
		return nil, err
	}
	if c.Reads, in, err = readIDs(in); err != nil {
		return nil, err
	}
	if len(in) != 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("cluster %d: %d trailing bytes", c.ID, len(in)))
	}
	return c, nil
}

func readIDs(in []byte) ([]int, []byte, error) {
	count, n := binary.Uvarint(in)
	if n <= 0 || count > uint64(len(in)) {
		return nil, nil, errors.E(errors.Invalid, "corrupt cluster record")
	}
	in = in[n:]
	ids := make([]int, count)
	prev := 0
	for i := range ids {
		delta, n := binary.Uvarint(in)
		if n <= 0 {
			return nil, nil, errors.E(errors.Invalid, "corrupt cluster record")
		}
		in = in[n:]
		prev += int(delta)
		ids[i] = prev
	}
	return ids, in, nil
}
