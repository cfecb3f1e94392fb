package fastq

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
	// ErrDiscordant is returned when two underlying FASTQ files are discordant.
	ErrDiscordant = errors.New("discordant FASTQ pairs")
)

// A Read is a FASTQ record. The "+" separator line is validated but not
// kept.
type Read struct {
	ID, Seq, Qual string
}

// Name returns the read ID without the leading "@" and without the
// comment that follows the first space or tab.
func (r *Read) Name() string {
	id := r.ID
	if len(id) > 0 && id[0] == '@' {
		id = id[1:]
	}
	for i := 0; i < len(id); i++ {
		if id[i] == ' ' || id[i] == '\t' {
			return id[:i]
		}
	}
	return id
}

var errEOF = errors.New("eof")

// Scanner reads FASTQ records one at a time. Scanners are not threadsafe.
//
// Scanner requires ID lines to begin with "@" and the third line to begin
// with "+". Errors are wrapped with the offending line number; use
// errors.Cause to compare against ErrShort and ErrInvalid.
type Scanner struct {
	b      *bufio.Scanner
	err    error
	fields Field
	line   int
}

// Field enumerates FASTQ fields. It is used to specify fields to read in
// NewScanner.
type Field uint

const (
	// ID causes the Read.ID field to be filled
	ID Field = 1 << iota
	// Seq causes the Read.Seq field to be filled
	Seq
	// Qual causes the Read.Qual field to be filled
	Qual
	// All equals ID|Seq|Qual.
	All = ID | Seq | Qual
)

// NewScanner constructs a new Scanner that reads raw FASTQ data from the
// provided reader. Fields is a bitset of the fields to read.
func NewScanner(r io.Reader, fields Field) *Scanner {
	return &Scanner{b: bufio.NewScanner(r), fields: fields}
}

// Scan the next read into the provided read. Once Scan returns false, it
// never returns true again; check Err to tell an error from the end of the
// stream.
func (f *Scanner) Scan(read *Read) bool {
	if f.err != nil {
		return false
	}
	if !f.b.Scan() {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errEOF
		}
		return false
	}
	f.line++
	id := f.b.Bytes()
	if len(id) == 0 || id[0] != '@' {
		f.err = errors.Wrapf(ErrInvalid, "line %d: ID line must start with '@'", f.line)
		return false
	}
	if f.fields&ID != 0 {
		read.ID = string(id)
	}
	if !f.scan() {
		return false
	}
	if f.fields&Seq != 0 {
		read.Seq = f.b.Text()
	}
	if !f.scan() {
		return false
	}
	if sep := f.b.Bytes(); len(sep) == 0 || sep[0] != '+' {
		f.err = errors.Wrapf(ErrInvalid, "line %d: separator line must start with '+'", f.line)
		return false
	}
	if !f.scan() {
		return false
	}
	if f.fields&Qual != 0 {
		read.Qual = f.b.Text()
	}
	return true
}

func (f *Scanner) scan() bool {
	ok := f.b.Scan()
	if !ok {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errors.Wrapf(ErrShort, "line %d: truncated record", f.line)
		}
		return false
	}
	f.line++
	return true
}

// Err returns the scanning error, if any.
func (f *Scanner) Err() error {
	if f.err == errEOF {
		return nil
	}
	return f.err
}

// PairScanner composes a pair of scanners to scan a pair of FASTQ
// streams.
type PairScanner struct {
	r1, r2 *Scanner
	n      int
	err    error
}

// NewPairScanner creates a new FASTQ pair scanner from the provided
// R1 and R2 readers.
func NewPairScanner(r1, r2 io.Reader, fields Field) *PairScanner {
	return &PairScanner{
		r1: NewScanner(r1, fields),
		r2: NewScanner(r2, fields),
	}
}

// Scan scans the next read pair into r1, r2. Once Scan returns false, it
// never returns true again. If one stream ends before the other, Err
// returns an error whose cause is ErrDiscordant.
func (p *PairScanner) Scan(r1, r2 *Read) bool {
	ok1 := p.r1.Scan(r1)
	ok2 := p.r2.Scan(r2)
	if ok1 && ok2 {
		p.n++
		return true
	}
	if ok1 != ok2 && p.r1.Err() == nil && p.r2.Err() == nil {
		longer := "R1"
		if ok2 {
			longer = "R2"
		}
		p.err = errors.Wrapf(ErrDiscordant, "%s has more reads after %d pairs", longer, p.n)
	}
	return false
}

// Pairs returns the number of pairs scanned so far.
func (p *PairScanner) Pairs() int { return p.n }

// Err returns the scanning error, if any. It should be checked
// after Scan returns false.
func (p *PairScanner) Err() error {
	if err := p.r1.Err(); err != nil {
		return errors.Wrap(err, "R1")
	}
	if err := p.r2.Err(); err != nil {
		return errors.Wrap(err, "R2")
	}
	return p.err
}
