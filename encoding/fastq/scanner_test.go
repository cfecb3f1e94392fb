package fastq

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fq = `@NB500956:89:HW2FHBGX2:1:11101:25648:1069 1:N:0:ATCACG
ATACAGGCCTGANCCACTGTGCCCAGNCTANNTNATTANTGAANANAGAATNGTTNTAAATANANNNNNTNTNNNC
+
AAAAAEEEEEEE#EEAEEEEEEEEEE#EEE##E#EEEE#EEEE#E#EEEEE#EEE#EEEAEE#A#####E#E###E
@NB500956:89:HW2FHBGX2:1:11101:13871:1070 1:N:0:ATCACG
CTCAACTCTGAGNCAGACAGAAATACNTTTNNTNTGAGTTACANCNTTCTTTTTCNACATATNCNNNNNTNGNNNT
+
AAAAAEEEEEEE#EEEEEEEEEEEEE#EEE##E#EEEEEEEEE#E#EEEEEEEEE#EAEEEE#A#####E#A###E
@NB500956:89:HW2FHBGX2:1:11101:9975:1070 1:N:0:ATCACG
GAGTAACCACGTNCCCATGGCCACAGNTGANNGNGTCACACCTNANCCGGGAGAGNCAATCCNGNNNNNGNANNNC
+
AAAAAEEEEEEE#EEEEEEEEEAEEE#EEA##E#EEEEEEEE<#E#<EEEEEEEE#<EEEA/#/#####A#E###A
@NB500956:89:HW2FHBGX2:1:11101:20247:1070 1:N:0:ATCACG
GATCGGAAGAGCNCACGTCTGAACTCNAGTNNCNTCCCGATCTNGNATGCCGTCTNCTGCTTNANNNNNANANNNG
+
AAAAAEEEEEEE#EEEEEEEEEEEEE#AEE##E#A////6AE<#E#EEEEEEEEA#A/EE/E#E#####/#E###E
@NB500956:89:HW2FHBGX2:1:11101:17754:1070 1:N:0:ATCACG
CAAGCAACTTACNTTACTTTAGGCTGNAAANNGNCTGCCTGAANTNCCTGCTCACNAATCCCNCNNNNNCNTNNNT
+
AAAAAEEEEEEE#EEAEEEEEEEEEE#EEE##E#EEEEEEEEE#E#EEEEEEEEE#EAEAEA#/#####E#A###E
@NB500956:89:HW2FHBGX2:1:11101:26223:1070 1:N:0:ATCACG
TCAATTTCAGAACTTTTTATTGGTCTNTTCNNGNATTCATCTTNTNCCTGGTTTANTCTTGGNANNNNNTNTNNNT
+
AAAAAEEEEEEEEEEEEEEEEEEEEE#EEA##E#EEEEEEEEE#E#<EAEEEEEE#EEEEEE#E#####E#E###E
`

func stringScanner(s string) *Scanner {
	return NewScanner(bytes.NewReader([]byte(s)), All)
}

func scanErr(s string) error {
	scan := stringScanner(s)
	var r Read
	for scan.Scan(&r) {
	}
	return scan.Err()
}

func TestFASTQ(t *testing.T) {
	s := stringScanner(fq)
	var r Read
	if !s.Scan(&r) {
		t.Fatal(s.Err())
	}
	expect := Read{
		ID:   "@NB500956:89:HW2FHBGX2:1:11101:25648:1069 1:N:0:ATCACG",
		Seq:  "ATACAGGCCTGANCCACTGTGCCCAGNCTANNTNATTANTGAANANAGAATNGTTNTAAATANANNNNNTNTNNNC",
		Qual: "AAAAAEEEEEEE#EEAEEEEEEEEEE#EEE##E#EEEE#EEEE#E#EEEEE#EEE#EEEAEE#A#####E#E###E",
	}
	if got, want := r, expect; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := r.Name(), "NB500956:89:HW2FHBGX2:1:11101:25648:1069"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	var n int
	for s.Scan(&r) {
		n++
	}
	if got, want := n, 5; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if err := s.Err(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestFields(t *testing.T) {
	s := NewScanner(strings.NewReader(fq), Seq)
	var r Read
	require.True(t, s.Scan(&r))
	assert.Equal(t, "", r.ID)
	assert.Equal(t, "", r.Qual)
	assert.Equal(t, "ATACAGGCCTGANCCACTGTGCCCAGNCTANNTNATTANTGAANANAGAATNGTTNTAAATANANNNNNTNTNNNC", r.Seq)
}

func TestBadFASTQ(t *testing.T) {
	if got, want := errors.Cause(scanErr("12312#")), ErrInvalid; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := errors.Cause(scanErr("@1234\n123")), ErrShort; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	err := scanErr("@r1\nACGT\n+\nIIII\n@r2\nACGT\nIIII\nIIII\n")
	assert.Equal(t, ErrInvalid, errors.Cause(err))
	assert.Contains(t, err.Error(), "line 7")
}

func TestPairScanner(t *testing.T) {
	r1 := "@a/1\nACGT\n+\nIIII\n@b/1\nTTTT\n+\nIIII\n"
	r2 := "@a/2\nGGGG\n+\nIIII\n@b/2\nCCCC\n+\nIIII\n"
	s := NewPairScanner(strings.NewReader(r1), strings.NewReader(r2), ID|Seq)
	var m1, m2 Read
	var seqs []string
	for s.Scan(&m1, &m2) {
		seqs = append(seqs, m1.Seq+"/"+m2.Seq)
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []string{"ACGT/GGGG", "TTTT/CCCC"}, seqs)
	assert.Equal(t, 2, s.Pairs())

	s = NewPairScanner(strings.NewReader(r1), strings.NewReader(r2[:len(r2)/2]), All)
	for s.Scan(&m1, &m2) {
	}
	err := s.Err()
	require.Error(t, err)
	assert.Equal(t, ErrDiscordant, errors.Cause(err))
	assert.Contains(t, err.Error(), "R1 has more reads after 1 pairs")

	s = NewPairScanner(strings.NewReader(r1), strings.NewReader(strings.TrimSuffix(r2, "+\nIIII\n")), All)
	for s.Scan(&m1, &m2) {
	}
	assert.Equal(t, ErrShort, errors.Cause(s.Err()))
}
