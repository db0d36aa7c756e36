package pir

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew-torda/modelfix/pkg/brokenio"
	"github.com/andrew-torda/modelfix/pkg/common"
	"github.com/andrew-torda/modelfix/pkg/diag"
)

const gapPDB = "../structure/testdata/gap.pdb"

func TestFormat(t *testing.T) {
	var b bytes.Buffer
	tmpl := strings.ReplaceAll("ABCDE/FG", "/", "-")
	require.NoError(t, Format(&b, "1ABC", tmpl, "ABCDEFG"))
	want := ">P1;PROT\n" +
		"structureX:1ABC:FIRST:@:::::-1.00:-1.00\n" +
		"ABCDE-FG*\n" +
		"\n" +
		">P1;1ABC\n" +
		"sequence:::::::::\n" +
		"ABCDEFG*"
	assert.Equal(t, want, b.String())
}

func TestFormatLowerCase(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Format(&b, "1abc", "A", "A"))
	assert.Contains(t, b.String(), "structureX:1abc:")
	assert.Contains(t, b.String(), ">P1;1ABC\n")
}

func TestWrap(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{0, []int{0}},
		{5, []int{5}},
		{80, []int{80}},
		{81, []int{80, 1}},
		{170, []int{80, 80, 10}},
	}
	for _, tt := range tests {
		lines := Wrap(strings.Repeat("A", tt.n), lineWidth)
		var got []int
		for _, l := range lines {
			got = append(got, len(l))
		}
		assert.Equal(t, tt.want, got, "wrapping %d characters", tt.n)
	}
}

func TestReadTarget(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		id     string
		body   string
		nChain int
	}{
		{"one chain", ">1ABC:A|PDBID|CHAIN|SEQUENCE\nABCDEFG\n", "1ABC", "ABCDEFG", 1},
		{"preamble", "some text\n\n>1ABC\nABC\nDEF\n", "1ABC", "ABC\nDEF", 1},
		{"two chains", ">1ABC_1\nMKV\n>1ABC_2\nGGS\n", "1ABC", "MKV\n/GGS", 2},
		{"crlf", ">2XYZ\r\nMKV\r\n", "2XYZ", "MKV", 1},
		{"no final newline", ">2XYZ\nMKV", "2XYZ", "MKV", 1},
		{"trailing header", ">2XYZ\nMKV\n>2XYZ_2\n", "2XYZ", "MKV\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadTarget(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.ID)
			assert.Equal(t, tt.body, got.Body)
			assert.Equal(t, tt.nChain, got.NChain)
		})
	}
}

func TestReadTargetErrors(t *testing.T) {
	_, err := ReadTarget(strings.NewReader(">AB\nMKV\n"))
	assert.ErrorContains(t, err, "no record identifier found in sequence file")

	in := ">1ABC\n" + strings.Repeat("MKV\n", 100)
	_, err = ReadTarget(brokenio.NewReader(strings.NewReader(in), 50))
	assert.ErrorIs(t, err, brokenio.ErrBroken)
}

func writeFasta(t *testing.T, dir, s string) string {
	t.Helper()
	fname, err := common.WrtTemp(dir, s)
	require.NoError(t, err)
	return fname
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	fasta := writeFasta(t, dir, ">1tst_1|Chain A\nAGTSK\n>1tst_2|Chain B\nVL\n")
	a, err := Build(gapPDB, fasta, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "1tst.pir"), a.Path)
	assert.Equal(t, "1TST", a.Code)
	assert.Equal(t, "AG-SK-VL", a.Template)
	assert.Equal(t, 2, a.NChain)
	assert.Empty(t, a.Warnings)

	raw, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	want := ">P1;PROT\nstructureX:1tst:FIRST:@:::::-1.00:-1.00\nAG-SK-VL*\n\n" +
		">P1;1TST\nsequence:::::::::\nAGTSK\n/VL*"
	assert.Equal(t, want, string(raw))
}

func TestBuildChainCount(t *testing.T) {
	dir := t.TempDir()
	fasta := writeFasta(t, dir, ">1TST\nAGTSKVL\n")
	a, err := Build(gapPDB, fasta, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Warnings.Count(diag.WarnChainCount))
}

func TestBuildErrors(t *testing.T) {
	dir := t.TempDir()
	noID := writeFasta(t, dir, "AGTSKVL\n")
	_, err := Build(gapPDB, noID, dir)
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.KindInput))
	assert.ErrorContains(t, err, "no record identifier")
	matches, _ := filepath.Glob(filepath.Join(dir, "*.pir"))
	assert.Empty(t, matches, "no alignment should be written")

	good := writeFasta(t, dir, ">1TST\nAGTSKVL\n")
	_, err = Build(filepath.Join(dir, "nothere.pdb"), good, dir)
	assert.True(t, diag.IsKind(err, diag.KindInput))

	_, err = Build(gapPDB, filepath.Join(dir, "nothere.fasta"), dir)
	assert.True(t, diag.IsKind(err, diag.KindInput))

	_, err = Build(gapPDB, good, filepath.Join(dir, "no", "such", "dir"))
	assert.True(t, diag.IsKind(err, diag.KindIO))
}
