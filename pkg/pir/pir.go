// Package pir turns a structure and a plain sequence file into the
// two block PIR alignment that the completion engine reads.
//
// The first block is the template, the sequence of the structure as it
// is, with gaps where residues are missing. The second block is the
// target, the full sequence copied from the sequence file.
package pir

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/andrew-torda/modelfix/pkg/common"
	"github.com/andrew-torda/modelfix/pkg/diag"
	"github.com/andrew-torda/modelfix/pkg/logger"
	"github.com/andrew-torda/modelfix/pkg/structure"
)

// KnownCode is the name of the template block. The engine is told to
// use it as the known structure.
const KnownCode = "PROT"

const lineWidth = 80

// idRe picks out a four character record identifier like >1ABC.
var idRe = regexp.MustCompile(`>(\w{4})`)

// Alignment is what Build wrote.
type Alignment struct {
	Path     string // absolute name of the .pir file
	ID       string // identifier as found in the sequence file
	Code     string // ID in upper case, the engine's target code
	Template string // structural sequence, chain breaks written as gaps
	Target   string // target sequence block, chain breaks as '/'
	NChain   int    // chains in the target
	Warnings diag.Warnings
}

// Target is the content of a sequence file.
type Target struct {
	ID     string
	Body   string
	NChain int
}

// ReadTarget reads a sequence file. Lines up to and including the
// first one with a >XXXX identifier are skipped. After that, each
// identifier line becomes a single chain break and everything else is
// kept as it is. The last line break is dropped.
func ReadTarget(rdr io.Reader) (Target, error) {
	var t Target
	var b strings.Builder
	scnnr := bufio.NewScanner(rdr)
	scnnr.Buffer(make([]byte, 0, 4096), 1024*1024)
	for scnnr.Scan() {
		line := strings.TrimRight(scnnr.Text(), "\r")
		if t.ID == "" {
			if m := idRe.FindStringSubmatch(line); m != nil {
				t.ID = m[1]
			}
			continue
		}
		if idRe.MatchString(line) {
			b.WriteByte(common.ChainBreak)
			t.NChain++
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := scnnr.Err(); err != nil {
		return Target{}, err
	}
	if t.ID == "" {
		return Target{}, fmt.Errorf("no record identifier found in sequence file")
	}
	t.Body = b.String()
	if n := len(t.Body); n > 0 && (t.Body[n-1] == '\n' || t.Body[n-1] == common.ChainBreak) {
		if t.Body[n-1] == common.ChainBreak {
			t.NChain--
		}
		t.Body = t.Body[:n-1]
	}
	t.NChain++
	return t, nil
}

// Wrap breaks s into lines of at most width characters.
func Wrap(s string, width int) []string {
	var lines []string
	for len(s) > width {
		lines = append(lines, s[:width])
		s = s[width:]
	}
	return append(lines, s)
}

// TemplateSeq is the structural sequence as it goes in the template
// block. The engine does not want chain breaks there, so they become
// gaps.
func TemplateSeq(s *structure.Structure) string {
	return strings.ReplaceAll(s.Sequence(), string(common.ChainBreak), string(common.GapChar))
}

// Format writes the two blocks. There is no line break after the last
// '*'.
func Format(w io.Writer, id, template, target string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, ">P1;%s\nstructureX:%s:FIRST:@:::::-1.00:-1.00\n", KnownCode, id)
	bw.WriteString(strings.Join(Wrap(template, lineWidth), "\n"))
	bw.WriteString("*\n\n")
	fmt.Fprintf(bw, ">P1;%s\nsequence:::::::::\n", strings.ToUpper(id))
	bw.WriteString(target)
	bw.WriteString("*")
	return bw.Flush()
}

// Build reads the structure and sequence files and writes
// <identifier>.pir in outDir ("" means the current directory).
// Nothing is written if the sequence file has no identifier.
func Build(structurePath, sequencePath, outDir string) (*Alignment, error) {
	const op = "build alignment"
	s, err := structure.Load(structurePath)
	if err != nil {
		return nil, diag.Wrap(diag.KindInput, op, structurePath, err)
	}
	fp, err := os.Open(sequencePath)
	if err != nil {
		return nil, diag.Wrap(diag.KindInput, op, sequencePath, err)
	}
	defer fp.Close()
	t, err := ReadTarget(fp)
	if err != nil {
		return nil, diag.Wrap(diag.KindInput, op, sequencePath, err)
	}

	a := &Alignment{
		ID:       t.ID,
		Code:     strings.ToUpper(t.ID),
		Template: TemplateSeq(s),
		Target:   t.Body,
		NChain:   t.NChain,
	}
	nStruct := strings.Count(s.Sequence(), string(common.ChainBreak)) + 1
	if nStruct != t.NChain {
		a.Warnings.Addf(diag.WarnChainCount,
			"%s has %d chains, but the sequence of %s in %s has %d",
			filepath.Base(structurePath), nStruct, t.ID, filepath.Base(sequencePath), t.NChain)
	}

	if outDir == "" {
		outDir = "."
	}
	path, err := filepath.Abs(filepath.Join(outDir, t.ID+".pir"))
	if err != nil {
		return nil, diag.Wrap(diag.KindIO, op, outDir, err)
	}
	out, err := os.Create(path)
	if err != nil {
		return nil, diag.Wrap(diag.KindIO, op, path, err)
	}
	if err := Format(out, a.ID, a.Template, a.Target); err != nil {
		out.Close()
		return nil, diag.Wrap(diag.KindIO, op, path, err)
	}
	if err := out.Close(); err != nil {
		return nil, diag.Wrap(diag.KindIO, op, path, err)
	}
	a.Path = path
	logger.Debug("alignment for %s written to %s", a.Code, path)
	return a, nil
}
