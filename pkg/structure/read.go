package structure

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// ErrMmcif is returned for files that look like mmCIF. Only the old
// PDB format is read.
var ErrMmcif = errors.New("mmCIF format is not supported, use PDB format")

// ErrNoAtoms is returned when a file has neither coordinates nor a
// REMARK 465 list.
var ErrNoAtoms = errors.New("no ATOM or HETATM records found")

const lineLen = 80 // PDB records are padded to this

// Load reads a PDB file. The file is mapped into memory rather than
// read through a buffer. Gzipped files are recognised by their magic
// number, whatever the name.
func Load(fname string) (*Structure, error) {
	if isMmcifName(fname) {
		return nil, ErrMmcif
	}
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	fi, err := fp.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", fname)
	}
	if fi.Size() == 0 {
		return nil, ErrNoAtoms
	}

	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer mm.Unmap()

	rdr, err := gunzipMaybe(mm)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fname, err)
	}
	return Read(rdr, fname)
}

// isMmcifName looks at the part of the name after the first dot, so
// 1abc.cif.gz counts.
func isMmcifName(fname string) bool {
	s := filepath.Base(fname)
	i := strings.IndexByte(s, '.')
	if i == -1 {
		return false
	}
	s = strings.ToLower(s[i+1:])
	return strings.Contains(s, "cif")
}

// gunzipMaybe returns a reader for b which decompresses if b starts
// with the gzip magic number.
func gunzipMaybe(b []byte) (io.Reader, error) {
	if len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b {
		return gzip.NewReader(bytes.NewReader(b))
	}
	return bytes.NewReader(b), nil
}

// reader holds state while going through the records of one file.
type reader struct {
	s       *Structure
	cur     *Residue // residue atoms are being added to
	seenAtm bool
}

// Read parses PDB format text. name is stored as the Structure's Path.
func Read(rdr io.Reader, name string) (*Structure, error) {
	r := reader{s: &Structure{Path: name}}
	scnnr := bufio.NewScanner(rdr)
	scnnr.Buffer(make([]byte, 0, 4096), 1024*1024)
	first := true
	for scnnr.Scan() {
		line := strings.TrimRight(scnnr.Text(), "\r")
		if first && strings.TrimSpace(line) != "" {
			first = false
			if strings.HasPrefix(line, "data_") {
				return nil, ErrMmcif
			}
		}
		done, err := r.record(line)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if done {
			break
		}
	}
	if err := scnnr.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if !r.seenAtm && len(r.s.MissingResidues) == 0 {
		return nil, ErrNoAtoms
	}
	// Chains only named in REMARK 465 go after those with coordinates.
	for _, m := range r.s.MissingResidues {
		r.s.addChain(m.Chain)
	}
	return r.s, nil
}

// recName returns the record name, the first six columns without
// trailing blanks.
func recName(line string) string {
	if len(line) > 6 {
		line = line[:6]
	}
	return strings.TrimRight(line, " ")
}

// record deals with one line. done is true once the first model
// has been read.
func (r *reader) record(line string) (done bool, err error) {
	switch recName(line) {
	case "ATOM", "HETATM":
		return false, r.atom(line)
	case "TER":
		r.cur = nil
	case "ENDMDL":
		return r.seenAtm, nil
	case "END":
		return true, nil
	case "MODEL", "ANISOU", "CONECT", "MASTER", "SIGATM", "SIGUIJ":
	case "REMARK":
		switch {
		case strings.HasPrefix(line, "REMARK 465"):
			r.remark465(line)
		case strings.HasPrefix(line, "REMARK 470"):
			r.remark470(line)
		default:
			r.s.Header = append(r.s.Header, line)
		}
	default:
		if !r.seenAtm {
			r.s.Header = append(r.s.Header, line)
		}
	}
	return false, nil
}

// pad makes sure we can slice a record up to column 80.
func pad(line string) string {
	if len(line) >= lineLen {
		return line
	}
	return line + strings.Repeat(" ", lineLen-len(line))
}

func atoiField(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func floatField(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// atom reads the fixed columns of an ATOM/HETATM record.
// https://www.wwpdb.org/documentation/file-format-content/format33/sect9.html#ATOM
func (r *reader) atom(line string) error {
	orig := line
	line = pad(line)
	var a Atom
	var err error
	a.Het = strings.HasPrefix(line, "HETATM")
	if a.Serial, err = atoiField(line[6:11]); err != nil {
		a.Serial = 0 // hybrid-36 and friends, we renumber anyway
	}
	a.Name = strings.TrimSpace(line[12:16])
	a.AltLoc = line[16]
	resName := strings.TrimSpace(line[17:20])
	chain := line[21:22]
	seqNum, err := atoiField(line[22:26])
	if err != nil {
		return fmt.Errorf("bad residue number in %q", orig)
	}
	iCode := line[26]
	if a.X, err = floatField(line[30:38]); err != nil {
		return fmt.Errorf("bad x coordinate in %q", orig)
	}
	if a.Y, err = floatField(line[38:46]); err != nil {
		return fmt.Errorf("bad y coordinate in %q", orig)
	}
	if a.Z, err = floatField(line[46:54]); err != nil {
		return fmt.Errorf("bad z coordinate in %q", orig)
	}
	if a.Occupancy, err = floatField(line[54:60]); err != nil {
		a.Occupancy = 1
	}
	if a.BFactor, err = floatField(line[60:66]); err != nil {
		a.BFactor = 0
	}
	a.Element = strings.TrimSpace(line[76:78])
	a.Charge = strings.TrimSpace(line[78:80])

	cur := r.cur
	if cur == nil || cur.Chain != chain || cur.SeqNum != seqNum ||
		cur.ICode != iCode || cur.Name != resName {
		c := r.s.addChain(chain)
		cur = &Residue{Chain: chain, SeqNum: seqNum, ICode: iCode, Name: resName}
		c.Residues = append(c.Residues, cur)
		r.cur = cur
	}
	cur.Atoms = append(cur.Atoms, &a)
	r.seenAtm = true
	return nil
}

// remark465 reads a missing residue line. Like the ATOM records, it
// goes by column.
//
//	REMARK 465   M RES C SSSEQI
//	REMARK 465     MET A     1
//
// Anything else under REMARK 465 is header text and is skipped, as are
// entries for models after the first.
func (r *reader) remark465(line string) {
	line = pad(line)
	if !firstModel(line[10:15]) {
		return
	}
	resName := strings.TrimSpace(line[15:18])
	if resName == "" || resName == "RES" {
		return
	}
	num, err := atoiField(line[21:26])
	if err != nil {
		return
	}
	r.s.MissingResidues = append(r.s.MissingResidues, &Residue{
		Chain: line[19:20], SeqNum: num, ICode: line[26], Name: resName, Missing: true,
	})
}

// firstModel looks at the model column of REMARK 465/470. Blank means
// there is only one model. Text that is not a number is a heading.
func firstModel(col string) bool {
	m := strings.TrimSpace(col)
	if m == "" {
		return true
	}
	n, err := strconv.Atoi(m)
	return err == nil && n == 1
}

// remark470 reads a missing atom line. The chain and residue number
// can run into each other, so we go by column.
//
//	REMARK 470   M RES CSSEQI  ATOMS
//	REMARK 470     LYS A  15    CG   CD   CE   NZ
func (r *reader) remark470(line string) {
	line = pad(line)
	if !firstModel(line[10:15]) {
		return
	}
	resName := strings.TrimSpace(line[15:18])
	if resName == "" || resName == "RES" {
		return
	}
	num, err := atoiField(line[20:24])
	if err != nil {
		return
	}
	atoms := strings.Fields(line[25:])
	if len(atoms) == 0 {
		return
	}
	r.s.MissingAtoms = append(r.s.MissingAtoms, MissingAtom{
		Chain: line[19:20], SeqNum: num, ICode: line[24], ResName: resName, Atoms: atoms,
	})
}
