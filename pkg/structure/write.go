package structure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Write writes the structure to fname in PDB format and returns the
// absolute path of what it wrote.
func (s *Structure) Write(fname string) (string, error) {
	abs, err := filepath.Abs(fname)
	if err != nil {
		return "", err
	}
	fp, err := os.Create(abs)
	if err != nil {
		return "", err
	}
	if err := s.WriteTo(fp); err != nil {
		fp.Close()
		return "", fmt.Errorf("writing %s: %w", abs, err)
	}
	if err := fp.Close(); err != nil {
		return "", err
	}
	return abs, nil
}

// WriteTo writes the structure in PDB format. Header records come
// first, then REMARK 465 and 470 made from the defect lists (if they
// are not empty), then coordinates with a TER after each chain.
func (s *Structure) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, h := range s.Header {
		fmt.Fprintln(bw, h)
	}
	s.writeMissingResidues(bw)
	s.writeMissingAtoms(bw)
	for _, c := range s.Chains {
		if len(c.Residues) == 0 {
			continue
		}
		for _, r := range c.Residues {
			for _, a := range r.Atoms {
				writeAtom(bw, r, a)
			}
		}
		fmt.Fprintln(bw, "TER")
	}
	fmt.Fprintln(bw, "END")
	return bw.Flush()
}

func chainByte(id string) byte {
	if id == "" {
		return ' '
	}
	return id[0]
}

// atomName puts the name in the four character field the usual way.
// Names of four characters fill it. Otherwise, a one letter element
// goes in column 14, so "CA" is written " CA ".
func atomName(a *Atom) string {
	n := a.Name
	if len(n) >= 4 {
		return n[:4]
	}
	if len(a.Element) == 2 && strings.HasPrefix(strings.ToUpper(n), strings.ToUpper(a.Element)) {
		return fmt.Sprintf("%-4s", n)
	}
	return fmt.Sprintf(" %-3s", n)
}

func writeAtom(w io.Writer, r *Residue, a *Atom) {
	rec := "ATOM"
	if a.Het {
		rec = "HETATM"
	}
	alt := a.AltLoc
	if alt == 0 {
		alt = ' '
	}
	fmt.Fprintf(w, "%-6s%5d %s%c%3s %c%4d%c   %8.3f%8.3f%8.3f%6.2f%6.2f          %2s%-2s\n",
		rec, a.Serial, atomName(a), alt, r.Name, chainByte(r.Chain), r.SeqNum, icode(r.ICode),
		a.X, a.Y, a.Z, a.Occupancy, a.BFactor, a.Element, a.Charge)
}

func (s *Structure) writeMissingResidues(w io.Writer) {
	if len(s.MissingResidues) == 0 {
		return
	}
	fmt.Fprintln(w, "REMARK 465")
	fmt.Fprintln(w, "REMARK 465 MISSING RESIDUES")
	fmt.Fprintln(w, "REMARK 465   M RES C SSSEQI")
	for _, m := range s.MissingResidues {
		fmt.Fprintf(w, "REMARK 465     %3s %c %5d%c\n",
			m.Name, chainByte(m.Chain), m.SeqNum, icode(m.ICode))
	}
}

func (s *Structure) writeMissingAtoms(w io.Writer) {
	if len(s.MissingAtoms) == 0 {
		return
	}
	fmt.Fprintln(w, "REMARK 470")
	fmt.Fprintln(w, "REMARK 470 MISSING ATOM")
	fmt.Fprintln(w, "REMARK 470   M RES CSSEQI  ATOMS")
	for _, m := range s.MissingAtoms {
		fmt.Fprintf(w, "REMARK 470     %3s %c%4d%c  %s\n",
			m.ResName, chainByte(m.Chain), m.SeqNum, icode(m.ICode), strings.Join(m.Atoms, "  "))
	}
}
