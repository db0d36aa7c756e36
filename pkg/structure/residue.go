package structure

import (
	"fmt"
	"strings"
)

// Atom is one ATOM or HETATM record.
type Atom struct {
	Serial    int
	Name      string
	AltLoc    byte
	Het       bool
	X, Y, Z   float64
	Occupancy float64
	BFactor   float64
	Element   string
	Charge    string
}

// Key is the identity of a residue within a structure.
type Key struct {
	Chain  string
	SeqNum int
	ICode  byte
}

func (k Key) String() string {
	if k.ICode == ' ' || k.ICode == 0 {
		return fmt.Sprintf("%s:%d", k.Chain, k.SeqNum)
	}
	return fmt.Sprintf("%s:%d%c", k.Chain, k.SeqNum, k.ICode)
}

// Residue is a residue from the ATOM records, or from REMARK 465 if
// Missing is set. Missing residues have no atoms.
type Residue struct {
	Chain   string
	SeqNum  int
	ICode   byte
	Name    string // three letter code, upper case
	Atoms   []*Atom
	Missing bool
}

// Key returns the residue's identity.
func (r *Residue) Key() Key {
	return Key{Chain: r.Chain, SeqNum: r.SeqNum, ICode: icode(r.ICode)}
}

// icode maps the zero byte to a blank, so both mean "no insertion code".
func icode(c byte) byte {
	if c == 0 {
		return ' '
	}
	return c
}

// Compare orders residues within a chain by sequence number and then
// insertion code. It returns -1, 0 or +1. The chain is not looked at.
func Compare(a, b *Residue) int {
	switch {
	case a.SeqNum < b.SeqNum:
		return -1
	case a.SeqNum > b.SeqNum:
		return 1
	}
	ia, ib := icode(a.ICode), icode(b.ICode)
	switch {
	case ia < ib:
		return -1
	case ia > ib:
		return 1
	}
	return 0
}

// Clone returns a deep copy. Atoms are copied too.
func (r *Residue) Clone() *Residue {
	c := *r
	c.Atoms = make([]*Atom, len(r.Atoms))
	for i, a := range r.Atoms {
		t := *a
		c.Atoms[i] = &t
	}
	return &c
}

// Atom returns the first atom with the given name, or nil.
func (r *Residue) Atom(name string) *Atom {
	for _, a := range r.Atoms {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// IsWater is true for the usual names of water molecules.
func (r *Residue) IsWater() bool {
	switch r.Name {
	case "HOH", "WAT", "DOD", "H2O":
		return true
	}
	return false
}

// threeToOne maps three letter residue names to one letter codes.
// Modified residues that are common in deposited structures map to
// their parent amino acid.
var threeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"SEC": 'U', "PYL": 'O',
	"HID": 'H', "HIE": 'H', "HIP": 'H', "HSD": 'H', "HSE": 'H', "HSP": 'H',
	"CYX": 'C', "CYM": 'C', "ASH": 'D', "GLH": 'E', "LYN": 'K',
	"MSE": 'M',
}

// OneLetter returns the one letter code for the residue, or 'X' if we
// do not know the name.
func (r *Residue) OneLetter() byte {
	if c, ok := threeToOne[strings.ToUpper(r.Name)]; ok {
		return c
	}
	return 'X'
}

// MissingAtom is one REMARK 470 entry: a residue that is present but
// lacks some atoms.
type MissingAtom struct {
	Chain   string
	SeqNum  int
	ICode   byte
	ResName string
	Atoms   []string
}

// Key returns the identity of the residue the atoms are missing from.
func (m MissingAtom) Key() Key {
	return Key{Chain: m.Chain, SeqNum: m.SeqNum, ICode: icode(m.ICode)}
}
