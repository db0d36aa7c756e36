package structure

import (
	"strings"

	"github.com/andrew-torda/modelfix/pkg/common"
)

// Chain is an ordered list of the residues that have coordinates.
type Chain struct {
	ID       string
	Residues []*Residue
}

// InsertOrdered puts r in front of the first residue that sorts
// strictly after it, or at the end if there is none. Residues with the
// same key as r stay in front of it.
// It returns the index where r went.
func (c *Chain) InsertOrdered(r *Residue) int {
	return insertOrdered(&c.Residues, r)
}

func insertOrdered(list *[]*Residue, r *Residue) int {
	l := *list
	for i, t := range l {
		if Compare(t, r) > 0 {
			l = append(l, nil)
			copy(l[i+1:], l[i:])
			l[i] = r
			*list = l
			return i
		}
	}
	*list = append(l, r)
	return len(l)
}

// Structure is a whole entry: chains plus the defect lists.
type Structure struct {
	Path            string   // file it came from, if any
	Header          []string // records before the coordinates, kept verbatim
	Chains          []*Chain
	MissingResidues []*Residue
	MissingAtoms    []MissingAtom
}

// Chain returns the chain with the given identifier, or nil.
func (s *Structure) Chain(id string) *Chain {
	for _, c := range s.Chains {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// addChain returns the chain called id, appending a new one if needed.
func (s *Structure) addChain(id string) *Chain {
	if c := s.Chain(id); c != nil {
		return c
	}
	c := &Chain{ID: id}
	s.Chains = append(s.Chains, c)
	return c
}

// FindResidue returns the present residue with key k, or nil.
func (s *Structure) FindResidue(k Key) *Residue {
	c := s.Chain(k.Chain)
	if c == nil {
		return nil
	}
	for _, r := range c.Residues {
		if r.Key() == k {
			return r
		}
	}
	return nil
}

// FilterResidues returns the present residues for which keep is true,
// in chain order.
func (s *Structure) FilterResidues(keep func(*Residue) bool) []*Residue {
	var ret []*Residue
	for _, c := range s.Chains {
		for _, r := range c.Residues {
			if keep(r) {
				ret = append(ret, r)
			}
		}
	}
	return ret
}

// FilterChains returns the chains for which keep is true.
func (s *Structure) FilterChains(keep func(*Chain) bool) []*Chain {
	var ret []*Chain
	for _, c := range s.Chains {
		if keep(c) {
			ret = append(ret, c)
		}
	}
	return ret
}

// Remove deletes the present residues for which drop is true and
// returns how many went. A chain left with nothing, not even missing
// residues, is removed too.
func (s *Structure) Remove(drop func(*Residue) bool) int {
	n := 0
	chains := s.Chains[:0]
	for _, c := range s.Chains {
		kept := c.Residues[:0]
		for _, r := range c.Residues {
			if drop(r) {
				n++
				continue
			}
			kept = append(kept, r)
		}
		for i := len(kept); i < len(c.Residues); i++ {
			c.Residues[i] = nil
		}
		c.Residues = kept
		if len(c.Residues) > 0 || s.nMissingIn(c.ID) > 0 {
			chains = append(chains, c)
		}
	}
	s.Chains = chains
	return n
}

func (s *Structure) nMissingIn(chain string) int {
	n := 0
	for _, m := range s.MissingResidues {
		if m.Chain == chain {
			n++
		}
	}
	return n
}

// chainList is one chain's residues with the missing ones put where
// InsertOrdered would put them.
func (s *Structure) chainList(c *Chain) []*Residue {
	list := make([]*Residue, len(c.Residues), len(c.Residues)+s.nMissingIn(c.ID))
	copy(list, c.Residues)
	for _, m := range s.MissingResidues {
		if m.Chain == c.ID {
			insertOrdered(&list, m)
		}
	}
	return list
}

// TotalResidueList returns all residues, present and missing, chain
// after chain. Within a chain, each missing residue (in the order of
// MissingResidues) goes in front of the first residue that sorts after
// it. This is the order the residues will have once the gaps are
// filled.
func (s *Structure) TotalResidueList() []*Residue {
	var ret []*Residue
	for _, c := range s.Chains {
		ret = append(ret, s.chainList(c)...)
	}
	return ret
}

// PositionIndex maps each residue key in list to its index.
// If a key occurs twice, the first wins.
func PositionIndex(list []*Residue) map[Key]int {
	ndx := make(map[Key]int, len(list))
	for i, r := range list {
		k := r.Key()
		if _, ok := ndx[k]; !ok {
			ndx[k] = i
		}
	}
	return ndx
}

// ChainLengths returns the number of residues, present and missing,
// in each chain.
func (s *Structure) ChainLengths() []int {
	ret := make([]int, len(s.Chains))
	for i, c := range s.Chains {
		ret[i] = len(c.Residues) + s.nMissingIn(c.ID)
	}
	return ret
}

// NResidues is the number of present residues.
func (s *Structure) NResidues() int {
	n := 0
	for _, c := range s.Chains {
		n += len(c.Residues)
	}
	return n
}

// NAtoms is the number of atoms.
func (s *Structure) NAtoms() int {
	n := 0
	for _, c := range s.Chains {
		for _, r := range c.Residues {
			n += len(r.Atoms)
		}
	}
	return n
}

// Sequence returns the one letter sequence of each chain, chains
// separated by common.ChainBreak. Missing residues are written as
// common.GapChar. Water is left out, and so is a chain with nothing
// else in it.
func (s *Structure) Sequence() string {
	var parts []string
	for _, c := range s.Chains {
		var b strings.Builder
		for _, r := range s.chainList(c) {
			switch {
			case r.IsWater():
				continue
			case r.Missing:
				b.WriteByte(common.GapChar)
			default:
				b.WriteByte(r.OneLetter())
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	return strings.Join(parts, string(common.ChainBreak))
}

// RenumberAtoms gives atoms serial numbers 1, 2, ... over the whole
// structure.
func (s *Structure) RenumberAtoms() {
	n := 1
	for _, c := range s.Chains {
		for _, r := range c.Residues {
			for _, a := range r.Atoms {
				a.Serial = n
				n++
			}
		}
	}
}

// RenumberResidues numbers the residues of each chain consecutively,
// starting from the number of the chain's first residue, and clears
// insertion codes. A chain that is already numbered without gaps or
// insertion codes is left as it was.
func (s *Structure) RenumberResidues() {
	for _, c := range s.Chains {
		if len(c.Residues) == 0 {
			continue
		}
		start := c.Residues[0].SeqNum
		for i, r := range c.Residues {
			r.SeqNum = start + i
			r.ICode = ' '
		}
	}
}
