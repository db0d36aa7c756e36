package engine

import (
	"strconv"
	"strings"

	"github.com/andrew-torda/modelfix/pkg/common"
	"github.com/andrew-torda/modelfix/pkg/structure"
)

// Index is the set of residue keys the engine's model answers to.
type Index interface {
	Has(key string) bool
}

// KeySet is an Index held in a map.
type KeySet map[string]struct{}

// Has reports whether key is in the set.
func (k KeySet) Has(key string) bool {
	_, ok := k[key]
	return ok
}

// Address is how the engine names the residue at 1-based position pos
// in chain, "pos:chain".
func Address(pos int, chain string) string {
	return strconv.Itoa(pos) + ":" + chain
}

// Lookup tries addr and then addr without its chain. It returns the
// key that was found, or false if neither was.
func Lookup(idx Index, addr string) (string, bool) {
	if idx.Has(addr) {
		return addr, true
	}
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		if short := addr[:i]; idx.Has(short) {
			return short, true
		}
	}
	return "", false
}

// Addresses returns the engine addresses of the missing residues of s,
// in the order of the total residue list.
func Addresses(s *structure.Structure) []string {
	var addrs []string
	for i, r := range s.TotalResidueList() {
		if r.Missing {
			addrs = append(addrs, Address(i+1, r.Chain))
		}
	}
	return addrs
}

// Unresolved returns the addresses that idx answers to neither way.
// The engine does the same lookup on its own model, so this only
// predicts what it will skip.
func Unresolved(idx Index, addrs []string) []string {
	var miss []string
	for _, a := range addrs {
		if _, ok := Lookup(idx, a); !ok {
			miss = append(miss, a)
		}
	}
	return miss
}

// SequenceIndex is the index of the model the engine builds for a
// target sequence. Residues are numbered 1, 2, ... over the whole
// model. Chains take the template's chain identifiers in order, and
// target chains beyond those get the letters after the last one.
func SequenceIndex(target string, chainIDs []string) KeySet {
	idx := make(KeySet)
	chains := strings.Split(target, string(common.ChainBreak))
	n := 0
	for i, c := range chains {
		id := chainID(i, chainIDs)
		for _, ch := range c {
			if !isResidue(ch) {
				continue
			}
			n++
			num := strconv.Itoa(n)
			idx[num] = struct{}{}
			idx[num+":"+id] = struct{}{}
		}
	}
	return idx
}

func chainID(i int, ids []string) string {
	if i < len(ids) {
		return ids[i]
	}
	last := byte('A' - 1)
	if len(ids) > 0 && ids[len(ids)-1] != "" {
		last = ids[len(ids)-1][0]
	}
	return string(rune(int(last) + i - len(ids) + 1))
}

func isResidue(c rune) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c == '.':
		return true
	}
	return false
}
