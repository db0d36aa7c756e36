// Package reconcile puts the residues and atoms that the completion
// engine built back into the original structure.
//
// The engine renumbers everything and may rename chains, so the only
// link between the two structures is position in the total residue
// list. Residue i of the completed structure is taken to be residue i
// of the original. The original keeps its own numbering for everything
// that was there before.
package reconcile

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/andrew-torda/modelfix/pkg/diag"
	"github.com/andrew-torda/modelfix/pkg/logger"
	"github.com/andrew-torda/modelfix/pkg/structure"
)

// Options change what Reconcile does.
type Options struct {
	RestoreAtoms bool // also replace residues listed in REMARK 470
}

// Report says what Reconcile did.
type Report struct {
	Inserted int           // missing residues put back
	Restored int           // residues whose atoms were replaced
	Warnings diag.Warnings // name mismatches
	Drift    float64       // CA rmsd over residues present in both, no fitting
	NDrift   int           // number of CA pairs in Drift
}

// Reconcile fills the gaps of original with residues from completed.
// original is changed in place. completed is only read. If the two do
// not have the same number of residues, or a missing residue has the
// key of one that is present, nothing is changed and an error of kind
// diag.KindConsistency comes back.
func Reconcile(original, completed *structure.Structure, opts Options) (*Report, error) {
	const op = "reconcile"
	orig := original.TotalResidueList()
	comp := completed.TotalResidueList()
	if len(orig) != len(comp) {
		return nil, diag.New(diag.KindConsistency, op, original.Path,
			"mismatch between original number of residues (%d) and number of residues output by the completion engine (%d)",
			len(orig), len(comp))
	}
	if err := check(original, opts); err != nil {
		return nil, err
	}
	pos := structure.PositionIndex(orig)

	rpt := &Report{}
	rpt.Drift, rpt.NDrift = drift(orig, comp)

	for _, m := range original.MissingResidues {
		donor := comp[pos[m.Key()]].Clone()
		if donor.Name != m.Name {
			rpt.Warnings.Addf(diag.WarnNameMismatch,
				"mismatch between original residue name (%s) and the residue name output by the completion engine (%s) in chain %s, residue number %d",
				m.Name, donor.Name, m.Chain, m.SeqNum)
		}
		donor.Chain, donor.SeqNum, donor.ICode = m.Chain, m.SeqNum, m.ICode
		donor.Missing = false
		original.Chain(m.Chain).InsertOrdered(donor)
		rpt.Inserted++
	}
	original.MissingResidues = nil

	if opts.RestoreAtoms {
		for _, ma := range original.MissingAtoms {
			res := original.FindResidue(ma.Key())
			donor := comp[pos[ma.Key()]].Clone()
			logger.Debug("restoring %s in %s %s from %s", strings.Join(ma.Atoms, " "), res.Name, res.Key(), donor.Name)
			res.Name = donor.Name
			res.Atoms = donor.Atoms
			rpt.Restored++
		}
		original.MissingAtoms = nil
	}

	original.RenumberAtoms()
	original.RenumberResidues()
	return rpt, nil
}

// check finds what would stop Reconcile part way, before anything is
// changed.
func check(s *structure.Structure, opts Options) error {
	const op = "reconcile"
	seen := make(map[structure.Key]bool, len(s.MissingResidues))
	for _, m := range s.MissingResidues {
		if seen[m.Key()] {
			return diag.New(diag.KindConsistency, op, s.Path, "missing residue %s %s is listed twice", m.Name, m.Key())
		}
		seen[m.Key()] = true
		if s.Chain(m.Chain) == nil {
			return diag.New(diag.KindConsistency, op, s.Path, "missing residue %s %s has no chain", m.Name, m.Key())
		}
		if s.FindResidue(m.Key()) != nil {
			return diag.New(diag.KindConsistency, op, s.Path,
				"missing residue %s %s has the same number as a residue that is present", m.Name, m.Key())
		}
	}
	if !opts.RestoreAtoms {
		return nil
	}
	for _, ma := range s.MissingAtoms {
		if s.FindResidue(ma.Key()) == nil {
			return diag.New(diag.KindConsistency, op, s.Path,
				"residue %s %s with missing atoms is not in the structure", ma.ResName, ma.Key())
		}
	}
	return nil
}

// drift is the rms distance between CA atoms of residues present in
// orig and their partners in comp, with no superposition.
func drift(orig, comp []*structure.Residue) (float64, int) {
	var a, b []*structure.Atom
	for i, r := range orig {
		if r.Missing {
			continue
		}
		ca, cb := r.Atom("CA"), comp[i].Atom("CA")
		if ca == nil || cb == nil {
			continue
		}
		a = append(a, ca)
		b = append(b, cb)
	}
	if len(a) == 0 {
		return 0, 0
	}
	ma, mb := structure.CoordMatrix(a), structure.CoordMatrix(b)
	var sum float64
	for i := range ma.Mat {
		for j := range ma.Mat[i] {
			d := float64(ma.Mat[i][j] - mb.Mat[i][j])
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(len(a))), len(a)
}

// DefaultOutput is where File writes if not told, <stem>_modified.pdb
// next to the original.
func DefaultOutput(originalPath string) string {
	p := strings.TrimSuffix(originalPath, ".gz")
	return strings.TrimSuffix(p, filepath.Ext(p)) + "_modified.pdb"
}

// File reads two structure files, reconciles them and writes the
// result to outPath, or DefaultOutput if outPath is "". Water is
// dropped from both first, since the engine does not keep it.
// It returns the absolute name of the file written.
func File(originalPath, completedPath, outPath string, opts Options) (string, *Report, error) {
	const op = "reconcile"
	original, err := structure.Load(originalPath)
	if err != nil {
		return "", nil, diag.Wrap(diag.KindInput, op, originalPath, err)
	}
	completed, err := structure.Load(completedPath)
	if err != nil {
		return "", nil, diag.Wrap(diag.KindInput, op, completedPath, err)
	}
	if n := original.Remove((*structure.Residue).IsWater); n > 0 {
		logger.Debug("dropped %d water molecules from %s", n, originalPath)
	}
	completed.Remove((*structure.Residue).IsWater)

	rpt, err := Reconcile(original, completed, opts)
	if err != nil {
		return "", nil, err
	}
	if outPath == "" {
		outPath = DefaultOutput(originalPath)
	}
	abs, err := original.Write(outPath)
	if err != nil {
		return "", nil, diag.Wrap(diag.KindIO, op, outPath, err)
	}
	logger.Info("%s", rpt)
	return abs, rpt, nil
}

func (r *Report) String() string {
	return fmt.Sprintf("inserted %d residues, restored %d, %d warnings, CA drift %.3f over %d residues",
		r.Inserted, r.Restored, len(r.Warnings), r.Drift, r.NDrift)
}
