// Package modelfix runs the whole job: write the alignment, have the
// engine build the missing residues, and put them into the original
// structure.
package modelfix

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrew-torda/modelfix/pkg/config"
	"github.com/andrew-torda/modelfix/pkg/diag"
	"github.com/andrew-torda/modelfix/pkg/engine"
	"github.com/andrew-torda/modelfix/pkg/logger"
	"github.com/andrew-torda/modelfix/pkg/pir"
	"github.com/andrew-torda/modelfix/pkg/reconcile"
	"github.com/andrew-torda/modelfix/pkg/stage"
	"github.com/andrew-torda/modelfix/pkg/structure"
)

// Result is what Transform made.
type Result struct {
	Output    string // absolute name of the completed structure file
	Alignment *pir.Alignment
	Report    *reconcile.Report
	Warnings  diag.Warnings // from every step
}

// Identifier is the name used for output files, the configured one or
// the stem of the structure file.
func Identifier(structurePath string, cfg config.Config) string {
	if cfg.PDBIdentifier != "" {
		return cfg.PDBIdentifier
	}
	base := strings.TrimSuffix(filepath.Base(structurePath), ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Transform adds the missing residues, and if cfg says so the missing
// atoms, to the structure in structurePath. sequencePath has the full
// sequence. The result is written to <identifier>_modeller.pdb in
// cfg.OutDir.
func Transform(ctx context.Context, structurePath, sequencePath string,
	cfg config.Config, eng engine.Completer) (*Result, error) {
	const op = "transform"
	structurePath, err := stage.CheckFile(structurePath)
	if err != nil {
		return nil, err
	}
	if sequencePath, err = stage.CheckFile(sequencePath); err != nil {
		return nil, err
	}
	id := Identifier(structurePath, cfg)
	res := &Result{}

	d := stage.Dir{
		Path:             cfg.WorkDir,
		CopyFrom:         cfg.WorkTemplate,
		Overwrite:        cfg.WorkDir == "" || cfg.CleanWorkDir,
		Temp:             cfg.WorkDir == "" && !cfg.KeepWorkDir,
		PurgeImmediately: true,
	}
	work, err := d.Enter()
	if err != nil {
		return nil, err
	}
	defer d.Exit()

	logger.Section("alignment")
	aln, err := pir.Build(structurePath, sequencePath, work)
	if err != nil {
		return nil, err
	}
	res.Alignment = aln
	res.Warnings = append(res.Warnings, aln.Warnings...)
	if !strings.EqualFold(aln.ID, id) {
		logger.Debug("sequence file calls the structure %s, output is named for %s", aln.ID, id)
	}

	level, w := engine.ParseLevel(cfg.Refinement)
	if w != nil {
		res.Warnings.Add(*w)
	}

	original, err := structure.Load(structurePath)
	if err != nil {
		return nil, diag.Wrap(diag.KindInput, op, structurePath, err)
	}
	original.Remove((*structure.Residue).IsWater)
	addrs := engine.Addresses(original)
	var chainIDs []string
	for _, c := range original.FilterChains(hasAtoms) {
		chainIDs = append(chainIDs, c.ID)
	}
	if miss := engine.Unresolved(engine.SequenceIndex(aln.Target, chainIDs), addrs); len(miss) > 0 {
		logger.Debug("the engine may not find %s in the sequence", strings.Join(miss, " "))
	}

	logger.Section("completion")
	job := engine.Job{
		WorkDir:       work,
		Alignment:     aln.Path,
		ID:            aln.ID,
		Code:          aln.Code,
		StructurePath: structurePath,
		Selection:     addrs,
		Level:         level,
	}
	done, err := eng.Complete(ctx, job)
	if err != nil {
		keep(&d)
		return nil, err
	}
	res.Warnings = append(res.Warnings, done.Warnings...)
	completed, err := structure.Load(done.Path)
	if err != nil {
		keep(&d)
		return nil, diag.Wrap(diag.KindEngine, op, done.Path, err)
	}
	completed.Remove((*structure.Residue).IsWater)

	logger.Section("reconcile")
	rpt, err := reconcile.Reconcile(original, completed, reconcile.Options{RestoreAtoms: cfg.AddMissingAtoms})
	if err != nil {
		return nil, err
	}
	res.Report = rpt
	res.Warnings = append(res.Warnings, rpt.Warnings...)

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, diag.Wrap(diag.KindIO, op, outDir, err)
	}
	outName := filepath.Join(outDir, id+"_modeller.pdb")
	if res.Output, err = original.Write(outName); err != nil {
		return nil, diag.Wrap(diag.KindIO, op, outName, err)
	}

	for _, w := range res.Warnings {
		logger.Warn("%s", w)
	}
	logger.Info("%s", rpt)
	logger.Info("wrote %s", res.Output)
	return res, nil
}

// hasAtoms is true for chains the engine sees in the template.
func hasAtoms(c *structure.Chain) bool { return len(c.Residues) > 0 }

// keep leaves the work dir behind so the engine's log can be read.
func keep(d *stage.Dir) {
	if d.Temp {
		d.Temp = false
		logger.Warn("keeping work directory %s", d.AbsPath())
	}
}
