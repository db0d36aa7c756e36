package modelfix

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew-torda/modelfix/pkg/config"
	"github.com/andrew-torda/modelfix/pkg/diag"
	"github.com/andrew-torda/modelfix/pkg/engine"
	"github.com/andrew-torda/modelfix/pkg/structure"
)

const testdir = "../structure/testdata/"

// fakeEngine copies a finished model into the work dir.
type fakeEngine struct {
	model string
	err   error
	warns diag.Warnings
	job   engine.Job
}

func (f *fakeEngine) Complete(_ context.Context, job engine.Job) (*engine.Result, error) {
	f.job = job
	if f.err != nil {
		return nil, f.err
	}
	out := filepath.Join(job.WorkDir, "model.pdb")
	in, err := os.Open(f.model)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	fp, err := os.Create(out)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	if _, err = io.Copy(fp, in); err != nil {
		return nil, err
	}
	return &engine.Result{Path: out, Warnings: f.warns}, nil
}

type inputs struct {
	pdb, fasta string
	cfg        config.Config
}

func setup(t *testing.T, fasta string) inputs {
	t.Helper()
	dir := t.TempDir()
	raw, err := os.ReadFile(testdir + "gap.pdb")
	require.NoError(t, err)
	in := inputs{
		pdb:   filepath.Join(dir, "1tst.pdb"),
		fasta: filepath.Join(dir, "1tst.fasta"),
		cfg:   config.Default(),
	}
	require.NoError(t, os.WriteFile(in.pdb, raw, 0644))
	require.NoError(t, os.WriteFile(in.fasta, []byte(fasta), 0644))
	in.cfg.OutDir = filepath.Join(dir, "out")
	return in
}

const twoChains = ">1TST_1\nAGTSK\n>1TST_2\nVL\n"

func TestTransform(t *testing.T) {
	in := setup(t, twoChains)
	in.cfg.AddMissingAtoms = true
	eng := &fakeEngine{model: testdir + "gap_completed.pdb"}

	res, err := Transform(context.Background(), in.pdb, in.fasta, in.cfg, eng)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(in.cfg.OutDir, "1tst_modeller.pdb"), res.Output)
	assert.Equal(t, []string{"3:A"}, eng.job.Selection)
	assert.Equal(t, "1TST", eng.job.Code)
	assert.Equal(t, "1TST", eng.job.ID)
	assert.Equal(t, engine.LevelVeryFast, eng.job.Level)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1, res.Report.Inserted)
	assert.Equal(t, 1, res.Report.Restored)

	s, err := structure.Load(res.Output)
	require.NoError(t, err)
	assert.Equal(t, "AGTSK/VL", s.Sequence())
	assert.Equal(t, 46, s.NAtoms())

	_, err = os.Stat(eng.job.WorkDir)
	assert.True(t, os.IsNotExist(err), "temporary work dir should be gone")
}

func TestTransformKeepWorkDir(t *testing.T) {
	in := setup(t, twoChains)
	in.cfg.WorkDir = filepath.Join(t.TempDir(), "work")
	in.cfg.PDBIdentifier = "mine"
	in.cfg.Refinement = "glacial"
	eng := &fakeEngine{model: testdir + "gap_completed.pdb"}

	res, err := Transform(context.Background(), in.pdb, in.fasta, in.cfg, eng)
	require.NoError(t, err)
	assert.Equal(t, "mine_modeller.pdb", filepath.Base(res.Output))
	assert.Equal(t, in.cfg.WorkDir, eng.job.WorkDir)
	assert.FileExists(t, filepath.Join(in.cfg.WorkDir, "1TST.pir"))
	assert.Equal(t, 1, res.Warnings.Count(diag.WarnRefinement))
	assert.Equal(t, engine.LevelVeryFast, eng.job.Level)
}

func TestTransformWarnings(t *testing.T) {
	in := setup(t, ">1TST\nAGTSKVL\n")
	eng := &fakeEngine{model: testdir + "gap_completed_mismatch.pdb"}
	eng.warns.Addf(diag.WarnSelection, "error while selecting missing residue %s", "9:B")
	res, err := Transform(context.Background(), in.pdb, in.fasta, in.cfg, eng)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Warnings.Count(diag.WarnChainCount))
	assert.Equal(t, 1, res.Warnings.Count(diag.WarnNameMismatch))
	assert.Equal(t, 1, res.Warnings.Count(diag.WarnSelection))
}

// A failed engine run leaves the temporary work dir, and the log the
// error points at, behind.
func TestTransformEngineLog(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter is a shell script")
	}
	in := setup(t, twoChains)
	py := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(py, []byte("#!/bin/sh\necho 'no modeller here'\nexit 1\n"), 0755))

	_, err := Transform(context.Background(), in.pdb, in.fasta, in.cfg, engine.NewModeller(py, "PROT"))
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.KindEngine), "got %v", err)

	const pointer = "see the log at "
	msg := err.Error()
	i := strings.Index(msg, pointer)
	require.GreaterOrEqual(t, i, 0, msg)
	logName := msg[i+len(pointer):]
	t.Cleanup(func() { os.RemoveAll(filepath.Dir(logName)) })

	assert.Equal(t, "1TST.log", filepath.Base(logName))
	raw, err := os.ReadFile(logName)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "no modeller here")
}

func TestTransformWorkTemplate(t *testing.T) {
	in := setup(t, twoChains)
	tmpl := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "restyp.lib"), []byte("lib\n"), 0644))
	in.cfg.WorkDir = filepath.Join(t.TempDir(), "work")
	require.NoError(t, os.MkdirAll(in.cfg.WorkDir, 0755))
	stale := filepath.Join(in.cfg.WorkDir, "1TST.BL00010001.pdb")
	require.NoError(t, os.WriteFile(stale, []byte("END\n"), 0644))
	in.cfg.CleanWorkDir = true
	in.cfg.WorkTemplate = tmpl

	_, err := Transform(context.Background(), in.pdb, in.fasta, in.cfg, &fakeEngine{model: testdir + "gap_completed.pdb"})
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(in.cfg.WorkDir, "restyp.lib"))
	assert.FileExists(t, filepath.Join(in.cfg.WorkDir, "1TST.pir"))

	// a temporary work dir starts as a copy too
	in.cfg.WorkDir = ""
	eng := &fakeEngine{model: testdir + "gap_completed.pdb", err: errors.New("stop")}
	_, err = Transform(context.Background(), in.pdb, in.fasta, in.cfg, eng)
	require.Error(t, err)
	t.Cleanup(func() { os.RemoveAll(eng.job.WorkDir) })
	assert.FileExists(t, filepath.Join(eng.job.WorkDir, "restyp.lib"))
}

func TestTransformErrors(t *testing.T) {
	in := setup(t, twoChains)
	ctx := context.Background()

	_, err := Transform(ctx, in.pdb+".nothere", in.fasta, in.cfg, &fakeEngine{})
	assert.True(t, diag.IsKind(err, diag.KindInput))

	engErr := diag.New(diag.KindEngine, "complete", "1TST", "no model. Please see the log at x.log")
	failed := &fakeEngine{err: engErr}
	_, err = Transform(ctx, in.pdb, in.fasta, in.cfg, failed)
	assert.True(t, errors.Is(err, engErr))
	assert.True(t, diag.IsKind(err, diag.KindEngine))
	assert.DirExists(t, failed.job.WorkDir, "work dir is kept after an engine failure")
	os.RemoveAll(failed.job.WorkDir)

	_, err = Transform(ctx, in.pdb, in.fasta, in.cfg, &fakeEngine{model: testdir + "gap_completed_short.pdb"})
	assert.True(t, diag.IsKind(err, diag.KindConsistency))
	assert.NoFileExists(t, filepath.Join(in.cfg.OutDir, "1tst_modeller.pdb"))

	noID := setup(t, "AGTSKVL\n")
	_, err = Transform(ctx, noID.pdb, noID.fasta, noID.cfg, &fakeEngine{})
	assert.True(t, diag.IsKind(err, diag.KindInput))
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "1abc", Identifier("/x/1abc.pdb", config.Config{}))
	assert.Equal(t, "1abc", Identifier("/x/1abc.pdb.gz", config.Config{}))
	assert.Equal(t, "given", Identifier("/x/1abc.pdb", config.Config{PDBIdentifier: "given"}))
}
