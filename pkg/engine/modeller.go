package engine

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/andrew-torda/modelfix/pkg/diag"
	"github.com/andrew-torda/modelfix/pkg/logger"
)

const (
	DriverName  = "modelfix_driver.py"   // script written into the work dir
	OutputName  = "modelfix_output.txt"  // the script leaves the model's name here
	SkippedName = "modelfix_skipped.txt" // addresses the model did not answer to
)

// driverTmpl is MODELLER loop modelling with our own residue selection.
// The template structure is found through the alignment's structureX
// line, so the structure has to be in the work dir under its
// identifier. Each address is looked up in the model as "n:C" and then
// as "n". One that matches neither is skipped and written to the
// skipped file.
var driverTmpl = template.Must(template.New("driver").Funcs(template.FuncMap{
	"py": strconv.Quote,
}).Parse(`# written by modelfix, run {{.RunID}}
from modeller import environ, log, selection
from modeller.automodel import loopmodel, assess, refine

log.verbose()
env = environ()
env.io.atom_files_directory = ['.']

ADDRESSES = [{{range $i, $k := .Selection}}{{if $i}}, {{end}}{{py $k}}{{end}}]


def lookup(residues, addr):
    for key in (addr, addr.rsplit(':', 1)[0]):
        try:
            return residues[key]
        except KeyError:
            pass
    return None


class ModelfixLoop(loopmodel):
    def select_loop_atoms(self):
        sel = selection()
        skipped = []
        for addr in ADDRESSES:
            res = lookup(self.residues, addr)
            if res is None:
                skipped.append(addr)
                continue
            sel.add(res)
        with open({{py .Skipped}}, 'w') as fp:
            for addr in skipped:
                fp.write(addr + '\n')
        return sel


m = ModelfixLoop(env, alnfile={{py .Alignment}}, knowns={{py .Known}},
                 sequence={{py .Code}}, loop_assess_methods=assess.DOPE)
m.loop.md_level = {{.Level}}
m.auto_align()
m.make()

with open({{py .Output}}, 'w') as fp:
    if m.loop.outputs and m.loop.outputs[0].get('failure') is None:
        fp.write(m.loop.outputs[0]['name'])
`))

type driverData struct {
	RunID     string
	Alignment string
	Known     string
	Code      string
	Selection []string
	Level     string
	Output    string
	Skipped   string
}

// Modeller runs MODELLER through a generated Python script.
type Modeller struct {
	Python string   // interpreter, python3 if empty
	Known  string   // template code in the alignment
	Env    []string // added to the environment of the interpreter
}

// NewModeller returns a Modeller that runs python.
func NewModeller(python, known string) *Modeller {
	return &Modeller{Python: python, Known: known}
}

// WriteDriver writes the driver script for job into its work dir and
// returns its name.
func (m *Modeller) WriteDriver(job Job, runID string) (string, error) {
	fname := filepath.Join(job.WorkDir, DriverName)
	fp, err := os.Create(fname)
	if err != nil {
		return "", err
	}
	d := driverData{
		RunID:     runID,
		Alignment: filepath.Base(job.Alignment),
		Known:     m.Known,
		Code:      job.Code,
		Selection: job.Selection,
		Level:     job.Level.Python(),
		Output:    OutputName,
		Skipped:   SkippedName,
	}
	if err := driverTmpl.Execute(fp, d); err != nil {
		fp.Close()
		return "", err
	}
	return fname, fp.Close()
}

// stageInputs puts the alignment and the template structure where the
// engine will look for them.
func stageInputs(job Job) error {
	if err := copyInto(job.Alignment, filepath.Join(job.WorkDir, filepath.Base(job.Alignment))); err != nil {
		return err
	}
	name := job.ID + ".pdb"
	if strings.HasSuffix(job.StructurePath, ".gz") {
		name += ".gz"
	}
	return copyInto(job.StructurePath, filepath.Join(job.WorkDir, name))
}

// copyInto copies src to dst unless they are the same file.
func copyInto(src, dst string) error {
	si, err := os.Stat(src)
	if err != nil {
		return err
	}
	if di, err := os.Stat(dst); err == nil && os.SameFile(si, di) {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Complete runs the engine for job. Output of the interpreter goes to
// <code>.log in the work dir and, in verbose mode, to the logger.
// Nothing but ctx limits how long it runs. Addresses the model did not
// answer to come back as selection warnings.
func (m *Modeller) Complete(ctx context.Context, job Job) (*Result, error) {
	const op = "complete"
	runID := uuid.NewString()
	if err := stageInputs(job); err != nil {
		return nil, diag.Wrap(diag.KindIO, op, job.WorkDir, err)
	}
	script, err := m.WriteDriver(job, runID)
	if err != nil {
		return nil, diag.Wrap(diag.KindIO, op, job.WorkDir, err)
	}

	capt, err := logger.NewCapture(filepath.Join(job.WorkDir, job.Code+".log"), "engine: ")
	if err != nil {
		return nil, diag.Wrap(diag.KindIO, op, job.WorkDir, err)
	}
	defer capt.Close()

	python := m.Python
	if python == "" {
		python = "python3"
	}
	cmd := exec.CommandContext(ctx, python, filepath.Base(script))
	cmd.Dir = job.WorkDir
	cmd.Stdout = capt
	cmd.Stderr = capt
	if len(m.Env) > 0 {
		cmd.Env = append(os.Environ(), m.Env...)
	}
	logger.Info("run %s: building %d residues of %s, refinement %s",
		runID, len(job.Selection), job.Code, job.Level)
	runErr := cmd.Run()
	capt.Close()
	if runErr != nil {
		return nil, diag.New(diag.KindEngine, op, job.Code,
			"engine failed (%v). Please see the log at %s", runErr, capt.Path())
	}

	raw, err := os.ReadFile(filepath.Join(job.WorkDir, OutputName))
	name := strings.TrimSpace(string(raw))
	if err != nil || name == "" {
		return nil, diag.New(diag.KindEngine, op, job.Code,
			"engine failed to create a model. Please see the log at %s", capt.Path())
	}
	out := name
	if !filepath.IsAbs(out) {
		out = filepath.Join(job.WorkDir, name)
	}
	if _, err := os.Stat(out); err != nil {
		return nil, diag.New(diag.KindEngine, op, job.Code,
			"engine model %s is not there. Please see the log at %s", name, capt.Path())
	}
	if out, err = filepath.Abs(out); err != nil {
		return nil, diag.Wrap(diag.KindIO, op, out, err)
	}
	logger.Debug("run %s: model in %s", runID, out)
	res := &Result{Path: out}
	if res.Warnings, err = readSkipped(filepath.Join(job.WorkDir, SkippedName)); err != nil {
		return nil, diag.Wrap(diag.KindIO, op, job.WorkDir, err)
	}
	return res, nil
}

// readSkipped turns the addresses in fname into selection warnings. No
// file means nothing was skipped.
func readSkipped(fname string) (diag.Warnings, error) {
	raw, err := os.ReadFile(fname)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var warns diag.Warnings
	for _, addr := range strings.Fields(string(raw)) {
		warns.Addf(diag.WarnSelection,
			"error while selecting missing residue %s. Residue either missing from "+
				"the sequence file or there is a problem with the engine", addr)
	}
	return warns, nil
}
