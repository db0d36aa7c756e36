package engine

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew-torda/modelfix/pkg/diag"
)

// fakePython writes a shell script that stands in for the interpreter.
func fakePython(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter is a shell script")
	}
	fname := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(fname, []byte("#!/bin/sh\n"+body), 0755))
	return fname
}

func newJob(t *testing.T) Job {
	t.Helper()
	work := t.TempDir()
	src := t.TempDir()
	aln := filepath.Join(src, "1tst.pir")
	require.NoError(t, os.WriteFile(aln, []byte(">P1;PROT\n"), 0644))
	pdb := filepath.Join(src, "gap.pdb")
	require.NoError(t, os.WriteFile(pdb, []byte("END\n"), 0644))
	return Job{
		WorkDir:       work,
		Alignment:     aln,
		ID:            "1tst",
		Code:          "1TST",
		StructurePath: pdb,
		Selection:     []string{"3:A", "9"},
		Level:         LevelFast,
	}
}

func TestWriteDriver(t *testing.T) {
	job := newJob(t)
	m := NewModeller("python3", "PROT")
	fname, err := m.WriteDriver(job, "run-1")
	require.NoError(t, err)
	raw, err := os.ReadFile(fname)
	require.NoError(t, err)
	s := string(raw)
	assert.Contains(t, s, `ADDRESSES = ["3:A", "9"]`)
	assert.Contains(t, s, "for key in (addr, addr.rsplit(':', 1)[0]):")
	assert.Contains(t, s, `open("modelfix_skipped.txt", 'w')`)
	assert.Contains(t, s, `alnfile="1tst.pir", knowns="PROT"`)
	assert.Contains(t, s, `sequence="1TST", loop_assess_methods=assess.DOPE`)
	assert.Contains(t, s, "m.loop.md_level = refine.fast")
	assert.Contains(t, s, `open("modelfix_output.txt", 'w')`)

	job.Level = LevelNone
	job.Selection = nil
	fname, err = m.WriteDriver(job, "run-2")
	require.NoError(t, err)
	raw, _ = os.ReadFile(fname)
	assert.Contains(t, string(raw), "m.loop.md_level = None")
	assert.Contains(t, string(raw), "ADDRESSES = []")
}

func TestComplete(t *testing.T) {
	job := newJob(t)
	py := fakePython(t, `test -f modelfix_driver.py || exit 3
test -f 1tst.pdb || exit 4
test -f 1tst.pir || exit 5
echo "read_al_> alignment read"
echo "loop model made" >&2
echo "ATOM" > 1TST.BL00010001.pdb
printf 1TST.BL00010001.pdb > modelfix_output.txt
`)
	m := NewModeller(py, "PROT")
	res, err := m.Complete(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(job.WorkDir, "1TST.BL00010001.pdb"), res.Path)
	assert.Empty(t, res.Warnings)

	log, err := os.ReadFile(filepath.Join(job.WorkDir, "1TST.log"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "alignment read")
	assert.Contains(t, string(log), "loop model made")
}

func TestCompleteFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"exit status", "echo 'modeller exploded'\nexit 1\n"},
		{"no output name", "echo nothing\n"},
		{"empty output name", "printf '' > modelfix_output.txt\n"},
		{"no model file", "printf gone.pdb > modelfix_output.txt\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := newJob(t)
			m := NewModeller(fakePython(t, tt.body), "PROT")
			_, err := m.Complete(context.Background(), job)
			require.Error(t, err)
			assert.True(t, diag.IsKind(err, diag.KindEngine), "got %v", err)
			assert.ErrorContains(t, err, "see the log at "+filepath.Join(job.WorkDir, "1TST.log"))
		})
	}
}

func TestCompleteCancelled(t *testing.T) {
	job := newJob(t)
	m := NewModeller(fakePython(t, "sleep 10\n"), "PROT")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Complete(ctx, job)
	assert.True(t, diag.IsKind(err, diag.KindEngine))
}

func TestCompleteEnv(t *testing.T) {
	job := newJob(t)
	m := NewModeller(fakePython(t, `echo x > m.pdb
printf "$MODEL_NAME" > modelfix_output.txt
`), "PROT")
	m.Env = []string{"MODEL_NAME=m.pdb"}
	res, err := m.Complete(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "m.pdb", filepath.Base(res.Path))
}

func TestCompleteSkipped(t *testing.T) {
	job := newJob(t)
	m := NewModeller(fakePython(t, `echo x > m.pdb
printf m.pdb > modelfix_output.txt
printf '9\n12:B\n' > modelfix_skipped.txt
`), "PROT")
	res, err := m.Complete(context.Background(), job)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)
	for i, addr := range []string{"9", "12:B"} {
		assert.Equal(t, diag.WarnSelection, res.Warnings[i].Kind)
		assert.Contains(t, res.Warnings[i].Msg, "residue "+addr+".")
	}
}

// fakeModeller is just enough of the modeller package for the driver.
// Its model knows residues by number only, so every "n:C" address has
// to fall back to "n".
var fakeModeller = map[string]string{
	"modeller/__init__.py": `class _Log:
    def verbose(self):
        pass


class _IO:
    pass


class environ:
    def __init__(self):
        self.io = _IO()


class selection(list):
    def add(self, res):
        self.append(res)


log = _Log()
`,
	"modeller/automodel.py": `class assess:
    DOPE = 'DOPE'


class refine:
    very_fast = fast = slow = very_slow = slow_large = 'refine'


class _Loop:
    md_level = None
    outputs = []


class loopmodel:
    def __init__(self, env, alnfile=None, knowns=None, sequence=None,
                 loop_assess_methods=None):
        self.residues = {'1': 'r1', '2': 'r2', '3': 'r3'}
        self.sequence = sequence
        self.loop = _Loop()

    def auto_align(self):
        pass

    def make(self):
        sel = self.select_loop_atoms()
        with open('selected.txt', 'w') as fp:
            fp.write(','.join(sel))
        name = self.sequence + '.BL00010001.pdb'
        with open(name, 'w') as fp:
            fp.write('END\n')
        self.loop.outputs = [{'name': name, 'failure': None}]
`,
}

func TestDriverSelection(t *testing.T) {
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("no python3")
	}
	job := newJob(t)
	job.Selection = []string{"3:A", "9:B", "1:A"}
	for name, body := range fakeModeller {
		fname := filepath.Join(job.WorkDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(fname), 0755))
		require.NoError(t, os.WriteFile(fname, []byte(body), 0644))
	}

	res, err := NewModeller(python, "PROT").Complete(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(job.WorkDir, "1TST.BL00010001.pdb"), res.Path)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, diag.WarnSelection, res.Warnings[0].Kind)
	assert.Contains(t, res.Warnings[0].Msg, "9:B")

	sel, err := os.ReadFile(filepath.Join(job.WorkDir, "selected.txt"))
	require.NoError(t, err)
	assert.Equal(t, "r3,r1", string(sel))
}
