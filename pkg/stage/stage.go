// Package stage looks after the directories a run works in.
// It never changes the working directory of the process. Callers get an
// absolute path and use it.
package stage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/andrew-torda/modelfix/pkg/diag"
	"github.com/andrew-torda/modelfix/pkg/logger"
)

// Dir describes a directory to work in.
//
// With Overwrite, an existing directory is removed first and, if
// CopyFrom is set and exists, the new one starts as a copy of it.
// A Temp directory is removed by Exit, or left until Purge is called
// if PurgeImmediately is false. A Dir with no Path gets a new name under
// the system temporary directory.
type Dir struct {
	Path             string
	CopyFrom         string
	Overwrite        bool
	Temp             bool
	PurgeImmediately bool

	abs string
}

var (
	pmu     sync.Mutex
	pending []string // temp dirs waiting for Purge
)

// Enter makes the directory ready and returns its absolute path.
func (d *Dir) Enter() (string, error) {
	const op = "enter directory"
	path := d.Path
	if path == "" {
		path = filepath.Join(os.TempDir(), "modelfix-"+uuid.NewString())
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", diag.Wrap(diag.KindIO, op, path, err)
	}
	exists := isDir(abs)
	if d.Overwrite && exists {
		if err := os.RemoveAll(abs); err != nil {
			return "", diag.Wrap(diag.KindIO, op, abs, err)
		}
		exists = false
	}
	switch {
	case d.Overwrite && d.CopyFrom != "" && isDir(d.CopyFrom):
		if err := copyTree(d.CopyFrom, abs); err != nil {
			return "", diag.Wrap(diag.KindIO, op, abs, err)
		}
	case !exists:
		if err := os.MkdirAll(abs, 0755); err != nil {
			return "", diag.Wrap(diag.KindIO, op, abs, err)
		}
	}
	d.abs = abs
	logger.Debug("working in %s", abs)
	return abs, nil
}

// AbsPath is the absolute path from the last Enter.
func (d *Dir) AbsPath() string { return d.abs }

// Exit removes a Temp directory, now or at Purge. It does nothing to
// other directories.
func (d *Dir) Exit() error {
	if !d.Temp || d.abs == "" {
		return nil
	}
	abs := d.abs
	d.abs = ""
	if !d.PurgeImmediately {
		pmu.Lock()
		pending = append(pending, abs)
		pmu.Unlock()
		return nil
	}
	logger.Debug("removing %s", abs)
	return os.RemoveAll(abs)
}

// Purge removes the temp directories whose removal was put off.
// Call it on the way out of the program.
func Purge() error {
	pmu.Lock()
	dirs := pending
	pending = nil
	pmu.Unlock()
	var errs []error
	for _, d := range dirs {
		if err := os.RemoveAll(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CheckFile returns the absolute path of fname, or an input error if
// there is nothing there.
func CheckFile(fname string) (string, error) {
	abs, err := filepath.Abs(fname)
	if err != nil {
		return "", diag.Wrap(diag.KindInput, "check file", fname, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", diag.New(diag.KindInput, "check file", abs,
			"file does not exist. Please provide a valid filename")
	}
	return abs, nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// copyTree copies the directory src to dst, which must not exist.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if de.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !de.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	fi, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
