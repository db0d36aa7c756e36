// Package common has the few constants and helpers shared by the
// modelfix packages and commands.
package common

import (
	"fmt"
	"io"
	"os"
)

const (
	ExitSuccess = iota
	ExitFailure
	ExitUsageError
)

const (
	GapChar    byte = '-' // gaps and, in PIR template blocks, chain breaks
	ChainBreak byte = '/' // separates chains within one sequence string
)

// WrtTemp writes a string to a temporary file and returns
// the filename. It is used all over the place in testing.
// The file is made in dir. If dir is "", the system temporary
// directory is used.
func WrtTemp(dir, s string) (string, error) {
	fTmp, err := os.CreateTemp(dir, "_del_me_testing")
	if err != nil {
		return "", fmt.Errorf("tempfile fail: %w", err)
	}
	defer fTmp.Close()

	if _, err := io.WriteString(fTmp, s); err != nil {
		return "", fmt.Errorf("writing string to temp file %v: %w", fTmp.Name(), err)
	}
	return fTmp.Name(), nil
}
