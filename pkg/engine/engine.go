// Package engine drives the external structure completion engine.
//
// The engine is behind the Completer interface. Modeller is the one we
// ship. It writes a small Python driver for MODELLER's loop modelling
// and runs it in the job's work directory. Addresses names the missing
// residues the engine should build. The engine resolves them against
// its own model.
package engine

import (
	"context"

	"github.com/andrew-torda/modelfix/pkg/diag"
)

// Job is one completion run.
type Job struct {
	WorkDir       string   // where the engine runs and leaves its files
	Alignment     string   // PIR file naming the template and target
	ID            string   // template identifier as written in the alignment
	Code          string   // target code in the alignment
	StructurePath string   // template structure
	Selection     []string // addresses, "n:C", of the residues to build
	Level         Level
}

// Result is what a completion run leaves behind.
type Result struct {
	Path     string        // absolute name of the completed structure
	Warnings diag.Warnings // addresses the engine could not select
}

// Completer builds the missing parts of a structure.
type Completer interface {
	Complete(ctx context.Context, job Job) (*Result, error)
}
