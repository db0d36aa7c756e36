// Package cli is the command line front end of modelfix.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrew-torda/modelfix/pkg/common"
	"github.com/andrew-torda/modelfix/pkg/config"
	"github.com/andrew-torda/modelfix/pkg/diag"
	"github.com/andrew-torda/modelfix/pkg/engine"
	"github.com/andrew-torda/modelfix/pkg/logger"
	"github.com/andrew-torda/modelfix/pkg/pir"
	"github.com/andrew-torda/modelfix/pkg/stage"
)

var version = "dev"

// newEngine makes the completion engine for a run. Tests swap it.
var newEngine = func(cfg config.Config) engine.Completer {
	return engine.NewModeller(cfg.Python, pir.KnownCode)
}

// usageError is a mistake on the command line rather than in the work.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// nArgs is cobra.ExactArgs, reporting a usage error.
func nArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// globals are the flags every command has.
type globals struct {
	configFile string
	verbose    bool
	logFile    string
	cfg        config.Config
}

// settings reads the config file and puts any flags that were given
// on top.
func (g *globals) settings(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	fl := cmd.Flags()
	if fl.Changed("verbose") {
		cfg.Verbose = g.verbose
	}
	if fl.Changed("log-file") {
		cfg.LogFile = g.logFile
	}
	logger.SetVerbose(cfg.Verbose)
	if cfg.LogFile != "" {
		if err := logger.Open(cfg.LogFile); err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
	}
	g.cfg = cfg
	return nil
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "modelfix",
		Short: "Fill in missing residues and atoms of a PDB structure",
		Long: `modelfix takes a PDB file with REMARK 465 and REMARK 470 records and
the full sequence of the protein. MODELLER builds what is missing and
the new residues are put back into the original file, keeping its
numbering.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.settings(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "TOML configuration file (default "+config.DefaultFile+" if present)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "show debug output, including the engine's")
	pf.StringVar(&g.logFile, "log-file", "", "send the log to stdout, stderr or a file")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(newRunCmd(g), newPirCmd(g), newReconcileCmd(g), newVersionCmd())
	return root
}

// Execute runs the command line in args and returns the exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	defer stage.Purge()
	defer logger.Close()
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return common.ExitSuccess
	}
	var uerr usageError
	if errors.As(err, &uerr) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintf(stderr, "modelfix: %v\n", err)
		fmt.Fprintln(stderr, "Run 'modelfix --help' for usage.")
		return common.ExitUsageError
	}
	if k, ok := diag.KindOf(err); ok {
		fmt.Fprintf(stderr, "modelfix: %s error: %v\n", k, err)
	} else {
		fmt.Fprintf(stderr, "modelfix: %v\n", err)
	}
	return common.ExitFailure
}
