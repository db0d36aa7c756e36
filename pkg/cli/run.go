package cli

import (
	"github.com/spf13/cobra"

	"github.com/andrew-torda/modelfix/pkg/modelfix"
)

type runFlags struct {
	atoms       bool
	id          string
	refinement  string
	python      string
	workDir     string
	keepWorkDir bool
	clean       bool
	template    string
	outDir      string
}

func newRunCmd(g *globals) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run <structure.pdb> <sequence.fasta>",
		Short: "Build missing residues with MODELLER and put them back",
		Long: `Writes the alignment, runs MODELLER loop modelling on the missing
residues and writes <identifier>_modeller.pdb with the new residues in
the original numbering.`,
		Args: nArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			fl := cmd.Flags()
			if fl.Changed("atoms") {
				cfg.AddMissingAtoms = f.atoms
			}
			if fl.Changed("id") {
				cfg.PDBIdentifier = f.id
			}
			if fl.Changed("refinement") {
				cfg.Refinement = f.refinement
			}
			if fl.Changed("python") {
				cfg.Python = f.python
			}
			if fl.Changed("work-dir") {
				cfg.WorkDir = f.workDir
			}
			if fl.Changed("keep-work-dir") {
				cfg.KeepWorkDir = f.keepWorkDir
			}
			if fl.Changed("clean-work-dir") {
				cfg.CleanWorkDir = f.clean
			}
			if fl.Changed("work-template") {
				cfg.WorkTemplate = f.template
			}
			if fl.Changed("out-dir") {
				cfg.OutDir = f.outDir
			}
			res, err := modelfix.Transform(cmd.Context(), args[0], args[1], cfg, newEngine(cfg))
			if err != nil {
				return err
			}
			cmd.Println(res.Output)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.BoolVar(&f.atoms, "atoms", false, "also rebuild residues listed in REMARK 470")
	fl.StringVar(&f.id, "id", "", "identifier for output files (default: structure file name)")
	fl.StringVar(&f.refinement, "refinement", "", "none, very_fast, fast, slow, very_slow or slow_large")
	fl.StringVar(&f.python, "python", "", "python interpreter with MODELLER")
	fl.StringVar(&f.workDir, "work-dir", "", "directory for the engine's files (default: temporary)")
	fl.BoolVar(&f.keepWorkDir, "keep-work-dir", false, "do not remove the temporary work directory")
	fl.BoolVar(&f.clean, "clean-work-dir", false, "empty the work directory before the run")
	fl.StringVar(&f.template, "work-template", "", "directory copied into a new or cleaned work directory")
	fl.StringVarP(&f.outDir, "out-dir", "o", "", "directory for the result")
	return cmd
}
