package cli

import (
	"github.com/spf13/cobra"

	"github.com/andrew-torda/modelfix/pkg/logger"
	"github.com/andrew-torda/modelfix/pkg/reconcile"
)

func newReconcileCmd(g *globals) *cobra.Command {
	var out string
	var atoms bool
	cmd := &cobra.Command{
		Use:   "reconcile <original.pdb> <completed.pdb>",
		Short: "Put residues from a completed model into the original structure",
		Long: `Takes the residues listed in REMARK 465 of the original from the
completed structure, by position, and writes <original>_modified.pdb
unless told otherwise.`,
		Args: nArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := reconcile.Options{RestoreAtoms: g.cfg.AddMissingAtoms}
			if cmd.Flags().Changed("atoms") {
				opts.RestoreAtoms = atoms
			}
			path, rpt, err := reconcile.File(args[0], args[1], out, opts)
			if err != nil {
				return err
			}
			for _, w := range rpt.Warnings {
				logger.Warn("%s", w)
			}
			cmd.Println(path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <original>_modified.pdb)")
	cmd.Flags().BoolVar(&atoms, "atoms", false, "also replace residues listed in REMARK 470")
	return cmd
}
