package cli

import (
	"github.com/spf13/cobra"

	"github.com/andrew-torda/modelfix/pkg/logger"
	"github.com/andrew-torda/modelfix/pkg/pir"
)

func newPirCmd(_ *globals) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "pir <structure.pdb> <sequence.fasta>",
		Short: "Write the PIR alignment only",
		Args:  nArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := pir.Build(args[0], args[1], outDir)
			if err != nil {
				return err
			}
			for _, w := range a.Warnings {
				logger.Warn("%s", w)
			}
			cmd.Println(a.Path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "directory for the alignment")
	return cmd
}
