package workflows

import (
	"time"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the "run" command, the full pipeline.
func NewRunCommand() *cobra.Command {
	f := &flags{}
	cfg := loadConfig()

	cmd := &cobra.Command{
		Use:   "run <images-dir>",
		Short: "Run the full pipeline: extract, pairs, match, reconstruct",
		Long: `Runs every stage in order over one image directory.

Equivalent to invoking extract, pairs, match, and reconstruct one after the
other with the same workspace. The first failing stage aborts the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, layout, opts, err := setup(cmd, args[0], f)
			if err != nil {
				return err
			}

			start := time.Now()
			stages, err := p.Run(cmd.Context())
			return finish(cmd, "run", layout, opts, stages, start, err)
		},
	}

	addExtractionFlags(cmd, f, cfg)
	addPairingFlags(cmd, f, cfg)
	addMatchingFlags(cmd, f, cfg)
	addReconstructionFlags(cmd, f, cfg)
	return cmd
}
