package workflows

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mapforge/hlockit/internal/workspace"
)

// NewPairsCommand creates the "pairs" command.
func NewPairsCommand() *cobra.Command {
	f := &flags{}
	cfg := loadConfig()

	cmd := &cobra.Command{
		Use:   "pairs <images-dir>",
		Short: "Propose image pairs for matching",
		Long: `Writes the pair list to <workspace>/hloc/pairs.txt.

Exhaustive pairing proposes every pair; retrieval pairing extracts global
descriptors first and keeps the top-k most similar images per query.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, layout, opts, err := setup(cmd, args[0], f, "pairs")
			if err != nil {
				return err
			}
			if opts.Pairing == "exhaustive" {
				if err := workspace.RequireArtifact(layout.FeaturePath,
					"run 'hlockit extract' first"); err != nil {
					return err
				}
			}

			start := time.Now()
			spin := newSpinner(cmd, "pairing ("+opts.Pairing+")")
			spin.Start()
			err = p.Pairs(cmd.Context())
			if err != nil {
				spin.Fail("pairing failed")
			} else {
				spin.Stop("pairs at " + layout.PairsPath)
			}
			return finish(cmd, "pairs", layout, opts, nil, start, err)
		},
	}

	addPairingFlags(cmd, f, cfg)
	cmd.Flags().StringVar(&f.feature, "feature", cfg.Pipeline.Feature, "Feature preset whose descriptors exhaustive pairing reads")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Overwrite existing retrieval descriptors")
	addWorkspaceFlag(cmd, f)
	return cmd
}
