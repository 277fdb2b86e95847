package workflows

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mapforge/hlockit/internal/workspace"
)

// NewReconstructCommand creates the "reconstruct" command.
func NewReconstructCommand() *cobra.Command {
	f := &flags{}
	cfg := loadConfig()

	cmd := &cobra.Command{
		Use:   "reconstruct <images-dir>",
		Short: "Run SfM reconstruction from matched features",
		Long: `Triangulates a sparse model from features, pairs, and matches, writing it
to <workspace>/sparse. A global bundle adjustment pass refines the model
afterwards unless --no-bundle-adjustment is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, layout, opts, err := setup(cmd, args[0], f, "reconstruct")
			if err != nil {
				return err
			}
			for _, dep := range []struct{ path, hint string }{
				{layout.FeaturePath, "run 'hlockit extract' first"},
				{layout.PairsPath, "run 'hlockit pairs' first"},
				{layout.MatchesPath, "run 'hlockit match' first"},
			} {
				if err := workspace.RequireArtifact(dep.path, dep.hint); err != nil {
					return err
				}
			}

			start := time.Now()
			spin := newSpinner(cmd, "reconstructing")
			spin.Start()
			err = p.Reconstruct(cmd.Context())
			if err != nil {
				spin.Fail("reconstruction failed")
			} else {
				spin.Stop("model at " + layout.SfmDir)
			}
			return finish(cmd, "reconstruct", layout, opts, nil, start, err)
		},
	}

	addReconstructionFlags(cmd, f, cfg)
	cmd.Flags().StringVar(&f.feature, "feature", cfg.Pipeline.Feature, "Feature preset whose artifacts are used")
	addWorkspaceFlag(cmd, f)
	return cmd
}
