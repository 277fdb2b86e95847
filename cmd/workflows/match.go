package workflows

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mapforge/hlockit/internal/workspace"
)

// NewMatchCommand creates the "match" command.
func NewMatchCommand() *cobra.Command {
	f := &flags{}
	cfg := loadConfig()

	cmd := &cobra.Command{
		Use:   "match <images-dir>",
		Short: "Match features across proposed image pairs",
		Long: `Runs the configured matcher over the pair list.

Requires features and pairs from previous stages; matches land in
<workspace>/hloc/matches.h5.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, layout, opts, err := setup(cmd, args[0], f, "match")
			if err != nil {
				return err
			}
			if err := workspace.RequireArtifact(layout.FeaturePath,
				"run 'hlockit extract' first"); err != nil {
				return err
			}
			if err := workspace.RequireArtifact(layout.PairsPath,
				"run 'hlockit pairs' first"); err != nil {
				return err
			}

			start := time.Now()
			spin := newSpinner(cmd, "matching with "+opts.Matcher)
			spin.Start()
			err = p.Match(cmd.Context())
			if err != nil {
				spin.Fail("matching failed")
			} else {
				spin.Stop("matches at " + layout.MatchesPath)
			}
			return finish(cmd, "match", layout, opts, nil, start, err)
		},
	}

	addMatchingFlags(cmd, f, cfg)
	cmd.Flags().StringVar(&f.feature, "feature", cfg.Pipeline.Feature, "Feature preset whose descriptors are matched")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Overwrite existing matches")
	addWorkspaceFlag(cmd, f)
	return cmd
}
