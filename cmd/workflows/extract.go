package workflows

import (
	"time"

	"github.com/spf13/cobra"
)

// NewExtractCommand creates the "extract" command.
func NewExtractCommand() *cobra.Command {
	f := &flags{}
	cfg := loadConfig()

	cmd := &cobra.Command{
		Use:   "extract <images-dir>",
		Short: "Extract local features from an image directory",
		Long: `Runs the configured feature extractor over every image in the directory.

Descriptors land in <workspace>/hloc/<feature>.h5. Re-running skips existing
results unless --overwrite is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, layout, opts, err := setup(cmd, args[0], f, "extract")
			if err != nil {
				return err
			}

			start := time.Now()
			spin := newSpinner(cmd, "extracting "+opts.Feature)
			spin.Start()
			err = p.Extract(cmd.Context())
			if err != nil {
				spin.Fail("extraction failed")
			} else {
				spin.Stop("features at " + layout.FeaturePath)
			}
			return finish(cmd, "extract", layout, opts, nil, start, err)
		},
	}

	addExtractionFlags(cmd, f, cfg)
	return cmd
}
