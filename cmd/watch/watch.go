// Package watch provides the "hlockit watch" command: re-run pipeline
// stages automatically as new images land in a directory.
package watch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapforge/hlockit/internal/config"
	"github.com/mapforge/hlockit/internal/hloc"
	"github.com/mapforge/hlockit/internal/pipeline"
	"github.com/mapforge/hlockit/internal/watch"
	"github.com/mapforge/hlockit/internal/workspace"
)

// newRunner mirrors the workflow commands' substitution point for tests.
var newRunner = func(python string, quiet bool) hloc.Runner {
	return hloc.NewExecRunner(python, quiet)
}

// NewCommand creates the "watch" command.
func NewCommand() *cobra.Command {
	var (
		debounceMs int
		full       bool
	)

	cmd := &cobra.Command{
		Use:   "watch <images-dir>",
		Short: "Watch an image directory and re-run extraction on new images",
		Long: `Monitors the directory and re-runs feature extraction once a burst of new
images settles. With --full the entire pipeline runs instead, so the sparse
model stays current as a capture session fills the directory.

Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet, _ := cmd.Flags().GetBool("quiet")
			verbose, _ := cmd.Flags().GetBool("verbose")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			layout, err := workspace.Resolve(args[0], "", cfg.Pipeline.Feature, cfg.Pipeline.Retrieval)
			if err != nil {
				return err
			}
			// The directory may start empty; only its existence is required.
			if _, err := os.Stat(layout.ImageDir); err != nil {
				return hloc.Configf("image directory %s does not exist — check the path", args[0])
			}

			opts := pipeline.Options{
				Feature:        cfg.Pipeline.Feature,
				Matcher:        cfg.Pipeline.Matcher,
				MatcherWeights: cfg.Pipeline.MatcherWeights,
				Pairing:        cfg.Pipeline.Pairing,
				Retrieval:      cfg.Pipeline.Retrieval,
				TopK:           cfg.Pipeline.TopK,
				CameraModel:    cfg.Pipeline.CameraModel,
				SingleCamera:   cfg.Pipeline.SingleCamera,
				Verbose:        verbose,
			}
			// Extraction-only mode never reads the matcher or camera
			// settings; validate just what will run.
			stages := []string{"extract"}
			if full {
				stages = nil
			}
			if err := opts.ValidateFor(stages...); err != nil {
				return err
			}

			var log io.Writer = os.Stderr
			if quiet {
				log = io.Discard
			}
			runner := newRunner(cfg.Python, quiet || !verbose)

			w, err := watch.New(layout.ImageDir, time.Duration(debounceMs)*time.Millisecond)
			if err != nil {
				return err
			}
			w.Handler = func(paths []string) error {
				if err := layout.Validate(); err != nil {
					return err
				}
				p, err := pipeline.New(runner, layout, opts, log, stages...)
				if err != nil {
					return err
				}
				if full {
					_, err := p.Run(cmd.Context())
					return err
				}
				return p.Extract(cmd.Context())
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", layout.ImageDir)
			return w.Start(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", 2000, "Quiet period in milliseconds before re-running")
	cmd.Flags().BoolVar(&full, "full", false, "Re-run the full pipeline instead of extraction only")
	return cmd
}
