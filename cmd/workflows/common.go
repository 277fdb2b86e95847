// Package workflows provides the pipeline subcommands: extract, pairs,
// match, reconstruct, and run. Each maps validated flags onto one or more
// delegated hloc calls over a shared workspace layout.
package workflows

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapforge/hlockit/internal/config"
	"github.com/mapforge/hlockit/internal/history"
	"github.com/mapforge/hlockit/internal/hloc"
	"github.com/mapforge/hlockit/internal/pipeline"
	"github.com/mapforge/hlockit/internal/presets"
	"github.com/mapforge/hlockit/internal/progress"
	"github.com/mapforge/hlockit/internal/workspace"
)

// newRunner builds the production runner. Tests substitute a recorder here
// to observe delegation without a python toolchain.
var newRunner = func(python string, quiet bool) hloc.Runner {
	return hloc.NewExecRunner(python, quiet)
}

// historyStore is swapped for a temp store in tests.
var historyStore = history.DefaultStore

// flags holds the option set shared by the workflow commands. Values default
// from the config layer; flags always win.
type flags struct {
	feature        string
	matcher        string
	matcherWeights string
	pairing        string
	retrieval      string
	topK           int
	cameraModel    string
	singleCamera   bool
	numThreads     int
	noBundleAdjust bool
	refinePP       bool
	overwrite      bool
	workspaceDir   string
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// A broken config file surfaces via 'config validate'; commands
		// still get working built-in defaults.
		cfg = defaultConfig()
	}
	return cfg
}

// defaultConfig mirrors the defaults the config layer declares, for when the
// config file itself cannot be read.
func defaultConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Python = "python3"
	cfg.Pipeline.Feature = presets.DefaultFeature
	cfg.Pipeline.Matcher = presets.DefaultMatcher
	cfg.Pipeline.MatcherWeights = presets.DefaultMatcherWeights
	cfg.Pipeline.Pairing = presets.DefaultPairing
	cfg.Pipeline.Retrieval = presets.DefaultRetrieval
	cfg.Pipeline.TopK = presets.DefaultTopK
	cfg.Pipeline.CameraModel = presets.DefaultCameraModel
	cfg.Pipeline.SingleCamera = true
	cfg.Output.Color = true
	cfg.Output.Progress = true
	return cfg
}

func addExtractionFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	cmd.Flags().StringVar(&f.feature, "feature", cfg.Pipeline.Feature, "Feature extractor preset (see 'hlockit presets features')")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Overwrite existing artifacts")
	addWorkspaceFlag(cmd, f)
}

func addPairingFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	cmd.Flags().StringVar(&f.pairing, "pairing", cfg.Pipeline.Pairing, "Pairing method: exhaustive | retrieval")
	cmd.Flags().StringVar(&f.retrieval, "retrieval", cfg.Pipeline.Retrieval, "Retrieval preset for retrieval pairing")
	cmd.Flags().IntVar(&f.topK, "top-k", cfg.Pipeline.TopK, "Top matches per image in retrieval pairing")
}

func addMatchingFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	cmd.Flags().StringVar(&f.matcher, "matcher", cfg.Pipeline.Matcher, "Feature matcher preset (see 'hlockit presets matchers')")
	cmd.Flags().StringVar(&f.matcherWeights, "matcher-weights", cfg.Pipeline.MatcherWeights, "Matcher weights: indoor | outdoor")
}

func addReconstructionFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	cmd.Flags().StringVar(&f.cameraModel, "camera-model", cfg.Pipeline.CameraModel, "COLMAP camera model")
	cmd.Flags().BoolVar(&f.singleCamera, "single-camera", cfg.Pipeline.SingleCamera, "Share one camera across all images")
	cmd.Flags().IntVar(&f.numThreads, "num-threads", 0, "Mapper threads (0 = all CPUs)")
	cmd.Flags().BoolVar(&f.noBundleAdjust, "no-bundle-adjustment", false, "Skip global bundle adjustment")
	cmd.Flags().BoolVar(&f.refinePP, "refine-principal-point", true, "Refine the principal point during bundle adjustment")
}

func addWorkspaceFlag(cmd *cobra.Command, f *flags) {
	if cmd.Flags().Lookup("workspace") == nil {
		cmd.Flags().StringVar(&f.workspaceDir, "workspace", "", "Artifact directory (default: parent of the image directory)")
	}
}

// options maps flags onto validated pipeline options.
func (f *flags) options(cfg *config.Config, verbose bool) pipeline.Options {
	fill := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	topK := f.topK
	if topK == 0 {
		topK = cfg.Pipeline.TopK
	}
	return pipeline.Options{
		Feature:              fill(f.feature, cfg.Pipeline.Feature),
		Matcher:              fill(f.matcher, cfg.Pipeline.Matcher),
		MatcherWeights:       fill(f.matcherWeights, cfg.Pipeline.MatcherWeights),
		Pairing:              fill(f.pairing, cfg.Pipeline.Pairing),
		Retrieval:            fill(f.retrieval, cfg.Pipeline.Retrieval),
		TopK:                 topK,
		CameraModel:          fill(f.cameraModel, cfg.Pipeline.CameraModel),
		SingleCamera:         f.singleCamera,
		NumThreads:           f.numThreads,
		BundleAdjust:         !f.noBundleAdjust,
		RefinePrincipalPoint: f.refinePP,
		Overwrite:            f.overwrite,
		Verbose:              verbose,
	}
}

// setup resolves and validates the layout, then builds the pipeline. The
// stage list scopes option validation to what the command actually runs.
// Nothing external runs here; every failure is a configuration error.
func setup(cmd *cobra.Command, imageDir string, f *flags, stages ...string) (*pipeline.Pipeline, *workspace.Layout, pipeline.Options, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	cfg := loadConfig()
	opts := f.options(cfg, verbose)

	layout, err := workspace.Resolve(imageDir, f.workspaceDir, opts.Feature, opts.Retrieval)
	if err != nil {
		return nil, nil, opts, err
	}
	if err := layout.Validate(); err != nil {
		return nil, nil, opts, err
	}

	var log io.Writer = os.Stderr
	if quiet {
		log = io.Discard
	}
	runner := newRunner(cfg.Python, quiet || !verbose)

	p, err := pipeline.New(runner, layout, opts, log, stages...)
	if err != nil {
		return nil, nil, opts, err
	}
	if verbose {
		fmt.Fprintln(log, layout.Describe())
	}
	return p, layout, opts, nil
}

// newSpinner builds a stage spinner honoring the --json flag and the
// output.progress config key.
func newSpinner(cmd *cobra.Command, label string) *progress.Spinner {
	spin := progress.NewSpinner(label)
	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		spin.Enabled = false
	}
	if !loadConfig().Output.Progress {
		spin.Enabled = false
	}
	return spin
}

// result is the JSON shape emitted under --json.
type result struct {
	Command    string                 `json:"command"`
	Layout     *workspace.Layout      `json:"layout"`
	Stages     []pipeline.StageResult `json:"stages,omitempty"`
	DurationMs int64                  `json:"durationMs"`
	OK         bool                   `json:"ok"`
	Error      string                 `json:"error,omitempty"`
}

// finish records history, emits the result, and passes the error through.
func finish(cmd *cobra.Command, name string, layout *workspace.Layout, opts pipeline.Options,
	stages []pipeline.StageResult, start time.Time, runErr error) error {

	elapsed := time.Since(start)

	run := history.Run{
		Timestamp:  start,
		Command:    name,
		Feature:    opts.Feature,
		Matcher:    opts.Matcher,
		DurationMs: elapsed.Milliseconds(),
	}
	if layout != nil {
		run.ImageDir = layout.ImageDir
		if images, err := layout.Images(); err == nil {
			run.Images = len(images)
		}
	}
	for _, s := range stages {
		run.Stages = append(run.Stages, history.StageTiming{Stage: s.Stage, DurationMs: s.Duration.Milliseconds()})
	}
	if runErr != nil {
		run.Failed = true
		run.Error = runErr.Error()
	}
	store := historyStore()
	_ = store.Rotate()
	store.Record(run)

	jsonFlag, _ := cmd.Flags().GetBool("json")
	if jsonFlag {
		res := result{
			Command:    name,
			Layout:     layout,
			Stages:     stages,
			DurationMs: elapsed.Milliseconds(),
			OK:         runErr == nil,
		}
		if runErr != nil {
			res.Error = runErr.Error()
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
		return runErr
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	if runErr == nil && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s completed in %s\n", name, elapsed.Round(time.Millisecond))
	}
	return runErr
}
