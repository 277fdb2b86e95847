// Package pipeline sequences delegated hloc stages over a workspace layout.
// Stages run synchronously in a fixed order; the first failure aborts the
// run. No retries, no partial recovery: the user fixes input and re-invokes.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mapforge/hlockit/internal/hloc"
	"github.com/mapforge/hlockit/internal/presets"
	"github.com/mapforge/hlockit/internal/workspace"
)

// Options carries the validated knobs for a pipeline run. One value is built
// per invocation from flags and config; nothing here is shared or mutated
// after New.
type Options struct {
	Feature              string
	Matcher              string
	MatcherWeights       string
	Pairing              string
	Retrieval            string
	TopK                 int
	CameraModel          string
	SingleCamera         bool
	NumThreads           int
	BundleAdjust         bool
	RefinePrincipalPoint bool
	Overwrite            bool
	Verbose              bool
}

// Validate checks every named preset and numeric bound against the schema.
// Runs before any Runner call.
func (o Options) Validate() error {
	return o.ValidateFor()
}

// ValidateFor checks only the fields the named stages read, so a single-stage
// invocation is not rejected over options it never forwards. With no stages
// given, everything is checked.
func (o Options) ValidateFor(stages ...string) error {
	if len(stages) == 0 {
		stages = []string{"extract", "pairs", "match", "reconstruct"}
	}
	use := make(map[string]bool, len(stages))
	for _, s := range stages {
		use[s] = true
	}

	// Every stage names its artifacts after the feature preset.
	if _, err := presets.FeatureByName(o.Feature); err != nil {
		return hloc.AsConfig(err)
	}
	if use["pairs"] {
		if err := presets.ValidPairing(o.Pairing); err != nil {
			return hloc.AsConfig(err)
		}
		if o.Pairing == "retrieval" {
			if _, err := presets.RetrievalByName(o.Retrieval); err != nil {
				return hloc.AsConfig(err)
			}
			if o.TopK < 1 {
				return hloc.Configf("top-k must be positive, got %d", o.TopK)
			}
		}
	}
	if use["match"] {
		if _, err := presets.MatcherByName(o.Matcher); err != nil {
			return hloc.AsConfig(err)
		}
		if err := presets.ValidMatcherWeights(o.MatcherWeights); err != nil {
			return hloc.AsConfig(err)
		}
		if err := presets.CheckCompatible(o.Feature, o.Matcher); err != nil {
			return hloc.AsConfig(err)
		}
	}
	if use["reconstruct"] {
		if err := presets.ValidCameraModel(o.CameraModel); err != nil {
			return hloc.AsConfig(err)
		}
	}
	return nil
}

// StageResult records one completed stage for status output and run history.
type StageResult struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Pipeline drives the external toolchain over one workspace.
type Pipeline struct {
	runner hloc.Runner
	layout *workspace.Layout
	opts   Options
	log    io.Writer
}

// New validates opts and builds a pipeline. The layout must already have
// been validated by the caller. An explicit stage list scopes validation to
// the fields those stages read; with none given, every field is checked.
func New(runner hloc.Runner, layout *workspace.Layout, opts Options, log io.Writer, stages ...string) (*Pipeline, error) {
	if err := opts.ValidateFor(stages...); err != nil {
		return nil, err
	}
	if log == nil {
		log = io.Discard
	}
	return &Pipeline{runner: runner, layout: layout, opts: opts, log: log}, nil
}

// Extract runs feature extraction for the configured extractor preset.
func (p *Pipeline) Extract(ctx context.Context) error {
	images, err := p.layout.Images()
	if err != nil {
		return err
	}
	fmt.Fprintf(p.log, "feature extraction: %s (%d images)\n", p.opts.Feature, len(images))
	return p.runner.ExtractFeatures(ctx, hloc.ExtractOptions{
		Conf:        p.opts.Feature,
		ImageDir:    p.layout.ImageDir,
		ExportDir:   p.layout.ArtifactDir,
		FeaturePath: p.layout.FeaturePath,
		ImageList:   images,
		Overwrite:   p.opts.Overwrite,
	})
}

// Pairs generates the image pair list, either all-vs-all or via global
// descriptor retrieval. Retrieval pairing first extracts the retrieval
// descriptors with a second extractor pass.
func (p *Pipeline) Pairs(ctx context.Context) error {
	images, err := p.layout.Images()
	if err != nil {
		return err
	}

	if p.opts.Pairing == "exhaustive" {
		fmt.Fprintf(p.log, "image pairing: exhaustive\n")
		return p.runner.PairsFromExhaustive(ctx, hloc.ExhaustivePairOptions{
			Output:    p.layout.PairsPath,
			ImageList: images,
			Features:  p.layout.FeaturePath,
		})
	}

	fmt.Fprintf(p.log, "feature extraction for retrieval: %s\n", p.opts.Retrieval)
	if err := p.runner.ExtractFeatures(ctx, hloc.ExtractOptions{
		Conf:        p.opts.Retrieval,
		ImageDir:    p.layout.ImageDir,
		ExportDir:   p.layout.ArtifactDir,
		FeaturePath: p.layout.RetrievalPath,
		ImageList:   images,
		Overwrite:   p.opts.Overwrite,
	}); err != nil {
		return err
	}

	topK := p.opts.TopK
	if len(images) < topK {
		topK = len(images)
	}
	fmt.Fprintf(p.log, "image pairing: retrieval (top %d)\n", topK)
	return p.runner.PairsFromRetrieval(ctx, hloc.RetrievalPairOptions{
		Descriptors: p.layout.RetrievalPath,
		Output:      p.layout.PairsPath,
		NumMatched:  topK,
	})
}

// Match runs feature matching over the pair list.
func (p *Pipeline) Match(ctx context.Context) error {
	matcher, err := presets.MatcherByName(p.opts.Matcher)
	if err != nil {
		return hloc.AsConfig(err)
	}
	weights := ""
	if matcher.HasWeights {
		weights = p.opts.MatcherWeights
		fmt.Fprintf(p.log, "feature matching: %s (%s)\n", p.opts.Matcher, weights)
	} else {
		fmt.Fprintf(p.log, "feature matching: %s\n", p.opts.Matcher)
	}
	return p.runner.MatchFeatures(ctx, hloc.MatchOptions{
		Conf:      p.opts.Matcher,
		Weights:   weights,
		Pairs:     p.layout.PairsPath,
		Features:  p.layout.FeaturePath,
		ExportDir: p.layout.ArtifactDir,
		Matches:   p.layout.MatchesPath,
		Overwrite: p.opts.Overwrite,
	})
}

// Reconstruct runs SfM mapping and optional bundle adjustment.
func (p *Pipeline) Reconstruct(ctx context.Context) error {
	images, err := p.layout.Images()
	if err != nil {
		return err
	}
	fmt.Fprintf(p.log, "reconstruction: %s camera, model at %s\n", p.opts.CameraModel, p.layout.SfmDir)
	return p.runner.Reconstruct(ctx, hloc.ReconstructOptions{
		SfmDir:               p.layout.SfmDir,
		ImageDir:             p.layout.ImageDir,
		Pairs:                p.layout.PairsPath,
		Features:             p.layout.FeaturePath,
		Matches:              p.layout.MatchesPath,
		ImageList:            images,
		CameraModel:          p.opts.CameraModel,
		SingleCamera:         p.opts.SingleCamera,
		NumThreads:           p.opts.NumThreads,
		BundleAdjust:         p.opts.BundleAdjust,
		RefinePrincipalPoint: p.opts.RefinePrincipalPoint,
		Verbose:              p.opts.Verbose,
	})
}

// Run executes the full pipeline: extract, pairs, match, reconstruct, in
// that order, aborting on the first error. Completed stage timings are
// returned even on failure.
func (p *Pipeline) Run(ctx context.Context) ([]StageResult, error) {
	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"extract", p.Extract},
		{"pairs", p.Pairs},
		{"match", p.Match},
		{"reconstruct", p.Reconstruct},
	}

	var results []StageResult
	for i, stage := range stages {
		fmt.Fprintf(p.log, "[%d/%d] %s\n", i+1, len(stages), stage.name)
		start := time.Now()
		err := stage.fn(ctx)
		elapsed := time.Since(start)
		if err != nil {
			return results, err
		}
		results = append(results, StageResult{Stage: stage.name, Duration: elapsed})
		fmt.Fprintf(p.log, "  completed in %s\n", elapsed.Round(time.Millisecond))
	}
	return results, nil
}
