package hloc

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ExecRunner invokes hloc entry points as python subprocesses.
type ExecRunner struct {
	// Python is the interpreter binary, e.g. "python3" or a venv path.
	Python string
	// Stdout and Stderr receive subprocess output. Either may be nil to
	// discard.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner using the given python interpreter.
// Subprocess output goes to our stderr unless quiet is set.
func NewExecRunner(python string, quiet bool) *ExecRunner {
	r := &ExecRunner{Python: python}
	if !quiet {
		r.Stdout = os.Stderr
		r.Stderr = os.Stderr
	}
	return r
}

// ExtractFeatures runs hloc.extract_features.
func (r *ExecRunner) ExtractFeatures(ctx context.Context, opts ExtractOptions) error {
	args := []string{
		"-m", "hloc.extract_features",
		"--conf", opts.Conf,
		"--image_dir", opts.ImageDir,
		"--export_dir", opts.ExportDir,
		"--feature_path", opts.FeaturePath,
	}
	if len(opts.ImageList) > 0 {
		listPath, err := r.writeImageList(opts.ExportDir, opts.ImageList)
		if err != nil {
			return &StageError{Stage: "extract", Err: err}
		}
		args = append(args, "--image_list", listPath)
	}
	if opts.Overwrite {
		args = append(args, "--overwrite")
	}
	return r.run(ctx, "extract", args)
}

// PairsFromExhaustive runs hloc.pairs_from_exhaustive.
func (r *ExecRunner) PairsFromExhaustive(ctx context.Context, opts ExhaustivePairOptions) error {
	args := []string{
		"-m", "hloc.pairs_from_exhaustive",
		"--output", opts.Output,
	}
	if opts.Features != "" {
		args = append(args, "--features", opts.Features)
	}
	if len(opts.ImageList) > 0 {
		listPath, err := r.writeImageList(filepath.Dir(opts.Output), opts.ImageList)
		if err != nil {
			return &StageError{Stage: "pairs", Err: err}
		}
		args = append(args, "--image_list", listPath)
	}
	return r.run(ctx, "pairs", args)
}

// PairsFromRetrieval runs hloc.pairs_from_retrieval.
func (r *ExecRunner) PairsFromRetrieval(ctx context.Context, opts RetrievalPairOptions) error {
	args := []string{
		"-m", "hloc.pairs_from_retrieval",
		"--descriptors", opts.Descriptors,
		"--output", opts.Output,
		"--num_matched", strconv.Itoa(opts.NumMatched),
	}
	return r.run(ctx, "pairs", args)
}

// MatchFeatures runs hloc.match_features. Weight overrides are applied by
// patching the preset dict before the call, since the module CLI does not
// expose them.
func (r *ExecRunner) MatchFeatures(ctx context.Context, opts MatchOptions) error {
	if opts.Weights == "" {
		args := []string{
			"-m", "hloc.match_features",
			"--conf", opts.Conf,
			"--pairs", opts.Pairs,
			"--export_dir", opts.ExportDir,
			"--features", opts.Features,
			"--matches", opts.Matches,
		}
		return r.run(ctx, "match", args)
	}

	script := fmt.Sprintf(`
import sys
from pathlib import Path
from hloc import match_features
conf = match_features.confs[%q]
conf["model"]["weights"] = %q
match_features.main(conf, Path(%q), Path(%q), matches=Path(%q), overwrite=%s)
`, opts.Conf, opts.Weights, opts.Pairs, opts.Features, opts.Matches, pyBool(opts.Overwrite))
	return r.run(ctx, "match", []string{"-c", script})
}

// Reconstruct runs hloc.reconstruction and optionally a global bundle
// adjustment pass through pycolmap.
func (r *ExecRunner) Reconstruct(ctx context.Context, opts ReconstructOptions) error {
	args := []string{
		"-m", "hloc.reconstruction",
		"--sfm_dir", opts.SfmDir,
		"--image_dir", opts.ImageDir,
		"--pairs", opts.Pairs,
		"--features", opts.Features,
		"--matches", opts.Matches,
	}
	if opts.SingleCamera {
		args = append(args, "--camera_mode", "SINGLE")
	} else {
		args = append(args, "--camera_mode", "PER_IMAGE")
	}
	if opts.CameraModel != "" {
		args = append(args, "--image_options", "camera_model="+opts.CameraModel)
	}
	if opts.NumThreads > 0 {
		args = append(args, "--mapper_options", "num_threads="+strconv.Itoa(opts.NumThreads))
	}
	if opts.Verbose {
		args = append(args, "--verbose")
	}
	if err := r.run(ctx, "reconstruct", args); err != nil {
		return err
	}

	if !opts.BundleAdjust {
		return nil
	}
	script := fmt.Sprintf(`
import pycolmap
rec = pycolmap.Reconstruction()
rec.read(%q)
pycolmap.bundle_adjustment(rec, pycolmap.BundleAdjustmentOptions())
if %s:
    pycolmap.bundle_adjustment(rec, pycolmap.BundleAdjustmentOptions(refine_principal_point=True))
rec.write(%q)
`, opts.SfmDir, pyBool(opts.RefinePrincipalPoint), opts.SfmDir)
	return r.run(ctx, "bundle-adjust", []string{"-c", script})
}

func (r *ExecRunner) run(ctx context.Context, stage string, args []string) error {
	python := r.Python
	if python == "" {
		python = "python3"
	}
	cmd := exec.CommandContext(ctx, python, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return &StageError{Stage: stage, Err: err}
	}
	return nil
}

// writeImageList materializes the image list as a text file for hloc's
// --image_list flag, one relative path per line.
func (r *ExecRunner) writeImageList(dir string, images []string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "image_list.txt")
	if err := os.WriteFile(path, []byte(strings.Join(images, "\n")+"\n"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
