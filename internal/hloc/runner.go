// Package hloc delegates pipeline stages to the external hloc/pycolmap
// toolchain. This package owns no geometry: every method shells out to
// python and surfaces the subprocess result as-is.
package hloc

import "context"

// ExtractOptions configures a feature extraction call.
type ExtractOptions struct {
	Conf        string   // extractor preset name
	ImageDir    string   // directory holding the input images
	ExportDir   string   // directory hloc writes artifacts into
	FeaturePath string   // output .h5 file
	ImageList   []string // image paths relative to ImageDir
	Overwrite   bool
}

// ExhaustivePairOptions configures all-vs-all pair generation.
type ExhaustivePairOptions struct {
	Output    string // pairs .txt file to write
	ImageList []string
	Features  string // feature .h5 file
}

// RetrievalPairOptions configures retrieval-based pair generation.
type RetrievalPairOptions struct {
	Descriptors string // global descriptor .h5 file
	Output      string // pairs .txt file to write
	NumMatched  int    // top-k pairs per image
}

// MatchOptions configures a feature matching call.
type MatchOptions struct {
	Conf      string // matcher preset name
	Weights   string // indoor/outdoor, empty when the matcher has none
	Pairs     string // pairs .txt file
	Features  string // feature .h5 file
	ExportDir string
	Matches   string // output matches .h5 file
	Overwrite bool
}

// ReconstructOptions configures SfM reconstruction.
type ReconstructOptions struct {
	SfmDir       string // output model directory
	ImageDir     string
	Pairs        string
	Features     string
	Matches      string
	ImageList    []string
	CameraModel  string
	SingleCamera bool
	NumThreads   int // 0 means use all CPUs
	// BundleAdjust runs a global bundle adjustment pass after mapping.
	BundleAdjust         bool
	RefinePrincipalPoint bool
	Verbose              bool
}

// Runner is the set of external pipeline entry points the CLI drives.
// The production implementation is ExecRunner; tests substitute a recorder.
type Runner interface {
	ExtractFeatures(ctx context.Context, opts ExtractOptions) error
	PairsFromExhaustive(ctx context.Context, opts ExhaustivePairOptions) error
	PairsFromRetrieval(ctx context.Context, opts RetrievalPairOptions) error
	MatchFeatures(ctx context.Context, opts MatchOptions) error
	Reconstruct(ctx context.Context, opts ReconstructOptions) error
}
