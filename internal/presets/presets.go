// Package presets declares the enumerated configuration schema for the hloc
// toolchain: feature extractors, matchers, retrieval models, pairing methods,
// and camera models, together with the compatibility rules between them.
// The schema is declared here in full rather than discovered from hloc at
// runtime, so an unknown name fails before any subprocess is launched.
package presets

import (
	"fmt"
	"sort"
	"strings"
)

// Feature describes a local feature extractor preset.
type Feature struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Matcher describes a feature matcher preset.
type Matcher struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	// HasWeights is true for matchers with indoor/outdoor weight variants.
	HasWeights bool `json:"hasWeights" yaml:"has_weights"`
}

// Retrieval describes a global descriptor preset used for retrieval pairing.
type Retrieval struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Features is the closed set of supported extractor presets.
var Features = []Feature{
	{Name: "superpoint_aachen", Description: "SuperPoint tuned for Aachen day-night"},
	{Name: "superpoint_max", Description: "SuperPoint with maximum keypoints"},
	{Name: "superpoint_inloc", Description: "SuperPoint tuned for InLoc indoor scenes"},
	{Name: "r2d2", Description: "R2D2 repeatable and reliable detector"},
	{Name: "d2net-ss", Description: "D2-Net single-scale"},
	{Name: "sift", Description: "Classic SIFT"},
	{Name: "sosnet", Description: "SIFT keypoints with SOSNet descriptors"},
	{Name: "disk", Description: "DISK learned local features"},
	{Name: "aliked-n16", Description: "ALIKED with 16-dim neighborhood"},
}

// Matchers is the closed set of supported matcher presets.
var Matchers = []Matcher{
	{Name: "superpoint+lightglue", Description: "LightGlue on SuperPoint features"},
	{Name: "disk+lightglue", Description: "LightGlue on DISK features"},
	{Name: "aliked+lightglue", Description: "LightGlue on ALIKED features"},
	{Name: "superglue", Description: "SuperGlue graph neural matcher", HasWeights: true},
	{Name: "superglue-fast", Description: "SuperGlue with fewer sinkhorn iterations", HasWeights: true},
	{Name: "NN-superpoint", Description: "Nearest neighbor with SuperPoint thresholds"},
	{Name: "NN-ratio", Description: "Nearest neighbor with ratio test"},
	{Name: "NN-mutual", Description: "Mutual nearest neighbor"},
	{Name: "adalam", Description: "AdaLAM spatial match filtering"},
}

// Retrievals is the closed set of supported retrieval presets.
var Retrievals = []Retrieval{
	{Name: "dir", Description: "Deep image retrieval (DIR)"},
	{Name: "netvlad", Description: "NetVLAD global descriptors"},
	{Name: "openibl", Description: "OpenIBL SFRS descriptors"},
	{Name: "eigenplaces", Description: "EigenPlaces descriptors"},
}

// PairingMethods are the supported strategies for proposing image pairs.
var PairingMethods = []string{"exhaustive", "retrieval"}

// CameraModels are the COLMAP camera models accepted by reconstruction.
var CameraModels = []string{
	"SIMPLE_PINHOLE", "PINHOLE", "SIMPLE_RADIAL", "RADIAL", "OPENCV", "FISHEYE",
}

// MatcherWeights are the weight variants for matchers with HasWeights.
var MatcherWeights = []string{"indoor", "outdoor"}

// Defaults chosen to match the upstream front-end.
const (
	DefaultFeature        = "superpoint_aachen"
	DefaultMatcher        = "superglue"
	DefaultMatcherWeights = "outdoor"
	DefaultPairing        = "retrieval"
	DefaultRetrieval      = "netvlad"
	DefaultCameraModel    = "OPENCV"
	DefaultTopK           = 50
)

// FeatureByName returns the named extractor preset.
func FeatureByName(name string) (Feature, error) {
	for _, f := range Features {
		if f.Name == name {
			return f, nil
		}
	}
	return Feature{}, fmt.Errorf("unknown feature preset %q — valid presets: %s", name, featureNames())
}

// MatcherByName returns the named matcher preset.
func MatcherByName(name string) (Matcher, error) {
	for _, m := range Matchers {
		if m.Name == name {
			return m, nil
		}
	}
	return Matcher{}, fmt.Errorf("unknown matcher preset %q — valid presets: %s", name, matcherNames())
}

// RetrievalByName returns the named retrieval preset.
func RetrievalByName(name string) (Retrieval, error) {
	for _, r := range Retrievals {
		if r.Name == name {
			return r, nil
		}
	}
	return Retrieval{}, fmt.Errorf("unknown retrieval preset %q — valid presets: %s", name, retrievalNames())
}

// ValidPairing reports whether name is a supported pairing method.
func ValidPairing(name string) error {
	for _, p := range PairingMethods {
		if p == name {
			return nil
		}
	}
	return fmt.Errorf("unknown pairing method %q — valid methods: %s", name, strings.Join(PairingMethods, ", "))
}

// ValidCameraModel reports whether name is a supported camera model.
func ValidCameraModel(name string) error {
	for _, m := range CameraModels {
		if m == name {
			return nil
		}
	}
	return fmt.Errorf("unknown camera model %q — valid models: %s", name, strings.Join(CameraModels, ", "))
}

// ValidMatcherWeights reports whether name is a supported weight variant.
func ValidMatcherWeights(name string) error {
	for _, w := range MatcherWeights {
		if w == name {
			return nil
		}
	}
	return fmt.Errorf("unknown matcher weights %q — valid weights: %s", name, strings.Join(MatcherWeights, ", "))
}

// matcherFeatures restricts certain matchers to compatible extractors.
// A matcher absent from this map accepts any feature preset.
var matcherFeatures = map[string][]string{
	"superpoint+lightglue": {"superpoint_aachen", "superpoint_max", "superpoint_inloc"},
	"disk+lightglue":       {"disk"},
	"aliked+lightglue":     {"aliked-n16"},
	"adalam":               {"sift", "sosnet"},
}

// CheckCompatible validates the feature/matcher pairing.
func CheckCompatible(feature, matcher string) error {
	if feature == "r2d2" && !strings.Contains(matcher, "NN") {
		return fmt.Errorf("feature %q is only compatible with matchers: NN-ratio, NN-mutual", feature)
	}
	allowed, ok := matcherFeatures[matcher]
	if !ok {
		return nil
	}
	for _, f := range allowed {
		if f == feature {
			return nil
		}
	}
	return fmt.Errorf("matcher %q is only compatible with features: %s", matcher, strings.Join(allowed, ", "))
}

func featureNames() string {
	names := make([]string, len(Features))
	for i, f := range Features {
		names[i] = f.Name
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func matcherNames() string {
	names := make([]string, len(Matchers))
	for i, m := range Matchers {
		names[i] = m.Name
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func retrievalNames() string {
	names := make([]string, len(Retrievals))
	for i, r := range Retrievals {
		names[i] = r.Name
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
