// Package workspace derives and validates the on-disk layout a pipeline run
// operates on. The layout mirrors the upstream convention: artifacts live in
// an hloc/ directory next to the images, the SfM model in sparse/.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mapforge/hlockit/internal/hloc"
)

// Layout holds every path a pipeline run reads or writes.
type Layout struct {
	ImageDir      string `json:"imageDir"`
	ArtifactDir   string `json:"artifactDir"` // hloc working directory
	FeaturePath   string `json:"featurePath"`
	RetrievalPath string `json:"retrievalPath"`
	PairsPath     string `json:"pairsPath"`
	MatchesPath   string `json:"matchesPath"`
	SfmDir        string `json:"sfmDir"`
}

// imageExtensions are the raster formats we hand to the extractor.
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".tif": true, ".tiff": true,
	".bmp": true, ".webp": true,
}

// Resolve builds the layout for an images directory. workspaceDir overrides
// the default artifact location (the images directory's parent) when
// non-empty. feature and retrieval name the .h5 files.
func Resolve(imageDir, workspaceDir, feature, retrieval string) (*Layout, error) {
	abs, err := filepath.Abs(imageDir)
	if err != nil {
		return nil, hloc.Configf("invalid image directory %q: %s", imageDir, err)
	}

	root := filepath.Dir(abs)
	if workspaceDir != "" {
		root, err = filepath.Abs(workspaceDir)
		if err != nil {
			return nil, hloc.Configf("invalid workspace directory %q: %s", workspaceDir, err)
		}
	}

	artifacts := filepath.Join(root, "hloc")
	return &Layout{
		ImageDir:      abs,
		ArtifactDir:   artifacts,
		FeaturePath:   filepath.Join(artifacts, feature+".h5"),
		RetrievalPath: filepath.Join(artifacts, retrieval+".h5"),
		PairsPath:     filepath.Join(artifacts, "pairs.txt"),
		MatchesPath:   filepath.Join(artifacts, "matches.h5"),
		SfmDir:        filepath.Join(root, "sparse"),
	}, nil
}

// Validate checks that the image directory exists and holds images, and that
// the artifact directory can be created. All failures are configuration
// errors; nothing external has run yet.
func (l *Layout) Validate() error {
	info, err := os.Stat(l.ImageDir)
	if os.IsNotExist(err) {
		return hloc.Configf("image directory %s does not exist — check the path", l.ImageDir)
	}
	if err != nil {
		return hloc.Configf("cannot access image directory %s: %s", l.ImageDir, err)
	}
	if !info.IsDir() {
		return hloc.Configf("%s is not a directory — pass the directory holding your images", l.ImageDir)
	}

	images, err := l.Images()
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return hloc.Configf("no images found in %s — supported extensions: %s",
			l.ImageDir, strings.Join(sortedExtensions(), ", "))
	}

	if err := os.MkdirAll(l.ArtifactDir, 0755); err != nil {
		return hloc.Configf("cannot create workspace directory %s: %s", l.ArtifactDir, err)
	}
	return nil
}

// IsImage reports whether name has a supported raster image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Images lists image files in the image directory, sorted, as paths relative
// to ImageDir with forward slashes. Non-image files are ignored.
func (l *Layout) Images() ([]string, error) {
	entries, err := os.ReadDir(l.ImageDir)
	if err != nil {
		return nil, hloc.Configf("cannot read image directory %s: %s", l.ImageDir, err)
	}
	var images []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsImage(e.Name()) {
			images = append(images, filepath.ToSlash(e.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

// RequireArtifact checks that a previous stage's output exists, for the
// single-stage commands that pick up mid-pipeline.
func RequireArtifact(path, hint string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return hloc.Configf("%s not found — %s", path, hint)
	} else if err != nil {
		return hloc.Configf("cannot access %s: %s", path, err)
	}
	return nil
}

func sortedExtensions() []string {
	exts := make([]string, 0, len(imageExtensions))
	for ext := range imageExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Describe returns a short human summary used by verbose output.
func (l *Layout) Describe() string {
	return fmt.Sprintf("images=%s artifacts=%s model=%s", l.ImageDir, l.ArtifactDir, l.SfmDir)
}
