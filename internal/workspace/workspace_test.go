package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mapforge/hlockit/internal/hloc"
)

func makeImages(t *testing.T, names ...string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "scene", "images")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestResolveDefaultLayout(t *testing.T) {
	dir := makeImages(t, "a.jpg")
	l, err := Resolve(dir, "", "superpoint_aachen", "netvlad")
	if err != nil {
		t.Fatal(err)
	}

	parent := filepath.Dir(dir)
	if l.ArtifactDir != filepath.Join(parent, "hloc") {
		t.Errorf("ArtifactDir = %s", l.ArtifactDir)
	}
	if l.FeaturePath != filepath.Join(parent, "hloc", "superpoint_aachen.h5") {
		t.Errorf("FeaturePath = %s", l.FeaturePath)
	}
	if l.RetrievalPath != filepath.Join(parent, "hloc", "netvlad.h5") {
		t.Errorf("RetrievalPath = %s", l.RetrievalPath)
	}
	if l.PairsPath != filepath.Join(parent, "hloc", "pairs.txt") {
		t.Errorf("PairsPath = %s", l.PairsPath)
	}
	if l.MatchesPath != filepath.Join(parent, "hloc", "matches.h5") {
		t.Errorf("MatchesPath = %s", l.MatchesPath)
	}
	if l.SfmDir != filepath.Join(parent, "sparse") {
		t.Errorf("SfmDir = %s", l.SfmDir)
	}
}

func TestResolveWorkspaceOverride(t *testing.T) {
	dir := makeImages(t, "a.jpg")
	ws := t.TempDir()
	l, err := Resolve(dir, ws, "sift", "netvlad")
	if err != nil {
		t.Fatal(err)
	}
	if l.ArtifactDir != filepath.Join(ws, "hloc") {
		t.Errorf("ArtifactDir = %s", l.ArtifactDir)
	}
	if l.SfmDir != filepath.Join(ws, "sparse") {
		t.Errorf("SfmDir = %s", l.SfmDir)
	}
}

func TestValidateMissingDir(t *testing.T) {
	l, err := Resolve(filepath.Join(t.TempDir(), "nope"), "", "sift", "netvlad")
	if err != nil {
		t.Fatal(err)
	}
	err = l.Validate()
	if err == nil {
		t.Fatal("expected error for missing image directory")
	}
	if !hloc.IsConfig(err) {
		t.Errorf("expected a config error, got %T: %s", err, err)
	}
}

func TestValidateNotADir(t *testing.T) {
	dir := makeImages(t, "a.jpg")
	l, err := Resolve(filepath.Join(dir, "a.jpg"), "", "sift", "netvlad")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Validate(); err == nil || !hloc.IsConfig(err) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestValidateEmptyDir(t *testing.T) {
	dir := makeImages(t)
	l, err := Resolve(dir, "", "sift", "netvlad")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Validate(); err == nil || !hloc.IsConfig(err) {
		t.Errorf("expected config error for empty dir, got %v", err)
	}
}

func TestValidateCreatesArtifactDir(t *testing.T) {
	dir := makeImages(t, "a.jpg")
	l, err := Resolve(dir, "", "sift", "netvlad")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(l.ArtifactDir); err != nil || !info.IsDir() {
		t.Errorf("artifact dir not created: %v", err)
	}
}

func TestImagesFiltersAndSorts(t *testing.T) {
	dir := makeImages(t, "b.png", "a.JPG", "notes.txt", "c.webp")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	l, err := Resolve(dir, "", "sift", "netvlad")
	if err != nil {
		t.Fatal(err)
	}
	images, err := l.Images()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.JPG", "b.png", "c.webp"}
	if len(images) != len(want) {
		t.Fatalf("images = %v", images)
	}
	for i := range want {
		if images[i] != want[i] {
			t.Errorf("images[%d] = %s, want %s", i, images[i], want[i])
		}
	}
}

func TestRequireArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.txt")
	err := RequireArtifact(path, "run 'hlockit pairs' first")
	if err == nil || !hloc.IsConfig(err) {
		t.Fatalf("expected config error, got %v", err)
	}
	if err := os.WriteFile(path, []byte("a b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := RequireArtifact(path, ""); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}
