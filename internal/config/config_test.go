package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func setupTestConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	viper.Reset()
	t.Setenv("HOME", dir)
	t.Cleanup(func() {
		viper.Reset()
	})
}

func TestLoadDefaults(t *testing.T) {
	setupTestConfig(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Python != "python3" {
		t.Errorf("default python = %q", cfg.Python)
	}
	if cfg.Pipeline.Feature != "superpoint_aachen" {
		t.Errorf("default feature = %q", cfg.Pipeline.Feature)
	}
	if cfg.Pipeline.TopK != 50 {
		t.Errorf("default top_k = %d", cfg.Pipeline.TopK)
	}
	if !cfg.Pipeline.SingleCamera {
		t.Error("single_camera should default to true")
	}
}

func TestLoadFromFile(t *testing.T) {
	setupTestConfig(t)
	dir := filepath.Join(os.Getenv("HOME"), ".hlockit")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := "python: /opt/venv/bin/python\npipeline:\n  feature: disk\n  matcher: disk+lightglue\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Python != "/opt/venv/bin/python" {
		t.Errorf("python = %q", cfg.Python)
	}
	if cfg.Pipeline.Feature != "disk" {
		t.Errorf("feature = %q", cfg.Pipeline.Feature)
	}
	// Unset keys keep their defaults.
	if cfg.Pipeline.Retrieval != "netvlad" {
		t.Errorf("retrieval = %q", cfg.Pipeline.Retrieval)
	}
}

func TestInitAndReload(t *testing.T) {
	setupTestConfig(t)
	path, err := Init(false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	// Second init without force refuses.
	if _, err := Init(false); err == nil {
		t.Error("expected error on re-init without --force")
	}
	if _, err := Init(true); err != nil {
		t.Errorf("init --force failed: %s", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if issues := Validate(cfg); len(issues) != 0 {
		t.Errorf("generated config has issues: %v", issues)
	}
}

func TestValidateBadPresets(t *testing.T) {
	setupTestConfig(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Pipeline.Feature = "orb"
	cfg.Pipeline.CameraModel = "pinhole"
	cfg.Pipeline.TopK = 0

	issues := Validate(cfg)
	keys := make(map[string]bool)
	for _, issue := range issues {
		if issue.Severity == "error" {
			keys[issue.Key] = true
		}
	}
	for _, want := range []string{"pipeline.feature", "pipeline.camera_model", "pipeline.top_k"} {
		if !keys[want] {
			t.Errorf("expected error for %s, issues: %v", want, issues)
		}
	}
}

func TestValidateIncompatiblePair(t *testing.T) {
	setupTestConfig(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Pipeline.Feature = "r2d2"
	cfg.Pipeline.Matcher = "superglue"

	found := false
	for _, issue := range Validate(cfg) {
		if issue.Key == "pipeline.matcher" && strings.Contains(issue.Message, "compatible") {
			found = true
		}
	}
	if !found {
		t.Error("expected compatibility error for r2d2 + superglue")
	}
}

func TestDump(t *testing.T) {
	setupTestConfig(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	out, err := Dump(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"python:", "feature: superpoint_aachen", "camera_model: OPENCV"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
