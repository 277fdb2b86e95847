package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func runConfig(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := NewCommand()
	cmd.PersistentFlags().Bool("json", false, "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigPath(t *testing.T) {
	out, err := runConfig(t, "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ".hlockit") || !strings.Contains(out, "config.yaml") {
		t.Errorf("path = %q", out)
	}
}

func TestConfigInitThenShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := NewCommand()
	cmd.PersistentFlags().Bool("json", false, "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Wrote ") {
		t.Errorf("init output = %q", out.String())
	}

	// Second init without --force must refuse.
	cmd.SetArgs([]string{"init"})
	if err := cmd.Execute(); err == nil {
		t.Error("second init succeeded without --force")
	}

	viper.Reset()
	out.Reset()
	cmd.SetArgs([]string{"show"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "superpoint_aachen") {
		t.Errorf("show output = %q", out.String())
	}
}

func TestConfigValidateDefaults(t *testing.T) {
	out, err := runConfig(t, "validate")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Configuration is valid") {
		t.Errorf("output = %q", out)
	}
}
