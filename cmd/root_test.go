package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAllCommandsExist(t *testing.T) {
	commands := []string{
		"extract", "pairs", "match", "reconstruct", "run",
		"presets", "report", "watch", "shell",
		"doctor", "config", "completion", "version",
	}

	out, err := runRoot(t, "--help")
	if err != nil {
		t.Fatalf("hlockit --help: %s", err)
	}
	for _, cmd := range commands {
		if !strings.Contains(out, cmd) {
			t.Errorf("command %q not found in --help output", cmd)
		}
	}
}

func TestEveryCommandHelpSucceeds(t *testing.T) {
	commands := [][]string{
		{"extract"}, {"pairs"}, {"match"}, {"reconstruct"}, {"run"},
		{"presets"}, {"presets", "features"}, {"presets", "matchers"},
		{"report"}, {"report", "clear"}, {"watch"}, {"shell"},
		{"doctor"}, {"config"}, {"config", "init"}, {"config", "show"},
		{"completion"}, {"version"},
	}
	for _, cmd := range commands {
		args := append(append([]string{}, cmd...), "--help")
		if _, err := runRoot(t, args...); err != nil {
			t.Errorf("%s --help: %s", strings.Join(cmd, " "), err)
		}
	}
}

func TestPersistentFlags(t *testing.T) {
	out, err := runRoot(t, "--help")
	if err != nil {
		t.Fatal(err)
	}
	for _, flag := range []string{"--json", "--verbose", "--quiet", "--no-color"} {
		if !strings.Contains(out, flag) {
			t.Errorf("persistent flag %s missing from --help", flag)
		}
	}
}

func TestUnknownCommandFails(t *testing.T) {
	if _, err := runRoot(t, "frobnicate"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "hlockit") {
		t.Errorf("version output = %q", out)
	}
}
