package shell

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
)

func mockRunner(record *[][]string) CommandRunner {
	return func(ctx context.Context, args []string, stdout, stderr io.Writer) error {
		if record != nil {
			*record = append(*record, args)
		}
		if len(args) == 0 {
			return fmt.Errorf("no command")
		}
		switch args[0] {
		case "version":
			fmt.Fprintf(stdout, "hlockit dev\n")
			return nil
		case "unknown-command":
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(stdout, "OK\n")
		return nil
	}
}

func TestNewSession(t *testing.T) {
	s, err := NewSession(mockRunner(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.CommandHistory) != 0 {
		t.Errorf("expected empty history, got %d entries", len(s.CommandHistory))
	}
	if s.HistoryFile == "" {
		t.Error("expected history file path to be set")
	}
	if len(s.KnownCommands) == 0 {
		t.Error("expected known commands to be populated")
	}
}

func TestNewSessionRequiresRunner(t *testing.T) {
	if _, err := NewSession(nil); err == nil {
		t.Error("expected error for nil runner")
	}
}

func TestEvalVersion(t *testing.T) {
	s, _ := NewSession(mockRunner(nil))
	output, err := s.Eval(context.Background(), "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "hlockit dev") {
		t.Errorf("expected version output, got: %q", output)
	}
}

func TestEvalError(t *testing.T) {
	s, _ := NewSession(mockRunner(nil))
	if _, err := s.Eval(context.Background(), "unknown-command"); err == nil {
		t.Error("expected error from runner")
	}
}

func TestEvalInsertsDefaultImages(t *testing.T) {
	var calls [][]string
	s, _ := NewSession(mockRunner(&calls))
	s.DefaultImages = "/data/scene/images"

	if _, err := s.Eval(context.Background(), "extract --feature disk"); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 {
		t.Fatalf("calls = %v", calls)
	}
	want := []string{"extract", "/data/scene/images", "--feature", "disk"}
	if strings.Join(calls[0], " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", calls[0], want)
	}
}

func TestEvalKeepsExplicitPositional(t *testing.T) {
	var calls [][]string
	s, _ := NewSession(mockRunner(&calls))
	s.DefaultImages = "/data/default"

	if _, err := s.Eval(context.Background(), "run /data/other"); err != nil {
		t.Fatal(err)
	}
	if strings.Join(calls[0], " ") != "run /data/other" {
		t.Errorf("args = %v", calls[0])
	}
}

func TestEvalNonWorkflowUnchanged(t *testing.T) {
	var calls [][]string
	s, _ := NewSession(mockRunner(&calls))
	s.DefaultImages = "/data/scene/images"

	if _, err := s.Eval(context.Background(), "presets features"); err != nil {
		t.Fatal(err)
	}
	if strings.Join(calls[0], " ") != "presets features" {
		t.Errorf("args = %v", calls[0])
	}
}

func TestCompleteTopLevel(t *testing.T) {
	s, _ := NewSession(mockRunner(nil))
	matches := s.Complete("re")
	found := map[string]bool{}
	for _, m := range matches {
		found[m] = true
	}
	if !found["reconstruct"] || !found["report"] {
		t.Errorf("matches = %v", matches)
	}
	if found["extract"] {
		t.Errorf("extract should not match prefix 're': %v", matches)
	}
}

func TestCompleteSubcommand(t *testing.T) {
	s, _ := NewSession(mockRunner(nil))
	matches := s.Complete("presets fe")
	if len(matches) != 1 || matches[0] != "features" {
		t.Errorf("matches = %v", matches)
	}
}

func TestCompleteFlags(t *testing.T) {
	s, _ := NewSession(mockRunner(nil))
	matches := s.Complete("extract /data --fe")
	hasFeature := false
	for _, m := range matches {
		if m == "--feature" {
			hasFeature = true
		}
	}
	if !hasFeature {
		t.Errorf("matches = %v", matches)
	}
}
