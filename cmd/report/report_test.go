package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mapforge/hlockit/internal/history"
)

func setupStore(t *testing.T) *history.Store {
	t.Helper()
	s := &history.Store{Path: filepath.Join(t.TempDir(), "history.jsonl"), MaxSize: 1 << 20}
	old := store
	store = func() *history.Store { return s }
	t.Cleanup(func() { store = old })
	return s
}

func runReport(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	cmd.PersistentFlags().Bool("json", false, "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReportEmpty(t *testing.T) {
	setupStore(t)
	out, err := runReport(t)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No recorded runs") {
		t.Errorf("output = %q", out)
	}
}

func TestReportTable(t *testing.T) {
	s := setupStore(t)
	s.Record(history.Run{
		Timestamp: time.Now(),
		Command:   "run",
		Feature:   "superpoint_aachen",
		Matcher:   "superglue",
	})

	out, err := runReport(t)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "superpoint_aachen") {
		t.Errorf("output = %q", out)
	}
}

func TestReportLimit(t *testing.T) {
	s := setupStore(t)
	for i := 0; i < 5; i++ {
		s.Record(history.Run{Timestamp: time.Now(), Command: "extract"})
	}
	s.Record(history.Run{Timestamp: time.Now(), Command: "run"})

	out, err := runReport(t, "--limit", "1")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "extract") != 0 {
		t.Errorf("limit not applied:\n%s", out)
	}
	if !strings.Contains(out, "run") {
		t.Errorf("newest run missing:\n%s", out)
	}
}

func TestReportXLSX(t *testing.T) {
	s := setupStore(t)
	s.Record(history.Run{Timestamp: time.Now(), Command: "run"})

	path := filepath.Join(t.TempDir(), "runs.xlsx")
	out, err := runReport(t, "--xlsx", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Report written") {
		t.Errorf("output = %q", out)
	}
}

func TestReportClear(t *testing.T) {
	s := setupStore(t)
	s.Record(history.Run{Timestamp: time.Now(), Command: "run"})

	if _, err := runReport(t, "clear"); err != nil {
		t.Fatal(err)
	}
	runs, err := s.Runs()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("history not cleared: %v", runs)
	}
}
