package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mapforge/hlockit/internal/history"
)

func sampleRuns() []history.Run {
	return []history.Run{
		{
			Timestamp:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Command:    "run",
			ImageDir:   "/data/scene/images",
			Feature:    "superpoint_aachen",
			Matcher:    "superglue",
			Images:     42,
			DurationMs: 90000,
		},
		{
			Timestamp:  time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
			Command:    "extract",
			Feature:    "disk",
			DurationMs: 5000,
			Failed:     true,
			Error:      "stage extract failed",
		},
	}
}

func TestBuildNewestFirst(t *testing.T) {
	rows := Build(sampleRuns())
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Command != "extract" {
		t.Errorf("newest run first, got %s", rows[0].Command)
	}
	if !strings.HasPrefix(rows[0].Status, "failed") {
		t.Errorf("status = %s", rows[0].Status)
	}
	if rows[1].Status != "ok" {
		t.Errorf("status = %s", rows[1].Status)
	}
	if rows[1].Duration != "1m30s" {
		t.Errorf("duration = %s", rows[1].Duration)
	}
}

func TestFormatEmpty(t *testing.T) {
	out := Format(nil)
	if !strings.Contains(out, "No recorded runs") {
		t.Errorf("output = %q", out)
	}
}

func TestFormatTable(t *testing.T) {
	out := Format(Build(sampleRuns()))
	for _, want := range []string{"WHEN", "superpoint_aachen", "superglue", "failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	runs := sampleRuns()
	rows := Build(runs)
	stats := &history.Stats{
		TotalRuns: 2,
		Failures:  1,
		ByCommand: map[string]int{"run": 1, "extract": 1},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteXLSX(rows, stats, path); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cells, err := f.GetRows("Runs")
	if err != nil {
		t.Fatal(err)
	}
	// Header plus one row per run.
	if len(cells) != 3 {
		t.Fatalf("rows in sheet = %d", len(cells))
	}
	if cells[0][0] != "When" {
		t.Errorf("header = %v", cells[0])
	}
	if cells[1][1] != "extract" {
		t.Errorf("first data row = %v", cells[1])
	}

	if _, err := f.GetRows("Summary"); err != nil {
		t.Errorf("missing Summary sheet: %s", err)
	}
}

func TestWriteXLSXRejectsOtherExtensions(t *testing.T) {
	err := WriteXLSX(nil, nil, filepath.Join(t.TempDir(), "report.csv"))
	if err == nil {
		t.Error("expected error for non-xlsx path")
	}
}
