// Package report summarizes recorded pipeline runs, either as rows for
// terminal output or as an .xlsx workbook.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mapforge/hlockit/internal/history"
)

// Row is one run flattened for display.
type Row struct {
	When     string `json:"when"`
	Command  string `json:"command"`
	ImageDir string `json:"imageDir"`
	Feature  string `json:"feature"`
	Matcher  string `json:"matcher"`
	Images   int    `json:"images"`
	Duration string `json:"duration"`
	Status   string `json:"status"`
}

var columns = []string{"When", "Command", "Images dir", "Feature", "Matcher", "Images", "Duration", "Status"}

// Build flattens runs into display rows, newest first.
func Build(runs []history.Run) []Row {
	rows := make([]Row, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		status := "ok"
		if r.Failed {
			status = "failed"
			if r.Error != "" {
				status = "failed: " + r.Error
			}
		}
		rows = append(rows, Row{
			When:     r.Timestamp.Format("2006-01-02 15:04:05"),
			Command:  r.Command,
			ImageDir: r.ImageDir,
			Feature:  r.Feature,
			Matcher:  r.Matcher,
			Images:   r.Images,
			Duration: (time.Duration(r.DurationMs) * time.Millisecond).String(),
			Status:   status,
		})
	}
	return rows
}

// WriteXLSX writes the rows plus a summary sheet to an .xlsx workbook.
func WriteXLSX(rows []Row, stats *history.Stats, path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return fmt.Errorf("expected an .xlsx output path, got %q", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Runs"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return fmt.Errorf("could not rename sheet: %w", err)
	}

	for colIdx, name := range columns {
		cell, err := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err != nil {
			return fmt.Errorf("invalid cell coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("could not set header %s: %w", cell, err)
		}
	}

	for rowIdx, row := range rows {
		values := []any{row.When, row.Command, row.ImageDir, row.Feature, row.Matcher, row.Images, row.Duration, row.Status}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("invalid cell coordinates: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("could not set cell %s: %w", cell, err)
			}
		}
	}

	if stats != nil {
		const summary = "Summary"
		if _, err := f.NewSheet(summary); err != nil {
			return fmt.Errorf("could not create summary sheet: %w", err)
		}
		lines := [][]any{
			{"Total runs", stats.TotalRuns},
			{"Failures", stats.Failures},
			{"Avg duration (ms)", stats.AvgDuration},
		}
		for cmd, count := range stats.ByCommand {
			lines = append(lines, []any{"Runs of " + cmd, count})
		}
		for rowIdx, line := range lines {
			for colIdx, v := range line {
				cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					return fmt.Errorf("invalid cell coordinates: %w", err)
				}
				if err := f.SetCellValue(summary, cell, v); err != nil {
					return fmt.Errorf("could not set cell %s: %w", cell, err)
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}
	return nil
}

// Format renders rows as an aligned text table.
func Format(rows []Row) string {
	if len(rows) == 0 {
		return "No recorded runs.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-19s  %-12s  %-20s  %-12s  %-10s  %s\n",
		"WHEN", "COMMAND", "FEATURE", "MATCHER", "DURATION", "STATUS")
	for _, r := range rows {
		matcher := r.Matcher
		if len(matcher) > 12 {
			matcher = matcher[:12]
		}
		fmt.Fprintf(&b, "%-19s  %-12s  %-20s  %-12s  %-10s  %s\n",
			r.When, r.Command, r.Feature, matcher, r.Duration, r.Status)
	}
	return b.String()
}
