// Package history keeps a local JSONL log of pipeline invocations.
// One line per run: command, workspace, stage timings, outcome. This is the
// only state the tool itself persists; artifacts belong to the toolchain.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StageTiming records one completed stage within a run.
type StageTiming struct {
	Stage      string `json:"stage"`
	DurationMs int64  `json:"ms"`
}

// Run represents a single recorded invocation.
type Run struct {
	Timestamp  time.Time     `json:"ts"`
	Command    string        `json:"cmd"`
	ImageDir   string        `json:"imageDir,omitempty"`
	Feature    string        `json:"feature,omitempty"`
	Matcher    string        `json:"matcher,omitempty"`
	Images     int           `json:"images,omitempty"`
	Stages     []StageTiming `json:"stages,omitempty"`
	DurationMs int64         `json:"ms"`
	Failed     bool          `json:"failed,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Stats holds aggregated history statistics.
type Stats struct {
	TotalRuns   int            `json:"total_runs"`
	ByCommand   map[string]int `json:"by_command"`
	AvgDuration float64        `json:"avg_duration_ms"`
	Failures    int            `json:"failures"`
}

// Store manages the local run history (~/.hlockit/history.jsonl).
type Store struct {
	Path    string
	MaxSize int64 // default 10MB
}

// DefaultStore returns a Store at the default location.
func DefaultStore() *Store {
	home, _ := os.UserHomeDir()
	return &Store{
		Path:    filepath.Join(home, ".hlockit", "history.jsonl"),
		MaxSize: 10 * 1024 * 1024,
	}
}

// Record appends a run to the local store. Best-effort: a run must never
// fail because its history line could not be written.
func (s *Store) Record(r Run) {
	dir := filepath.Dir(s.Path)
	_ = os.MkdirAll(dir, 0755)

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = f.Write(data)
}

// Runs loads every recorded run, oldest first. Malformed lines are skipped.
func (s *Store) Runs() ([]Run, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []Run
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var r Run
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue
		}
		runs = append(runs, r)
	}
	return runs, nil
}

// Summary returns aggregated stats from the local store.
func (s *Store) Summary() (*Stats, error) {
	runs, err := s.Runs()
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByCommand: make(map[string]int)}
	var totalDuration int64
	for _, r := range runs {
		stats.TotalRuns++
		stats.ByCommand[r.Command]++
		totalDuration += r.DurationMs
		if r.Failed {
			stats.Failures++
		}
	}
	if stats.TotalRuns > 0 {
		stats.AvgDuration = float64(totalDuration) / float64(stats.TotalRuns)
	}
	return stats, nil
}

// Rotate truncates the store when it exceeds MaxSize.
func (s *Store) Rotate() error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil
	}
	if info.Size() <= s.MaxSize {
		return nil
	}
	return os.Truncate(s.Path, 0)
}

// Clear removes all history data.
func (s *Store) Clear() error {
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		return nil
	}
	return os.Truncate(s.Path, 0)
}
