// Package progress renders a stage spinner for long-running delegated work.
// The toolchain gives no completion estimate, so there is no bar, only a
// spinner with elapsed time. All output goes to stderr.
package progress

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Spinner shows activity for a pipeline stage of unknown duration.
type Spinner struct {
	Label   string
	Enabled bool

	mu      sync.Mutex
	start   time.Time
	done    chan struct{}
	stopped bool
}

// NewSpinner creates a spinner. Automatically disabled when stderr is not a
// TTY or when HLOCKIT_NO_PROGRESS=1; callers disable it for machine output.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		Label:   label,
		Enabled: shouldEnable(),
		done:    make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	if !s.Enabled {
		return
	}

	s.mu.Lock()
	s.stopped = false
	s.start = time.Now()
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		frames := []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}
		i := 0
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					elapsed := time.Since(s.start).Round(time.Second)
					fmt.Fprintf(os.Stderr, "\r\033[K%c %s (%s)", frames[i%len(frames)], s.Label, elapsed)
					i++
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Stop stops the spinner and prints a result line.
func (s *Spinner) Stop(result string) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	select {
	case <-s.done:
	default:
		close(s.done)
	}

	if s.Enabled {
		fmt.Fprintf(os.Stderr, "\r\033[K✓ %s\n", result)
	}
}

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail(result string) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	select {
	case <-s.done:
	default:
		close(s.done)
	}

	if s.Enabled {
		fmt.Fprintf(os.Stderr, "\r\033[K✗ %s\n", result)
	}
}

func shouldEnable() bool {
	if os.Getenv("HLOCKIT_NO_PROGRESS") == "1" {
		return false
	}
	return isTTY()
}

func isTTY() bool {
	stat, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
