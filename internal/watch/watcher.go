// Package watch monitors an image directory and re-runs pipeline stages when
// new images settle. Image uploads arrive in bursts, so events are debounced
// per batch rather than per file: the handler fires once after the directory
// has been quiet for the debounce window.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mapforge/hlockit/internal/workspace"
)

// Handler is invoked with the batch of new or modified image paths once a
// burst settles.
type Handler func(paths []string) error

// Event records one handled batch.
type Event struct {
	Time   time.Time `json:"time"`
	Paths  []string  `json:"paths"`
	Status string    `json:"status"` // "processed" or "error"
	Error  string    `json:"error,omitempty"`
}

// Watcher monitors one image directory.
type Watcher struct {
	ImageDir string
	// Debounce is the quiet period before the handler fires.
	Debounce time.Duration
	Logger   *log.Logger
	Handler  Handler

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	events  []Event
	watcher *fsnotify.Watcher
}

// New creates a watcher over imageDir. The directory must exist.
func New(imageDir string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(imageDir)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("cannot watch %s: not a directory", imageDir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	return &Watcher{
		ImageDir: abs,
		Debounce: debounce,
		Logger:   log.New(os.Stderr, "[watch] ", log.LstdFlags),
		pending:  make(map[string]bool),
		watcher:  fsw,
	}, nil
}

// Start begins watching. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.ImageDir); err != nil {
		return fmt.Errorf("could not watch %s: %w", w.ImageDir, err)
	}
	w.Logger.Printf("Watching %s", w.ImageDir)

	for {
		select {
		case <-ctx.Done():
			w.Logger.Println("Stopping watcher")
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Printf("Error: %v", err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	base := filepath.Base(event.Name)
	if !workspace.IsImage(base) {
		return
	}
	// Skip in-progress transfer files
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".part") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[event.Name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.Debounce, w.flush)
}

// flush hands the settled batch to the handler.
func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}

	evt := Event{Time: time.Now(), Paths: paths, Status: "processed"}
	if w.Handler != nil {
		if err := w.Handler(paths); err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			w.Logger.Printf("Error processing %d image(s): %v", len(paths), err)
		} else {
			w.Logger.Printf("Processed %d new image(s)", len(paths))
		}
	}

	w.mu.Lock()
	w.events = append(w.events, evt)
	w.mu.Unlock()
}

// Events returns the batches handled so far.
func (w *Watcher) Events() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Event, len(w.events))
	copy(out, w.events)
	return out
}
