package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewWatcher(t *testing.T) {
	w, err := New(t.TempDir(), 100*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if w.ImageDir == "" {
		t.Error("expected resolved image dir")
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope"), 0); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestBatchesNewImages(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 150*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var batches [][]string
	w.Handler = func(paths []string) error {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = w.Start(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	for _, name := range []string{"a.jpg", "b.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Non-image files must not trigger the handler.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		mu.Lock()
		n := len(batches)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("handler never fired")
		case <-time.After(50 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected one debounced batch, got %d", len(batches))
	}
	for _, p := range batches[0] {
		if filepath.Ext(p) == ".txt" {
			t.Errorf("non-image file in batch: %s", p)
		}
	}
	if len(batches[0]) != 2 {
		t.Errorf("batch = %v", batches[0])
	}
}

func TestHandlerErrorRecorded(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	w.Handler = func(paths []string) error {
		return os.ErrPermission
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = w.Start(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		events := w.Events()
		if len(events) > 0 {
			if events[0].Status != "error" {
				t.Errorf("status = %s", events[0].Status)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("no event recorded")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
