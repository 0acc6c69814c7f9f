// Package watcher observes a drop directory for incoming patch files.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/rompatch/pkg/rompatch/logging"
)

// defaultSettle is how long a patch file must stay quiet after its last
// write before it is reported. Downloads and copies arrive as a burst of
// write events; reporting early would hand a truncated file downstream.
const defaultSettle = 500 * time.Millisecond

// Watcher reports patch files that appear in a watched directory once they
// have stopped changing.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]bool
	settle     time.Duration

	// settled carries quiet paths from timer goroutines back to Run's
	// select loop, so onPatch callbacks never overlap.
	settled chan string
	done    chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// New creates a Watcher for the given patch extensions, for example
// ".bps" and ".ips".
func New(extensions []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}

	return &Watcher{
		watcher:    fsw,
		extensions: exts,
		settle:     defaultSettle,
		settled:    make(chan string, 16),
		done:       make(chan struct{}),
		pending:    make(map[string]*time.Timer),
	}, nil
}

// SetSettle overrides the quiet period before a file is reported.
func (w *Watcher) SetSettle(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settle = d
}

// Watch adds a single directory to the watch list. Subdirectories are not
// watched; a drop directory is flat by convention.
func (w *Watcher) Watch(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	return w.watcher.Add(absDir)
}

// Run blocks until the context is cancelled, calling onPatch for each patch
// file that appears and settles. Callbacks run one at a time on this
// goroutine: patches that settle together are still handed over in sequence.
func (w *Watcher) Run(ctx context.Context, onPatch func(path string)) {
	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return

		case path := <-w.settled:
			// The file may have vanished during the quiet period.
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if onPatch != nil {
				onPatch(path)
			}

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get("watcher").Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.extensions[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.schedule(event.Name)
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.cancel(event.Name)
	}
}

// schedule arms or re-arms the settle timer for a path. Each further write
// pushes the report out by another settle period. The timer only queues the
// path; delivery happens on Run's goroutine.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}

	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		closed := w.closed
		w.mu.Unlock()

		if closed {
			return
		}

		select {
		case w.settled <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.cancelPending()
	return w.watcher.Close()
}
