// Package watcher drives continuous incremental scanning ("scan --watch"),
// debouncing filesystem events into rescan triggers.
//
// Grounded on theRebelliousNerd-codenerd's internal/core/mangle_watcher.go
// (MangleWatcher): an fsnotify.Watcher wrapped with a debounce map, a
// stop/done channel pair for graceful shutdown, and a stats struct.
// Generalized here from watching one fixed directory to the scan's full
// root set, and from triggering validation/repair to triggering a pipeline
// rescan.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Stats tracks watcher activity, in the spirit of the teacher's
// MangleWatcherStats.
type Stats struct {
	EventsSeen    int
	RescansFired  int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher watches a set of root directories and invokes onChange after a
// debounce window once the event stream goes quiet.
type Watcher struct {
	mu           sync.Mutex
	fsw          *fsnotify.Watcher
	roots        []string
	debounce     time.Duration
	onChange     func(ctx context.Context)
	logger       *zap.Logger
	pendingSince time.Time
	pending      bool
	stats        Stats
}

// New builds a Watcher over roots. onChange is invoked (from the Watcher's
// own goroutine) once debounce has elapsed since the last filesystem event.
func New(roots []string, debounce time.Duration, onChange func(ctx context.Context), logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	w := &Watcher{fsw: fsw, roots: roots, debounce: debounce, onChange: onChange, logger: logger}
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Run blocks, processing filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.mu.Lock()
			w.stats.EventsSeen++
			w.stats.LastEventPath = event.Name
			w.stats.LastEventTime = time.Now()
			w.pending = true
			w.pendingSince = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			w.logger.Warn("watcher error", zap.Error(err))
		case <-ticker.C:
			w.mu.Lock()
			fire := w.pending && time.Since(w.pendingSince) >= w.debounce
			if fire {
				w.pending = false
				w.stats.RescansFired++
			}
			w.mu.Unlock()
			if fire {
				w.onChange(ctx)
			}
		}
	}
}

// Stats returns a snapshot of watcher activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
