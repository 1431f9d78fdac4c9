// Package localwatch watches a local folder and reports changed files in
// debounced batches. The drive watch command uploads each batch.
package localwatch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-workspace/internal/logger"
)

// DefaultDebounce is how long the watcher waits for further changes before
// emitting a batch.
const DefaultDebounce = 500 * time.Millisecond

// Watcher emits batches of files created or written under a root folder.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]struct{}

	batches chan []string
}

// New creates a watcher for root. Hidden files and directories are ignored.
func New(root string, debounce time.Duration) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "watch", Path: root, Err: fs.ErrInvalid}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:     root,
		debounce: debounce,
		fsw:      fsw,
		pending:  make(map[string]struct{}),
		batches:  make(chan []string, 16),
	}, nil
}

// Batches returns the channel of changed-file batches. It is closed when Run returns.
func (w *Watcher) Batches() <-chan []string {
	return w.batches
}

// Run watches until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.batches)

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("localwatch: %v", err)

		case <-timer.C:
			if batch := w.flush(); len(batch) > 0 {
				select {
				case w.batches <- batch:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// handle records a relevant event and reports whether the debounce timer
// should restart.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if hidden(event.Name) {
		return false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addRecursive(event.Name); err != nil {
				logger.Warn("localwatch: watch %s: %v", event.Name, err)
			}
		}
		return false
	}
	if !info.Mode().IsRegular() {
		return false
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = struct{}{}
	w.pendingMu.Unlock()
	return true
}

func (w *Watcher) flush() []string {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	batch := make([]string, 0, len(w.pending))
	for p := range w.pending {
		batch = append(batch, p)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(batch)
	return batch
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && hidden(path) {
			return filepath.SkipDir
		}
		logger.Debug("localwatch: watching %s", path)
		return w.fsw.Add(path)
	})
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// RelativeDir returns the directory of path relative to root, slash-separated,
// for mirroring the local layout under a drive directory.
func RelativeDir(root, path string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}
