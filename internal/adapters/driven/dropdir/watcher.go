// Package dropdir watches an inbox directory and turns files dropped
// into it into selection entries, the CLI counterpart of the browser's
// drag-and-drop area.
package dropdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/logger"
)

// Watcher emits supported files as they appear in a directory. Files
// with unsupported extensions are ignored at drop time, matching how
// selection classification works everywhere else.
type Watcher struct {
	dir string
	fsw *fsnotify.Watcher
}

// New creates a watcher for dir. Existing files in the directory are
// emitted first when Start runs, so a pre-filled inbox still works.
func New(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{dir: dir, fsw: fsw}, nil
}

// Start delivers dropped files until ctx is cancelled. The returned
// channel closes on cancellation or watcher failure.
func (w *Watcher) Start(ctx context.Context) <-chan domain.File {
	out := make(chan domain.File)

	go func() {
		defer close(out)

		// Pick up anything already in the inbox.
		entries, err := os.ReadDir(w.dir)
		if err != nil {
			logger.Warn("read drop dir: %v", err)
			return
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			w.emit(ctx, out, filepath.Join(w.dir, e.Name()))
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) {
					w.emit(ctx, out, ev.Name)
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				logger.Warn("drop dir watcher: %v", err)
			}
		}
	}()

	return out
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) emit(ctx context.Context, out chan<- domain.File, path string) {
	name := filepath.Base(path)
	if domain.Categorise(name) == domain.CategoryUnknown {
		logger.Debug("ignoring unsupported drop %s", name)
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	select {
	case out <- domain.File{Name: name, Path: path}:
	case <-ctx.Done():
	}
}
