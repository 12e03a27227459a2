package linter

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"krait/internal/settings"
	"krait/internal/trace"
)

// debounce groups bursts of events (editors write in several steps).
const debounce = 150 * time.Millisecond

// Watcher re-runs the linter when a lintable file under its roots
// changes. New directories are watched as they appear.
type Watcher struct {
	watcher *fsnotify.Watcher
	paths   []string
	opts    Options
}

// NewWatcher registers every non-excluded directory under paths.
func NewWatcher(paths []string, opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Settings == nil {
		opts.Settings = settings.Default()
	}
	w := &Watcher{watcher: fw, paths: paths, opts: opts}
	for _, p := range paths {
		if err := w.addRecursive(p); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run lints once, then again after every relevant change, passing each
// result to fn. It returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, fn func(*Result)) error {
	lint := func() error {
		res, err := Run(ctx, w.paths, w.opts)
		if err != nil {
			return err
		}
		fn(res)
		return nil
	}
	if err := lint(); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			trace.Error(trace.FromContext(ctx), trace.ScopeDriver, "watch", err.Error(), nil)
		case <-timer.C:
			if err := lint(); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		}
	}
}

// handle registers new directories and reports whether the event
// should trigger a run.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if w.excluded(event.Name) {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
			return true
		}
	}
	if event.Op == fsnotify.Chmod {
		return false
	}
	return Lintable(event.Name)
}

func (w *Watcher) excluded(path string) bool {
	s := w.opts.Settings
	base := s.Root
	if base == "" {
		for _, p := range w.paths {
			if rel, err := filepath.Rel(p, path); err == nil && !strings.HasPrefix(rel, "..") {
				base = p
				break
			}
		}
	}
	return s.IsExcluded(relTo(base, path))
}

func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		// отдельный файл: следим за его каталогом
		return w.watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.excluded(p) {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}
