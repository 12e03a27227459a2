package linter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"krait/internal/observ"
	"krait/internal/rules"
	"krait/internal/settings"
	"krait/internal/source"
	"krait/internal/starlark"
	"krait/internal/trace"
)

// Options configures a multi-file run.
type Options struct {
	Settings *settings.Settings
	// Jobs bounds parallelism; zero means GOMAXPROCS.
	Jobs int
	// Cache is consulted before linting a file; nil disables caching.
	Cache *Cache
	Timer *observ.Timer
	// Progress, if set, receives per-file events.
	Progress ProgressSink
}

// Result holds per-file results ordered by path.
type Result struct {
	FileSet *source.FileSet
	Files   []FileResult
}

// Diagnostics counts reported diagnostics over every file.
func (r *Result) Diagnostics() int {
	n := 0
	for i := range r.Files {
		n += len(r.Files[i].Diagnostics)
	}
	return n
}

// Lintable reports whether path has an extension krait understands.
func Lintable(path string) bool {
	switch filepath.Ext(path) {
	case ".py", ".pyi":
		return true
	}
	return starlark.Handles(path)
}

// Discover expands paths into a sorted, de-duplicated list of files.
// Directories are walked and excluded entries skipped; files named
// explicitly are kept even if they would be excluded by a pattern.
func Discover(paths []string, s *settings.Settings) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(root))
			continue
		}
		base := s.Root
		if base == "" {
			base = root
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && s.IsExcluded(relTo(base, path)) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && Lintable(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return slices.Compact(files), nil
}

func relTo(root, path string) string {
	if root == "" {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// Run lints every file under paths in parallel.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	s := opts.Settings
	if s == nil {
		s = settings.Default()
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "run")
	defer span.End("")

	phase := opts.Timer.Begin("discover")
	files, err := Discover(paths, s)
	opts.Timer.End(phase, strconv.Itoa(len(files))+" files")
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	span.WithExtra("files", strconv.Itoa(len(files)))

	reg, err := rules.Registry()
	if err != nil {
		return nil, err
	}
	dispatch := reg.Dispatch(s.Enabled)
	fileSet := source.NewFileSet()
	res := &Result{FileSet: fileSet, Files: make([]FileResult, len(files))}
	if len(files) == 0 {
		return res, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	// индексы уникальны для каждой горутины, мьютекс не нужен
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for _, path := range files {
		emit(opts.Progress, path, StatusQueued, 0)
	}
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fctx, fspan := trace.Start(gctx, trace.ScopeFile, path)
			defer fspan.End("")

			emit(opts.Progress, path, StatusLinting, 0)
			id, err := fileSet.Load(path)
			if err != nil {
				res.Files[i] = FileResult{Path: path, Err: err}
				emit(opts.Progress, path, StatusError, 0)
				return nil
			}
			file := fileSet.Get(id)
			if cached, ok := opts.Cache.lookup(file, s); ok {
				res.Files[i] = *cached
				emit(opts.Progress, path, StatusCached, len(cached.Diagnostics))
				return nil
			}
			fr, err := lintFile(fctx, file, s, dispatch, opts.Timer)
			if err != nil {
				return err
			}
			if err := opts.Cache.store(fr, s); err != nil {
				trace.Error(trace.FromContext(fctx), trace.ScopeFile, "cache write", err.Error(), map[string]string{"path": path})
			}
			res.Files[i] = *fr
			emit(opts.Progress, path, StatusDone, len(fr.Diagnostics))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return res, err
		}
		return res, fmt.Errorf("lint: %w", err)
	}
	return res, nil
}
