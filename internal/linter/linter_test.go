package linter_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"krait/internal/diag"
	"krait/internal/linter"
	"krait/internal/settings"
)

// codes renders diagnostics as `CODE line:col`.
func codes(r *linter.FileResult) []string {
	var out []string
	for _, d := range r.Diagnostics {
		pos := r.File.Position(d.Span.Start)
		out = append(out, fmt.Sprintf("%s %d:%d", d.Rule.Code(), pos.Line, pos.Col))
	}
	return out
}

func lint(t *testing.T, path, src string) *linter.FileResult {
	t.Helper()
	res, err := linter.LintSource(context.Background(), path, []byte(src), settings.Default())
	if err != nil {
		t.Fatalf("LintSource: %v", err)
	}
	return res
}

// extract writes the archive under a fresh temp dir and returns it.
func extract(t *testing.T, archive string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLintSource(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
		want []string
	}{
		{"unused import", "m.py", "import os\n", []string{"F401 1:8"}},
		{"used import", "m.py", "import os\nos.getcwd()\n", nil},
		{"undefined name", "m.py", "x = foo\n", []string{"F821 1:5"}},
		{"suppressed", "m.py", "import os  # noqa: F401\n", nil},
		{"crlf", "m.py", "import os\r\nimport sys\r\n", []string{"F401 1:8", "F401 2:8"}},
		{"starlark universe", "BUILD", "x = len([])\nprint(x)\n", nil},
		{"starlark undefined", "defs.bzl", "def f():\n    return cc_library\n", []string{"F821 2:12"}},
		{"python is not starlark", "m.py", "x = struct()\n", []string{"F821 1:5"}},
		{"method", "m.py", "import os\nclass A:\n    def f(self):\n        return os.sep\n", nil},
		{"nested function", "m.py", "def outer():\n    def inner():\n        return 1\n    return inner\nx = foo\n", []string{"F821 5:5"}},
		{"starlark comment", "BUILD", "# header\nx = foo  # noqa: F821\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, codes(lint(t, tt.path, tt.src))); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSuppressedCount(t *testing.T) {
	res := lint(t, "m.py", "import os  # noqa: F401\nimport sys  # noqa\n")
	if len(res.Diagnostics) != 0 || res.Suppressed != 2 {
		t.Fatalf("diagnostics = %v, suppressed = %d", codes(res), res.Suppressed)
	}
}

func TestSyntaxErrorIsNotSuppressible(t *testing.T) {
	res := lint(t, "m.py", "def f(:  # noqa\n    pass\n")
	got := codes(res)
	if len(got) == 0 || !strings.HasPrefix(got[0], "E999 ") {
		t.Fatalf("diagnostics = %v, want a leading E999", got)
	}
	if !strings.HasPrefix(res.Diagnostics[0].Message, "SyntaxError: ") {
		t.Fatalf("message = %q", res.Diagnostics[0].Message)
	}
}

func TestNothingEnabledKeepsSyntaxErrors(t *testing.T) {
	s := settings.Default()
	s.PerFileIgnores = []settings.PerFileIgnore{{Pattern: "*.py", Selector: []string{"ALL"}}}
	if err := s.Resolve(); err != nil {
		t.Fatal(err)
	}
	res, err := linter.LintSource(context.Background(), "gen.py", []byte("import os\nx = (\n"), s)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range res.Diagnostics {
		if d.Rule.Code() != "E999" {
			t.Fatalf("unexpected %s with every rule ignored", d.Rule.Code())
		}
	}
	if len(res.Diagnostics) == 0 {
		t.Fatalf("syntax error dropped")
	}
}

const project = `
-- pkg/a.py --
import os
-- pkg/b.py --
x = 1
-- pkg/notes.txt --
not python
-- .venv/lib.py --
import sys
-- BUILD --
y = undefined_name
`

func summary(res *linter.Result, root string) []string {
	var out []string
	for i := range res.Files {
		f := &res.Files[i]
		rel, _ := filepath.Rel(root, f.Path)
		out = append(out, filepath.ToSlash(rel)+": "+strings.Join(codes(f), ","))
	}
	return out
}

func TestRun(t *testing.T) {
	root := extract(t, project)
	want := []string{"BUILD: F821 1:5", "pkg/a.py: F401 1:8", "pkg/b.py: "}
	for _, jobs := range []int{1, 8} {
		res, err := linter.Run(context.Background(), []string{root}, linter.Options{Settings: settings.Default(), Jobs: jobs})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if diff := cmp.Diff(want, summary(res, root)); diff != "" {
			t.Fatalf("jobs=%d mismatch (-want +got):\n%s", jobs, diff)
		}
		if res.Diagnostics() != 2 {
			t.Fatalf("Diagnostics() = %d", res.Diagnostics())
		}
	}
}

type recordSink struct {
	mu     sync.Mutex
	events []linter.Event
}

func (r *recordSink) OnEvent(ev linter.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func TestRunProgress(t *testing.T) {
	root := extract(t, project)
	sink := &recordSink{}
	if _, err := linter.Run(context.Background(), []string{root}, linter.Options{Settings: settings.Default(), Progress: sink}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	last := make(map[string]linter.Event)
	queued := 0
	for _, ev := range sink.events {
		if ev.Status == linter.StatusQueued {
			queued++
		}
		last[ev.Path] = ev
	}
	if queued != 3 {
		t.Fatalf("queued %d files, want 3", queued)
	}
	a := last[filepath.Join(root, "pkg", "a.py")]
	if a.Status != linter.StatusDone || a.Diagnostics != 1 {
		t.Fatalf("pkg/a.py final event = %+v", a)
	}
}

func TestRunExplicitFile(t *testing.T) {
	root := extract(t, project)
	excluded := filepath.Join(root, ".venv", "lib.py")
	res, err := linter.Run(context.Background(), []string{excluded, excluded}, linter.Options{Settings: settings.Default()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{".venv/lib.py: F401 1:8"}, summary(res, root)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRunMissingPath(t *testing.T) {
	_, err := linter.Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, linter.Options{})
	if err == nil {
		t.Fatalf("expected an error for a missing path")
	}
}

func TestRunCanceled(t *testing.T) {
	root := extract(t, project)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := linter.Run(ctx, []string{root}, linter.Options{}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestCache(t *testing.T) {
	root := extract(t, project)
	cache, err := linter.OpenCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := linter.Options{Settings: settings.Default(), Cache: cache}

	first, err := linter.Run(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := linter.Run(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range second.Files {
		if !second.Files[i].Cached {
			t.Errorf("%s was not served from the cache", second.Files[i].Path)
		}
		got := diag.FormatGolden(second.Files[i].Diagnostics, second.Files[i].File)
		want := diag.FormatGolden(first.Files[i].Diagnostics, first.Files[i].File)
		if got != want {
			t.Errorf("%s: cached %q, fresh %q", second.Files[i].Path, got, want)
		}
		for _, d := range second.Files[i].Diagnostics {
			if d.Span.File != second.Files[i].File.ID {
				t.Errorf("%s: span bound to file %d, want %d", second.Files[i].Path, d.Span.File, second.Files[i].File.ID)
			}
		}
	}

	// другие настройки дают другой ключ
	other := settings.Default()
	if err := other.Apply(settings.Overrides{Ignore: []string{"F401"}}); err != nil {
		t.Fatal(err)
	}
	third, err := linter.Run(context.Background(), []string{root}, linter.Options{Settings: other, Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	if third.Files[1].Cached || len(third.Files[1].Diagnostics) != 0 {
		t.Fatalf("a.py under new settings: cached=%v diagnostics=%v", third.Files[1].Cached, codes(&third.Files[1]))
	}

	if err := cache.Clear(); err != nil {
		t.Fatal(err)
	}
	fourth, err := linter.Run(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if slices.ContainsFunc(fourth.Files, func(f linter.FileResult) bool { return f.Cached }) {
		t.Fatalf("cache hit after Clear")
	}
}

func TestWatch(t *testing.T) {
	root := extract(t, project)
	w, err := linter.NewWatcher([]string{root}, linter.Options{Settings: settings.Default()})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan *linter.Result, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(r *linter.Result) { results <- r }) }()

	next := func() *linter.Result {
		select {
		case r := <-results:
			return r
		case <-time.After(10 * time.Second):
			t.Fatalf("no lint run within the timeout")
			return nil
		}
	}
	if n := next().Diagnostics(); n != 2 {
		t.Fatalf("initial run: %d diagnostics", n)
	}
	if err := os.WriteFile(filepath.Join(root, "pkg", "c.py"), []byte("import json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if n := next().Diagnostics(); n != 3 {
		t.Fatalf("after change: %d diagnostics", n)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}
