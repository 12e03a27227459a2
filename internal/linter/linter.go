// Package linter runs the lint pipeline over one module and drives it
// across files and directories.
package linter

import (
	"context"
	"fmt"
	"time"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/diag"
	"krait/internal/noqa"
	"krait/internal/observ"
	"krait/internal/parser"
	"krait/internal/rule"
	"krait/internal/rules"
	"krait/internal/settings"
	"krait/internal/source"
	"krait/internal/starlark"
	"krait/internal/trace"
)

// FileResult is the outcome of linting one file.
type FileResult struct {
	Path        string
	File        *source.File
	Diagnostics []diag.Diagnostic
	// Suppressed counts diagnostics silenced by noqa directives.
	Suppressed int
	Faults     []checker.Fault
	Stats      checker.Stats
	// Cached is set when the diagnostics were read from the cache.
	Cached bool
	// Err is an I/O error reading the file; nothing was linted.
	Err error
}

// Fixable counts diagnostics that carry a fix.
func (r *FileResult) Fixable() int {
	n := 0
	for i := range r.Diagnostics {
		if r.Diagnostics[i].Fixable() {
			n++
		}
	}
	return n
}

type frontend struct {
	dialect  string
	parse    func(context.Context, *source.File) (*ast.Module, error)
	universe []string
}

func frontendFor(path string) frontend {
	if starlark.Handles(path) {
		return frontend{dialect: starlark.Dialect, parse: starlark.Parse, universe: starlark.Universe()}
	}
	return frontend{dialect: parser.Dialect, parse: parser.Parse}
}

// LintSource lints src as the file at path. The returned error is
// reserved for cancellation and configuration failures.
func LintSource(ctx context.Context, path string, src []byte, s *settings.Settings) (*FileResult, error) {
	content, flags := source.Normalize(src)
	file := source.NewFile(0, path, content)
	file.Flags = flags | source.FileVirtual
	reg, err := rules.Registry()
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = settings.Default()
	}
	return lintFile(ctx, file, s, reg.Dispatch(s.Enabled), nil)
}

// lintFile parses, checks and finalizes one file. timer may be nil.
func lintFile(ctx context.Context, file *source.File, s *settings.Settings, dispatch *checker.Dispatch, timer *observ.Timer) (*FileResult, error) {
	fe := frontendFor(file.Path)

	start := time.Now()
	mod, err := fe.parse(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file.Path, err)
	}
	timer.Record("parse", time.Since(start))

	col := diag.NewCollection(len(mod.Errors) + 8)
	for _, e := range mod.Errors {
		col.Add(diag.New(rule.SyntaxError, e.Span, "SyntaxError: "+e.Message))
	}

	res := &FileResult{Path: file.Path, File: file}
	enabled := s.EnabledFor(file.Path)
	if !enabled.IsEmpty() {
		start = time.Now()
		out, err := checker.Check(ctx, mod, checker.Options{
			Settings: s,
			Dispatch: dispatch,
			Enabled:  enabled,
			Universe: fe.universe,
		})
		if err != nil {
			return nil, err
		}
		timer.Record("check", time.Since(start))
		col.Extend(out.Diagnostics)
		res.Faults = out.Faults
		res.Stats = out.Stats
		for _, f := range out.Faults {
			trace.Error(trace.FromContext(ctx), trace.ScopeFile, "rule fault", f.Error(), map[string]string{"path": file.Path})
		}
	}

	start = time.Now()
	col.Finalize(noqa.Build(file, mod.Comments, mod.Strings), enabled)
	timer.Record("finalize", time.Since(start))

	res.Diagnostics = col.Items()
	res.Suppressed = col.Suppressed()
	return res, nil
}
