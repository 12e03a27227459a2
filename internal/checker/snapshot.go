package checker

import (
	"fmt"

	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/rule"
	"krait/internal/semantic"
	"krait/internal/settings"
	"krait/internal/source"
)

// Snapshot is the view a hook gets for one invocation. Reports are
// buffered and committed only when the hook returns normally; the
// snapshot is dead afterwards.
type Snapshot struct {
	c      *Checker
	node   Node
	hook   *Hook
	buf    []diag.Diagnostic
	closed bool
}

// Node returns the node the hook was dispatched for.
func (s *Snapshot) Node() Node { return s.node }

// Semantic returns the read-only semantic model at the dispatch point.
func (s *Snapshot) Semantic() semantic.Query { return s.c.model }

// Module returns the module being checked.
func (s *Snapshot) Module() *ast.Module { return s.c.module }

// Tree returns the syntax tree arenas.
func (s *Snapshot) Tree() *ast.Builder { return s.c.tree }

// Exprs is shorthand for Tree().Exprs.
func (s *Snapshot) Exprs() *ast.Exprs { return s.c.tree.Exprs }

// Stmts is shorthand for Tree().Stmts.
func (s *Snapshot) Stmts() *ast.Stmts { return s.c.tree.Stmts }

// File returns the source file of the module.
func (s *Snapshot) File() *source.File { return s.c.module.File }

// Source returns the raw source bytes.
func (s *Snapshot) Source() []byte {
	if f := s.c.module.File; f != nil {
		return f.Content
	}
	return nil
}

// Text returns the source text under span.
func (s *Snapshot) Text(span source.Span) string { return s.c.module.Text(span) }

// Line returns the 1-based line span starts on.
func (s *Snapshot) Line(span source.Span) uint32 {
	if f := s.c.module.File; f != nil {
		return f.Position(span.Start).Line
	}
	return 0
}

// Enabled reports whether a rule is enabled for this module.
func (s *Snapshot) Enabled(r rule.Rule) bool { return s.c.enabled.Contains(r) }

// AnyEnabled reports whether at least one of rules is enabled.
func (s *Snapshot) AnyEnabled(rules ...rule.Rule) bool { return s.c.enabled.ContainsAny(rules...) }

// Settings returns the linter settings.
func (s *Snapshot) Settings() *settings.Settings { return s.c.settings }

// Dialect names the frontend that produced the module.
func (s *Snapshot) Dialect() string { return s.c.module.Dialect }

// UndefinedExports returns `__all__` entries with no module binding.
// It is populated once the deferred functions have been drained.
func (s *Snapshot) UndefinedExports() []semantic.ExportName { return s.c.undefinedExports }

// Report buffers a diagnostic. Reports from a closed snapshot or for a
// disabled rule are dropped; reports outside the module source are
// rejected and recorded as faults.
func (s *Snapshot) Report(d diag.Diagnostic) {
	if s.closed || !s.c.enabled.Contains(d.Rule) {
		return
	}
	if f := s.c.module.File; f != nil && d.Span.File == 0 && f.ID != 0 {
		d.Span.File = f.ID
	}
	if f := s.c.module.File; f == nil || !f.InBounds(d.Span) {
		s.c.recordFault(s.hook, s.node, fmt.Sprintf("%s: report outside source range %s", d.Rule.Code(), d.Span), "")
		return
	}
	s.buf = append(s.buf, d)
}

// ReportRule reports a diagnostic without notes or fix.
func (s *Snapshot) ReportRule(r rule.Rule, span source.Span, msg string) {
	s.Report(diag.New(r, span, msg))
}

// Reportf reports a formatted message.
func (s *Snapshot) Reportf(r rule.Rule, span source.Span, format string, args ...any) {
	if s.closed || !s.c.enabled.Contains(r) {
		return
	}
	s.Report(diag.New(r, span, fmt.Sprintf(format, args...)))
}
