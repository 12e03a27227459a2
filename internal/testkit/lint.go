// Package testkit holds helpers shared by rule and driver tests.
package testkit

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"krait/internal/diag"
	"krait/internal/linter"
	"krait/internal/settings"
)

// Settings returns default settings with selectors replacing lint.select.
func Settings(t testing.TB, selectors ...string) *settings.Settings {
	t.Helper()
	s := settings.Default()
	if len(selectors) > 0 {
		if err := s.Apply(settings.Overrides{Select: selectors}); err != nil {
			t.Fatalf("select %v: %v", selectors, err)
		}
	}
	return s
}

// LintWith lints src as path under s.
func LintWith(t testing.TB, path, src string, s *settings.Settings) *linter.FileResult {
	t.Helper()
	res, err := linter.LintSource(context.Background(), path, []byte(src), s)
	if err != nil {
		t.Fatalf("lint %s: %v", path, err)
	}
	for _, f := range res.Faults {
		t.Errorf("rule fault: %v\n%s", f, f.Stack)
	}
	return res
}

// Lint lints src as a Python module with the given selectors and returns
// `CODE line:col` per diagnostic.
func Lint(t testing.TB, src string, selectors ...string) []string {
	t.Helper()
	return Codes(LintWith(t, "test.py", src, Settings(t, selectors...)))
}

// Codes renders the diagnostics of r as `CODE line:col`.
func Codes(r *linter.FileResult) []string {
	out := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		pos := r.File.Position(d.Span.Start)
		out = append(out, fmt.Sprintf("%s %d:%d", d.Rule.Code(), pos.Line, pos.Col))
	}
	return out
}

// Golden lints src and renders `CODE line:col message` lines.
func Golden(t testing.TB, src string, selectors ...string) string {
	t.Helper()
	r := LintWith(t, "test.py", src, Settings(t, selectors...))
	return diag.FormatGolden(r.Diagnostics, r.File)
}

// Fixed lints src and applies the edits of every fix, skipping a fix that
// overlaps one already taken.
func Fixed(t testing.TB, src string, selectors ...string) string {
	t.Helper()
	r := LintWith(t, "test.py", src, Settings(t, selectors...))
	text := string(r.File.Content)
	var edits []diag.Edit
	var last uint32
	for _, d := range r.Diagnostics {
		if !d.Fixable() {
			continue
		}
		fe := slices.Clone(d.Fix.Edits)
		slices.SortFunc(fe, func(a, b diag.Edit) int { return cmp.Compare(a.Span.Start, b.Span.Start) })
		if len(edits) > 0 && fe[0].Span.Start < last {
			continue
		}
		edits = append(edits, fe...)
		last = fe[len(fe)-1].Span.End
	}
	var b strings.Builder
	pos := uint32(0)
	for _, e := range edits {
		b.WriteString(text[pos:e.Span.Start])
		b.WriteString(e.Content)
		pos = e.Span.End
	}
	b.WriteString(text[pos:])
	return b.String()
}
