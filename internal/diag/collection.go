package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"krait/internal/noqa"
	"krait/internal/rule"
	"krait/internal/source"
)

// Collection accumulates diagnostics of one module.
type Collection struct {
	items      []Diagnostic
	suppressed int
}

func NewCollection(capHint int) *Collection {
	return &Collection{items: make([]Diagnostic, 0, capHint)}
}

func (c *Collection) Add(d Diagnostic) {
	c.items = append(c.items, d)
}

// Extend appends every diagnostic of ds.
func (c *Collection) Extend(ds []Diagnostic) {
	c.items = append(c.items, ds...)
}

func (c *Collection) Len() int {
	return len(c.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез!
func (c *Collection) Items() []Diagnostic {
	return c.items
}

// Suppressed counts diagnostics removed by noqa during Finalize.
func (c *Collection) Suppressed() int { return c.suppressed }

// Compare orders diagnostics by start, end, then rule.
func Compare(a, b Diagnostic) int {
	if a.Span.File != b.Span.File {
		return cmp.Compare(a.Span.File, b.Span.File)
	}
	if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Span.End, b.Span.End); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Rule, b.Rule); c != 0 {
		return c
	}
	return cmp.Compare(a.Message, b.Message)
}

// Sort orders diagnostics deterministically, independent of emission order.
func (c *Collection) Sort() {
	slices.SortStableFunc(c.items, Compare)
}

type dedupKey struct {
	rule  rule.Rule
	file  source.FileID
	start uint32
	end   uint32
	msg   string
}

// Dedup drops diagnostics with the same rule, span and message, keeping
// the first one.
func (c *Collection) Dedup() {
	seen := make(map[dedupKey]struct{}, len(c.items))
	out := c.items[:0]
	for _, d := range c.items {
		key := dedupKey{rule: d.Rule, file: d.Span.File, start: d.Span.Start, end: d.Span.End, msg: d.Message}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	c.items = out
}

// Finalize sorts, de-duplicates and filters the collection through table.
// When RUF100 is in enabled, directives that silenced nothing are reported.
func (c *Collection) Finalize(table *noqa.Table, enabled rule.Set) {
	c.Sort()
	c.Dedup()
	if table == nil {
		return
	}
	out := c.items[:0]
	for _, d := range c.items {
		if table.Suppresses(d.Rule, d.Span) {
			c.suppressed++
			continue
		}
		out = append(out, d)
	}
	c.items = out
	if !enabled.Contains(rule.UnusedNOQA) {
		return
	}
	for _, u := range table.Unmatched() {
		if d, ok := unusedNoqa(table.File(), u, enabled); ok {
			c.items = append(c.items, d)
		}
	}
	c.Sort()
}

func unusedNoqa(file *source.File, u noqa.Unmatched, enabled rule.Set) (Diagnostic, bool) {
	dir := u.Directive
	for _, code := range dir.Codes {
		if r, ok := rule.FromCode(code.Name); ok && r == rule.UnusedNOQA {
			return Diagnostic{}, false
		}
	}
	removal := SafeFix(Deletion(withLeadingBlanks(file, dir.Span)))
	if u.Blanket {
		return New(rule.UnusedNOQA, dir.Span, "Unused blanket `noqa` directive").
			WithFix("Remove unused `noqa` directive", removal), true
	}
	var unused, disabled []string
	for _, code := range u.Unused {
		if r, _ := rule.FromCode(code.Name); enabled.Contains(r) {
			unused = append(unused, "`"+code.Name+"`")
		} else {
			disabled = append(disabled, "`"+code.Name+"`")
		}
	}
	var unknown []string
	for _, code := range u.Unknown {
		unknown = append(unknown, "`"+code.Name+"`")
	}
	var parts []string
	for _, p := range []struct {
		label string
		codes []string
	}{{"unused", unused}, {"non-enabled", disabled}, {"unknown", unknown}} {
		if len(p.codes) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", p.label, strings.Join(p.codes, ", ")))
		}
	}
	msg := fmt.Sprintf("Unused `noqa` directive (%s)", strings.Join(parts, "; "))
	if len(u.Matched) == 0 {
		return New(rule.UnusedNOQA, dir.Span, msg).WithFix("Remove unused `noqa` directive", removal), true
	}
	kept := make([]string, 0, len(u.Matched))
	for _, code := range u.Matched {
		kept = append(kept, code.Name)
	}
	edit := Replacement(dir.Span, "# noqa: "+strings.Join(kept, ", "))
	return New(rule.UnusedNOQA, dir.Span, msg).WithFix("Remove unused `noqa` directive", SafeFix(edit)), true
}

// withLeadingBlanks extends span over spaces and tabs before it.
func withLeadingBlanks(file *source.File, span source.Span) source.Span {
	if file == nil {
		return span
	}
	start := span.Start
	for start > 0 && start <= file.Size() && (file.Content[start-1] == ' ' || file.Content[start-1] == '\t') {
		start--
	}
	return source.Span{File: span.File, Start: start, End: span.End}
}
