package noqa

import (
	"slices"
	"strings"

	"krait/internal/rule"
	"krait/internal/source"
)

type lineRange struct{ start, end uint32 }

type usage struct {
	blanket bool
	codes   []bool
}

// Table maps lines to suppression directives of one file.
type Table struct {
	file       *source.File
	directives []Directive
	byLine     map[uint32]int
	usage      []usage
	exemptions []Exemption
	exemptAll  bool
	exempt     rule.Set
	ranges     []lineRange
}

// Build scans comment spans for directives. strings are the spans of string
// literals; a diagnostic inside a multi-line string is matched against the
// directive on the string's last line.
func Build(file *source.File, comments, strings []source.Span) *Table {
	t := &Table{file: file, byLine: make(map[uint32]int)}
	if file == nil {
		return t
	}
	for _, c := range comments {
		text := file.Text(c)
		if ex, ok := ParseExemption(text, c); ok {
			t.exemptions = append(t.exemptions, ex)
			if ex.All {
				t.exemptAll = true
			}
			for _, code := range ex.Codes {
				if r, ok := rule.FromCode(code.Name); ok {
					t.exempt.Insert(r)
				}
			}
			continue
		}
		d, ok := ParseDirective(text, c)
		if !ok {
			continue
		}
		d.Line = file.Position(c.Start).Line
		if _, dup := t.byLine[d.Line]; dup {
			continue
		}
		t.byLine[d.Line] = len(t.directives)
		t.directives = append(t.directives, d)
		t.usage = append(t.usage, usage{codes: make([]bool, len(d.Codes))})
	}
	t.collectRanges(comments, strings)
	return t
}

func (t *Table) collectRanges(comments, strs []source.Span) {
	for _, s := range strs {
		start, end := t.file.Position(s.Start).Line, t.file.Position(s.End).Line
		if end > start {
			t.ranges = append(t.ranges, lineRange{start, end})
		}
	}
	// строки с обратным слэшем в конце продолжаются на следующей
	commentEnds := make(map[uint32]bool, len(comments))
	for _, c := range comments {
		commentEnds[t.file.Position(c.Start).Line] = true
	}
	lines := t.file.LineCount()
	for line := uint32(1); line < lines; line++ {
		if commentEnds[line] || !strings.HasSuffix(t.file.GetLine(line), "\\") {
			continue
		}
		start := line
		for line < lines && !commentEnds[line] && strings.HasSuffix(t.file.GetLine(line), "\\") {
			line++
		}
		t.ranges = append(t.ranges, lineRange{start, line})
	}
	slices.SortFunc(t.ranges, func(a, b lineRange) int { return int(a.start) - int(b.start) })
}

// NoqaLine returns the line whose directive governs offset.
func (t *Table) NoqaLine(offset uint32) uint32 {
	if t.file == nil {
		return 0
	}
	line := t.file.Position(offset).Line
	for _, r := range t.ranges {
		if r.start > line {
			break
		}
		if line <= r.end {
			return r.end
		}
	}
	return line
}

// File returns the file the table was built for.
func (t *Table) File() *source.File { return t.file }

// Directives lists line directives in source order.
func (t *Table) Directives() []Directive { return t.directives }

// Exemptions lists file-level exemptions in source order.
func (t *Table) Exemptions() []Exemption { return t.exemptions }

// Exempt reports whether the whole file is exempt from r.
func (t *Table) Exempt(r rule.Rule) bool {
	if !r.Suppressible() {
		return false
	}
	return t.exemptAll || t.exempt.Contains(r)
}

// Suppresses reports whether a diagnostic of r at span is silenced and
// records which directive did it. Non-suppressible rules are never silenced.
func (t *Table) Suppresses(r rule.Rule, span source.Span) bool {
	if !r.Suppressible() {
		return false
	}
	if t.Exempt(r) {
		return true
	}
	idx, ok := t.byLine[t.NoqaLine(span.Start)]
	if !ok {
		return false
	}
	d := t.directives[idx]
	if d.All {
		t.usage[idx].blanket = true
		return true
	}
	for i, code := range d.Codes {
		if matched, ok := rule.FromCode(code.Name); ok && matched == r {
			t.usage[idx].codes[i] = true
			return true
		}
	}
	return false
}

// Unmatched describes a directive that suppressed less than it names.
type Unmatched struct {
	Directive Directive
	// Blanket is set for a `# noqa` that suppressed nothing.
	Blanket bool
	Unused  []Code
	Unknown []Code
	Matched []Code
}

// Unmatched returns directives with codes that silenced nothing. It is
// meaningful after every diagnostic went through Suppresses.
func (t *Table) Unmatched() []Unmatched {
	var out []Unmatched
	for i, d := range t.directives {
		u := t.usage[i]
		if d.All {
			if !u.blanket {
				out = append(out, Unmatched{Directive: d, Blanket: true})
			}
			continue
		}
		entry := Unmatched{Directive: d}
		for j, code := range d.Codes {
			switch _, known := rule.FromCode(code.Name); {
			case u.codes[j]:
				entry.Matched = append(entry.Matched, code)
			case !known:
				entry.Unknown = append(entry.Unknown, code)
			default:
				entry.Unused = append(entry.Unused, code)
			}
		}
		if len(entry.Unused) > 0 || len(entry.Unknown) > 0 {
			out = append(out, entry)
		}
	}
	return out
}
