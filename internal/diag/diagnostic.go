package diag

import (
	"krait/internal/rule"
	"krait/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Applicability says how confident a fix is.
type Applicability uint8

const (
	// DisplayOnly fixes are shown but never applied automatically.
	DisplayOnly Applicability = iota
	Unsafe
	Safe
)

func (a Applicability) String() string {
	switch a {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	default:
		return "display-only"
	}
}

// Edit replaces the text under Span with Content.
type Edit struct {
	Span    source.Span
	Content string
}

// Deletion removes span.
func Deletion(span source.Span) Edit { return Edit{Span: span} }

// Replacement replaces span with content.
func Replacement(span source.Span, content string) Edit {
	return Edit{Span: span, Content: content}
}

// Insertion inserts content at offset.
func Insertion(file source.FileID, offset uint32, content string) Edit {
	return Edit{Span: source.ZeroAt(file, offset), Content: content}
}

type Fix struct {
	Applicability Applicability
	Edits         []Edit
}

// SafeFix builds a fix that can be applied without review.
func SafeFix(edits ...Edit) *Fix { return &Fix{Applicability: Safe, Edits: edits} }

// UnsafeFix builds a fix that may change behaviour.
func UnsafeFix(edits ...Edit) *Fix { return &Fix{Applicability: Unsafe, Edits: edits} }

type Diagnostic struct {
	Rule     rule.Rule
	Span     source.Span
	Message  string
	Notes    []Note
	FixTitle string
	Fix      *Fix
}

func New(r rule.Rule, span source.Span, msg string) Diagnostic {
	return Diagnostic{Rule: r, Span: span, Message: msg}
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(title string, fix *Fix) Diagnostic {
	d.FixTitle = title
	d.Fix = fix
	return d
}

// Fixable reports whether the diagnostic carries edits.
func (d *Diagnostic) Fixable() bool { return d.Fix != nil && len(d.Fix.Edits) > 0 }
