package ast

import (
	"krait/internal/source"
)

type Hints struct{ Stmts, Exprs, Params uint }

// Builder owns every arena of one parsed module.
type Builder struct {
	Stmts  *Stmts
	Exprs  *Exprs
	Params *Params
}

func NewBuilder(hints Hints) *Builder {
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 10
	}
	if hints.Params == 0 {
		hints.Params = 1 << 6
	}
	return &Builder{
		Stmts:  NewStmts(hints.Stmts),
		Exprs:  NewExprs(hints.Exprs),
		Params: NewParams(hints.Params),
	}
}

// SyntaxError is a parse failure recorded by a frontend.
type SyntaxError struct {
	Span    source.Span
	Message string
}

// Module is the result of parsing one source file.
type Module struct {
	File *source.File
	Tree *Builder
	Body []StmtID
	// Comments holds the span of every comment, including the leading '#'.
	Comments []source.Span
	// Strings holds multi-line string literals, used to map noqa lines.
	Strings []source.Span
	Errors  []SyntaxError
	// Dialect is the frontend that produced the module ("python", "starlark").
	Dialect string
}

// NewModule creates an empty module for file.
func NewModule(file *source.File, tree *Builder) *Module {
	if tree == nil {
		tree = NewBuilder(Hints{})
	}
	return &Module{File: file, Tree: tree}
}

// Span returns the span of the whole module.
func (m *Module) Span() source.Span {
	if m.File == nil {
		return source.Span{}
	}
	return m.File.Bounds()
}

// Text returns the source under span.
func (m *Module) Text(span source.Span) string {
	if m.File == nil {
		return ""
	}
	return m.File.Text(span)
}

// HasErrors reports whether the frontend recorded syntax errors.
func (m *Module) HasErrors() bool { return len(m.Errors) > 0 }
