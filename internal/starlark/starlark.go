// Package starlark is the frontend for Starlark sources (.star, .bzl,
// BUILD). It parses with go.starlark.net/syntax and lowers the tree into
// the same arena AST the Python frontend produces, so the checker and
// every rule run unchanged.
package starlark

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
	starlarklib "go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"krait/internal/ast"
	"krait/internal/source"
)

// Dialect is recorded on every module this package produces.
const Dialect = "starlark"

// Universe returns the predeclared names of the Starlark interpreter,
// sorted. They replace the Python builtins during name resolution.
func Universe() []string {
	return slices.Sorted(maps.Keys(starlarklib.Universe))
}

// Handles reports whether path names a Starlark file.
func Handles(path string) bool {
	base := filepath.Base(path)
	switch filepath.Ext(base) {
	case ".star", ".bzl", ".sky":
		return true
	}
	switch strings.TrimSuffix(base, ".bazel") {
	case "BUILD", "WORKSPACE":
		return true
	}
	return false
}

// Parse lowers file into a module. A syntax error yields a module with
// the error recorded and an empty body; the returned error is reserved
// for cancellation.
func Parse(ctx context.Context, file *source.File) (*ast.Module, error) {
	if file == nil {
		return nil, errors.New("starlark: nil file")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	size := uint(len(file.Content))
	b := ast.NewBuilder(ast.Hints{Stmts: size/32 + 1, Exprs: size/8 + 1, Params: size/128 + 1})
	mod := ast.NewModule(file, b)
	mod.Dialect = Dialect

	f, err := syntax.Parse(file.Path, file.Content, syntax.RetainComments)
	if err != nil {
		var serr syntax.Error
		if !errors.As(err, &serr) {
			return nil, fmt.Errorf("starlark: %s: %w", file.Path, err)
		}
		l := &lowerer{file: file, b: b}
		at := l.offset(serr.Pos)
		mod.Errors = append(mod.Errors, ast.SyntaxError{
			Span:    source.Span{File: file.ID, Start: at, End: at},
			Message: serr.Msg,
		})
		return mod, nil
	}

	l := &lowerer{file: file, b: b, mod: mod}
	l.comments(f)
	mod.Body = l.block(f.Stmts)
	return mod, nil
}

type lowerer struct {
	file *source.File
	b    *ast.Builder
	mod  *ast.Module
}

func (l *lowerer) offset(p syntax.Position) uint32 {
	if !p.IsValid() {
		return 0
	}
	line, err := safecast.Conv[uint32](p.Line)
	if err != nil {
		return 0
	}
	col, err := safecast.Conv[uint32](p.Col)
	if err != nil {
		return 0
	}
	return l.file.Offset(line, col)
}

func (l *lowerer) span(n syntax.Node) source.Span {
	start, end := n.Span()
	return source.NewSpan(l.file.ID, l.offset(start), l.offset(end))
}

func (l *lowerer) ident(id *syntax.Ident) ast.Identifier {
	if id == nil {
		return ast.Identifier{}
	}
	return ast.Identifier{Name: id.Name, Span: l.span(id)}
}

// comments collects every retained comment and the span of each
// multi-line string literal.
func (l *lowerer) comments(f *syntax.File) {
	add := func(c *syntax.Comments) {
		if c == nil {
			return
		}
		for _, group := range [][]syntax.Comment{c.Before, c.Suffix, c.After} {
			for _, com := range group {
				start := l.offset(com.Start)
				end := min(start+uint32(len(com.Text)), l.file.Size()) // #nosec G115 -- comment lies inside the file
				l.mod.Comments = append(l.mod.Comments, source.Span{File: l.file.ID, Start: start, End: end})
			}
		}
	}
	syntax.Walk(f, func(n syntax.Node) bool {
		if n == nil {
			return false
		}
		add(n.Comments())
		if lit, ok := n.(*syntax.Literal); ok && lit.Token == syntax.STRING && strings.Contains(lit.Raw, "\n") {
			l.mod.Strings = append(l.mod.Strings, l.span(lit))
		}
		return true
	})
	slices.SortFunc(l.mod.Comments, source.Span.Compare)
	l.mod.Comments = slices.Compact(l.mod.Comments)
}
