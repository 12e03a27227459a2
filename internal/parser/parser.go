// Package parser lowers Python source into the arena AST using the
// tree-sitter Python grammar. Parsing never fails on bad syntax: error
// and missing nodes become Module.Errors and the rest of the tree is
// lowered as far as it is recognizable.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"golang.org/x/text/unicode/norm"

	"krait/internal/ast"
	"krait/internal/source"
)

// Dialect is recorded on every module this package produces.
const Dialect = "python"

var errNoTree = errors.New("parser: tree-sitter returned no tree")

// Parse lowers file into a module. The returned error is reserved for
// failures of the parser itself, such as cancellation.
func Parse(ctx context.Context, file *source.File) (*ast.Module, error) {
	if file == nil {
		return nil, errors.New("parser: nil file")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", file.Path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", errNoTree, file.Path)
	}
	defer tree.Close()

	size := uint(len(file.Content))
	b := ast.NewBuilder(ast.Hints{Stmts: size/32 + 1, Exprs: size/8 + 1, Params: size/128 + 1})
	mod := ast.NewModule(file, b)
	mod.Dialect = Dialect

	l := &lowerer{file: file, src: file.Content, b: b, mod: mod}
	root := tree.RootNode()
	l.scan(root, false)
	mod.Body = l.block(root)
	return mod, nil
}

type lowerer struct {
	file *source.File
	src  []byte
	b    *ast.Builder
	mod  *ast.Module
}

func (l *lowerer) span(n *sitter.Node) source.Span {
	return source.Span{File: l.file.ID, Start: n.StartByte(), End: n.EndByte()}
}

func (l *lowerer) cover(first, last *sitter.Node) source.Span {
	return source.Span{File: l.file.ID, Start: first.StartByte(), End: last.EndByte()}
}

func (l *lowerer) text(n *sitter.Node) string {
	return string(l.src[n.StartByte():n.EndByte()])
}

func (l *lowerer) ident(n *sitter.Node) ast.Identifier {
	if n == nil {
		return ast.Identifier{}
	}
	return ast.Identifier{Name: normalizeName(l.text(n)), Span: l.span(n)}
}

// scan records comments and syntax errors in document order. Errors
// nested in an already reported error node are folded into it.
func (l *lowerer) scan(n *sitter.Node, inError bool) {
	switch {
	case n.Type() == "comment":
		l.mod.Comments = append(l.mod.Comments, l.span(n))
		return
	case n.IsMissing():
		l.syntaxError(n, missingMessage(n))
	case n.IsError():
		if !inError {
			l.syntaxError(n, l.unexpectedMessage(n))
		}
		inError = true
	case n.Type() == "print_statement" && !inError:
		l.syntaxError(n, "Missing parentheses in call to 'print'")
	case n.Type() == "exec_statement" && !inError:
		l.syntaxError(n, "Missing parentheses in call to 'exec'")
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if c := n.Child(i); c != nil {
			l.scan(c, inError)
		}
	}
}

func (l *lowerer) syntaxError(n *sitter.Node, msg string) {
	l.mod.Errors = append(l.mod.Errors, ast.SyntaxError{Span: l.span(n), Message: msg})
}

func missingMessage(n *sitter.Node) string {
	if n.IsNamed() {
		return "Expected " + strings.ReplaceAll(n.Type(), "_", " ")
	}
	return fmt.Sprintf("Expected '%s'", n.Type())
}

func (l *lowerer) unexpectedMessage(n *sitter.Node) string {
	leaf := n
	for leaf.ChildCount() > 0 {
		leaf = leaf.Child(0)
	}
	tok := strings.TrimSpace(l.text(leaf))
	if i := strings.IndexByte(tok, '\n'); i >= 0 {
		tok = tok[:i]
	}
	if tok == "" {
		return "invalid syntax"
	}
	if utf8.RuneCountInString(tok) > 20 {
		tok = string([]rune(tok)[:20]) + "..."
	}
	return fmt.Sprintf("Unexpected token '%s'", tok)
}

// named returns the named children of n without comments.
func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c == nil || c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// fieldChildren returns every child stored under a repeated field.
func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if n.FieldNameForChild(i) == field {
			out = append(out, n.Child(i))
		}
	}
	return out
}

// hasToken reports whether n has an anonymous child of type tok.
func hasToken(n *sitter.Node, tok string) bool {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && c.Type() == tok {
			return true
		}
	}
	return false
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if c := n.Child(i); c != nil && c.Type() == typ {
			return c
		}
	}
	return nil
}

// normalizeName applies NFKC to non-ASCII identifiers, as Python does.
func normalizeName(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return norm.NFKC.String(s)
		}
	}
	return s
}
