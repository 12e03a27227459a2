package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"krait/internal/ast"
)

// parameters lowers a def or lambda parameter list. Parameters seen
// before a `/` are moved to PosOnly; those after `*` or `*args` are
// keyword-only.
func (l *lowerer) parameters(n *sitter.Node) ast.Parameters {
	var ps ast.Parameters
	if n == nil {
		return ps
	}
	ps.Span = l.span(n)
	kind := ast.ParamRegular
	add := func(p ast.Param) {
		if p.Kind == 0 {
			p.Kind = kind
		}
		ps.Append(l.b.Params.New(p), p.Kind)
	}
	for _, c := range named(n) {
		p := ast.Param{Span: l.span(c)}
		switch c.Type() {
		case "identifier":
			p.Name = l.ident(c)
			add(p)
		case "typed_parameter":
			inner := named(c)
			if len(inner) == 0 {
				continue
			}
			name := inner[0]
			p.Annotation = l.expr(c.ChildByFieldName("type"))
			switch name.Type() {
			case "list_splat_pattern":
				p.Name = l.ident(firstNamed(name))
				p.Kind = ast.ParamVararg
				kind = ast.ParamKeywordOnly
			case "dictionary_splat_pattern":
				p.Name = l.ident(firstNamed(name))
				p.Kind = ast.ParamKwarg
			default:
				p.Name = l.ident(name)
			}
			add(p)
		case "default_parameter", "typed_default_parameter":
			if name := c.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				p.Name = l.ident(name)
			}
			if typ := c.ChildByFieldName("type"); typ != nil {
				p.Annotation = l.expr(typ)
			}
			p.Default = l.expr(c.ChildByFieldName("value"))
			add(p)
		case "list_splat_pattern":
			p.Name = l.ident(firstNamed(c))
			p.Kind = ast.ParamVararg
			add(p)
			kind = ast.ParamKeywordOnly
		case "dictionary_splat_pattern":
			p.Name = l.ident(firstNamed(c))
			p.Kind = ast.ParamKwarg
			add(p)
		case "keyword_separator":
			kind = ast.ParamKeywordOnly
		case "positional_separator":
			for _, id := range ps.Args {
				if param := l.b.Params.Get(id); param != nil {
					param.Kind = ast.ParamPositionalOnly
				}
			}
			ps.PosOnly = append(ps.PosOnly, ps.Args...)
			ps.Args = nil
		}
	}
	return ps
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if c := named(n); len(c) > 0 {
		return c[0]
	}
	return nil
}
