package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"krait/internal/ast"
	"krait/internal/source"
)

func (l *lowerer) expr(n *sitter.Node) ast.ExprID {
	if n == nil {
		return ast.NoExprID
	}
	e := l.b.Exprs
	span := l.span(n)
	switch n.Type() {
	case "identifier", "keyword_identifier":
		return e.NewName(span, normalizeName(l.text(n)), ast.Load)
	case "attribute":
		return e.NewAttribute(span, l.expr(n.ChildByFieldName("object")), l.ident(n.ChildByFieldName("attribute")), ast.Load)
	case "call":
		fn := l.expr(n.ChildByFieldName("function"))
		argsNode := n.ChildByFieldName("arguments")
		if argsNode != nil && argsNode.Type() == "generator_expression" {
			return e.NewCall(span, fn, []ast.ExprID{l.expr(argsNode)}, nil)
		}
		args, kws := l.arguments(argsNode)
		return e.NewCall(span, fn, args, kws)
	case "string", "concatenated_string":
		return l.stringExpr(n)
	case "integer", "float":
		text := l.text(n)
		kind := ast.LitInt
		switch {
		case strings.HasSuffix(text, "j") || strings.HasSuffix(text, "J"):
			kind = ast.LitComplex
		case n.Type() == "float":
			kind = ast.LitFloat
		}
		return e.NewLiteral(span, kind, text, text)
	case "true":
		return e.NewLiteral(span, ast.LitTrue, "True", "")
	case "false":
		return e.NewLiteral(span, ast.LitFalse, "False", "")
	case "none":
		return e.NewLiteral(span, ast.LitNone, "None", "")
	case "ellipsis":
		return e.NewLiteral(span, ast.LitEllipsis, "...", "")
	case "binary_operator":
		op, ok := ast.ParseOperator(l.text(n.ChildByFieldName("operator")))
		if !ok {
			return ast.NoExprID
		}
		return e.NewBinOp(span, l.expr(n.ChildByFieldName("left")), op, l.expr(n.ChildByFieldName("right")))
	case "boolean_operator":
		return l.boolOp(n, span)
	case "not_operator":
		return e.NewUnaryOp(span, ast.Not, l.expr(n.ChildByFieldName("argument")))
	case "unary_operator":
		var op ast.UnaryOp
		switch l.text(n.ChildByFieldName("operator")) {
		case "-":
			op = ast.USub
		case "+":
			op = ast.UAdd
		case "~":
			op = ast.Invert
		default:
			return ast.NoExprID
		}
		return e.NewUnaryOp(span, op, l.expr(n.ChildByFieldName("argument")))
	case "comparison_operator":
		return l.compare(n, span)
	case "conditional_expression":
		c := named(n)
		if len(c) < 3 {
			return ast.NoExprID
		}
		return e.NewIfExp(span, l.expr(c[1]), l.expr(c[0]), l.expr(c[2]))
	case "lambda":
		params := ast.Parameters{Span: span}
		if p := n.ChildByFieldName("parameters"); p != nil {
			params = l.parameters(p)
		}
		return e.NewLambda(span, params, l.expr(n.ChildByFieldName("body")))
	case "list", "list_pattern":
		return e.NewSeq(ast.ExprList, span, l.exprs(named(n)), ast.Load)
	case "tuple", "expression_list", "pattern_list", "tuple_pattern":
		return e.NewSeq(ast.ExprTuple, span, l.exprs(named(n)), ast.Load)
	case "set":
		return e.NewSeq(ast.ExprSet, span, l.exprs(named(n)), ast.Load)
	case "parenthesized_expression":
		c := named(n)
		if len(c) == 0 {
			return ast.NoExprID
		}
		return l.expr(c[0])
	case "dictionary":
		var keys, values []ast.ExprID
		for _, c := range named(n) {
			switch c.Type() {
			case "pair":
				keys = append(keys, l.expr(c.ChildByFieldName("key")))
				values = append(values, l.expr(c.ChildByFieldName("value")))
			case "dictionary_splat":
				keys = append(keys, ast.NoExprID)
				values = append(values, l.splatValue(c))
			}
		}
		return e.NewDict(span, keys, values)
	case "list_comprehension":
		return l.comprehension(ast.ExprListComp, n, span)
	case "set_comprehension":
		return l.comprehension(ast.ExprSetComp, n, span)
	case "dictionary_comprehension":
		return l.comprehension(ast.ExprDictComp, n, span)
	case "generator_expression":
		return l.comprehension(ast.ExprGenerator, n, span)
	case "subscript":
		return l.subscript(n, span)
	case "slice":
		return l.slice(n, span)
	case "await":
		return e.NewValue(ast.ExprAwait, span, l.firstExpr(n))
	case "yield":
		if hasToken(n, "from") {
			return e.NewValue(ast.ExprYieldFrom, span, l.firstExpr(n))
		}
		return e.NewValue(ast.ExprYield, span, l.firstExpr(n))
	case "named_expression":
		target := l.target(n.ChildByFieldName("name"), ast.Store)
		return e.NewNamed(span, target, l.expr(n.ChildByFieldName("value")))
	case "list_splat", "list_splat_pattern", "parenthesized_list_splat", "dictionary_splat", "dictionary_splat_pattern", "splat_type":
		return e.NewStarred(span, l.splatValue(n), ast.Load)
	case "type", "as_pattern_target", "constrained_type":
		return l.firstExpr(n)
	case "member_type":
		c := named(n)
		if len(c) < 2 {
			return ast.NoExprID
		}
		return e.NewAttribute(span, l.expr(c[0]), l.ident(c[len(c)-1]), ast.Load)
	case "union_type":
		c := named(n)
		if len(c) < 2 {
			return ast.NoExprID
		}
		return e.NewBinOp(span, l.expr(c[0]), ast.OpBitOr, l.expr(c[1]))
	case "generic_type":
		c := named(n)
		if len(c) == 0 {
			return ast.NoExprID
		}
		value := l.expr(c[0])
		if len(c) < 2 {
			return value
		}
		args := l.exprs(named(c[1]))
		slice := ast.NoExprID
		if len(args) == 1 {
			slice = args[0]
		} else {
			slice = e.NewSeq(ast.ExprTuple, l.span(c[1]), args, ast.Load)
		}
		return e.NewSubscript(span, value, slice, ast.Load)
	default:
		return ast.NoExprID
	}
}

func (l *lowerer) exprs(nodes []*sitter.Node) []ast.ExprID {
	out := make([]ast.ExprID, 0, len(nodes))
	for _, n := range nodes {
		if id := l.expr(n); id.IsValid() {
			out = append(out, id)
		}
	}
	return out
}

func (l *lowerer) firstExpr(n *sitter.Node) ast.ExprID {
	if c := named(n); len(c) > 0 {
		return l.expr(c[0])
	}
	return ast.NoExprID
}

func (l *lowerer) splatValue(n *sitter.Node) ast.ExprID {
	return l.firstExpr(n)
}

// arguments lowers a call or class argument list.
func (l *lowerer) arguments(n *sitter.Node) ([]ast.ExprID, []ast.Keyword) {
	if n == nil {
		return nil, nil
	}
	var args []ast.ExprID
	var kws []ast.Keyword
	for _, c := range named(n) {
		switch c.Type() {
		case "keyword_argument":
			kws = append(kws, ast.Keyword{
				Arg:   l.ident(c.ChildByFieldName("name")),
				Value: l.expr(c.ChildByFieldName("value")),
				Span:  l.span(c),
			})
		case "dictionary_splat":
			kws = append(kws, ast.Keyword{Value: l.splatValue(c), Span: l.span(c)})
		default:
			if id := l.expr(c); id.IsValid() {
				args = append(args, id)
			}
		}
	}
	return args, kws
}

// boolOp flattens `a and b and c` into one operation.
func (l *lowerer) boolOp(n *sitter.Node, span source.Span) ast.ExprID {
	opText := l.text(n.ChildByFieldName("operator"))
	op := ast.And
	if opText == "or" {
		op = ast.Or
	}
	var values []ast.ExprID
	var collect func(*sitter.Node)
	collect = func(x *sitter.Node) {
		if x != nil && x.Type() == "boolean_operator" && l.text(x.ChildByFieldName("operator")) == opText {
			collect(x.ChildByFieldName("left"))
			collect(x.ChildByFieldName("right"))
			return
		}
		values = append(values, l.expr(x))
	}
	collect(n.ChildByFieldName("left"))
	collect(n.ChildByFieldName("right"))
	return l.b.Exprs.NewBoolOp(span, op, values)
}

func (l *lowerer) compare(n *sitter.Node, span source.Span) ast.ExprID {
	var data ast.CompareExpr
	var operands []ast.ExprID
	var words []string
	var opStart, opEnd uint32
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c == nil || c.Type() == "comment" {
			continue
		}
		if c.IsNamed() {
			if len(words) > 0 {
				op, _ := ast.ParseCmpOp(strings.Join(words, " "))
				data.Ops = append(data.Ops, op)
				data.OpSpans = append(data.OpSpans, source.Span{File: l.file.ID, Start: opStart, End: opEnd})
				words = words[:0]
			}
			operands = append(operands, l.expr(c))
			continue
		}
		if len(words) == 0 {
			opStart = c.StartByte()
		}
		words = append(words, l.text(c))
		opEnd = c.EndByte()
	}
	if len(operands) == 0 {
		return ast.NoExprID
	}
	data.Left = operands[0]
	data.Comparators = operands[1:]
	return l.b.Exprs.NewCompare(span, data)
}

func (l *lowerer) comprehension(kind ast.ExprKind, n *sitter.Node, span source.Span) ast.ExprID {
	data := ast.CompExpr{Elt: ast.NoExprID, Value: ast.NoExprID}
	body := n.ChildByFieldName("body")
	if kind == ast.ExprDictComp && body != nil && body.Type() == "pair" {
		data.Elt = l.expr(body.ChildByFieldName("key"))
		data.Value = l.expr(body.ChildByFieldName("value"))
	} else {
		data.Elt = l.expr(body)
	}
	for _, c := range named(n) {
		switch c.Type() {
		case "for_in_clause":
			gen := ast.Comprehension{
				Target:  l.target(c.ChildByFieldName("left"), ast.Store),
				IsAsync: hasToken(c, "async"),
				Span:    l.span(c),
			}
			rights := fieldChildren(c, "right")
			switch len(rights) {
			case 0:
			case 1:
				gen.Iter = l.expr(rights[0])
			default:
				gen.Iter = l.b.Exprs.NewSeq(ast.ExprTuple, l.cover(rights[0], rights[len(rights)-1]), l.exprs(rights), ast.Load)
			}
			data.Generators = append(data.Generators, gen)
		case "if_clause":
			if len(data.Generators) == 0 {
				continue
			}
			g := &data.Generators[len(data.Generators)-1]
			g.Ifs = append(g.Ifs, l.firstExpr(c))
		}
	}
	return l.b.Exprs.NewComp(kind, span, data)
}

func (l *lowerer) subscript(n *sitter.Node, span source.Span) ast.ExprID {
	value := l.expr(n.ChildByFieldName("value"))
	subs := fieldChildren(n, "subscript")
	slice := ast.NoExprID
	switch len(subs) {
	case 0:
	case 1:
		slice = l.expr(subs[0])
	default:
		slice = l.b.Exprs.NewSeq(ast.ExprTuple, l.cover(subs[0], subs[len(subs)-1]), l.exprs(subs), ast.Load)
	}
	return l.b.Exprs.NewSubscript(span, value, slice, ast.Load)
}

func (l *lowerer) slice(n *sitter.Node, span source.Span) ast.ExprID {
	var parts [3]ast.ExprID
	pos := 0
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c == nil || c.Type() == "comment" {
			continue
		}
		if c.Type() == ":" {
			pos++
			continue
		}
		if c.IsNamed() && pos < len(parts) {
			parts[pos] = l.expr(c)
		}
	}
	return l.b.Exprs.NewSlice(span, parts[0], parts[1], parts[2])
}
