package starlark

import (
	"strings"

	"go.starlark.net/syntax"

	"krait/internal/ast"
	"krait/internal/source"
)

func (l *lowerer) block(stmts []syntax.Stmt) []ast.StmtID {
	out := make([]ast.StmtID, 0, len(stmts))
	for _, st := range stmts {
		if id := l.stmt(st); id.IsValid() {
			out = append(out, id)
		}
	}
	return out
}

func (l *lowerer) stmt(st syntax.Stmt) ast.StmtID {
	s := l.b.Stmts
	span := l.span(st)
	switch st := st.(type) {
	case *syntax.ExprStmt:
		return s.NewExpr(span, l.expr(st.X))
	case *syntax.AssignStmt:
		target := l.target(st.LHS)
		if st.Op == syntax.EQ {
			return s.NewAssign(span, []ast.ExprID{target}, l.expr(st.RHS))
		}
		op, ok := ast.ParseOperator(st.Op.String())
		if !ok {
			return ast.NoStmtID
		}
		return s.NewAugAssign(span, target, op, l.expr(st.RHS))
	case *syntax.DefStmt:
		return s.NewFunctionDef(span, ast.FunctionDefStmt{
			Name:    l.ident(st.Name),
			Params:  l.parameters(st.Params, source.NewSpan(l.file.ID, l.offset(st.Lparen), l.offset(st.Rparen)+1)),
			Returns: ast.NoExprID,
			Body:    l.block(st.Body),
		})
	case *syntax.IfStmt:
		return l.ifStmt(st, span)
	case *syntax.ForStmt:
		return s.NewFor(span, ast.ForStmt{
			Target: l.target(st.Vars),
			Iter:   l.expr(st.X),
			Body:   l.block(st.Body),
		})
	case *syntax.WhileStmt:
		return s.NewWhile(span, ast.WhileStmt{Test: l.expr(st.Cond), Body: l.block(st.Body)})
	case *syntax.ReturnStmt:
		value := ast.NoExprID
		if st.Result != nil {
			value = l.expr(st.Result)
		}
		return s.NewReturn(span, value)
	case *syntax.BranchStmt:
		switch st.Token {
		case syntax.BREAK:
			return s.NewSimple(ast.StmtBreak, span)
		case syntax.CONTINUE:
			return s.NewSimple(ast.StmtContinue, span)
		default:
			return s.NewSimple(ast.StmtPass, span)
		}
	case *syntax.LoadStmt:
		return l.load(st, span)
	}
	return ast.NoStmtID
}

// ifStmt keeps elif chains as a single nested IfStmt in Orelse, the way
// the Python frontend does; syntax desugars elif the same way.
func (l *lowerer) ifStmt(st *syntax.IfStmt, span source.Span) ast.StmtID {
	data := ast.IfStmt{
		Test: l.expr(st.Cond),
		Body: l.block(st.True),
		Elif: strings.HasPrefix(l.file.Text(source.Span{File: l.file.ID, Start: span.Start, End: span.Start + 4}), "elif"),
	}
	data.Orelse = l.block(st.False)
	return l.b.Stmts.NewIf(span, data)
}

// load lowers `load("//pkg:defs.bzl", "a", b = "c")` to a from-import
// whose aliases bind the local names.
func (l *lowerer) load(st *syntax.LoadStmt, span source.Span) ast.StmtID {
	data := ast.ImportFromStmt{ModuleSpan: l.span(st.Module)}
	if mod, ok := st.Module.Value.(string); ok {
		data.Module = mod
	}
	for i := range st.To {
		from, to := st.From[i], st.To[i]
		// From указывает на строковый литерал с именем
		quoted := l.offset(from.NamePos)
		nameEnd := min(quoted+uint32(len(from.Name))+2, l.file.Size()) // #nosec G115 -- the literal lies inside the file
		alias := ast.Alias{
			Name:     from.Name,
			NameSpan: l.span(to),
			Span:     source.NewSpan(l.file.ID, quoted, nameEnd),
		}
		if to.Name != from.Name {
			alias.AsName = to.Name
			alias.Span = source.NewSpan(l.file.ID, l.offset(to.NamePos), nameEnd)
		} else {
			alias.NameSpan = alias.Span
		}
		data.Names = append(data.Names, alias)
	}
	return l.b.Stmts.NewImportFrom(span, data)
}

// parameters maps `x`, `x=1`, `*`, `*args` and `**kwargs`.
func (l *lowerer) parameters(params []syntax.Expr, span source.Span) ast.Parameters {
	ps := ast.Parameters{Span: span}
	kind := ast.ParamRegular
	for _, p := range params {
		param := ast.Param{Span: l.span(p), Kind: kind, Annotation: ast.NoExprID, Default: ast.NoExprID}
		switch p := p.(type) {
		case *syntax.Ident:
			param.Name = l.ident(p)
		case *syntax.BinaryExpr:
			name, ok := p.X.(*syntax.Ident)
			if !ok || p.Op != syntax.EQ {
				continue
			}
			param.Name = l.ident(name)
			param.Default = l.expr(p.Y)
		case *syntax.UnaryExpr:
			if p.Op == syntax.STARSTAR {
				if name, ok := p.X.(*syntax.Ident); ok {
					param.Name = l.ident(name)
					param.Kind = ast.ParamKwarg
				}
				break
			}
			kind = ast.ParamKeywordOnly
			name, ok := p.X.(*syntax.Ident)
			if !ok {
				continue // голая `*`
			}
			param.Name = l.ident(name)
			param.Kind = ast.ParamVararg
		default:
			continue
		}
		if param.Name.Name == "" {
			continue
		}
		ps.Append(l.b.Params.New(param), param.Kind)
	}
	return ps
}

func (l *lowerer) target(e syntax.Expr) ast.ExprID {
	id := l.expr(e)
	l.b.Exprs.SetContext(id, ast.Store)
	return id
}

func (l *lowerer) exprs(list []syntax.Expr) []ast.ExprID {
	out := make([]ast.ExprID, 0, len(list))
	for _, e := range list {
		if id := l.expr(e); id.IsValid() {
			out = append(out, id)
		}
	}
	return out
}

var cmpOps = map[syntax.Token]ast.CmpOp{
	syntax.EQL: ast.CmpEq, syntax.NEQ: ast.CmpNotEq,
	syntax.LT: ast.CmpLt, syntax.LE: ast.CmpLtE, syntax.GT: ast.CmpGt, syntax.GE: ast.CmpGtE,
	syntax.IN: ast.CmpIn, syntax.NOT_IN: ast.CmpNotIn,
}

func (l *lowerer) expr(e syntax.Expr) ast.ExprID {
	if e == nil {
		return ast.NoExprID
	}
	x := l.b.Exprs
	span := l.span(e)
	switch e := e.(type) {
	case *syntax.Ident:
		switch e.Name {
		case "True":
			return x.NewLiteral(span, ast.LitTrue, "True", "")
		case "False":
			return x.NewLiteral(span, ast.LitFalse, "False", "")
		case "None":
			return x.NewLiteral(span, ast.LitNone, "None", "")
		}
		return x.NewName(span, e.Name, ast.Load)
	case *syntax.Literal:
		return l.literal(e, span)
	case *syntax.ParenExpr:
		return l.expr(e.X)
	case *syntax.DotExpr:
		return x.NewAttribute(span, l.expr(e.X), l.ident(e.Name), ast.Load)
	case *syntax.CallExpr:
		return l.call(e, span)
	case *syntax.IndexExpr:
		return x.NewSubscript(span, l.expr(e.X), l.expr(e.Y), ast.Load)
	case *syntax.SliceExpr:
		sliceSpan := source.NewSpan(l.file.ID, l.offset(e.Lbrack)+1, l.offset(e.Rbrack))
		slice := x.NewSlice(sliceSpan, l.expr(e.Lo), l.expr(e.Hi), l.expr(e.Step))
		return x.NewSubscript(span, l.expr(e.X), slice, ast.Load)
	case *syntax.ListExpr:
		return x.NewSeq(ast.ExprList, span, l.exprs(e.List), ast.Load)
	case *syntax.TupleExpr:
		return x.NewSeq(ast.ExprTuple, span, l.exprs(e.List), ast.Load)
	case *syntax.DictExpr:
		keys := make([]ast.ExprID, 0, len(e.List))
		values := make([]ast.ExprID, 0, len(e.List))
		for _, item := range e.List {
			if entry, ok := item.(*syntax.DictEntry); ok {
				keys = append(keys, l.expr(entry.Key))
				values = append(values, l.expr(entry.Value))
			}
		}
		return x.NewDict(span, keys, values)
	case *syntax.Comprehension:
		return l.comprehension(e, span)
	case *syntax.CondExpr:
		return x.NewIfExp(span, l.expr(e.Cond), l.expr(e.True), l.expr(e.False))
	case *syntax.LambdaExpr:
		return x.NewLambda(span, l.parameters(e.Params, span), l.expr(e.Body))
	case *syntax.UnaryExpr:
		var op ast.UnaryOp
		switch e.Op {
		case syntax.NOT:
			op = ast.Not
		case syntax.MINUS:
			op = ast.USub
		case syntax.PLUS:
			op = ast.UAdd
		case syntax.TILDE:
			op = ast.Invert
		case syntax.STAR:
			return x.NewStarred(span, l.expr(e.X), ast.Load)
		default:
			return ast.NoExprID
		}
		return x.NewUnaryOp(span, op, l.expr(e.X))
	case *syntax.BinaryExpr:
		return l.binary(e, span)
	}
	return ast.NoExprID
}

func (l *lowerer) literal(e *syntax.Literal, span source.Span) ast.ExprID {
	x := l.b.Exprs
	switch e.Token {
	case syntax.STRING, syntax.BYTES:
		kind := ast.LitStr
		if e.Token == syntax.BYTES {
			kind = ast.LitBytes
		}
		value, _ := e.Value.(string)
		return x.NewLiteral(span, kind, e.Raw, value)
	case syntax.FLOAT:
		return x.NewLiteral(span, ast.LitFloat, e.Raw, e.Raw)
	default:
		return x.NewLiteral(span, ast.LitInt, e.Raw, e.Raw)
	}
}

// call splits arguments into positional ones, `name=value` keywords
// and `**kwargs` spreads.
func (l *lowerer) call(e *syntax.CallExpr, span source.Span) ast.ExprID {
	var args []ast.ExprID
	var kws []ast.Keyword
	for _, arg := range e.Args {
		switch a := arg.(type) {
		case *syntax.BinaryExpr:
			if name, ok := a.X.(*syntax.Ident); ok && a.Op == syntax.EQ {
				kws = append(kws, ast.Keyword{Arg: l.ident(name), Value: l.expr(a.Y), Span: l.span(a)})
				continue
			}
		case *syntax.UnaryExpr:
			if a.Op == syntax.STARSTAR {
				kws = append(kws, ast.Keyword{Value: l.expr(a.X), Span: l.span(a)})
				continue
			}
		}
		if id := l.expr(arg); id.IsValid() {
			args = append(args, id)
		}
	}
	return l.b.Exprs.NewCall(span, l.expr(e.Fn), args, kws)
}

func (l *lowerer) binary(e *syntax.BinaryExpr, span source.Span) ast.ExprID {
	x := l.b.Exprs
	switch e.Op {
	case syntax.AND, syntax.OR:
		op := ast.And
		if e.Op == syntax.OR {
			op = ast.Or
		}
		var values []ast.ExprID
		var collect func(syntax.Expr)
		collect = func(n syntax.Expr) {
			if b, ok := n.(*syntax.BinaryExpr); ok && b.Op == e.Op {
				collect(b.X)
				collect(b.Y)
				return
			}
			values = append(values, l.expr(n))
		}
		collect(e)
		return x.NewBoolOp(span, op, values)
	}
	if op, ok := cmpOps[e.Op]; ok {
		opStart := l.offset(e.OpPos)
		opSpan := source.NewSpan(l.file.ID, opStart, opStart+uint32(len(e.Op.String()))) // #nosec G115 -- operator text is short
		return x.NewCompare(span, ast.CompareExpr{
			Left:        l.expr(e.X),
			Ops:         []ast.CmpOp{op},
			OpSpans:     []source.Span{opSpan},
			Comparators: []ast.ExprID{l.expr(e.Y)},
		})
	}
	op, ok := ast.ParseOperator(e.Op.String())
	if !ok {
		return ast.NoExprID
	}
	return x.NewBinOp(span, l.expr(e.X), op, l.expr(e.Y))
}

func (l *lowerer) comprehension(e *syntax.Comprehension, span source.Span) ast.ExprID {
	kind := ast.ExprListComp
	data := ast.CompExpr{Elt: ast.NoExprID, Value: ast.NoExprID}
	if entry, ok := e.Body.(*syntax.DictEntry); ok && e.Curly {
		kind = ast.ExprDictComp
		data.Elt = l.expr(entry.Key)
		data.Value = l.expr(entry.Value)
	} else {
		if e.Curly {
			kind = ast.ExprSetComp
		}
		data.Elt = l.expr(e.Body)
	}
	for _, clause := range e.Clauses {
		switch c := clause.(type) {
		case *syntax.ForClause:
			data.Generators = append(data.Generators, ast.Comprehension{
				Target: l.target(c.Vars),
				Iter:   l.expr(c.X),
				Span:   l.span(c),
			})
		case *syntax.IfClause:
			if len(data.Generators) == 0 {
				continue
			}
			g := &data.Generators[len(data.Generators)-1]
			g.Ifs = append(g.Ifs, l.expr(c.Cond))
		}
	}
	return l.b.Exprs.NewComp(kind, span, data)
}
