package ast

// Blocks returns the nested statement suites of a statement in source order.
func (b *Builder) Blocks(id StmtID) [][]StmtID {
	st := b.Stmts.Get(id)
	if st == nil {
		return nil
	}
	switch st.Kind {
	case StmtFunctionDef:
		fn, _ := b.Stmts.FunctionDef(id)
		return [][]StmtID{fn.Body}
	case StmtClassDef:
		cls, _ := b.Stmts.ClassDef(id)
		return [][]StmtID{cls.Body}
	case StmtFor:
		f, _ := b.Stmts.For(id)
		return [][]StmtID{f.Body, f.Orelse}
	case StmtWhile:
		w, _ := b.Stmts.While(id)
		return [][]StmtID{w.Body, w.Orelse}
	case StmtIf:
		i, _ := b.Stmts.If(id)
		return [][]StmtID{i.Body, i.Orelse}
	case StmtWith:
		w, _ := b.Stmts.With(id)
		return [][]StmtID{w.Body}
	case StmtTry:
		t, _ := b.Stmts.Try(id)
		out := make([][]StmtID, 0, len(t.Handlers)+3)
		out = append(out, t.Body)
		for _, h := range t.Handlers {
			out = append(out, b.Stmts.Handler(h).Body)
		}
		return append(out, t.Orelse, t.Finally)
	}
	return nil
}

// StmtExprs returns the expressions owned directly by a statement,
// excluding those of nested suites.
func (b *Builder) StmtExprs(id StmtID) []ExprID {
	st := b.Stmts.Get(id)
	if st == nil {
		return nil
	}
	var out []ExprID
	add := func(ids ...ExprID) {
		for _, e := range ids {
			if e.IsValid() {
				out = append(out, e)
			}
		}
	}
	switch st.Kind {
	case StmtFunctionDef:
		fn, _ := b.Stmts.FunctionDef(id)
		add(fn.Decorators...)
		add(b.ParamExprs(fn.Params)...)
		add(fn.Returns)
	case StmtClassDef:
		cls, _ := b.Stmts.ClassDef(id)
		add(cls.Decorators...)
		add(cls.Bases...)
		for _, kw := range cls.Keywords {
			add(kw.Value)
		}
	case StmtReturn:
		r, _ := b.Stmts.Return(id)
		add(r.Value)
	case StmtDelete:
		d, _ := b.Stmts.Delete(id)
		add(d.Targets...)
	case StmtAssign:
		a, _ := b.Stmts.Assign(id)
		add(a.Value)
		add(a.Targets...)
	case StmtAugAssign:
		a, _ := b.Stmts.AugAssign(id)
		add(a.Value, a.Target)
	case StmtAnnAssign:
		a, _ := b.Stmts.AnnAssign(id)
		add(a.Annotation, a.Value, a.Target)
	case StmtFor:
		f, _ := b.Stmts.For(id)
		add(f.Iter, f.Target)
	case StmtWhile:
		w, _ := b.Stmts.While(id)
		add(w.Test)
	case StmtIf:
		i, _ := b.Stmts.If(id)
		add(i.Test)
	case StmtWith:
		w, _ := b.Stmts.With(id)
		for _, item := range w.Items {
			add(item.Context, item.Vars)
		}
	case StmtRaise:
		r, _ := b.Stmts.Raise(id)
		add(r.Exc, r.Cause)
	case StmtTry:
		t, _ := b.Stmts.Try(id)
		for _, h := range t.Handlers {
			add(b.Stmts.Handler(h).Type)
		}
	case StmtAssert:
		a, _ := b.Stmts.Assert(id)
		add(a.Test, a.Msg)
	case StmtExpr:
		e, _ := b.Stmts.Expr(id)
		add(e.Value)
	}
	return out
}

// ParamExprs returns defaults and annotations of a parameter list.
func (b *Builder) ParamExprs(p Parameters) []ExprID {
	var out []ExprID
	for _, id := range p.All() {
		param := b.Params.Get(id)
		if param.Annotation.IsValid() {
			out = append(out, param.Annotation)
		}
		if param.Default.IsValid() {
			out = append(out, param.Default)
		}
	}
	return out
}

// ChildExprs returns the direct sub-expressions of an expression in evaluation order.
func (b *Builder) ChildExprs(id ExprID) []ExprID {
	e := b.Exprs
	ex := e.Get(id)
	if ex == nil {
		return nil
	}
	var out []ExprID
	add := func(ids ...ExprID) {
		for _, c := range ids {
			if c.IsValid() {
				out = append(out, c)
			}
		}
	}
	switch ex.Kind {
	case ExprAttribute:
		a, _ := e.Attribute(id)
		add(a.Value)
	case ExprCall:
		c, _ := e.Call(id)
		add(c.Func)
		add(c.Args...)
		for _, kw := range c.Keywords {
			add(kw.Value)
		}
	case ExprFString:
		f, _ := e.FString(id)
		for _, part := range f.Parts {
			add(part.Values...)
		}
	case ExprBinOp:
		bo, _ := e.BinOp(id)
		add(bo.Left, bo.Right)
	case ExprBoolOp:
		bo, _ := e.BoolOp(id)
		add(bo.Values...)
	case ExprUnaryOp:
		u, _ := e.UnaryOp(id)
		add(u.Operand)
	case ExprCompare:
		c, _ := e.Compare(id)
		add(c.Left)
		add(c.Comparators...)
	case ExprIfExp:
		i, _ := e.IfExp(id)
		add(i.Test, i.Body, i.Orelse)
	case ExprLambda:
		l, _ := e.Lambda(id)
		add(b.ParamExprs(l.Params)...)
		add(l.Body)
	case ExprList, ExprTuple, ExprSet:
		s, _ := e.Seq(id)
		add(s.Elts...)
	case ExprDict:
		d, _ := e.Dict(id)
		for i := range d.Values {
			add(d.Keys[i], d.Values[i])
		}
	case ExprListComp, ExprSetComp, ExprDictComp, ExprGenerator:
		c, _ := e.Comp(id)
		for _, g := range c.Generators {
			add(g.Iter, g.Target)
			add(g.Ifs...)
		}
		add(c.Elt, c.Value)
	case ExprSubscript:
		s, _ := e.Subscript(id)
		add(s.Value, s.Slice)
	case ExprSlice:
		s, _ := e.Slice(id)
		add(s.Lower, s.Upper, s.Step)
	case ExprStarred:
		s, _ := e.Starred(id)
		add(s.Value)
	case ExprAwait, ExprYield, ExprYieldFrom:
		v, _ := e.Value(id)
		add(v.Value)
	case ExprNamed:
		n, _ := e.Named(id)
		add(n.Value, n.Target)
	}
	return out
}

// WalkStmts visits statements of body in pre-order, descending into nested
// suites while fn returns true.
func (b *Builder) WalkStmts(body []StmtID, fn func(StmtID) bool) {
	for _, id := range body {
		if !fn(id) {
			continue
		}
		for _, block := range b.Blocks(id) {
			b.WalkStmts(block, fn)
		}
	}
}

// WalkExpr visits id and its sub-expressions in pre-order while fn returns true.
func (b *Builder) WalkExpr(id ExprID, fn func(ExprID) bool) {
	if !id.IsValid() || !fn(id) {
		return
	}
	for _, child := range b.ChildExprs(id) {
		b.WalkExpr(child, fn)
	}
}

// IsFunctionLike reports whether a statement opens a new scope.
func (b *Builder) IsFunctionLike(id StmtID) bool {
	k := b.Stmts.Kind(id)
	return k == StmtFunctionDef || k == StmtClassDef
}

// Docstring returns the string expression opening body, if any.
func (b *Builder) Docstring(body []StmtID) (ExprID, bool) {
	if len(body) == 0 {
		return NoExprID, false
	}
	es, ok := b.Stmts.Expr(body[0])
	if !ok {
		return NoExprID, false
	}
	if b.Exprs.IsLiteral(es.Value, LitStr) {
		return es.Value, true
	}
	return NoExprID, false
}
