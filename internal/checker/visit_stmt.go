package checker

import (
	"strings"

	"krait/internal/ast"
	"krait/internal/semantic"
)

// visitBody dispatches the suite and visits its statements; statements
// after a terminal one carry the Unreachable flag.
func (c *Checker) visitBody(owner ast.StmtID, index int, body []ast.StmtID) {
	if len(body) == 0 {
		return
	}
	span := c.stmtSpan(body[0]).Cover(c.stmtSpan(body[len(body)-1]))
	c.dispatchNode(Node{Kind: KindSuite, Stmt: owner, Index: index, Suite: body, Span: span})

	old := c.model.Flags()
	for _, id := range body {
		c.visitStmt(id)
		if Terminates(c.tree, id) {
			c.model.PushFlags(semantic.Unreachable)
		}
	}
	c.model.RestoreFlags(old)
}

func (c *Checker) visitStmt(id ast.StmtID) {
	st := c.tree.Stmts.Get(id)
	if st == nil {
		return
	}
	c.stats.Stmts++
	m := c.model
	stmts := c.tree.Stmts
	src := semantic.Source{Stmt: id}

	switch st.Kind {
	case ast.StmtImport, ast.StmtImportFrom:
		c.bindImports(id)
	case ast.StmtGlobal:
		if d, ok := stmts.Declared(id); ok {
			for _, name := range d.Names {
				m.DeclareGlobal(name.Name, name.Span, src)
			}
		}
	case ast.StmtNonlocal:
		if d, ok := stmts.Declared(id); ok {
			for _, name := range d.Names {
				m.DeclareNonlocal(name.Name, name.Span, src)
			}
		}
	}

	c.dispatchNode(Node{Kind: StmtKind(st.Kind), Stmt: id, Span: st.Span})

	switch st.Kind {
	case ast.StmtFunctionDef:
		fn, _ := stmts.FunctionDef(id)
		for _, dec := range fn.Decorators {
			c.visitExpr(dec)
		}
		c.visitParamDefaults(fn.Params, true)
		c.visitAnnotation(fn.Returns)
		m.Bind(fn.Name.Name, semantic.BindFunctionDefinition, fn.Name.Span, src)
		c.funcs = append(c.funcs, deferredFunc{stmt: id, snap: m.Snapshot()})

	case ast.StmtClassDef:
		cls, _ := stmts.ClassDef(id)
		for _, dec := range cls.Decorators {
			c.visitExpr(dec)
		}
		for _, base := range cls.Bases {
			c.visitExpr(base)
		}
		for _, kw := range cls.Keywords {
			c.visitExpr(kw.Value)
		}
		old := m.ClearFlags(semantic.InLoop | semantic.InAsyncFunction | semantic.InBooleanTest)
		m.EnterScope(semantic.ScopeClass, semantic.Owner{Stmt: id}, st.Span)
		c.visitBody(id, 0, cls.Body)
		m.ExitScope()
		m.RestoreFlags(old)
		m.Bind(cls.Name.Name, semantic.BindClassDefinition, cls.Name.Span, src)

	case ast.StmtReturn:
		r, _ := stmts.Return(id)
		c.visitExpr(r.Value)

	case ast.StmtDelete:
		d, _ := stmts.Delete(id)
		c.withStore(semantic.BindDeletion, src, func() {
			for _, target := range d.Targets {
				c.visitExpr(target)
			}
		})

	case ast.StmtAssign:
		a, _ := stmts.Assign(id)
		if c.isDunderAllTarget(a.Targets) {
			old := m.PushFlags(semantic.InDunderAll)
			c.visitExpr(a.Value)
			m.RestoreFlags(old)
			c.bindExports(a.Targets[0], a.Value, src, false)
			return
		}
		c.visitExpr(a.Value)
		c.withStore(semantic.BindAssignment, src, func() {
			for _, target := range a.Targets {
				c.visitExpr(target)
			}
		})

	case ast.StmtAugAssign:
		a, _ := stmts.AugAssign(id)
		c.visitExpr(a.Value)
		if n, ok := c.tree.Exprs.Name(a.Target); ok {
			span := c.tree.Exprs.Span(a.Target)
			m.ResolveLoad(n.Name, span, a.Target)
			if n.Name == "__all__" && m.IsModuleScope() {
				c.bindExports(a.Target, a.Value, src, true)
				return
			}
			c.stats.Exprs++
			m.Bind(n.Name, semantic.BindAssignment, span, src)
			c.dispatchNode(Node{Kind: KindName, Expr: a.Target, Stmt: id, Span: span})
			return
		}
		c.visitExpr(a.Target)

	case ast.StmtAnnAssign:
		a, _ := stmts.AnnAssign(id)
		c.visitAnnotation(a.Annotation)
		if a.Value.IsValid() && c.isDunderAllTarget([]ast.ExprID{a.Target}) {
			c.visitExpr(a.Value)
			c.bindExports(a.Target, a.Value, src, false)
			return
		}
		c.visitExpr(a.Value)
		kind := semantic.BindAnnotatedAssignment
		if !a.Value.IsValid() {
			kind = semantic.BindAnnotation
		}
		c.withStore(kind, src, func() { c.visitExpr(a.Target) })

	case ast.StmtFor:
		f, _ := stmts.For(id)
		c.visitExpr(f.Iter)
		c.withStore(semantic.BindLoopVar, src, func() { c.visitExpr(f.Target) })
		old := m.PushFlags(semantic.InLoop)
		c.visitBody(id, 0, f.Body)
		m.RestoreFlags(old)
		c.visitBody(id, 1, f.Orelse)
		c.loops = append(c.loops, deferredLoop{stmt: id, snap: m.Snapshot()})

	case ast.StmtWhile:
		w, _ := stmts.While(id)
		c.visitTest(w.Test)
		old := m.PushFlags(semantic.InLoop)
		c.visitBody(id, 0, w.Body)
		m.RestoreFlags(old)
		c.visitBody(id, 1, w.Orelse)

	case ast.StmtIf:
		c.visitIf(id)

	case ast.StmtWith:
		w, _ := stmts.With(id)
		for _, item := range w.Items {
			c.visitExpr(item.Context)
			if item.Vars.IsValid() {
				c.withStore(semantic.BindWithItemVar, src, func() { c.visitExpr(item.Vars) })
			}
		}
		c.visitBody(id, 0, w.Body)

	case ast.StmtRaise:
		r, _ := stmts.Raise(id)
		c.visitExpr(r.Exc)
		c.visitExpr(r.Cause)

	case ast.StmtTry:
		c.visitTry(id)

	case ast.StmtAssert:
		a, _ := stmts.Assert(id)
		c.visitTest(a.Test)
		c.visitExpr(a.Msg)

	case ast.StmtExpr:
		e, _ := stmts.Expr(id)
		c.visitExpr(e.Value)
	}
}

func (c *Checker) visitIf(id ast.StmtID) {
	m := c.model
	i, _ := c.tree.Stmts.If(id)
	c.visitTest(i.Test)

	typeChecking := c.isTypeChecking(i.Test)
	m.PushBranch()
	old := m.Flags()
	if typeChecking {
		m.PushFlags(semantic.InTypeCheckingBlock)
	}
	c.visitBody(id, 0, i.Body)
	m.RestoreFlags(old)
	m.PopBranch()

	if len(i.Orelse) == 1 {
		if nested, ok := c.tree.Stmts.If(i.Orelse[0]); ok && nested.Elif {
			// elif открывает свои ветки сам
			c.visitStmt(i.Orelse[0])
			return
		}
	}
	if len(i.Orelse) > 0 {
		m.PushBranch()
		c.visitBody(id, 1, i.Orelse)
		m.PopBranch()
	}
}

func (c *Checker) visitTry(id ast.StmtID) {
	m := c.model
	t, _ := c.tree.Stmts.Try(id)

	m.PushBranch()
	c.visitBody(id, 0, t.Body)
	m.PopBranch()

	for i, hid := range t.Handlers {
		h := c.tree.Stmts.Handler(hid)
		if h == nil {
			continue
		}
		m.PushBranch()
		c.visitHandler(id, i+1, hid, h)
		m.PopBranch()
	}

	if len(t.Orelse) > 0 {
		m.PushBranch()
		c.visitBody(id, len(t.Handlers)+1, t.Orelse)
		m.PopBranch()
	}
	if len(t.Finally) > 0 {
		old := m.PushFlags(semantic.InFinally)
		c.visitBody(id, len(t.Handlers)+2, t.Finally)
		m.RestoreFlags(old)
	}
}

func (c *Checker) visitHandler(try ast.StmtID, index int, hid ast.HandlerID, h *ast.Handler) {
	m := c.model
	src := semantic.Source{Stmt: try}
	c.visitExpr(h.Type)
	c.dispatchNode(Node{Kind: KindExceptHandler, Stmt: try, Handler: hid, Index: index, Span: h.Span})

	name := h.Name.Name
	bound := semantic.NoBindingID
	prior := semantic.NoBindingID
	if name != "" {
		if id, ok := m.Lookup(name); ok && !m.Binding(id).Kind.IsUnbound() {
			prior = id
		}
		bound = m.Bind(name, semantic.BindBoundException, h.Name.Span, src)
	}

	old := m.PushFlags(semantic.InExceptHandler)
	c.visitBody(try, index, h.Body)
	m.RestoreFlags(old)

	c.dispatchNode(Node{Kind: KindExceptHandlerExit, Stmt: try, Handler: hid, Binding: bound, Index: index, Span: h.Span})
	if name != "" {
		m.UnbindException(name, h.Name.Span, src, prior)
	}
}

func (c *Checker) bindImports(id ast.StmtID) {
	m := c.model
	stmts := c.tree.Stmts
	src := semantic.Source{Stmt: id}

	if imp, ok := stmts.Import(id); ok {
		for _, alias := range imp.Names {
			if alias.AsName == "" && strings.Contains(alias.Name, ".") {
				head, _, _ := strings.Cut(alias.Name, ".")
				bid := m.Bind(head, semantic.BindSubmoduleImport, alias.Span, src)
				m.SetImport(bid, semantic.ImportInfo{Module: alias.Name, Qualified: alias.Name})
				continue
			}
			bid := m.Bind(alias.BoundName(), semantic.BindImport, alias.Span, src)
			m.SetImport(bid, semantic.ImportInfo{Module: alias.Name, Qualified: alias.Name})
		}
		return
	}

	from, ok := stmts.ImportFrom(id)
	if !ok {
		return
	}
	module := strings.Repeat(".", int(from.Level)) + from.Module
	if from.Star {
		m.AddStarImport(module)
		return
	}
	kind := semantic.BindFromImport
	if from.Level == 0 && from.Module == "__future__" {
		kind = semantic.BindFutureImport
	}
	for _, alias := range from.Names {
		qualified := alias.Name
		switch {
		case from.Module == "":
			qualified = module + alias.Name
		case module != "":
			qualified = module + "." + alias.Name
		}
		bid := m.Bind(alias.BoundName(), kind, alias.Span, src)
		m.SetImport(bid, semantic.ImportInfo{Module: module, Member: alias.Name, Qualified: qualified})
	}
}

// withStore visits fn with names in store context bound as kind.
func (c *Checker) withStore(kind semantic.BindingKind, src semantic.Source, fn func()) {
	old := c.store
	c.store = storeTarget{kind: kind, src: src}
	fn()
	c.store = old
}

func (c *Checker) visitTest(id ast.ExprID) {
	old := c.model.PushFlags(semantic.InBooleanTest)
	c.visitExpr(id)
	c.model.RestoreFlags(old)
}

func (c *Checker) visitAnnotation(id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	old := c.model.PushFlags(semantic.InAnnotation)
	c.visitExpr(id)
	c.model.RestoreFlags(old)
}

// visitParamDefaults visits annotations and defaults in the enclosing scope.
func (c *Checker) visitParamDefaults(params ast.Parameters, annotations bool) {
	for _, pid := range params.All() {
		p := c.tree.Params.Get(pid)
		if p == nil {
			continue
		}
		if annotations {
			c.visitAnnotation(p.Annotation)
		}
		c.visitExpr(p.Default)
	}
}

func (c *Checker) isDunderAllTarget(targets []ast.ExprID) bool {
	if len(targets) != 1 || !c.model.IsModuleScope() {
		return false
	}
	return c.tree.Exprs.NameOf(targets[0]) == "__all__"
}

// bindExports binds `__all__` as an export binding listing the string
// literals of the assigned list or tuple. An augmented assignment keeps
// the names of the previous binding.
func (c *Checker) bindExports(target, value ast.ExprID, src semantic.Source, extend bool) {
	m := c.model
	exprs := c.tree.Exprs
	var names []semantic.ExportName
	if extend {
		if prev, ok := m.Lookup("__all__"); ok {
			names = append(names, m.Binding(prev).Exports...)
		}
	}
	names = append(names, c.exportNames(value)...)

	span := exprs.Span(target)
	c.stats.Exprs++
	bid := m.Bind("__all__", semantic.BindExport, span, src)
	m.SetExports(bid, names)
	c.dispatchNode(Node{Kind: KindName, Expr: target, Stmt: src.Stmt, Span: span})
}

func (c *Checker) exportNames(value ast.ExprID) []semantic.ExportName {
	exprs := c.tree.Exprs
	var out []semantic.ExportName
	switch exprs.Kind(value) {
	case ast.ExprList, ast.ExprTuple:
		seq, _ := exprs.Seq(value)
		for _, elt := range seq.Elts {
			if lit, ok := exprs.Literal(elt); ok && lit.Kind == ast.LitStr {
				out = append(out, semantic.ExportName{Name: lit.Value, Span: exprs.Span(elt)})
			}
		}
	case ast.ExprBinOp:
		// __all__ = [...] + [...]
		bo, _ := exprs.BinOp(value)
		if bo.Op == ast.OpAdd {
			out = append(out, c.exportNames(bo.Left)...)
			out = append(out, c.exportNames(bo.Right)...)
		}
	}
	return out
}

func (c *Checker) isTypeChecking(test ast.ExprID) bool {
	exprs := c.tree.Exprs
	if exprs.NameOf(test) == "TYPE_CHECKING" {
		return true
	}
	if q, ok := c.model.QualifiedName(exprs, test); ok {
		return q.Is("typing.TYPE_CHECKING") || q.Is("typing_extensions.TYPE_CHECKING")
	}
	return false
}

// Terminates reports whether control never falls through stmt.
func Terminates(tree *ast.Builder, id ast.StmtID) bool {
	stmts := tree.Stmts
	switch stmts.Kind(id) {
	case ast.StmtReturn, ast.StmtRaise, ast.StmtBreak, ast.StmtContinue:
		return true
	case ast.StmtIf:
		i, _ := stmts.If(id)
		return len(i.Orelse) > 0 && SuiteTerminates(tree, i.Body) && SuiteTerminates(tree, i.Orelse)
	case ast.StmtWith:
		w, _ := stmts.With(id)
		return SuiteTerminates(tree, w.Body)
	case ast.StmtTry:
		t, _ := stmts.Try(id)
		if SuiteTerminates(tree, t.Finally) {
			return true
		}
		if !SuiteTerminates(tree, t.Body) && !SuiteTerminates(tree, t.Orelse) {
			return false
		}
		for _, hid := range t.Handlers {
			if h := stmts.Handler(hid); h == nil || !SuiteTerminates(tree, h.Body) {
				return false
			}
		}
		return true
	case ast.StmtWhile:
		w, _ := stmts.While(id)
		return tree.Exprs.IsLiteral(w.Test, ast.LitTrue) && !hasBreak(tree, w.Body)
	}
	return false
}

// SuiteTerminates reports whether some statement of body terminates.
func SuiteTerminates(tree *ast.Builder, body []ast.StmtID) bool {
	for _, id := range body {
		if Terminates(tree, id) {
			return true
		}
	}
	return false
}

// hasBreak finds a break that targets the enclosing loop.
func hasBreak(tree *ast.Builder, body []ast.StmtID) bool {
	found := false
	tree.WalkStmts(body, func(id ast.StmtID) bool {
		switch tree.Stmts.Kind(id) {
		case ast.StmtBreak:
			found = true
		case ast.StmtFor, ast.StmtWhile, ast.StmtFunctionDef, ast.StmtClassDef:
			return false
		}
		return !found
	})
	return found
}

// Annotation text inside string literals such as `x: "Foo"`.
func (c *Checker) resolveStringAnnotation(id ast.ExprID, lit *ast.LiteralExpr) {
	span := c.tree.Exprs.Span(id)
	text := lit.Value
	for i := 0; i < len(text); {
		if !isIdentStart(text[i]) {
			i++
			continue
		}
		j := i
		for j < len(text) && isIdentChar(text[j]) {
			j++
		}
		word := text[i:j]
		attr := i > 0 && (text[i-1] == '.' || (text[i-1] >= '0' && text[i-1] <= '9'))
		if !attr && !annotationKeywords[word] {
			c.model.ResolveLoad(word, span, ast.NoExprID)
		}
		i = j
	}
}

var annotationKeywords = map[string]bool{
	"None": true, "True": true, "False": true, "and": true, "or": true, "not": true, "in": true, "is": true,
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
