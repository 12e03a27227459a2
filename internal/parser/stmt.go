package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"krait/internal/ast"
	"krait/internal/source"
)

func (l *lowerer) block(n *sitter.Node) []ast.StmtID {
	if n == nil {
		return nil
	}
	var out []ast.StmtID
	for _, c := range named(n) {
		if id := l.stmt(c); id.IsValid() {
			out = append(out, id)
		}
	}
	return out
}

func (l *lowerer) stmt(n *sitter.Node) ast.StmtID {
	s := l.b.Stmts
	span := l.span(n)
	switch n.Type() {
	case "expression_statement":
		return l.exprStmt(n)
	case "function_definition":
		return l.functionDef(n, span, nil)
	case "class_definition":
		return l.classDef(n, span, nil)
	case "decorated_definition":
		var decorators []ast.ExprID
		for _, c := range named(n) {
			if c.Type() == "decorator" {
				if inner := named(c); len(inner) > 0 {
					decorators = append(decorators, l.expr(inner[0]))
				}
			}
		}
		def := n.ChildByFieldName("definition")
		if def == nil {
			return ast.NoStmtID
		}
		if def.Type() == "class_definition" {
			return l.classDef(def, span, decorators)
		}
		return l.functionDef(def, span, decorators)
	case "return_statement":
		value := ast.NoExprID
		if c := named(n); len(c) > 0 {
			value = l.expr(c[0])
		}
		return s.NewReturn(span, value)
	case "delete_statement":
		return l.deleteStmt(n, span)
	case "raise_statement":
		return l.raiseStmt(n, span)
	case "pass_statement":
		return s.NewSimple(ast.StmtPass, span)
	case "break_statement":
		return s.NewSimple(ast.StmtBreak, span)
	case "continue_statement":
		return s.NewSimple(ast.StmtContinue, span)
	case "global_statement", "nonlocal_statement":
		var names []ast.Identifier
		for _, c := range named(n) {
			if c.Type() == "identifier" {
				names = append(names, l.ident(c))
			}
		}
		if n.Type() == "global_statement" {
			return s.NewGlobal(span, names)
		}
		return s.NewNonlocal(span, names)
	case "assert_statement":
		c := named(n)
		test, msg := ast.NoExprID, ast.NoExprID
		if len(c) > 0 {
			test = l.expr(c[0])
		}
		if len(c) > 1 {
			msg = l.expr(c[1])
		}
		return s.NewAssert(span, test, msg)
	case "import_statement":
		var names []ast.Alias
		for _, c := range fieldChildren(n, "name") {
			names = append(names, l.alias(c))
		}
		return s.NewImport(span, names)
	case "import_from_statement":
		return l.importFrom(n, span)
	case "future_import_statement":
		data := ast.ImportFromStmt{Module: "__future__"}
		if tok := childOfType(n, "__future__"); tok != nil {
			data.ModuleSpan = l.span(tok)
		}
		for _, c := range fieldChildren(n, "name") {
			data.Names = append(data.Names, l.alias(c))
		}
		return s.NewImportFrom(span, data)
	case "if_statement":
		return l.ifStmt(n, span)
	case "for_statement":
		data := ast.ForStmt{
			Target:  l.target(n.ChildByFieldName("left"), ast.Store),
			Iter:    l.expr(n.ChildByFieldName("right")),
			Body:    l.block(n.ChildByFieldName("body")),
			Orelse:  l.elseBody(n.ChildByFieldName("alternative")),
			IsAsync: hasToken(n, "async"),
		}
		return s.NewFor(span, data)
	case "while_statement":
		return s.NewWhile(span, ast.WhileStmt{
			Test:   l.expr(n.ChildByFieldName("condition")),
			Body:   l.block(n.ChildByFieldName("body")),
			Orelse: l.elseBody(n.ChildByFieldName("alternative")),
		})
	case "try_statement":
		return l.tryStmt(n, span)
	case "with_statement":
		return l.withStmt(n, span)
	case "match_statement":
		return l.matchStmt(n)
	case "type_alias_statement":
		left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
		name := unwrapType(left)
		if name == nil || name.Type() != "identifier" || right == nil {
			return ast.NoStmtID
		}
		target := l.target(name, ast.Store)
		return s.NewAssign(span, []ast.ExprID{target}, l.expr(unwrapType(right)))
	default:
		// print/exec statements and error nodes are reported by scan.
		return ast.NoStmtID
	}
}

func (l *lowerer) exprStmt(n *sitter.Node) ast.StmtID {
	span := l.span(n)
	c := named(n)
	if len(c) == 0 {
		return ast.NoStmtID
	}
	if len(c) > 1 {
		elts := make([]ast.ExprID, 0, len(c))
		for _, e := range c {
			elts = append(elts, l.expr(e))
		}
		return l.b.Stmts.NewExpr(span, l.b.Exprs.NewSeq(ast.ExprTuple, span, elts, ast.Load))
	}
	switch c[0].Type() {
	case "assignment":
		return l.assignment(span, c[0])
	case "augmented_assignment":
		a := c[0]
		op, ok := ast.ParseOperator(l.text(a.ChildByFieldName("operator")))
		if !ok {
			return ast.NoStmtID
		}
		target := l.target(a.ChildByFieldName("left"), ast.Store)
		return l.b.Stmts.NewAugAssign(span, target, op, l.expr(a.ChildByFieldName("right")))
	}
	return l.b.Stmts.NewExpr(span, l.expr(c[0]))
}

func (l *lowerer) assignment(span source.Span, a *sitter.Node) ast.StmtID {
	left, right := a.ChildByFieldName("left"), a.ChildByFieldName("right")
	if typ := a.ChildByFieldName("type"); typ != nil {
		value := ast.NoExprID
		if right != nil {
			value = l.expr(right)
		}
		return l.b.Stmts.NewAnnAssign(span, l.target(left, ast.Store), l.expr(typ), value)
	}
	targets := []ast.ExprID{l.target(left, ast.Store)}
	for right != nil && right.Type() == "assignment" {
		targets = append(targets, l.target(right.ChildByFieldName("left"), ast.Store))
		right = right.ChildByFieldName("right")
	}
	value := ast.NoExprID
	if right != nil {
		value = l.expr(right)
	}
	return l.b.Stmts.NewAssign(span, targets, value)
}

// target lowers n and marks it, and its nested names, with ctx.
func (l *lowerer) target(n *sitter.Node, ctx ast.Context) ast.ExprID {
	if n == nil {
		return ast.NoExprID
	}
	id := l.expr(n)
	l.b.Exprs.SetContext(id, ctx)
	return id
}

func (l *lowerer) functionDef(n *sitter.Node, span source.Span, decorators []ast.ExprID) ast.StmtID {
	data := ast.FunctionDefStmt{
		Name:       l.ident(n.ChildByFieldName("name")),
		Decorators: decorators,
		Params:     l.parameters(n.ChildByFieldName("parameters")),
		Returns:    ast.NoExprID,
		IsAsync:    hasToken(n, "async"),
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		data.Returns = l.expr(ret)
	}
	data.Body = l.block(n.ChildByFieldName("body"))
	return l.b.Stmts.NewFunctionDef(span, data)
}

func (l *lowerer) classDef(n *sitter.Node, span source.Span, decorators []ast.ExprID) ast.StmtID {
	data := ast.ClassDefStmt{
		Name:       l.ident(n.ChildByFieldName("name")),
		Decorators: decorators,
	}
	if sup := n.ChildByFieldName("superclasses"); sup != nil {
		data.Bases, data.Keywords = l.arguments(sup)
	}
	data.Body = l.block(n.ChildByFieldName("body"))
	return l.b.Stmts.NewClassDef(span, data)
}

func (l *lowerer) deleteStmt(n *sitter.Node, span source.Span) ast.StmtID {
	var targets []ast.ExprID
	for _, c := range named(n) {
		if c.Type() == "expression_list" {
			for _, e := range named(c) {
				targets = append(targets, l.target(e, ast.Del))
			}
			continue
		}
		targets = append(targets, l.target(c, ast.Del))
	}
	return l.b.Stmts.NewDelete(span, targets)
}

func (l *lowerer) raiseStmt(n *sitter.Node, span source.Span) ast.StmtID {
	exc, cause := ast.NoExprID, ast.NoExprID
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c == nil || !c.IsNamed() || c.Type() == "comment" {
			continue
		}
		if n.FieldNameForChild(i) == "cause" {
			cause = l.expr(c)
		} else if !exc.IsValid() {
			exc = l.expr(c)
		}
	}
	return l.b.Stmts.NewRaise(span, exc, cause)
}

func (l *lowerer) alias(n *sitter.Node) ast.Alias {
	if n.Type() == "aliased_import" {
		name := n.ChildByFieldName("name")
		as := n.ChildByFieldName("alias")
		a := ast.Alias{Name: l.dotted(name), Span: l.span(n)}
		if as != nil {
			a.AsName = normalizeName(l.text(as))
			a.NameSpan = l.span(as)
		} else if name != nil {
			a.NameSpan = l.span(name)
		}
		return a
	}
	return ast.Alias{Name: l.dotted(n), Span: l.span(n), NameSpan: l.span(n)}
}

// dotted joins the identifiers of a dotted_name, dropping whitespace
// and comments between the parts.
func (l *lowerer) dotted(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	if n.Type() != "dotted_name" {
		return normalizeName(l.text(n))
	}
	parts := named(n)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, normalizeName(l.text(p)))
	}
	return strings.Join(names, ".")
}

func (l *lowerer) importFrom(n *sitter.Node, span source.Span) ast.StmtID {
	var data ast.ImportFromStmt
	if mod := n.ChildByFieldName("module_name"); mod != nil {
		data.ModuleSpan = l.span(mod)
		if mod.Type() == "relative_import" {
			for _, c := range named(mod) {
				switch c.Type() {
				case "import_prefix":
					data.Level = uint32(strings.Count(l.text(c), "."))
				case "dotted_name":
					data.Module = l.dotted(c)
				}
			}
		} else {
			data.Module = l.dotted(mod)
		}
	}
	if childOfType(n, "wildcard_import") != nil {
		data.Star = true
	}
	for _, c := range fieldChildren(n, "name") {
		data.Names = append(data.Names, l.alias(c))
	}
	return l.b.Stmts.NewImportFrom(span, data)
}

// ifStmt lowers an if with its elif chain; each elif becomes a nested
// IfStmt, alone in the Orelse of the previous arm.
func (l *lowerer) ifStmt(n *sitter.Node, span source.Span) ast.StmtID {
	alts := fieldChildren(n, "alternative")
	var orelse []ast.StmtID
	for i := len(alts) - 1; i >= 0; i-- {
		alt := alts[i]
		switch alt.Type() {
		case "else_clause":
			orelse = l.block(alt.ChildByFieldName("body"))
		case "elif_clause":
			elif := l.b.Stmts.NewIf(l.span(alt), ast.IfStmt{
				Test:   l.expr(alt.ChildByFieldName("condition")),
				Body:   l.block(alt.ChildByFieldName("consequence")),
				Orelse: orelse,
				Elif:   true,
			})
			orelse = []ast.StmtID{elif}
		}
	}
	return l.b.Stmts.NewIf(span, ast.IfStmt{
		Test:   l.expr(n.ChildByFieldName("condition")),
		Body:   l.block(n.ChildByFieldName("consequence")),
		Orelse: orelse,
	})
}

func (l *lowerer) elseBody(n *sitter.Node) []ast.StmtID {
	if n == nil {
		return nil
	}
	if body := n.ChildByFieldName("body"); body != nil {
		return l.block(body)
	}
	return l.block(childOfType(n, "block"))
}

func (l *lowerer) tryStmt(n *sitter.Node, span source.Span) ast.StmtID {
	data := ast.TryStmt{Body: l.block(n.ChildByFieldName("body"))}
	for _, c := range named(n) {
		switch c.Type() {
		case "except_clause", "except_group_clause":
			data.Handlers = append(data.Handlers, l.handler(c))
		case "else_clause":
			data.Orelse = l.elseBody(c)
		case "finally_clause":
			data.Finally = l.block(childOfType(c, "block"))
		}
	}
	return l.b.Stmts.NewTry(span, data)
}

func (l *lowerer) handler(n *sitter.Node) ast.HandlerID {
	h := ast.Handler{
		Type: ast.NoExprID,
		Span: l.span(n),
		Star: n.Type() == "except_group_clause",
	}
	var parts []*sitter.Node
	for _, c := range named(n) {
		if c.Type() == "block" {
			h.Body = l.block(c)
			continue
		}
		parts = append(parts, c)
	}
	if len(parts) == 1 && parts[0].Type() == "as_pattern" {
		as := parts[0]
		inner := named(as)
		parts = parts[:0]
		if len(inner) > 0 {
			parts = append(parts, inner[0])
		}
		if alias := as.ChildByFieldName("alias"); alias != nil {
			parts = append(parts, alias)
		}
	}
	if len(parts) > 0 {
		h.Type = l.expr(parts[0])
	}
	if len(parts) > 1 {
		if name := unwrapTarget(parts[1]); name != nil && name.Type() == "identifier" {
			h.Name = l.ident(name)
		}
	}
	return l.b.Stmts.NewHandler(h)
}

func (l *lowerer) withStmt(n *sitter.Node, span source.Span) ast.StmtID {
	data := ast.WithStmt{
		Body:    l.block(n.ChildByFieldName("body")),
		IsAsync: hasToken(n, "async"),
	}
	var items []*sitter.Node
	collectWithItems(n, &items)
	for _, it := range items {
		data.Items = append(data.Items, l.withItem(it))
	}
	return l.b.Stmts.NewWith(span, data)
}

func collectWithItems(n *sitter.Node, out *[]*sitter.Node) {
	for _, c := range named(n) {
		switch c.Type() {
		case "with_item":
			*out = append(*out, c)
		case "with_clause":
			collectWithItems(c, out)
		}
	}
}

func (l *lowerer) withItem(n *sitter.Node) ast.WithItem {
	item := ast.WithItem{Context: ast.NoExprID, Vars: ast.NoExprID}
	value := n.ChildByFieldName("value")
	if value == nil {
		if c := named(n); len(c) > 0 {
			value = c[0]
		}
	}
	if value == nil {
		return item
	}
	if value.Type() == "as_pattern" {
		if inner := named(value); len(inner) > 0 {
			item.Context = l.expr(inner[0])
		}
		if alias := value.ChildByFieldName("alias"); alias != nil {
			item.Vars = l.target(unwrapTarget(alias), ast.Store)
		}
		return item
	}
	item.Context = l.expr(value)
	if alias := n.ChildByFieldName("alias"); alias != nil {
		item.Vars = l.target(alias, ast.Store)
	}
	return item
}

// matchStmt lowers `match` as an if chain, one arm per case: the first
// arm's test also carries the subject. Capture patterns become stores
// so the names they bind resolve in the case bodies.
func (l *lowerer) matchStmt(n *sitter.Node) ast.StmtID {
	var subject []ast.ExprID
	for _, c := range fieldChildren(n, "subject") {
		subject = append(subject, l.expr(c))
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return ast.NoStmtID
	}
	var cases []*sitter.Node
	for _, c := range named(body) {
		if c.Type() == "case_clause" {
			cases = append(cases, c)
		}
	}
	if len(cases) == 0 {
		return ast.NoStmtID
	}
	var orelse []ast.StmtID
	for i := len(cases) - 1; i >= 0; i-- {
		cc := cases[i]
		var tests []ast.ExprID
		if i == 0 {
			tests = append(tests, subject...)
		}
		var consequence *sitter.Node
		for _, c := range named(cc) {
			switch c.Type() {
			case "case_pattern":
				l.pattern(c, &tests)
			case "if_clause":
				if g := named(c); len(g) > 0 {
					tests = append(tests, l.expr(g[0]))
				}
			case "block":
				consequence = c
			}
		}
		if g := cc.ChildByFieldName("guard"); g != nil && g.Type() != "if_clause" {
			tests = append(tests, l.expr(g))
		}
		test := ast.NoExprID
		switch len(tests) {
		case 0:
		case 1:
			test = tests[0]
		default:
			test = l.b.Exprs.NewBoolOp(l.span(cc), ast.And, tests)
		}
		arm := l.b.Stmts.NewIf(l.span(cc), ast.IfStmt{
			Test:   test,
			Body:   l.block(consequence),
			Orelse: orelse,
			Elif:   i > 0,
		})
		if i == 0 {
			arm = l.retagSpan(arm, l.span(n))
		}
		orelse = []ast.StmtID{arm}
	}
	return orelse[0]
}

// retagSpan widens the span of a statement to cover the whole match.
func (l *lowerer) retagSpan(id ast.StmtID, span source.Span) ast.StmtID {
	if st := l.b.Stmts.Get(id); st != nil {
		st.Span = span
	}
	return id
}

func (l *lowerer) pattern(n *sitter.Node, out *[]ast.ExprID) {
	switch n.Type() {
	case "dotted_name":
		parts := named(n)
		if len(parts) == 1 {
			if name := l.text(parts[0]); name != "_" {
				*out = append(*out, l.b.Exprs.NewName(l.span(parts[0]), normalizeName(name), ast.Store))
			}
			return
		}
		*out = append(*out, l.dottedLoad(parts))
	case "identifier":
		if name := l.text(n); name != "_" {
			*out = append(*out, l.b.Exprs.NewName(l.span(n), normalizeName(name), ast.Store))
		}
	case "class_pattern":
		for i, c := range named(n) {
			if i == 0 && c.Type() == "dotted_name" {
				*out = append(*out, l.dottedLoad(named(c)))
				continue
			}
			l.pattern(c, out)
		}
	case "keyword_pattern":
		for i, c := range named(n) {
			if i == 0 && c.Type() == "identifier" {
				continue
			}
			l.pattern(c, out)
		}
	case "string", "concatenated_string", "integer", "float", "true", "false", "none",
		"unary_operator", "binary_operator", "complex_pattern":
		*out = append(*out, l.expr(n))
	case "as_pattern":
		c := named(n)
		for i, part := range c {
			if i == len(c)-1 && i > 0 {
				l.pattern(unwrapTarget(part), out)
				continue
			}
			l.pattern(part, out)
		}
	default:
		for _, c := range named(n) {
			l.pattern(c, out)
		}
	}
}

func (l *lowerer) dottedLoad(parts []*sitter.Node) ast.ExprID {
	if len(parts) == 0 {
		return ast.NoExprID
	}
	id := l.b.Exprs.NewName(l.span(parts[0]), normalizeName(l.text(parts[0])), ast.Load)
	for _, p := range parts[1:] {
		id = l.b.Exprs.NewAttribute(l.cover(parts[0], p), id, l.ident(p), ast.Load)
	}
	return id
}

func unwrapTarget(n *sitter.Node) *sitter.Node {
	for n != nil && (n.Type() == "as_pattern_target" || n.Type() == "parenthesized_expression") {
		c := named(n)
		if len(c) == 0 {
			return nil
		}
		n = c[0]
	}
	return n
}

func unwrapType(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "type" {
		c := named(n)
		if len(c) == 0 {
			return nil
		}
		n = c[0]
	}
	return n
}
