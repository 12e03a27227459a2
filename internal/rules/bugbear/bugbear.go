// Package bugbear implements a subset of flake8-bugbear.
package bugbear

import (
	"fmt"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/diag"
	"krait/internal/rule"
	"krait/internal/rules/internal/pyutil"
	"krait/internal/semantic"
	"krait/internal/source"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "B006 mutable-argument-default", Kind: checker.KindParameters, Rules: []rule.Rule{rule.MutableArgumentDefault}, Run: mutableArgumentDefault},
		{Name: "B007 unused-loop-control-variable", Kind: checker.KindForLoop, Rules: []rule.Rule{rule.UnusedLoopControlVariable}, Run: unusedLoopControlVariable},
		{Name: "B011 assert-false", Kind: checker.KindAssert, Rules: []rule.Rule{rule.AssertFalse}, Run: assertFalse},
		{Name: "B012 jump-statement-in-finally", Kind: checker.KindTry, Rules: []rule.Rule{rule.JumpStatementInFinally}, Run: jumpStatementInFinally},
		{Name: "B018 useless-expression", Kind: checker.KindExprStmt, Rules: []rule.Rule{rule.UselessExpression}, Run: uselessExpression},
	}
}

// mutableCalls construct a fresh mutable container.
var mutableCalls = []string{
	"list", "dict", "set", "bytearray",
	"collections.defaultdict", "collections.OrderedDict", "collections.Counter", "collections.deque",
}

func isMutableDefault(s *checker.Snapshot, id ast.ExprID) bool {
	exprs := s.Exprs()
	if exprs.IsMutableLiteral(id) {
		return true
	}
	call, ok := exprs.Call(id)
	if !ok {
		return false
	}
	q, ok := s.Semantic().QualifiedName(exprs, call.Func)
	if !ok {
		return false
	}
	for _, name := range mutableCalls {
		if q.IsBuiltin(name) || q.Is(name) {
			return true
		}
	}
	return false
}

func mutableArgumentDefault(s *checker.Snapshot, n checker.Node) {
	fn, ok := s.Stmts().FunctionDef(n.Stmt)
	if !ok {
		return
	}
	for _, id := range fn.Params.All() {
		p := s.Tree().Params.Get(id)
		if p.Default.IsValid() && isMutableDefault(s, p.Default) {
			s.ReportRule(rule.MutableArgumentDefault, s.Exprs().Span(p.Default), "Do not use mutable data structures for argument defaults")
		}
	}
}

func unusedLoopControlVariable(s *checker.Snapshot, n checker.Node) {
	tree := s.Tree()
	f, ok := tree.Stmts.For(n.Stmt)
	if !ok {
		return
	}
	used := loadedNames(tree, f.Body)
	q := s.Semantic()
	tree.WalkExpr(f.Target, func(id ast.ExprID) bool {
		name, ok := tree.Exprs.Name(id)
		if !ok {
			return true
		}
		if used[name.Name] || s.Settings().IsDummy(name.Name) {
			return false
		}
		span := tree.Exprs.Span(id)
		d := diag.New(rule.UnusedLoopControlVariable, span, fmt.Sprintf("Loop control variable `%s` not used within loop body", name.Name))
		if b := loopBinding(q, span); b != nil && !b.IsUsed() {
			d = d.WithFix(fmt.Sprintf("Rename unused `%s` to `_%s`", name.Name, name.Name),
				diag.UnsafeFix(diag.Insertion(span.File, span.Start, "_")))
		}
		s.Report(d)
		return false
	})
}

// loadedNames collects every name read anywhere in body, nested
// functions included.
func loadedNames(tree *ast.Builder, body []ast.StmtID) map[string]bool {
	out := make(map[string]bool)
	visit := func(id ast.ExprID) bool {
		if n, ok := tree.Exprs.Name(id); ok && n.Ctx == ast.Load {
			out[n.Name] = true
		}
		return true
	}
	tree.WalkStmts(body, func(id ast.StmtID) bool {
		for _, e := range tree.StmtExprs(id) {
			tree.WalkExpr(e, visit)
		}
		if aug, ok := tree.Stmts.AugAssign(id); ok {
			// `x += 1` читает x
			if name := tree.Exprs.NameOf(aug.Target); name != "" {
				out[name] = true
			}
		}
		return true
	})
	return out
}

func loopBinding(q semantic.Query, span source.Span) *semantic.Binding {
	for _, id := range pyutil.ScopeBindings(q, q.CurrentScope()) {
		if b := q.Binding(id); b.Kind == semantic.BindLoopVar && b.Span == span {
			return b
		}
	}
	return nil
}

func assertFalse(s *checker.Snapshot, n checker.Node) {
	a, ok := s.Stmts().Assert(n.Stmt)
	if !ok || !s.Exprs().IsLiteral(a.Test, ast.LitFalse) {
		return
	}
	repl := "raise AssertionError()"
	if a.Msg.IsValid() {
		repl = fmt.Sprintf("raise AssertionError(%s)", s.Text(s.Exprs().Span(a.Msg)))
	}
	d := diag.New(rule.AssertFalse, s.Exprs().Span(a.Test), "Do not `assert False` (`python -O` removes these calls), raise `AssertionError()`").
		WithFix("Replace `assert False`", diag.UnsafeFix(diag.Replacement(n.Span, repl)))
	s.Report(d)
}

func jumpStatementInFinally(s *checker.Snapshot, n checker.Node) {
	t, ok := s.Stmts().Try(n.Stmt)
	if !ok {
		return
	}
	jumps(s, t.Finally, false)
}

// jumps reports return, break and continue that leave a finally suite;
// inLoop is set below a loop nested in the suite.
func jumps(s *checker.Snapshot, body []ast.StmtID, inLoop bool) {
	stmts := s.Stmts()
	for _, id := range body {
		kind := stmts.Kind(id)
		switch kind {
		case ast.StmtReturn:
			s.ReportRule(rule.JumpStatementInFinally, stmts.Get(id).Span, "`return` inside `finally` blocks cause exceptions to be silenced")
			continue
		case ast.StmtBreak, ast.StmtContinue:
			if !inLoop {
				s.Reportf(rule.JumpStatementInFinally, stmts.Get(id).Span, "`%s` inside `finally` blocks cause exceptions to be silenced", kind)
			}
			continue
		case ast.StmtFunctionDef, ast.StmtClassDef:
			continue
		}
		nested := inLoop || kind == ast.StmtFor || kind == ast.StmtWhile
		for i, block := range s.Tree().Blocks(id) {
			// else-ветка цикла уже вне цикла
			loopElse := (kind == ast.StmtFor || kind == ast.StmtWhile) && i == 1
			jumps(s, block, nested && !(loopElse && !inLoop))
		}
	}
}

func uselessExpression(s *checker.Snapshot, n checker.Node) {
	es, ok := s.Stmts().Expr(n.Stmt)
	if !ok {
		return
	}
	exprs := s.Exprs()
	value := es.Value
	switch exprs.Kind(value) {
	case ast.ExprCompare, ast.ExprFString, ast.ExprName:
		return
	case ast.ExprAttribute:
		s.ReportRule(rule.UselessExpression, exprs.Span(value), "Found useless attribute access. Either assign it to a variable or remove it.")
		return
	}
	if exprs.IsLiteral(value, ast.LitStr, ast.LitBytes, ast.LitEllipsis) {
		return
	}
	if !effectFree(exprs, value) {
		return
	}
	s.ReportRule(rule.UselessExpression, exprs.Span(value), "Found useless expression. Either assign it to a variable or remove it.")
}

// effectFree reports literals and displays of literals.
func effectFree(exprs *ast.Exprs, id ast.ExprID) bool {
	switch exprs.Kind(id) {
	case ast.ExprLiteral:
		return true
	case ast.ExprList, ast.ExprTuple, ast.ExprSet:
		seq, _ := exprs.Seq(id)
		for _, elt := range seq.Elts {
			if !effectFree(exprs, elt) {
				return false
			}
		}
		return true
	case ast.ExprDict:
		d, _ := exprs.Dict(id)
		for i := range d.Values {
			if !d.Keys[i].IsValid() || !effectFree(exprs, d.Keys[i]) || !effectFree(exprs, d.Values[i]) {
				return false
			}
		}
		return true
	case ast.ExprUnaryOp:
		u, _ := exprs.UnaryOp(id)
		return exprs.Kind(u.Operand) == ast.ExprLiteral
	}
	return false
}
