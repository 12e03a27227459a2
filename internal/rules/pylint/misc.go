package pylint

import (
	"fmt"
	"strings"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/diag"
	"krait/internal/rule"
	"krait/internal/semantic"
	"krait/internal/source"
)

func sysExitAlias(s *checker.Snapshot, n checker.Node) {
	exprs := s.Exprs()
	call, ok := exprs.Call(n.Expr)
	if !ok {
		return
	}
	name := exprs.NameOf(call.Func)
	if name != "exit" && name != "quit" {
		return
	}
	q, ok := s.Semantic().QualifiedName(exprs, call.Func)
	if !ok || !q.IsBuiltin(name) {
		return
	}
	d := diag.New(rule.SysExitAlias, exprs.Span(call.Func), fmt.Sprintf("Use `sys.exit()` instead of `%s`", name))
	if r := s.Semantic().Resolve("sys"); r.Kind == semantic.Resolved {
		if path, ok := s.Semantic().BindingPath(r.Binding); ok && path.Is("sys") {
			d = d.WithFix("Replace with `sys.exit()`", diag.UnsafeFix(diag.Replacement(exprs.Span(call.Func), "sys.exit")))
		}
	}
	s.Report(d)
}

func uselessElseOnLoop(s *checker.Snapshot, n checker.Node) {
	stmts := s.Stmts()
	var body, orelse []ast.StmtID
	if f, ok := stmts.For(n.Stmt); ok {
		body, orelse = f.Body, f.Orelse
	} else if w, ok := stmts.While(n.Stmt); ok {
		body, orelse = w.Body, w.Orelse
	}
	if len(orelse) == 0 || loopBreaks(s.Tree(), body) {
		return
	}
	s.ReportRule(rule.UselessElseOnLoop, elseKeyword(s, body, orelse),
		"`else` clause on loop without a `break` statement; remove the `else` and dedent its contents")
}

// loopBreaks finds a break that leaves the loop owning body.
func loopBreaks(tree *ast.Builder, body []ast.StmtID) bool {
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

// elseKeyword locates `else` between the loop body and its else suite.
func elseKeyword(s *checker.Snapshot, body, orelse []ast.StmtID) source.Span {
	first := s.Stmts().Get(orelse[0]).Span
	if len(body) == 0 {
		return first
	}
	last := s.Stmts().Get(body[len(body)-1]).Span
	gap := source.Span{File: first.File, Start: last.End, End: first.Start}
	if i := strings.LastIndex(s.Text(gap), "else"); i >= 0 {
		start := gap.Start + uint32(i) // #nosec G115 -- bounded by the gap length
		return source.Span{File: first.File, Start: start, End: start + 4}
	}
	return first
}

func selfAssigningVariable(s *checker.Snapshot, n checker.Node) {
	if s.Semantic().CurrentScopeKind() == semantic.ScopeClass {
		return
	}
	a, ok := s.Stmts().Assign(n.Stmt)
	if !ok {
		return
	}
	for _, target := range a.Targets {
		selfAssignments(s, target, a.Value)
	}
}

func selfAssignments(s *checker.Snapshot, target, value ast.ExprID) {
	exprs := s.Exprs()
	switch exprs.Kind(target) {
	case ast.ExprName:
		if name := exprs.NameOf(target); name != "" && name == exprs.NameOf(value) {
			s.Reportf(rule.SelfAssigningVariable, exprs.Span(target), "Self-assignment of variable `%s`", name)
		}
	case ast.ExprTuple, ast.ExprList:
		lhs, _ := exprs.Seq(target)
		rhs, ok := exprs.Seq(value)
		if !ok || len(lhs.Elts) != len(rhs.Elts) {
			return
		}
		for i := range lhs.Elts {
			selfAssignments(s, lhs.Elts[i], rhs.Elts[i])
		}
	}
}

func redefinedArgumentFromLocal(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	b := q.Binding(n.Binding)
	if b == nil {
		return
	}
	switch b.Kind {
	case semantic.BindLoopVar, semantic.BindWithItemVar, semantic.BindBoundException:
	default:
		return
	}
	prev, ok := q.ShadowedBinding(n.Binding)
	if !ok || q.Binding(prev).Kind != semantic.BindArgument || s.Settings().IsDummy(b.Name) {
		return
	}
	s.Reportf(rule.RedefinedArgumentFromLocal, b.Span, "Redefining argument with the local name `%s`", b.Name)
}

func returnInInit(s *checker.Snapshot, n checker.Node) {
	r, ok := s.Stmts().Return(n.Stmt)
	if !ok || !r.Value.IsValid() || s.Exprs().IsLiteral(r.Value, ast.LitNone) {
		return
	}
	q := s.Semantic()
	scope := q.CurrentScope()
	if !q.IsMethod(scope) {
		return
	}
	if fn, ok := s.Stmts().FunctionDef(q.Scope(scope).Owner.Stmt); ok && fn.Name.Name == "__init__" {
		s.ReportRule(rule.ReturnInInit, n.Span, "Explicit return in `__init__`")
	}
}

func awaitOutsideAsync(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	if _, inFunc := q.EnclosingFunction(q.CurrentScope()); !inFunc || q.Has(semantic.InAsyncFunction) {
		return
	}
	s.ReportRule(rule.AwaitOutsideAsync, n.Span, "`await` should be used within an async function")
}

// unreachableCode reports the statements of a suite that follow its first
// terminal statement. Suites already inside dead code are left to the
// outer report.
func unreachableCode(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	if q.Has(semantic.Unreachable) {
		return
	}
	tree := s.Tree()
	for i, id := range n.Suite {
		if !checker.Terminates(tree, id) || i == len(n.Suite)-1 {
			continue
		}
		first := tree.Stmts.Get(n.Suite[i+1]).Span
		last := tree.Stmts.Get(n.Suite[len(n.Suite)-1]).Span
		msg := "Unreachable code"
		if scope, ok := q.EnclosingFunction(q.CurrentScope()); ok {
			if fn, ok := s.Stmts().FunctionDef(q.Scope(scope).Owner.Stmt); ok {
				msg = fmt.Sprintf("Unreachable code in `%s`", fn.Name.Name)
			}
		}
		s.ReportRule(rule.UnreachableCode, first.Cover(last), msg)
		return
	}
}
