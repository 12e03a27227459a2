// Package pycodestyle implements the E7 rules. E999 is produced by the
// linter from parser errors and has no hook.
package pycodestyle

import (
	"fmt"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/diag"
	"krait/internal/rule"
	"krait/internal/semantic"
	"krait/internal/source"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "E711/E712 literal-comparison", Kind: checker.KindCompare, Rules: []rule.Rule{rule.NoneComparison, rule.TrueFalseComparison}, Run: literalComparisons},
		{Name: "E722 bare-except", Kind: checker.KindExceptHandler, Rules: []rule.Rule{rule.BareExcept}, Run: bareExcept},
		{Name: "E731 lambda-assignment", Kind: checker.KindAssign, Rules: []rule.Rule{rule.LambdaAssignment}, Run: lambdaAssignment},
		{Name: "E731 lambda-ann-assignment", Kind: checker.KindAnnAssign, Rules: []rule.Rule{rule.LambdaAssignment}, Run: lambdaAssignment},
		{Name: "E741 ambiguous-variable-name", Kind: checker.KindBinding, Rules: []rule.Rule{rule.AmbiguousVariableName}, Run: ambiguousVariableName},
	}
}

func literalComparisons(s *checker.Snapshot, n checker.Node) {
	exprs := s.Exprs()
	cmp, ok := exprs.Compare(n.Expr)
	if !ok {
		return
	}
	left := cmp.Left
	for i, op := range cmp.Ops {
		right := cmp.Comparators[i]
		if op != ast.CmpEq && op != ast.CmpNotEq {
			left = right
			continue
		}
		lit := right
		if !isSingleton(exprs, lit) {
			lit = left
		}
		if l, ok := exprs.Literal(lit); ok && isSingleton(exprs, lit) {
			repl := "is"
			if op == ast.CmpNotEq {
				repl = "is not"
			}
			fix := diag.UnsafeFix(diag.Replacement(cmp.OpSpans[i], repl))
			title := fmt.Sprintf("Replace with `%s`", repl)
			span := exprs.Span(lit)
			switch l.Kind {
			case ast.LitNone:
				s.Report(diag.New(rule.NoneComparison, span, fmt.Sprintf("Comparison to `None` should be `cond %s None`", repl)).WithFix(title, fix))
			default:
				s.Report(diag.New(rule.TrueFalseComparison, span, fmt.Sprintf("Avoid equality comparisons to `%s`; use `%s` for truth checks", l.Raw, truthHint(l.Kind, op))).WithFix(title, fix))
			}
		}
		left = right
	}
}

func isSingleton(exprs *ast.Exprs, id ast.ExprID) bool {
	return exprs.IsLiteral(id, ast.LitNone, ast.LitTrue, ast.LitFalse)
}

func truthHint(kind ast.LiteralKind, op ast.CmpOp) string {
	positive := (kind == ast.LitTrue) == (op == ast.CmpEq)
	if positive {
		return "if cond:"
	}
	return "if not cond:"
}

func bareExcept(s *checker.Snapshot, n checker.Node) {
	h := s.Stmts().Handler(n.Handler)
	if h == nil || h.Type.IsValid() {
		return
	}
	// голый except с повторным raise не считается
	for _, id := range h.Body {
		if r, ok := s.Stmts().Raise(id); ok && !r.Exc.IsValid() {
			return
		}
	}
	span := source.Span{File: h.Span.File, Start: h.Span.Start, End: min(h.Span.Start+6, h.Span.End)}
	s.ReportRule(rule.BareExcept, span, "Do not use bare `except`")
}

func lambdaAssignment(s *checker.Snapshot, n checker.Node) {
	stmts, exprs := s.Stmts(), s.Exprs()
	var target, value ast.ExprID
	plain := false
	if a, ok := stmts.Assign(n.Stmt); ok {
		if len(a.Targets) != 1 {
			return
		}
		target, value, plain = a.Targets[0], a.Value, true
	} else if a, ok := stmts.AnnAssign(n.Stmt); ok {
		target, value = a.Target, a.Value
	}
	name, ok := exprs.Name(target)
	if !ok {
		return
	}
	lam, ok := exprs.Lambda(value)
	if !ok {
		return
	}
	d := diag.New(rule.LambdaAssignment, n.Span, "Do not assign a `lambda` expression, use a `def`")
	if plain && s.Semantic().CurrentScopeKind() != semantic.ScopeClass {
		d = d.WithFix(fmt.Sprintf("Rewrite `%s` as a `def`", name.Name),
			diag.UnsafeFix(diag.Replacement(n.Span, lambdaDef(s, n.Span, name.Name, lam))))
	}
	s.Report(d)
}

// lambdaDef renders `name = lambda a: body` as a def at the statement's
// indentation.
func lambdaDef(s *checker.Snapshot, stmt source.Span, name string, lam *ast.LambdaExpr) string {
	file := s.File()
	lineStart := file.LineStart(file.Position(stmt.Start).Line)
	indent := file.Text(source.Span{File: file.ID, Start: lineStart, End: stmt.Start})
	params := ""
	if lam.Params.Len() > 0 {
		params = s.Text(lam.Params.Span)
	}
	return fmt.Sprintf("def %s(%s):\n%s    return %s", name, params, indent, s.Text(s.Exprs().Span(lam.Body)))
}

func ambiguousVariableName(s *checker.Snapshot, n checker.Node) {
	b := s.Semantic().Binding(n.Binding)
	if b == nil || !isAmbiguous(b.Name) {
		return
	}
	switch b.Kind {
	case semantic.BindAssignment, semantic.BindUnpackedAssignment, semantic.BindAnnotatedAssignment,
		semantic.BindNamedExprAssignment, semantic.BindLoopVar, semantic.BindWithItemVar,
		semantic.BindArgument, semantic.BindGlobal, semantic.BindNonlocal, semantic.BindBoundException:
		s.Reportf(rule.AmbiguousVariableName, b.Span, "Ambiguous variable name: `%s`", b.Name)
	}
}

func isAmbiguous(name string) bool {
	return name == "l" || name == "I" || name == "O"
}
