package pyflakes

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

func fstringMissingPlaceholders(s *checker.Snapshot, n checker.Node) {
	fs, ok := s.Exprs().FString(n.Expr)
	if !ok {
		return
	}
	var edits []diag.Edit
	for _, part := range fs.Parts {
		if !part.IsF {
			continue
		}
		if len(part.Values) > 0 {
			return
		}
		text := s.Text(part.Span)
		if strings.Contains(text, "{{") || strings.Contains(text, "}}") {
			edits = nil
			break
		}
		prefix := s.Text(part.PrefixSpan)
		edits = append(edits, diag.Replacement(part.PrefixSpan, strings.NewReplacer("f", "", "F", "").Replace(prefix)))
	}
	d := diag.New(rule.FStringMissingPlaceholders, n.Span, "f-string without any placeholders")
	if len(edits) > 0 {
		d = d.WithFix("Remove extraneous `f` prefix", diag.SafeFix(edits...))
	}
	s.Report(d)
}

func assertTuple(s *checker.Snapshot, n checker.Node) {
	a, ok := s.Stmts().Assert(n.Stmt)
	if !ok || s.Exprs().Kind(a.Test) != ast.ExprTuple {
		return
	}
	if seq, _ := s.Exprs().Seq(a.Test); len(seq.Elts) > 0 {
		s.ReportRule(rule.AssertTuple, n.Span, "Assert test is a non-empty tuple, which is always `True`")
	}
}

// isConstantLiteral reports literals whose identity is an implementation
// detail: numbers, strings and bytes, but not the singletons.
func isConstantLiteral(exprs *ast.Exprs, id ast.ExprID) bool {
	if exprs.Kind(id) == ast.ExprFString {
		return true
	}
	return exprs.IsLiteral(id, ast.LitInt, ast.LitFloat, ast.LitComplex, ast.LitStr, ast.LitBytes)
}

func isLiteral(s *checker.Snapshot, n checker.Node) {
	exprs := s.Exprs()
	cmp, ok := exprs.Compare(n.Expr)
	if !ok {
		return
	}
	left := cmp.Left
	for i, op := range cmp.Ops {
		right := cmp.Comparators[i]
		if (op == ast.CmpIs || op == ast.CmpIsNot) && (isConstantLiteral(exprs, left) || isConstantLiteral(exprs, right)) {
			repl := "=="
			if op == ast.CmpIsNot {
				repl = "!="
			}
			d := diag.New(rule.IsLiteral, n.Span, fmt.Sprintf("Use `%s` to compare constant literals", repl)).
				WithFix(fmt.Sprintf("Replace `%s` with `%s`", op, repl), diag.SafeFix(diag.Replacement(cmp.OpSpans[i], repl)))
			s.Report(d)
		}
		left = right
	}
}

func outsideLoop(s *checker.Snapshot, n checker.Node) {
	if s.Semantic().Has(semantic.InLoop) {
		return
	}
	if n.Kind == checker.KindBreak {
		s.ReportRule(rule.BreakOutsideLoop, n.Span, "`break` outside loop")
		return
	}
	s.ReportRule(rule.ContinueOutsideLoop, n.Span, "`continue` not properly in loop")
}

func defaultExceptNotLast(s *checker.Snapshot, n checker.Node) {
	t, ok := s.Stmts().Try(n.Stmt)
	if !ok {
		return
	}
	for i, hid := range t.Handlers {
		h := s.Stmts().Handler(hid)
		if h == nil || h.Type.IsValid() || i == len(t.Handlers)-1 {
			continue
		}
		s.ReportRule(rule.DefaultExceptNotLast, exceptKeyword(h), "An `except` block as not the last exception handler")
		return
	}
}

// exceptKeyword is the span of the `except` keyword opening a handler.
func exceptKeyword(h *ast.Handler) source.Span {
	return source.Span{File: h.Span.File, Start: h.Span.Start, End: min(h.Span.Start+6, h.Span.End)}
}

func raiseNotImplemented(s *checker.Snapshot, n checker.Node) {
	r, ok := s.Stmts().Raise(n.Stmt)
	if !ok {
		return
	}
	exprs := s.Exprs()
	target := r.Exc
	if call, ok := exprs.Call(target); ok {
		target = call.Func
	}
	if exprs.NameOf(target) != "NotImplemented" {
		return
	}
	d := diag.New(rule.RaiseNotImplemented, exprs.Span(target), "`raise NotImplemented` should be `raise NotImplementedError`")
	if q, ok := s.Semantic().QualifiedName(exprs, target); ok && q.IsBuiltin("NotImplemented") {
		d = d.WithFix("Use `raise NotImplementedError`", diag.SafeFix(diag.Replacement(exprs.Span(target), "NotImplementedError")))
	}
	s.Report(d)
}
