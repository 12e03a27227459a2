// Package bandit implements the flake8-bandit security checks.
package bandit

import (
	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/rule"
	"krait/internal/rules/internal/pyutil"
	"krait/internal/source"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "S101 assert", Kind: checker.KindAssert, Rules: []rule.Rule{rule.Assert}, Run: assertUsed},
		{Name: "S102/S307 builtin-calls", Kind: checker.KindCall, Rules: []rule.Rule{rule.ExecBuiltin, rule.SuspiciousEvalUsage}, Run: builtinCalls},
		{Name: "S110/S112 try-except-pass", Kind: checker.KindExceptHandler, Rules: []rule.Rule{rule.TryExceptPass, rule.TryExceptContinue}, Run: tryExceptPass},
	}
}

func assertUsed(s *checker.Snapshot, n checker.Node) {
	s.ReportRule(rule.Assert, source.Span{File: n.Span.File, Start: n.Span.Start, End: n.Span.Start + uint32(len("assert"))}, "Use of `assert` detected")
}

func builtinCalls(s *checker.Snapshot, n checker.Node) {
	call, ok := s.Exprs().Call(n.Expr)
	if !ok {
		return
	}
	switch {
	case s.Enabled(rule.ExecBuiltin) && pyutil.IsBuiltinCall(s, call, "exec"):
		s.ReportRule(rule.ExecBuiltin, s.Exprs().Span(call.Func), "Use of `exec` detected")
	case s.Enabled(rule.SuspiciousEvalUsage) && pyutil.IsBuiltinCall(s, call, "eval"):
		s.ReportRule(rule.SuspiciousEvalUsage, n.Span, "Use of possibly insecure function; consider using `ast.literal_eval`")
	}
}

func tryExceptPass(s *checker.Snapshot, n checker.Node) {
	h := s.Stmts().Handler(n.Handler)
	if h == nil || len(h.Body) != 1 {
		return
	}
	if h.Type.IsValid() && !s.Settings().Bandit.CheckTypedException {
		if _, ok := pyutil.IsExceptionName(s, h.Type); !ok {
			return
		}
	}
	switch s.Stmts().Kind(h.Body[0]) {
	case ast.StmtPass:
		s.ReportRule(rule.TryExceptPass, h.Span, "`try`-`except`-`pass` detected, consider logging the exception")
	case ast.StmtContinue:
		s.ReportRule(rule.TryExceptContinue, h.Span, "`try`-`except`-`continue` detected, consider logging the exception")
	}
}
