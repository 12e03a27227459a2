// Package printcalls reports leftover print and pprint calls.
package printcalls

import (
	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/rule"
	"krait/internal/rules/internal/pyutil"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "T201/T203 print", Kind: checker.KindCall, Rules: []rule.Rule{rule.Print, rule.PPrint}, Run: printCall},
	}
}

func printCall(s *checker.Snapshot, n checker.Node) {
	exprs := s.Exprs()
	call, ok := exprs.Call(n.Expr)
	if !ok {
		return
	}
	if pyutil.IsBuiltinCall(s, call, "print") {
		// запись в файл, а не в stdout/stderr, не отладочный вывод
		if kw, ok := call.Keyword("file"); ok && !exprs.IsLiteral(kw.Value, ast.LitNone) {
			if q, ok := s.Semantic().QualifiedName(exprs, kw.Value); !ok || !(q.Is("sys.stdout") || q.Is("sys.stderr")) {
				return
			}
		}
		s.ReportRule(rule.Print, exprs.Span(call.Func), "`print` found")
		return
	}
	q, ok := s.Semantic().QualifiedName(exprs, call.Func)
	if ok && (q.Is("pprint.pprint") || q.Is("pprint.pp")) {
		s.ReportRule(rule.PPrint, exprs.Span(call.Func), "`pprint` found")
	}
}
