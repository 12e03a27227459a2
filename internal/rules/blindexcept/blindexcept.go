// Package blindexcept reports handlers that swallow every exception.
package blindexcept

import (
	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/rule"
	"krait/internal/rules/internal/pyutil"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "BLE001 blind-except", Kind: checker.KindExceptHandler, Rules: []rule.Rule{rule.BlindExcept}, Run: blindExcept},
	}
}

func blindExcept(s *checker.Snapshot, n checker.Node) {
	h := s.Stmts().Handler(n.Handler)
	if h == nil || !h.Type.IsValid() {
		return
	}
	name, ok := pyutil.IsExceptionName(s, h.Type)
	if !ok || handled(s.Tree(), h) {
		return
	}
	s.Reportf(rule.BlindExcept, s.Exprs().Span(h.Type), "Do not catch blind exception: `%s`", name)
}

// handled reports a handler that re-raises or logs the exception with
// its traceback.
func handled(tree *ast.Builder, h *ast.Handler) bool {
	found := false
	tree.WalkStmts(h.Body, func(id ast.StmtID) bool {
		if found || tree.IsFunctionLike(id) {
			return false
		}
		if r, ok := tree.Stmts.Raise(id); ok {
			if !r.Exc.IsValid() || r.Cause.IsValid() || (h.Name.Name != "" && tree.Exprs.NameOf(r.Exc) == h.Name.Name) {
				found = true
			}
			return false
		}
		for _, e := range tree.StmtExprs(id) {
			tree.WalkExpr(e, func(id ast.ExprID) bool {
				if call, ok := tree.Exprs.Call(id); ok && logsTraceback(tree.Exprs, call) {
					found = true
				}
				return !found
			})
		}
		return !found
	})
	return found
}

func logsTraceback(exprs *ast.Exprs, call *ast.CallExpr) bool {
	attr, ok := exprs.Attribute(call.Func)
	if !ok {
		return false
	}
	switch attr.Attr.Name {
	case "exception":
		return true
	case "error", "critical", "warning", "info", "debug", "log":
		kw, ok := call.Keyword("exc_info")
		return ok && !exprs.IsLiteral(kw.Value, ast.LitFalse, ast.LitNone)
	}
	return false
}
