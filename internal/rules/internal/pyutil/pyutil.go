// Package pyutil holds the syntax and binding helpers shared by rule bodies.
package pyutil

import (
	"slices"
	"strings"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/diag"
	"krait/internal/semantic"
	"krait/internal/source"
)

// ScopeBindings returns every binding created in scope, including the
// ones later shadowed by a same-scope rebinding, in creation order.
func ScopeBindings(q semantic.Query, scope semantic.ScopeID) []semantic.BindingID {
	out := slices.Clone(q.Bindings(scope))
	for _, sh := range q.ShadowedBindings(scope) {
		out = append(out, sh.Shadowed)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// OwnerFunction returns the def statement that opened a function scope.
func OwnerFunction(s *checker.Snapshot, scope semantic.ScopeID) (*ast.FunctionDefStmt, ast.StmtID, bool) {
	sc := s.Semantic().Scope(scope)
	if sc == nil || sc.Kind != semantic.ScopeFunction {
		return nil, ast.NoStmtID, false
	}
	fn, ok := s.Stmts().FunctionDef(sc.Owner.Stmt)
	return fn, sc.Owner.Stmt, ok
}

// DecoratorNames returns the dotted names of decorators, with call
// decorators such as `@functools.wraps(f)` reduced to the callee.
func DecoratorNames(exprs *ast.Exprs, decorators []ast.ExprID) []string {
	out := make([]string, 0, len(decorators))
	for _, dec := range decorators {
		if call, ok := exprs.Call(dec); ok {
			dec = call.Func
		}
		if parts, ok := exprs.DottedName(dec); ok {
			out = append(out, strings.Join(parts, "."))
		}
	}
	return out
}

// HasDecorator reports whether some decorator ends in one of names, so
// `overload` matches `@overload` and `@typing.overload`.
func HasDecorator(exprs *ast.Exprs, decorators []ast.ExprID, names ...string) bool {
	for _, dotted := range DecoratorNames(exprs, decorators) {
		last := dotted[strings.LastIndexByte(dotted, '.')+1:]
		if slices.Contains(names, dotted) || slices.Contains(names, last) {
			return true
		}
	}
	return false
}

// IsStubBody reports bodies made only of a docstring, `pass`, `...` or a
// `raise NotImplementedError`.
func IsStubBody(tree *ast.Builder, body []ast.StmtID) bool {
	for i, id := range body {
		switch tree.Stmts.Kind(id) {
		case ast.StmtPass:
			continue
		case ast.StmtExpr:
			es, _ := tree.Stmts.Expr(id)
			if tree.Exprs.IsLiteral(es.Value, ast.LitEllipsis) {
				continue
			}
			if i == 0 && tree.Exprs.IsLiteral(es.Value, ast.LitStr) {
				continue
			}
			return false
		case ast.StmtRaise:
			r, _ := tree.Stmts.Raise(id)
			exc := r.Exc
			if call, ok := tree.Exprs.Call(exc); ok {
				exc = call.Func
			}
			name := tree.Exprs.NameOf(exc)
			if name == "NotImplementedError" || name == "NotImplemented" {
				continue
			}
			return false
		default:
			return false
		}
	}
	return true
}

// DeleteStmt removes a statement, taking its whole lines when nothing
// else shares them.
func DeleteStmt(file *source.File, span source.Span) diag.Edit {
	if file == nil {
		return diag.Deletion(span)
	}
	lines := file.LineSpan(span)
	before := strings.TrimSpace(file.Text(source.Span{File: file.ID, Start: lines.Start, End: span.Start}))
	after := strings.TrimSpace(file.Text(source.Span{File: file.ID, Start: span.End, End: lines.End}))
	if before != "" || (after != "" && !strings.HasPrefix(after, "#")) {
		return diag.Deletion(span)
	}
	end := lines.End
	if end < file.Size() {
		end++ // перевод строки
	}
	return diag.Deletion(source.Span{File: file.ID, Start: lines.Start, End: end})
}

// IsExceptionName reports whether a handler type names Exception or
// BaseException, directly or inside a tuple.
func IsExceptionName(s *checker.Snapshot, typ ast.ExprID) (string, bool) {
	exprs := s.Exprs()
	if seq, ok := exprs.Seq(typ); ok && exprs.Kind(typ) == ast.ExprTuple {
		for _, elt := range seq.Elts {
			if name, ok := IsExceptionName(s, elt); ok {
				return name, true
			}
		}
		return "", false
	}
	q, ok := s.Semantic().QualifiedName(exprs, typ)
	if !ok {
		return "", false
	}
	for _, name := range []string{"Exception", "BaseException"} {
		if q.IsBuiltin(name) {
			return name, true
		}
	}
	return "", false
}

// IsBuiltinCall reports a call whose callee resolves to the named builtin.
func IsBuiltinCall(s *checker.Snapshot, call *ast.CallExpr, name string) bool {
	if s.Exprs().NameOf(call.Func) != name {
		return false
	}
	q, ok := s.Semantic().QualifiedName(s.Exprs(), call.Func)
	return ok && q.IsBuiltin(name)
}

// ImportAlias finds the alias a binding came from and the number of
// aliases of its import statement.
func ImportAlias(stmts *ast.Stmts, b *semantic.Binding) (ast.Alias, int, bool) {
	var names []ast.Alias
	if imp, ok := stmts.Import(b.Source.Stmt); ok {
		names = imp.Names
	} else if from, ok := stmts.ImportFrom(b.Source.Stmt); ok {
		names = from.Names
	}
	for _, alias := range names {
		if alias.Span == b.Span {
			return alias, len(names), true
		}
	}
	return ast.Alias{}, len(names), false
}
