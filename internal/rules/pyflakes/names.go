package pyflakes

import (
	"fmt"
	"path/filepath"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/diag"
	"krait/internal/rule"
	"krait/internal/rules/internal/pyutil"
	"krait/internal/semantic"
	"krait/internal/source"
)

// classNames are implicitly bound while a class body executes.
var classNames = map[string]bool{"__module__": true, "__qualname__": true}

func unresolvedNames(s *checker.Snapshot, _ checker.Node) {
	q := s.Semantic()
	for _, rid := range q.Unresolved() {
		ref := q.Reference(rid)
		if ref == nil {
			continue
		}
		if sc := q.Scope(ref.Scope); sc != nil && sc.Kind == semantic.ScopeClass && classNames[ref.Name] {
			continue
		}
		switch ref.Resolution {
		case semantic.StarImport:
			s.Reportf(rule.UndefinedLocalWithImportStarUsage, ref.Span, "`%s` may be undefined, or defined from star imports", ref.Name)
		case semantic.NotFound, semantic.Unbound:
			s.Reportf(rule.UndefinedName, ref.Span, "Undefined name `%s`", ref.Name)
		}
	}
}

func undefinedExports(s *checker.Snapshot, _ checker.Node) {
	if filepath.Base(s.File().Path) == "__init__.py" {
		// подмодули пакета могут быть не импортированы явно
		return
	}
	for _, export := range s.UndefinedExports() {
		s.Reportf(rule.UndefinedExport, export.Span, "Undefined name `%s` in `__all__`", export.Name)
	}
}

// undefinedLocal finds names read from an enclosing scope before the
// function binds them locally, which raises UnboundLocalError at runtime.
func undefinedLocal(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	sc := q.Scope(n.Scope)
	if sc == nil || sc.Kind != semantic.ScopeFunction {
		return
	}
	for _, id := range q.Bindings(n.Scope) {
		b := q.Binding(id)
		if !b.Shadows.IsValid() || b.Flags.Has(semantic.BindingViaDeclaration) {
			continue
		}
		outer := q.Binding(b.Shadows)
		if outer == nil {
			continue
		}
		for _, rid := range outer.References {
			ref := q.Reference(rid)
			if ref.Scope == n.Scope && ref.Span.Start < b.Span.Start {
				s.Reportf(rule.UndefinedLocal, ref.Span, "Local variable `%s` referenced before assignment", b.Name)
				break
			}
		}
	}
}

// tracebackNames are read by debugging tools through frame locals.
var tracebackNames = map[string]bool{
	"__tracebackhide__":        true,
	"__traceback_info__":       true,
	"__traceback_supplement__": true,
	"__debuggerskip__":         true,
}

func unusedVariables(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	sc := q.Scope(n.Scope)
	if sc == nil || !sc.Kind.IsFunctionLike() || usesLocals(q, n.Scope) {
		return
	}
	for _, id := range pyutil.ScopeBindings(q, n.Scope) {
		b := q.Binding(id)
		switch b.Kind {
		case semantic.BindAssignment, semantic.BindNamedExprAssignment, semantic.BindAnnotatedAssignment, semantic.BindWithItemVar:
		default:
			continue
		}
		if b.IsUsed() || b.Flags.Has(semantic.BindingViaDeclaration) || b.Flags.Has(semantic.BindingUnpacked) {
			continue
		}
		if s.Settings().IsDummy(b.Name) || tracebackNames[b.Name] {
			continue
		}
		d := diag.New(rule.UnusedVariable, b.Span, fmt.Sprintf("Local variable `%s` is assigned to but never used", b.Name))
		if fix, ok := removeAssignment(s, b); ok {
			d = d.WithFix(fmt.Sprintf("Remove assignment to unused variable `%s`", b.Name), fix)
		}
		s.Report(d)
	}
}

// removeAssignment drops `x = ` from a single-target assignment and keeps
// the value for its side effects.
func removeAssignment(s *checker.Snapshot, b *semantic.Binding) (*diag.Fix, bool) {
	a, ok := s.Stmts().Assign(b.Source.Stmt)
	if !ok || len(a.Targets) != 1 || s.Exprs().Span(a.Targets[0]) != b.Span {
		return nil, false
	}
	value := s.Exprs().Span(a.Value)
	switch s.Exprs().Kind(a.Value) {
	case ast.ExprName, ast.ExprLiteral:
		return diag.UnsafeFix(pyutil.DeleteStmt(s.File(), s.Stmts().Get(b.Source.Stmt).Span)), true
	}
	return diag.UnsafeFix(diag.Deletion(source.Span{File: b.Span.File, Start: b.Span.Start, End: value.Start})), true
}

// usesLocals reports a call to the builtin locals() inside scope; every
// local is then observable.
func usesLocals(q semantic.Query, scope semantic.ScopeID) bool {
	for _, rid := range q.References(scope) {
		ref := q.Reference(rid)
		if ref.Name != "locals" {
			continue
		}
		if b := q.Binding(ref.Binding); b != nil && b.Kind == semantic.BindBuiltin {
			return true
		}
	}
	return false
}

func unusedExceptionName(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	b := q.Binding(n.Binding)
	if b == nil || b.IsUsed() || s.Settings().IsDummy(b.Name) {
		return
	}
	d := diag.New(rule.UnusedVariable, b.Span, fmt.Sprintf("Local variable `%s` is assigned to but never used", b.Name))
	if h := s.Stmts().Handler(n.Handler); h != nil && h.Type.IsValid() {
		// `except E as e` -> `except E`
		typ := s.Exprs().Span(h.Type)
		d = d.WithFix(fmt.Sprintf("Remove assignment to unused variable `%s`", b.Name),
			diag.SafeFix(diag.Deletion(source.Span{File: typ.File, Start: typ.End, End: b.Span.End})))
	}
	s.Report(d)
}
