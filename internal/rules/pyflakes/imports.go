package pyflakes

import (
	"fmt"
	"path/filepath"
	"strings"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/diag"
	"krait/internal/rule"
	"krait/internal/rules/internal/pyutil"
	"krait/internal/semantic"
)

func unusedImports(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	initFile := filepath.Base(s.File().Path) == "__init__.py"
	for _, id := range pyutil.ScopeBindings(q, n.Scope) {
		b := q.Binding(id)
		if !isImport(b.Kind) || b.IsUsed() || b.Import == nil {
			continue
		}
		if latest, _ := q.LookupIn(n.Scope, b.Name); latest != id && shadowedByDefinition(q, n.Scope, id) {
			// F811 reports these
			continue
		}
		alias, count, ok := pyutil.ImportAlias(s.Stmts(), b)
		if ok && isRedundantAlias(alias.Name, alias.AsName) {
			continue
		}
		d := diag.New(rule.UnusedImport, b.Span, fmt.Sprintf("`%s` imported but unused", b.Import.Qualified))
		if ok && count == 1 {
			edit := pyutil.DeleteStmt(s.File(), s.Stmts().Get(b.Source.Stmt).Span)
			fix := diag.SafeFix(edit)
			if initFile {
				fix = diag.UnsafeFix(edit)
			}
			d = d.WithFix(fmt.Sprintf("Remove unused import: `%s`", b.Import.Qualified), fix)
		}
		s.Report(d)
	}
}

func isImport(k semantic.BindingKind) bool {
	return k == semantic.BindImport || k == semantic.BindFromImport || k == semantic.BindSubmoduleImport
}

// isRedundantAlias reports `import x as x` and `from m import x as x`,
// the explicit re-export spelling.
func isRedundantAlias(name, asName string) bool {
	return asName != "" && name == asName
}

func shadowedByDefinition(q semantic.Query, scope semantic.ScopeID, id semantic.BindingID) bool {
	for _, sh := range q.ShadowedBindings(scope) {
		if sh.Shadowed != id {
			continue
		}
		return redefinitionKind(q.Binding(sh.Binding).Kind)
	}
	return false
}

func redefinitionKind(k semantic.BindingKind) bool {
	switch k {
	case semantic.BindClassDefinition, semantic.BindFunctionDefinition, semantic.BindImport, semantic.BindFromImport:
		return true
	}
	return false
}

func importShadowedByLoopVar(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	b := q.Binding(n.Binding)
	if b == nil || b.Kind != semantic.BindLoopVar {
		return
	}
	prev, ok := q.ShadowedBinding(n.Binding)
	if !ok {
		return
	}
	if pb := q.Binding(prev); pb != nil && isImport(pb.Kind) {
		s.Reportf(rule.ImportShadowedByLoopVar, b.Span, "Import `%s` from line %d shadowed by loop variable", b.Name, s.Line(pb.Span))
	}
}

func importStar(s *checker.Snapshot, n checker.Node) {
	from, ok := s.Stmts().ImportFrom(n.Stmt)
	if !ok || !from.Star {
		return
	}
	module := strings.Repeat(".", int(from.Level)) + from.Module
	s.Reportf(rule.UndefinedLocalWithImportStar, n.Span, "`from %s import *` used; unable to detect undefined names", module)
}

func redefinedWhileUnused(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	exprs := s.Exprs()
	for _, sh := range q.ShadowedBindings(n.Scope) {
		b, prev := q.Binding(sh.Binding), q.Binding(sh.Shadowed)
		if !redefinitionKind(b.Kind) || prev.IsUsed() {
			continue
		}
		switch prev.Kind {
		case semantic.BindClassDefinition, semantic.BindFunctionDefinition, semantic.BindImport,
			semantic.BindFromImport, semantic.BindSubmoduleImport:
		default:
			continue
		}
		if q.DifferentBranches(b.Branch, prev.Branch) {
			continue
		}
		if !redefines(b, prev) {
			continue
		}
		if alias, _, ok := pyutil.ImportAlias(s.Stmts(), prev); ok && isRedundantAlias(alias.Name, alias.AsName) {
			continue
		}
		if fn, ok := s.Stmts().FunctionDef(prev.Source.Stmt); ok && pyutil.HasDecorator(exprs, fn.Decorators, "overload") {
			continue
		}
		if fn, ok := s.Stmts().FunctionDef(b.Source.Stmt); ok && isAccessorDecorated(exprs, fn.Decorators, b.Name) {
			continue
		}
		d := diag.New(rule.RedefinedWhileUnused, b.Span, fmt.Sprintf("Redefinition of unused `%s` from line %d", b.Name, s.Line(prev.Span))).
			WithNote(prev.Span, fmt.Sprintf("previous definition of `%s` here", b.Name))
		s.Report(d)
	}
}

// redefines reports whether b replaces prev rather than re-importing
// the same submodule path.
func redefines(b, prev *semantic.Binding) bool {
	if prev.Kind == semantic.BindSubmoduleImport && isImport(b.Kind) {
		return b.Import != nil && prev.Import != nil && b.Import.Qualified == prev.Import.Qualified
	}
	return true
}

// isAccessorDecorated matches `@name.setter` and `@name.deleter`.
func isAccessorDecorated(exprs *ast.Exprs, decorators []ast.ExprID, name string) bool {
	for _, dec := range decorators {
		parts, ok := exprs.DottedName(dec)
		if ok && len(parts) == 2 && parts[0] == name && (parts[1] == "setter" || parts[1] == "deleter" || parts[1] == "getter") {
			return true
		}
	}
	return false
}
