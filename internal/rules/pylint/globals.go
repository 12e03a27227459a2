package pylint

import (
	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/rule"
	"krait/internal/semantic"
)

func globalAtModuleLevel(s *checker.Snapshot, n checker.Node) {
	if s.Semantic().IsModuleScope() {
		s.ReportRule(rule.GlobalAtModuleLevel, n.Span, "`global` at module level is redundant")
	}
}

func loadBeforeGlobalDeclaration(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	if q.IsModuleScope() {
		return
	}
	d, ok := s.Stmts().Declared(n.Stmt)
	if !ok {
		return
	}
	for _, name := range d.Names {
		for _, rid := range q.References(q.CurrentScope()) {
			ref := q.Reference(rid)
			if ref.Name != name.Name || ref.Ctx != ast.Load || ref.Span.Start >= n.Span.Start {
				continue
			}
			s.Reportf(rule.LoadBeforeGlobalDeclaration, ref.Span, "Name `%s` is used prior to global declaration on line %d", name.Name, s.Line(n.Span))
			break
		}
	}
}

func nonlocalWithoutBinding(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	d, ok := s.Stmts().Declared(n.Stmt)
	if !ok {
		return
	}
	for _, name := range d.Names {
		decl, ok := q.GlobalDeclaration(q.CurrentScope(), name.Name)
		if ok && decl.Kind == semantic.DeclNonlocal && !decl.Target.IsValid() {
			s.Reportf(rule.NonlocalWithoutBinding, name.Span, "Nonlocal name `%s` found without binding", name.Name)
		}
	}
}

// declarations checks each declared name of a scope once, using the
// latest declaration for its assignment state.
func declarations(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	if n.Scope == q.ModuleScope() {
		return
	}
	kinds := make(map[string]semantic.DeclKind)
	seen := make(map[string]bool)
	for _, decl := range q.Declarations(n.Scope) {
		if prev, ok := kinds[decl.Name]; ok && prev != decl.Kind && !seen[decl.Name+"/both"] {
			seen[decl.Name+"/both"] = true
			s.Reportf(rule.NonlocalAndGlobal, decl.Span, "Name `%s` is both `nonlocal` and `global`", decl.Name)
		}
		kinds[decl.Name] = decl.Kind
		if decl.Kind != semantic.DeclGlobal || seen[decl.Name] {
			continue
		}
		seen[decl.Name] = true
		latest, _ := q.GlobalDeclaration(n.Scope, decl.Name)
		if latest.Assigned {
			s.Reportf(rule.GlobalStatement, decl.Span, "Using the global statement to update `%s` is discouraged", decl.Name)
		} else {
			s.Reportf(rule.GlobalVariableNotAssigned, decl.Span, "Using global for `%s` but no assignment is done", decl.Name)
		}
	}
}
