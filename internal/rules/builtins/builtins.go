// Package builtins reports names that shadow Python builtins.
package builtins

import (
	"slices"

	"krait/internal/checker"
	"krait/internal/rule"
	"krait/internal/semantic"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "A001 builtin-variable-shadowing", Kind: checker.KindBinding, Rules: []rule.Rule{rule.BuiltinVariableShadowing}, Run: variableShadowing},
		{Name: "A002 builtin-argument-shadowing", Kind: checker.KindParameter, Rules: []rule.Rule{rule.BuiltinArgumentShadowing}, Run: argumentShadowing},
	}
}

func shadows(s *checker.Snapshot, name string) bool {
	return semantic.IsPythonBuiltin(name) && !slices.Contains(s.Settings().Flake8Builtins.BuiltinsIgnorelist, name)
}

func variableShadowing(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	b := q.Binding(n.Binding)
	if b == nil || q.Scope(b.Scope).Kind == semantic.ScopeClass {
		return
	}
	switch b.Kind {
	case semantic.BindAssignment, semantic.BindUnpackedAssignment, semantic.BindAnnotatedAssignment,
		semantic.BindNamedExprAssignment, semantic.BindLoopVar, semantic.BindWithItemVar,
		semantic.BindBoundException, semantic.BindFunctionDefinition, semantic.BindClassDefinition:
	default:
		return
	}
	if b.Flags.Has(semantic.BindingViaDeclaration) || !shadows(s, b.Name) {
		return
	}
	s.Reportf(rule.BuiltinVariableShadowing, b.Span, "Variable `%s` is shadowing a Python builtin", b.Name)
}

func argumentShadowing(s *checker.Snapshot, n checker.Node) {
	if !n.Stmt.IsValid() {
		return
	}
	p := s.Tree().Params.Get(n.Param)
	if p == nil || !shadows(s, p.Name.Name) {
		return
	}
	s.Reportf(rule.BuiltinArgumentShadowing, p.Name.Span, "Function argument `%s` is shadowing a Python builtin", p.Name.Name)
}
