// Package naming implements the pep8-naming checks.
package naming

import (
	"slices"
	"strings"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/rule"
	"krait/internal/rules/internal/pyutil"
	"krait/internal/semantic"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "N801 invalid-class-name", Kind: checker.KindClassDef, Rules: []rule.Rule{rule.InvalidClassName}, Run: invalidClassName},
		{Name: "N802 invalid-function-name", Kind: checker.KindFunctionDef, Rules: []rule.Rule{rule.InvalidFunctionName}, Run: invalidFunctionName},
		{Name: "N805 invalid-first-argument-name-for-method", Kind: checker.KindFunctionDef, Rules: []rule.Rule{rule.InvalidFirstArgumentNameForMethod}, Run: invalidFirstArgument},
		{Name: "N806 non-lowercase-variable-in-function", Kind: checker.KindBinding, Rules: []rule.Rule{rule.NonLowercaseVariableInFunction}, Run: nonLowercaseVariable},
	}
}

// ignoredFunctionNames follow the unittest camelCase API.
var ignoredFunctionNames = []string{
	"setUp", "tearDown", "setUpClass", "tearDownClass", "setUpModule", "tearDownModule",
	"asyncSetUp", "asyncTearDown", "setUpTestData", "failureException", "longMessage", "maxDiff",
}

func isLower(name string) bool { return strings.ToLower(name) == name }

func invalidClassName(s *checker.Snapshot, n checker.Node) {
	cls, ok := s.Stmts().ClassDef(n.Stmt)
	if !ok {
		return
	}
	stripped := strings.TrimLeft(cls.Name.Name, "_")
	if stripped == "" {
		return
	}
	if first := stripped[:1]; strings.ToUpper(first) != first || strings.Contains(stripped, "_") {
		s.Reportf(rule.InvalidClassName, cls.Name.Span, "Class name `%s` should use CapWords convention", cls.Name.Name)
	}
}

func invalidFunctionName(s *checker.Snapshot, n checker.Node) {
	fn, ok := s.Stmts().FunctionDef(n.Stmt)
	if !ok || isLower(fn.Name.Name) || slices.Contains(ignoredFunctionNames, fn.Name.Name) {
		return
	}
	if pyutil.HasDecorator(s.Exprs(), fn.Decorators, "override", "typing.override", "typing_extensions.override") {
		return
	}
	s.Reportf(rule.InvalidFunctionName, fn.Name.Span, "Function name `%s` should be lowercase", fn.Name.Name)
}

var implicitClassMethods = []string{"__new__", "__init_subclass__", "__class_getitem__"}

func invalidFirstArgument(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	if q.CurrentScopeKind() != semantic.ScopeClass {
		return
	}
	fn, ok := s.Stmts().FunctionDef(n.Stmt)
	if !ok || slices.Contains(implicitClassMethods, fn.Name.Name) {
		return
	}
	if pyutil.HasDecorator(s.Exprs(), fn.Decorators, "staticmethod", "classmethod") || isMetaclass(s) {
		return
	}
	positional := fn.Params.Positional()
	if len(positional) == 0 {
		return
	}
	first := s.Tree().Params.Get(positional[0])
	if first.Name.Name != "self" {
		s.ReportRule(rule.InvalidFirstArgumentNameForMethod, first.Name.Span, "First argument of a method should be named `self`")
	}
}

// isMetaclass reports whether the enclosing class derives from type.
func isMetaclass(s *checker.Snapshot) bool {
	q := s.Semantic()
	cls, ok := s.Stmts().ClassDef(q.Scope(q.CurrentScope()).Owner.Stmt)
	if !ok {
		return false
	}
	for _, base := range cls.Bases {
		if qn, ok := q.QualifiedName(s.Exprs(), base); ok && (qn.IsBuiltin("type") || qn.Is("abc.ABCMeta") || qn.Is("enum.EnumMeta")) {
			return true
		}
	}
	return false
}

// typeFactories create classes or type aliases, so their result is named
// in CapWords.
var typeFactories = []string{"TypeVar", "ParamSpec", "TypeVarTuple", "NewType", "NamedTuple", "namedtuple", "TypedDict", "TypeAliasType"}

func nonLowercaseVariable(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	b := q.Binding(n.Binding)
	if b == nil || q.Scope(b.Scope).Kind != semantic.ScopeFunction {
		return
	}
	switch b.Kind {
	case semantic.BindAssignment, semantic.BindUnpackedAssignment, semantic.BindAnnotatedAssignment:
	default:
		return
	}
	if b.Flags.Has(semantic.BindingViaDeclaration) || isLower(b.Name) {
		return
	}
	if value, ok := assignedValue(s.Stmts(), b.Source.Stmt); ok {
		if call, ok := s.Exprs().Call(value); ok {
			if name := lastSegment(s.Exprs(), call.Func); slices.Contains(typeFactories, name) {
				return
			}
		}
	}
	s.Reportf(rule.NonLowercaseVariableInFunction, b.Span, "Variable `%s` in function should be lowercase", b.Name)
}

func assignedValue(stmts *ast.Stmts, id ast.StmtID) (ast.ExprID, bool) {
	if a, ok := stmts.Assign(id); ok {
		return a.Value, true
	}
	if a, ok := stmts.AnnAssign(id); ok && a.Value.IsValid() {
		return a.Value, true
	}
	return ast.NoExprID, false
}

func lastSegment(exprs *ast.Exprs, id ast.ExprID) string {
	if attr, ok := exprs.Attribute(id); ok {
		return attr.Attr.Name
	}
	return exprs.NameOf(id)
}
