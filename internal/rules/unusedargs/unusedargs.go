// Package unusedargs reports function, method and lambda parameters that
// are never read.
package unusedargs

import (
	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/rule"
	"krait/internal/rules/internal/pyutil"
	"krait/internal/semantic"
	"krait/internal/source"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{
			Name:  "ARG unused-arguments",
			Kind:  checker.KindScope,
			Rules: []rule.Rule{rule.UnusedFunctionArgument, rule.UnusedMethodArgument, rule.UnusedLambdaArgument},
			Run:   unusedArguments,
		},
	}
}

// keptDunders are the magic methods whose arguments still matter.
var keptDunders = map[string]bool{"__init__": true, "__new__": true, "__call__": true}

func unusedArguments(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	sc := q.Scope(n.Scope)
	if sc == nil {
		return
	}
	switch sc.Kind {
	case semantic.ScopeLambda:
		report(s, n.Scope, rule.UnusedLambdaArgument, "Unused lambda argument: `%s`", source.Span{})
	case semantic.ScopeFunction:
		fn, ok := s.Stmts().FunctionDef(sc.Owner.Stmt)
		if !ok || pyutil.IsStubBody(s.Tree(), fn.Body) {
			return
		}
		if ast.IsDunder(fn.Name.Name) && !keptDunders[fn.Name.Name] {
			return
		}
		if pyutil.HasDecorator(s.Exprs(), fn.Decorators, "override", "abstractmethod", "overload") {
			return
		}
		if !q.IsMethod(n.Scope) {
			report(s, n.Scope, rule.UnusedFunctionArgument, "Unused function argument: `%s`", source.Span{})
			return
		}
		var receiver source.Span
		if positional := fn.Params.Positional(); len(positional) > 0 && !pyutil.HasDecorator(s.Exprs(), fn.Decorators, "staticmethod") {
			receiver = s.Tree().Params.Get(positional[0]).Name.Span
		}
		report(s, n.Scope, rule.UnusedMethodArgument, "Unused method argument: `%s`", receiver)
	}
}

// report flags every unread argument binding of scope except the one
// declared at skip.
func report(s *checker.Snapshot, scope semantic.ScopeID, r rule.Rule, format string, skip source.Span) {
	if !s.Enabled(r) {
		return
	}
	q := s.Semantic()
	for _, id := range pyutil.ScopeBindings(q, scope) {
		b := q.Binding(id)
		if b.Kind != semantic.BindArgument || b.IsUsed() || b.Span == skip || s.Settings().IsDummy(b.Name) {
			continue
		}
		s.Reportf(r, b.Span, format, b.Name)
	}
}
