package pylint

import (
	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/rule"
	"krait/internal/semantic"
)

func tooManyArguments(s *checker.Snapshot, n checker.Node) {
	fn, ok := s.Stmts().FunctionDef(n.Stmt)
	if !ok {
		return
	}
	count := 0
	for _, id := range fn.Params.All() {
		p := s.Tree().Params.Get(id)
		if p.Kind == ast.ParamVararg || p.Kind == ast.ParamKwarg || s.Settings().IsDummy(p.Name.Name) {
			continue
		}
		count++
	}
	if limit := s.Settings().Pylint.MaxArgs; count > limit {
		s.Reportf(rule.TooManyArguments, fn.Name.Span, "Too many arguments in function definition (%d > %d)", count, limit)
	}
}

func functionLimits(s *checker.Snapshot, n checker.Node) {
	fn, ok := s.Stmts().FunctionDef(n.Stmt)
	if !ok {
		return
	}
	limits := s.Settings().Pylint
	if returns := countReturns(s.Tree(), fn.Body); returns > limits.MaxReturns {
		s.Reportf(rule.TooManyReturnStatements, fn.Name.Span, "Too many return statements (%d > %d)", returns, limits.MaxReturns)
	}
	if branches := countBranches(s.Tree(), fn.Body); branches > limits.MaxBranches {
		s.Reportf(rule.TooManyBranches, fn.Name.Span, "Too many branches (%d > %d)", branches, limits.MaxBranches)
	}
}

// countReturns counts return statements of a body, skipping nested
// functions and classes.
func countReturns(tree *ast.Builder, body []ast.StmtID) int {
	n := 0
	tree.WalkStmts(body, func(id ast.StmtID) bool {
		switch tree.Stmts.Kind(id) {
		case ast.StmtReturn:
			n++
		case ast.StmtFunctionDef, ast.StmtClassDef:
			return false
		}
		return true
	})
	return n
}

// countBranches counts if/elif/else arms, loops with their else, and
// try handlers with else and finally.
func countBranches(tree *ast.Builder, body []ast.StmtID) int {
	n := 0
	tree.WalkStmts(body, func(id ast.StmtID) bool {
		stmts := tree.Stmts
		switch stmts.Kind(id) {
		case ast.StmtIf:
			i, _ := stmts.If(id)
			n++
			if len(i.Orelse) > 0 && !isElif(tree, i.Orelse) {
				n++
			}
		case ast.StmtFor:
			f, _ := stmts.For(id)
			n++
			if len(f.Orelse) > 0 {
				n++
			}
		case ast.StmtWhile:
			w, _ := stmts.While(id)
			n++
			if len(w.Orelse) > 0 {
				n++
			}
		case ast.StmtTry:
			t, _ := stmts.Try(id)
			n += len(t.Handlers)
			if len(t.Orelse) > 0 {
				n++
			}
			if len(t.Finally) > 0 {
				n++
			}
		case ast.StmtFunctionDef, ast.StmtClassDef:
			return false
		}
		return true
	})
	return n
}

func isElif(tree *ast.Builder, orelse []ast.StmtID) bool {
	if len(orelse) != 1 {
		return false
	}
	i, ok := tree.Stmts.If(orelse[0])
	return ok && i.Elif
}

func tooManyLocals(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	sc := q.Scope(n.Scope)
	if sc == nil || sc.Kind != semantic.ScopeFunction {
		return
	}
	count := 0
	for _, id := range q.Bindings(n.Scope) {
		switch q.Binding(id).Kind {
		case semantic.BindAnnotation, semantic.BindDeletion, semantic.BindUnboundException:
			continue
		}
		count++
	}
	fn, ok := s.Stmts().FunctionDef(sc.Owner.Stmt)
	if !ok {
		return
	}
	if limit := s.Settings().Pylint.MaxLocals; count > limit {
		s.Reportf(rule.TooManyLocals, fn.Name.Span, "Too many local variables (%d/%d)", count, limit)
	}
}
