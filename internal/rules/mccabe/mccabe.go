// Package mccabe computes cyclomatic complexity of functions.
package mccabe

import (
	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/rule"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "C901 complex-structure", Kind: checker.KindFunctionDef, Rules: []rule.Rule{rule.ComplexStructure}, Run: complexStructure},
	}
}

func complexStructure(s *checker.Snapshot, n checker.Node) {
	fn, ok := s.Stmts().FunctionDef(n.Stmt)
	if !ok {
		return
	}
	complexity := 1 + Complexity(s.Tree(), fn.Body)
	if limit := s.Settings().McCabe.MaxComplexity; complexity > limit {
		s.Reportf(rule.ComplexStructure, fn.Name.Span, "`%s` is too complex (%d > %d)", fn.Name.Name, complexity, limit)
	}
}

// Complexity returns the number of decision points in body. Nested
// functions add one plus their own decision points.
func Complexity(tree *ast.Builder, body []ast.StmtID) int {
	n := 0
	for _, id := range body {
		switch tree.Stmts.Kind(id) {
		case ast.StmtIf, ast.StmtFor, ast.StmtWhile, ast.StmtFunctionDef:
			n++
		case ast.StmtTry:
			t, _ := tree.Stmts.Try(id)
			n += len(t.Handlers)
		}
		for _, block := range tree.Blocks(id) {
			n += Complexity(tree, block)
		}
	}
	return n
}
