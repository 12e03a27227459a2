package testkit

import (
	"fmt"

	"krait/internal/ast"
	"krait/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a lowered module:
// 1) every statement and expression span is ordered and within the file
// 2) statements of a nested block lie inside the statement owning the block
// 3) the module bounds cover every top-level statement
func CheckSpanInvariants(mod *ast.Module) error {
	if mod == nil || mod.File == nil || mod.Tree == nil {
		return fmt.Errorf("nil module, file or tree")
	}
	file, tree := mod.File, mod.Tree
	check := func(what string, sp source.Span) error {
		if sp.File != file.ID {
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", what, sp.File, file.ID)
		}
		if sp.End < sp.Start {
			return fmt.Errorf("%s span is inverted: %v", what, sp)
		}
		if sp.End > file.Size() {
			return fmt.Errorf("%s span %v ends beyond content (%d bytes)", what, sp, file.Size())
		}
		return nil
	}

	bounds := mod.Span()
	var err error
	var walk func(parent source.Span, body []ast.StmtID)
	walk = func(parent source.Span, body []ast.StmtID) {
		for _, id := range body {
			if err != nil {
				return
			}
			sp := tree.Stmts.Get(id).Span
			if err = check(tree.Stmts.Kind(id).String(), sp); err != nil {
				return
			}
			if !parent.ContainsSpan(sp) {
				err = fmt.Errorf("%s span %v is outside its parent %v", tree.Stmts.Kind(id), sp, parent)
				return
			}
			for _, e := range tree.StmtExprs(id) {
				tree.WalkExpr(e, func(x ast.ExprID) bool {
					if err == nil {
						err = check(tree.Exprs.Kind(x).String(), tree.Exprs.Span(x))
					}
					return err == nil
				})
			}
			for _, block := range tree.Blocks(id) {
				walk(sp, block)
			}
		}
	}
	walk(bounds, mod.Body)
	return err
}
