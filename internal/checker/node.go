package checker

import (
	"krait/internal/ast"
	"krait/internal/semantic"
	"krait/internal/source"
)

// Node is the syntax or semantic entity a hook is dispatched for.
// Only the fields relevant to Kind are set.
type Node struct {
	Kind    Kind
	Stmt    ast.StmtID
	Expr    ast.ExprID
	Param   ast.ParamID
	Handler ast.HandlerID
	Scope   semantic.ScopeID
	Binding semantic.BindingID
	// Suite holds the statements of a KindSuite node; Stmt is the owner
	// (NoStmtID for the module body) and Index the suite position among
	// the owner's blocks.
	Suite []ast.StmtID
	Index int
	Span  source.Span
}

type nodeKey struct {
	kind    Kind
	stmt    ast.StmtID
	expr    ast.ExprID
	param   ast.ParamID
	handler ast.HandlerID
	scope   semantic.ScopeID
	binding semantic.BindingID
	index   int
}

func (n Node) key() nodeKey {
	return nodeKey{
		kind:    n.Kind,
		stmt:    n.Stmt,
		expr:    n.Expr,
		param:   n.Param,
		handler: n.Handler,
		scope:   n.Scope,
		binding: n.Binding,
		index:   n.Index,
	}
}
