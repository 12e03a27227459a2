package checker

import (
	"krait/internal/ast"
	"krait/internal/semantic"
	"krait/internal/source"
)

func (c *Checker) visitExpr(id ast.ExprID) {
	exprs := c.tree.Exprs
	ex := exprs.Get(id)
	if ex == nil {
		return
	}
	c.stats.Exprs++
	m := c.model
	node := Node{Kind: ExprKind(exprs, id), Expr: id, Span: ex.Span}

	switch ex.Kind {
	case ast.ExprName:
		n, _ := exprs.Name(id)
		switch n.Ctx {
		case ast.Store:
			c.bindName(id, n.Name, ex.Span)
		case ast.Del:
			m.ResolveDel(n.Name, ex.Span, id)
			m.Bind(n.Name, semantic.BindDeletion, ex.Span, c.store.src)
		default:
			m.ResolveLoad(n.Name, ex.Span, id)
		}
		c.dispatchNode(node)
		return

	case ast.ExprLiteral:
		lit, _ := exprs.Literal(id)
		if lit.Kind == ast.LitStr && m.Has(semantic.InAnnotation) {
			c.resolveStringAnnotation(id, lit)
		}
		c.dispatchNode(node)
		return

	case ast.ExprLambda:
		lam, _ := exprs.Lambda(id)
		c.dispatchNode(node)
		c.visitParamDefaults(lam.Params, false)
		c.funcs = append(c.funcs, deferredFunc{expr: id, snap: m.Snapshot()})
		return

	case ast.ExprListComp, ast.ExprSetComp, ast.ExprDictComp, ast.ExprGenerator:
		c.dispatchNode(node)
		c.visitComprehension(id)
		return

	case ast.ExprNamed:
		named, _ := exprs.Named(id)
		c.dispatchNode(node)
		c.visitExpr(named.Value)
		if n, ok := exprs.Name(named.Target); ok {
			c.stats.Exprs++
			span := exprs.Span(named.Target)
			m.BindNamedExpr(n.Name, span, semantic.Source{Expr: id})
			c.dispatchNode(Node{Kind: KindName, Expr: named.Target, Span: span})
		}
		return

	case ast.ExprTuple, ast.ExprList:
		seq, _ := exprs.Seq(id)
		c.dispatchNode(node)
		if seq.Ctx == ast.Store && c.store.kind == semantic.BindAssignment {
			c.withStore(semantic.BindUnpackedAssignment, c.store.src, func() {
				for _, elt := range seq.Elts {
					c.visitExpr(elt)
				}
			})
			return
		}

	case ast.ExprSubscript:
		sub, _ := exprs.Subscript(id)
		c.dispatchNode(node)
		c.visitExpr(sub.Value)
		if c.isTypingSubscript(sub.Value) {
			c.visitAnnotation(sub.Slice)
			return
		}
		c.visitExpr(sub.Slice)
		return

	default:
		c.dispatchNode(node)
	}

	for _, child := range c.tree.ChildExprs(id) {
		c.visitExpr(child)
	}
}

// bindName binds a store target using the enclosing statement's kind.
func (c *Checker) bindName(id ast.ExprID, name string, span source.Span) semantic.BindingID {
	kind := c.store.kind
	src := c.store.src
	if kind == semantic.BindInvalid || kind == semantic.BindDeletion {
		kind = semantic.BindAssignment
	}
	if !src.Stmt.IsValid() {
		src.Expr = id
	}
	return c.model.Bind(name, kind, span, src)
}

// visitComprehension visits the first iterator in the enclosing scope and
// everything else in a generator scope.
func (c *Checker) visitComprehension(id ast.ExprID) {
	exprs := c.tree.Exprs
	m := c.model
	comp, _ := exprs.Comp(id)
	if len(comp.Generators) == 0 {
		return
	}
	c.visitExpr(comp.Generators[0].Iter)

	m.EnterScope(semantic.ScopeGenerator, semantic.Owner{Expr: id}, exprs.Span(id))
	c.withStore(semantic.BindAssignment, semantic.Source{Expr: id}, func() {
		for i, g := range comp.Generators {
			if i > 0 {
				c.visitExpr(g.Iter)
			}
			c.visitExpr(g.Target)
			for _, cond := range g.Ifs {
				c.visitTest(cond)
			}
		}
	})
	c.visitExpr(comp.Elt)
	c.visitExpr(comp.Value)
	m.ExitScope()
}

// typingSubscripts take a type expression as their slice.
var typingSubscripts = map[string]bool{
	"typing.Optional": true, "typing.Union": true, "typing.List": true, "typing.Dict": true,
	"typing.Set": true, "typing.Tuple": true, "typing.Type": true, "typing.ClassVar": true,
	"typing.Final": true, "typing.Callable": true,
}

func (c *Checker) isTypingSubscript(value ast.ExprID) bool {
	if !c.model.Has(semantic.InAnnotation) {
		q, ok := c.model.QualifiedName(c.tree.Exprs, value)
		return ok && typingSubscripts[q.String()]
	}
	return false
}
