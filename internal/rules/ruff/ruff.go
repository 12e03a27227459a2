// Package ruff holds the RUF rules that have no upstream plugin.
package ruff

import (
	"strings"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/rule"
	"krait/internal/rules/internal/pyutil"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "RUF012 mutable-class-default", Kind: checker.KindClassDef, Rules: []rule.Rule{rule.MutableClassDefault}, Run: mutableClassDefault},
	}
}

var specialAttributes = map[string]bool{"__slots__": true, "__match_args__": true, "__all__": true}

func mutableClassDefault(s *checker.Snapshot, n checker.Node) {
	cls, ok := s.Stmts().ClassDef(n.Stmt)
	if !ok || pyutil.HasDecorator(s.Exprs(), cls.Decorators, "dataclass", "define", "frozen", "mutable") {
		return
	}
	stmts, exprs := s.Stmts(), s.Exprs()
	for _, id := range cls.Body {
		switch stmts.Kind(id) {
		case ast.StmtAnnAssign:
			a, _ := stmts.AnnAssign(id)
			if !a.Value.IsValid() || specialAttributes[exprs.NameOf(a.Target)] || isClassVar(s, a.Annotation) {
				continue
			}
			if exprs.IsMutableLiteral(a.Value) {
				s.ReportRule(rule.MutableClassDefault, exprs.Span(a.Value), rule.MutableClassDefault.Meta().Summary)
			}
		case ast.StmtAssign:
			a, _ := stmts.Assign(id)
			special := false
			for _, target := range a.Targets {
				special = special || specialAttributes[exprs.NameOf(target)]
			}
			if !special && exprs.IsMutableLiteral(a.Value) {
				s.ReportRule(rule.MutableClassDefault, exprs.Span(a.Value), rule.MutableClassDefault.Meta().Summary)
			}
		}
	}
}

// isClassVar accepts ClassVar and Final, bare or subscripted, and their
// string-annotation spellings.
func isClassVar(s *checker.Snapshot, annotation ast.ExprID) bool {
	exprs := s.Exprs()
	if lit, ok := exprs.Literal(annotation); ok && lit.Kind == ast.LitStr {
		head, _, _ := strings.Cut(lit.Value, "[")
		head = head[strings.LastIndexByte(head, '.')+1:]
		return head == "ClassVar" || head == "Final"
	}
	if sub, ok := exprs.Subscript(annotation); ok {
		annotation = sub.Value
	}
	if q, ok := s.Semantic().QualifiedName(exprs, annotation); ok {
		for _, name := range []string{"typing.ClassVar", "typing.Final", "typing_extensions.ClassVar", "typing_extensions.Final"} {
			if q.Is(name) {
				return true
			}
		}
	}
	name := exprs.NameOf(annotation)
	if attr, ok := exprs.Attribute(annotation); ok {
		name = attr.Attr.Name
	}
	return name == "ClassVar" || name == "Final"
}
