package semantic

import (
	"slices"
	"strings"

	"krait/internal/ast"
)

// QualifiedName is the dotted path an expression refers to. Builtins are
// represented with an empty first segment: ["", "open"].
type QualifiedName []string

// Is compares against a dotted path such as "os.path.join".
func (q QualifiedName) Is(dotted string) bool {
	return len(q) > 0 && strings.Join(q, ".") == dotted
}

// IsBuiltin reports a reference to the builtin name.
func (q QualifiedName) IsBuiltin(name string) bool {
	return len(q) == 2 && (q[0] == "" || q[0] == "builtins") && q[1] == name
}

// HasPrefix reports whether the path starts with the given module.
func (q QualifiedName) HasPrefix(module string) bool {
	prefix := strings.Split(module, ".")
	return len(q) >= len(prefix) && slices.Equal(q[:len(prefix)], prefix)
}

func (q QualifiedName) String() string {
	if len(q) > 0 && q[0] == "" {
		return strings.Join(q[1:], ".")
	}
	return strings.Join(q, ".")
}

// QualifiedName resolves a Name or Attribute chain through import and
// builtin bindings. The head name uses the resolution recorded during
// traversal when present and a fresh lookup otherwise.
func (m *Model) QualifiedName(exprs *ast.Exprs, id ast.ExprID) (QualifiedName, bool) {
	var tail []string
	for exprs.Kind(id) == ast.ExprAttribute {
		a, _ := exprs.Attribute(id)
		tail = append(tail, a.Attr.Name)
		id = a.Value
	}
	if exprs.Kind(id) != ast.ExprName {
		return nil, false
	}
	slices.Reverse(tail)
	name := exprs.NameOf(id)
	r, ok := m.resolved[id]
	if !ok {
		r = m.Resolve(name)
	}
	if r.Kind != Resolved {
		return nil, false
	}
	head, ok := m.bindingPath(r.Binding)
	if !ok {
		return nil, false
	}
	return append(head, tail...), true
}

// BindingPath returns the qualified path a binding stands for.
func (m *Model) BindingPath(id BindingID) (QualifiedName, bool) {
	return m.bindingPath(id)
}

func (m *Model) bindingPath(id BindingID) (QualifiedName, bool) {
	b := m.Binding(id)
	if b == nil {
		return nil, false
	}
	switch b.Kind {
	case BindBuiltin:
		return QualifiedName{"", b.Name}, true
	case BindSubmoduleImport:
		// `import a.b.c` binds `a`, attributes continue from there
		return QualifiedName{b.Name}, true
	case BindImport, BindFromImport, BindFutureImport:
		if b.Import == nil {
			return nil, false
		}
		return splitQualified(b.Import), true
	}
	return nil, false
}

func splitQualified(info *ImportInfo) QualifiedName {
	if strings.HasPrefix(info.Module, ".") {
		// относительный модуль остаётся одним сегментом
		out := QualifiedName{info.Module}
		if info.Member != "" {
			out = append(out, info.Member)
		}
		return out
	}
	return strings.Split(info.Qualified, ".")
}
