package ast

import "strings"

// DottedName flattens a Name or Attribute chain such as `os.path.join`.
func (e *Exprs) DottedName(id ExprID) ([]string, bool) {
	var parts []string
	for {
		ex := e.Get(id)
		if ex == nil {
			return nil, false
		}
		switch ex.Kind {
		case ExprName:
			n, _ := e.Name(id)
			parts = append(parts, n.Name)
			// собраны в обратном порядке
			for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
				parts[i], parts[j] = parts[j], parts[i]
			}
			return parts, true
		case ExprAttribute:
			a, _ := e.Attribute(id)
			parts = append(parts, a.Attr.Name)
			id = a.Value
		default:
			return nil, false
		}
	}
}

// NameOf returns the identifier of a Name expression.
func (e *Exprs) NameOf(id ExprID) string {
	if n, ok := e.Name(id); ok {
		return n.Name
	}
	return ""
}

// IsMutableLiteral reports list, dict and set displays and comprehensions.
func (e *Exprs) IsMutableLiteral(id ExprID) bool {
	switch e.Kind(id) {
	case ExprList, ExprDict, ExprSet, ExprListComp, ExprDictComp, ExprSetComp:
		return true
	}
	return false
}

// IsDunder reports names of the form __x__.
func IsDunder(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// IsPrivate reports names with a single leading underscore.
func IsPrivate(name string) bool {
	return strings.HasPrefix(name, "_") && !IsDunder(name)
}
