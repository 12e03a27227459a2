package semantic

import (
	"krait/internal/ast"
	"krait/internal/source"
)

// Reference is one read or delete of a name.
type Reference struct {
	Name  string
	Scope ScopeID
	Span  source.Span
	Expr  ast.ExprID
	Ctx   ast.Context
	// Binding is the binding the read resolved to, if any.
	Binding    BindingID
	Resolution ResolutionKind
	Flags      Flags
}

// ResolutionKind classifies the outcome of a name lookup.
type ResolutionKind uint8

const (
	NotFound ResolutionKind = iota
	Resolved
	// Unbound means the name was deleted or an exception name was cleared.
	Unbound
	// StarImport means the name may come from a wildcard import.
	StarImport
	// Implicit is `__class__` inside a method.
	Implicit
)

func (k ResolutionKind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case Unbound:
		return "unbound"
	case StarImport:
		return "star-import"
	case Implicit:
		return "implicit"
	default:
		return "not-found"
	}
}

// Resolution is the result of resolving one name.
type Resolution struct {
	Kind    ResolutionKind
	Binding BindingID
}

// Found reports whether the name is known to exist at runtime.
func (r Resolution) Found() bool {
	return r.Kind == Resolved || r.Kind == Implicit
}

// Branch is one arm of a conditional construct.
type Branch struct {
	Parent BranchID
}

// Flags describe the syntactic context of the traversal.
type Flags uint16

const (
	InAnnotation Flags = 1 << iota
	InExceptHandler
	InFinally
	InLoop
	InTypeCheckingBlock
	InBooleanTest
	InAsyncFunction
	Unreachable
	// InDunderAll is set while visiting the value of `__all__ = ...`.
	InDunderAll
)

// Has reports whether every bit of mask is set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Snapshot captures the traversal position for deferred visiting.
type Snapshot struct {
	Scope  ScopeID
	Branch BranchID
	Flags  Flags
}
