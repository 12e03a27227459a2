package semantic

import (
	"slices"

	"krait/internal/ast"
	"krait/internal/source"
)

// ScopeKind enumerates lexical scope flavours.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeModule
	ScopeClass
	ScopeFunction
	ScopeLambda
	ScopeGenerator
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	case ScopeLambda:
		return "lambda"
	case ScopeGenerator:
		return "generator"
	default:
		return "invalid"
	}
}

// IsFunctionLike reports scopes that hold locals of a call frame.
func (k ScopeKind) IsFunctionLike() bool {
	return k == ScopeFunction || k == ScopeLambda
}

// Owner is the syntax node that opened a scope. Module scopes have no owner.
type Owner struct {
	Stmt ast.StmtID
	Expr ast.ExprID
}

// DeclKind distinguishes global and nonlocal statements.
type DeclKind uint8

const (
	DeclGlobal DeclKind = iota + 1
	DeclNonlocal
)

func (k DeclKind) String() string {
	if k == DeclNonlocal {
		return "nonlocal"
	}
	return "global"
}

// Declaration is one `global` or `nonlocal` name in a scope.
type Declaration struct {
	Name string
	Kind DeclKind
	Span source.Span
	// Binding is the Global/Nonlocal binding created by the statement.
	Binding BindingID
	// Target is the scope assignments are redirected to; NoScopeID when a
	// nonlocal name has no enclosing binding.
	Target ScopeID
	// Assigned is set once the name is bound through the declaration.
	Assigned bool
}

// Shadow pairs a binding with the same-scope binding it replaced.
type Shadow struct {
	Binding  BindingID
	Shadowed BindingID
}

// Scope is one lexical scope of the module.
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	Owner  Owner
	Span   source.Span

	// StarImports lists modules imported with `from m import *`.
	StarImports []string
	Children    []ScopeID

	bindings map[string]BindingID
	names    []string // порядок первой вставки
	shadowed map[BindingID]BindingID
	shadows  []Shadow
	decls    map[string]int
	declList []Declaration
	refs     []ReferenceID
	exited   bool
}

func newScope(kind ScopeKind, parent ScopeID, owner Owner, span source.Span) Scope {
	return Scope{
		Kind:     kind,
		Parent:   parent,
		Owner:    owner,
		Span:     span,
		bindings: make(map[string]BindingID),
		shadowed: make(map[BindingID]BindingID),
		decls:    make(map[string]int),
	}
}

// Get returns the latest binding of name in this scope.
func (s *Scope) Get(name string) (BindingID, bool) {
	id, ok := s.bindings[name]
	return id, ok
}

// Names returns bound names in first-insertion order.
func (s *Scope) Names() []string {
	return slices.Clone(s.names)
}

// Len reports the number of distinct bound names.
func (s *Scope) Len() int { return len(s.names) }

// HasStarImport reports whether a wildcard import happened in the scope.
func (s *Scope) HasStarImport() bool { return len(s.StarImports) > 0 }

// Exited reports whether the scope was popped.
func (s *Scope) Exited() bool { return s.exited }

func (s *Scope) declaration(name string) (Declaration, bool) {
	idx, ok := s.decls[name]
	if !ok {
		return Declaration{}, false
	}
	return s.declList[idx], true
}
