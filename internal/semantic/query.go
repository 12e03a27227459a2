package semantic

import (
	"iter"

	"krait/internal/ast"
)

// Query is the read-only view of the model handed to rules.
type Query interface {
	ModuleScope() ScopeID
	CurrentScope() ScopeID
	CurrentScopeKind() ScopeKind
	IsModuleScope() bool
	Scope(id ScopeID) *Scope
	Binding(id BindingID) *Binding
	Reference(id ReferenceID) *Reference

	Resolve(name string) Resolution
	ResolveIn(scope ScopeID, name string) Resolution
	ResolvedName(expr ast.ExprID) (Resolution, bool)
	QualifiedName(exprs *ast.Exprs, id ast.ExprID) (QualifiedName, bool)
	BindingPath(id BindingID) (QualifiedName, bool)

	Lookup(name string) (BindingID, bool)
	LookupIn(scope ScopeID, name string) (BindingID, bool)
	Bindings(scope ScopeID) []BindingID
	UnusedBindings(scope ScopeID) []BindingID
	AllBindings() iter.Seq2[BindingID, *Binding]
	References(scope ScopeID) []ReferenceID
	Unresolved() []ReferenceID
	Ancestors(scope ScopeID) []ScopeID
	ShadowedBinding(id BindingID) (BindingID, bool)
	ShadowedBindings(scope ScopeID) []Shadow
	GlobalDeclaration(scope ScopeID, name string) (Declaration, bool)
	Declarations(scope ScopeID) []Declaration
	IsMethod(scope ScopeID) bool
	EnclosingFunction(scope ScopeID) (ScopeID, bool)

	CurrentBranch() BranchID
	SameBranch(a, b BranchID) bool
	DifferentBranches(a, b BranchID) bool
	Flags() Flags
	Has(mask Flags) bool
}

var _ Query = (*Model)(nil)
