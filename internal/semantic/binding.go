package semantic

import (
	"krait/internal/ast"
	"krait/internal/source"
)

// BindingKind says how a name was introduced.
type BindingKind uint8

const (
	BindInvalid BindingKind = iota
	// BindAnnotation is `x: int` without a value.
	BindAnnotation
	BindArgument
	BindNamedExprAssignment
	BindAssignment
	BindUnpackedAssignment
	BindAnnotatedAssignment
	BindLoopVar
	BindWithItemVar
	BindGlobal
	BindNonlocal
	BindBuiltin
	BindClassDefinition
	BindFunctionDefinition
	// BindExport is an `__all__` assignment.
	BindExport
	BindFutureImport
	BindImport
	BindFromImport
	// BindSubmoduleImport is `import a.b.c`, which binds `a`.
	BindSubmoduleImport
	BindDeletion
	BindBoundException
	// BindUnboundException marks the implicit `del e` at the end of a handler.
	BindUnboundException
)

var bindingKindNames = [...]string{
	BindInvalid:             "invalid",
	BindAnnotation:          "annotation",
	BindArgument:            "argument",
	BindNamedExprAssignment: "named-expr-assignment",
	BindAssignment:          "assignment",
	BindUnpackedAssignment:  "unpacked-assignment",
	BindAnnotatedAssignment: "annotated-assignment",
	BindLoopVar:             "loop-var",
	BindWithItemVar:         "with-item-var",
	BindGlobal:              "global",
	BindNonlocal:            "nonlocal",
	BindBuiltin:             "builtin",
	BindClassDefinition:     "class-definition",
	BindFunctionDefinition:  "function-definition",
	BindExport:              "export",
	BindFutureImport:        "future-import",
	BindImport:              "import",
	BindFromImport:          "from-import",
	BindSubmoduleImport:     "submodule-import",
	BindDeletion:            "deletion",
	BindBoundException:      "bound-exception",
	BindUnboundException:    "unbound-exception",
}

func (k BindingKind) String() string {
	if int(k) < len(bindingKindNames) {
		return bindingKindNames[k]
	}
	return "invalid"
}

// IsImport reports the import binding kinds.
func (k BindingKind) IsImport() bool {
	switch k {
	case BindImport, BindFromImport, BindSubmoduleImport, BindFutureImport:
		return true
	}
	return false
}

// IsUnbound reports kinds that make the name unbound again.
func (k BindingKind) IsUnbound() bool {
	return k == BindDeletion || k == BindUnboundException
}

// IsAssignment reports kinds produced by plain assignment forms.
func (k BindingKind) IsAssignment() bool {
	switch k {
	case BindAssignment, BindUnpackedAssignment, BindAnnotatedAssignment, BindNamedExprAssignment:
		return true
	}
	return false
}

// BindingFlags carry context captured when a binding is created.
type BindingFlags uint8

const (
	BindingPrivate BindingFlags = 1 << iota
	BindingInExceptHandler
	BindingInTypeCheckingBlock
	// BindingViaDeclaration marks bindings redirected by global/nonlocal.
	BindingViaDeclaration
	BindingUnpacked
	BindingUnreachable
)

func (f BindingFlags) Has(mask BindingFlags) bool { return f&mask == mask }

// Source is the syntax that created a binding.
type Source struct {
	Stmt ast.StmtID
	Expr ast.ExprID
}

// ImportInfo describes what an import binding refers to.
type ImportInfo struct {
	// Module is the module as written, relative imports keep their dots.
	Module string
	// Member is the imported name of a from-import.
	Member string
	// Qualified is the full dotted path the binding stands for.
	Qualified string
}

// ExportName is one string literal of an `__all__` list.
type ExportName struct {
	Name string
	Span source.Span
}

// Binding is one introduction of a name.
type Binding struct {
	Name   string
	Kind   BindingKind
	Scope  ScopeID
	Span   source.Span
	Source Source
	Branch BranchID
	Flags  BindingFlags

	References []ReferenceID
	Import     *ImportInfo
	Exports    []ExportName
	// Shadows is the binding of an enclosing scope this one hides.
	Shadows BindingID
	// Restores is the binding an unbound-exception marker brings back.
	Restores BindingID
}

// IsUsed reports whether any reference resolved to this binding.
func (b *Binding) IsUsed() bool { return len(b.References) > 0 }

// IsPrivate reports names starting with an underscore.
func (b *Binding) IsPrivate() bool { return b.Flags.Has(BindingPrivate) }

// ModuleName returns the dotted module an import binding refers to.
func (b *Binding) ModuleName() string {
	if b.Import == nil {
		return ""
	}
	return b.Import.Module
}
