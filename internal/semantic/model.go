package semantic

import (
	"iter"
	"strings"

	"krait/internal/ast"
	"krait/internal/source"
)

// Options configures model construction.
type Options struct {
	// Builtins are extra names treated as builtins (lint.builtins).
	Builtins []string
	// Universe replaces the default Python builtins when non-nil.
	Universe []string
	// Span is the span of the module, used for the module scope.
	Span source.Span
}

// Model tracks scopes, bindings, references and branches of one module.
// It is built incrementally by the traversal and dropped with the module.
type Model struct {
	scopes   *ast.Arena[Scope]
	bindings *ast.Arena[Binding]
	refs     *ast.Arena[Reference]
	branches *ast.Arena[Branch]

	module  ScopeID
	current ScopeID
	branch  BranchID
	flags   Flags

	enters int
	exits  int

	resolved   map[ast.ExprID]Resolution
	unresolved []ReferenceID
	exitOrder  []ScopeID
}

// New creates a model whose module scope is already entered and populated
// with builtin bindings.
func New(opts Options) *Model {
	m := &Model{
		scopes:   ast.NewArena[Scope](16),
		bindings: ast.NewArena[Binding](256),
		refs:     ast.NewArena[Reference](256),
		branches: ast.NewArena[Branch](16),
		resolved: make(map[ast.ExprID]Resolution),
	}
	m.module = m.EnterScope(ScopeModule, Owner{}, opts.Span)
	universe := opts.Universe
	if universe == nil {
		universe = PythonBuiltins
	}
	for _, names := range [][]string{universe, MagicGlobals, opts.Builtins} {
		for _, name := range names {
			if _, ok := m.Scope(m.module).Get(name); ok {
				continue
			}
			m.bindIn(m.module, name, BindBuiltin, source.Span{}, Source{})
		}
	}
	return m
}

// ModuleScope returns the root scope.
func (m *Model) ModuleScope() ScopeID { return m.module }

// CurrentScope returns the innermost active scope.
func (m *Model) CurrentScope() ScopeID { return m.current }

// CurrentScopeKind returns the kind of the current scope.
func (m *Model) CurrentScopeKind() ScopeKind {
	if sc := m.Scope(m.current); sc != nil {
		return sc.Kind
	}
	return ScopeInvalid
}

// IsModuleScope reports whether traversal is at module level.
func (m *Model) IsModuleScope() bool { return m.current == m.module }

// Scope returns scope data or nil for an invalid ID.
func (m *Model) Scope(id ScopeID) *Scope { return m.scopes.Get(uint32(id)) }

// Binding returns binding data or nil for an invalid ID.
func (m *Model) Binding(id BindingID) *Binding { return m.bindings.Get(uint32(id)) }

// Reference returns reference data or nil for an invalid ID.
func (m *Model) Reference(id ReferenceID) *Reference { return m.refs.Get(uint32(id)) }

// EnterScope opens a child of the current scope and makes it current.
func (m *Model) EnterScope(kind ScopeKind, owner Owner, span source.Span) ScopeID {
	parent := m.current
	id := ScopeID(m.scopes.Allocate(newScope(kind, parent, owner, span)))
	if p := m.Scope(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	m.current = id
	m.enters++
	return id
}

// ExitScope closes the current scope and returns it with its final
// bindings in name insertion order.
func (m *Model) ExitScope() (ScopeID, []BindingID) {
	id := m.current
	sc := m.Scope(id)
	if sc == nil {
		return NoScopeID, nil
	}
	sc.exited = true
	m.exitOrder = append(m.exitOrder, id)
	m.current = sc.Parent
	m.exits++
	return id, m.Bindings(id)
}

// ExitOrder lists scopes in the order they were closed.
func (m *Model) ExitOrder() []ScopeID { return m.exitOrder }

// Depth counts the open lexical scopes from the current one up to the module.
func (m *Model) Depth() int {
	depth := 0
	for id := m.current; id.IsValid(); id = m.Scope(id).Parent {
		depth++
	}
	return depth
}

// Balanced reports whether every entered scope has been exited.
func (m *Model) Balanced() bool { return m.enters == m.exits }

// Bind introduces name in the current scope. A global or nonlocal
// declaration of the name in the scope redirects the binding to the
// declaration target.
func (m *Model) Bind(name string, kind BindingKind, span source.Span, src Source) BindingID {
	return m.bindFrom(m.current, name, kind, span, src)
}

// BindNamedExpr binds a walrus target in the nearest non-generator scope.
func (m *Model) BindNamedExpr(name string, span source.Span, src Source) BindingID {
	target := m.current
	for sc := m.Scope(target); sc != nil && sc.Kind == ScopeGenerator; sc = m.Scope(target) {
		target = sc.Parent
	}
	if !target.IsValid() {
		target = m.current
	}
	return m.bindFrom(target, name, BindNamedExprAssignment, span, src)
}

func (m *Model) bindFrom(scope ScopeID, name string, kind BindingKind, span source.Span, src Source) BindingID {
	sc := m.Scope(scope)
	if sc == nil {
		return NoBindingID
	}
	if idx, ok := sc.decls[name]; ok {
		decl := &sc.declList[idx]
		if decl.Target.IsValid() && decl.Target != scope {
			decl.Assigned = true
			id := m.bindIn(decl.Target, name, kind, span, src)
			m.Binding(id).Flags |= BindingViaDeclaration
			return id
		}
		decl.Assigned = true
	}
	return m.bindIn(scope, name, kind, span, src)
}

func (m *Model) bindIn(scope ScopeID, name string, kind BindingKind, span source.Span, src Source) BindingID {
	sc := m.Scope(scope)
	b := Binding{
		Name:   name,
		Kind:   kind,
		Scope:  scope,
		Span:   span,
		Source: src,
		Branch: m.branch,
		Flags:  m.bindingFlags(name, kind),
	}
	prev, had := sc.bindings[name]
	if !had && sc.Parent.IsValid() {
		if r := m.resolveFrom(sc.Parent, name, true); r.Binding.IsValid() {
			b.Shadows = r.Binding
		}
	}
	id := BindingID(m.bindings.Allocate(b))
	if had {
		pb := m.Binding(prev)
		if pb.Kind != BindBuiltin && !pb.Kind.IsUnbound() {
			m.Binding(id).References = append([]ReferenceID(nil), pb.References...)
		}
		sc.shadowed[id] = prev
		sc.shadows = append(sc.shadows, Shadow{Binding: id, Shadowed: prev})
	} else {
		sc.names = append(sc.names, name)
	}
	sc.bindings[name] = id
	return id
}

func (m *Model) bindingFlags(name string, kind BindingKind) BindingFlags {
	var f BindingFlags
	if strings.HasPrefix(name, "_") {
		f |= BindingPrivate
	}
	if m.flags.Has(InExceptHandler) {
		f |= BindingInExceptHandler
	}
	if m.flags.Has(InTypeCheckingBlock) {
		f |= BindingInTypeCheckingBlock
	}
	if m.flags.Has(Unreachable) {
		f |= BindingUnreachable
	}
	if kind == BindUnpackedAssignment {
		f |= BindingUnpacked
	}
	return f
}

// UnbindException ends the lifetime of an `except ... as name` binding.
// A binding of name that existed before the handler becomes visible again.
func (m *Model) UnbindException(name string, span source.Span, src Source, restores BindingID) BindingID {
	id := m.Bind(name, BindUnboundException, span, src)
	if b := m.Binding(id); b != nil && restores != id {
		b.Restores = restores
	}
	return id
}

// SetImport attaches import metadata to a binding.
func (m *Model) SetImport(id BindingID, info ImportInfo) {
	if b := m.Binding(id); b != nil {
		b.Import = &info
	}
}

// SetExports attaches `__all__` names to an export binding.
func (m *Model) SetExports(id BindingID, names []ExportName) {
	if b := m.Binding(id); b != nil {
		b.Exports = names
	}
}

// AddStarImport records `from module import *` in the current scope.
func (m *Model) AddStarImport(module string) {
	if sc := m.Scope(m.current); sc != nil {
		sc.StarImports = append(sc.StarImports, module)
	}
}

// Resolve looks name up from the current scope outwards without recording
// anything. Class scopes are consulted only when they are the current scope.
func (m *Model) Resolve(name string) Resolution {
	return m.resolveFrom(m.current, name, false)
}

// ResolveIn resolves name as if scope were current.
func (m *Model) ResolveIn(scope ScopeID, name string) Resolution {
	return m.resolveFrom(scope, name, false)
}

// resolveFrom walks the scope chain. skipClass drops class scopes from the
// start too, used when the lookup originates in a nested scope.
func (m *Model) resolveFrom(start ScopeID, name string, skipClass bool) Resolution {
	star := false
	seenFunction := skipClass
	for id := start; id.IsValid(); {
		sc := m.Scope(id)
		if sc.Kind == ScopeClass && (id != start || skipClass) {
			if name == "__class__" && seenFunction {
				return Resolution{Kind: Implicit}
			}
			id = sc.Parent
			continue
		}
		decl, declared := sc.declaration(name)
		if declared && decl.Target.IsValid() && decl.Target != id {
			return m.lookupDeclared(decl)
		}
		if bid, ok := sc.bindings[name]; ok {
			if r, ok := m.classify(bid); ok {
				return r
			}
		}
		if declared {
			return Resolution{Kind: Resolved, Binding: decl.Binding}
		}
		if sc.HasStarImport() {
			star = true
		}
		if sc.Kind.IsFunctionLike() {
			seenFunction = true
		}
		id = sc.Parent
	}
	if star {
		return Resolution{Kind: StarImport}
	}
	return Resolution{Kind: NotFound}
}

// classify maps a binding to a resolution; annotation-only bindings do not
// resolve and the walk continues outwards.
func (m *Model) classify(id BindingID) (Resolution, bool) {
	b := m.Binding(id)
	switch {
	case b == nil, b.Kind == BindAnnotation:
		return Resolution{}, false
	case b.Kind == BindUnboundException && b.Restores.IsValid():
		return m.classify(b.Restores)
	case b.Kind.IsUnbound():
		return Resolution{Kind: Unbound, Binding: id}, true
	default:
		return Resolution{Kind: Resolved, Binding: id}, true
	}
}

// ResolveLoad resolves a name read, records the reference on the binding
// and remembers the resolution for expr.
func (m *Model) ResolveLoad(name string, span source.Span, expr ast.ExprID) Resolution {
	r := m.Resolve(name)
	m.record(name, span, expr, ast.Load, r)
	return r
}

// ResolveDel resolves the target of `del name` in the current scope only.
func (m *Model) ResolveDel(name string, span source.Span, expr ast.ExprID) Resolution {
	r := Resolution{Kind: NotFound}
	sc := m.Scope(m.current)
	if decl, ok := sc.declaration(name); ok && decl.Target.IsValid() {
		r = m.lookupDeclared(decl)
	} else if bid, ok := sc.bindings[name]; ok {
		if c, ok := m.classify(bid); ok {
			r = c
		}
	}
	if r.Kind == NotFound && sc.HasStarImport() {
		r.Kind = StarImport
	}
	m.record(name, span, expr, ast.Del, r)
	return r
}

func (m *Model) lookupDeclared(decl Declaration) Resolution {
	if target := m.Scope(decl.Target); target != nil {
		if bid, ok := target.bindings[decl.Name]; ok {
			if r, ok := m.classify(bid); ok {
				return r
			}
		}
	}
	return Resolution{Kind: Resolved, Binding: decl.Binding}
}

func (m *Model) record(name string, span source.Span, expr ast.ExprID, ctx ast.Context, r Resolution) ReferenceID {
	ref := Reference{
		Name:       name,
		Scope:      m.current,
		Span:       span,
		Expr:       expr,
		Ctx:        ctx,
		Binding:    r.Binding,
		Resolution: r.Kind,
		Flags:      m.flags,
	}
	id := ReferenceID(m.refs.Allocate(ref))
	if b := m.Binding(r.Binding); b != nil && r.Kind == Resolved {
		b.References = append(b.References, id)
	}
	if sc := m.Scope(m.current); sc != nil {
		sc.refs = append(sc.refs, id)
	}
	if expr.IsValid() {
		m.resolved[expr] = r
	}
	if r.Kind == NotFound || r.Kind == StarImport || r.Kind == Unbound {
		m.unresolved = append(m.unresolved, id)
	}
	return id
}

// ResolvedName returns the resolution recorded for a name expression.
func (m *Model) ResolvedName(expr ast.ExprID) (Resolution, bool) {
	r, ok := m.resolved[expr]
	return r, ok
}

// Unresolved lists references that found no live binding, in visit order.
func (m *Model) Unresolved() []ReferenceID { return m.unresolved }

// References lists the references recorded while scope was current.
func (m *Model) References(scope ScopeID) []ReferenceID {
	if sc := m.Scope(scope); sc != nil {
		return sc.refs
	}
	return nil
}

// DeclareGlobal records `global name` in the current scope. At module
// level the statement has no effect and NoBindingID is returned.
func (m *Model) DeclareGlobal(name string, span source.Span, src Source) BindingID {
	if m.IsModuleScope() {
		return NoBindingID
	}
	return m.declare(DeclGlobal, name, span, src, m.module)
}

// DeclareNonlocal records `nonlocal name`. The target is the nearest
// enclosing function scope that binds the name.
func (m *Model) DeclareNonlocal(name string, span source.Span, src Source) BindingID {
	target := NoScopeID
	if sc := m.Scope(m.current); sc != nil {
		for id := sc.Parent; id.IsValid() && id != m.module; id = m.Scope(id).Parent {
			parent := m.Scope(id)
			if !parent.Kind.IsFunctionLike() {
				continue
			}
			if _, ok := parent.bindings[name]; ok {
				target = id
				break
			}
			if decl, ok := parent.declaration(name); ok && decl.Kind == DeclNonlocal && decl.Target.IsValid() {
				target = decl.Target
				break
			}
		}
	}
	return m.declare(DeclNonlocal, name, span, src, target)
}

func (m *Model) declare(kind DeclKind, name string, span source.Span, src Source, target ScopeID) BindingID {
	sc := m.Scope(m.current)
	bkind := BindGlobal
	if kind == DeclNonlocal {
		bkind = BindNonlocal
	}
	b := Binding{
		Name:   name,
		Kind:   bkind,
		Scope:  m.current,
		Span:   span,
		Source: src,
		Branch: m.branch,
		Flags:  m.bindingFlags(name, bkind),
	}
	id := BindingID(m.bindings.Allocate(b))
	decl := Declaration{Name: name, Kind: kind, Span: span, Binding: id, Target: target}
	if idx, ok := sc.decls[name]; ok {
		decl.Assigned = sc.declList[idx].Assigned
	}
	sc.declList = append(sc.declList, decl)
	sc.decls[name] = len(sc.declList) - 1
	return id
}

// GlobalDeclaration returns the latest global/nonlocal declaration of name.
func (m *Model) GlobalDeclaration(scope ScopeID, name string) (Declaration, bool) {
	if sc := m.Scope(scope); sc != nil {
		return sc.declaration(name)
	}
	return Declaration{}, false
}

// Declarations returns every declaration of scope in source order,
// including superseded ones.
func (m *Model) Declarations(scope ScopeID) []Declaration {
	if sc := m.Scope(scope); sc != nil {
		return sc.declList
	}
	return nil
}

// Lookup returns the binding of name in the current scope only.
func (m *Model) Lookup(name string) (BindingID, bool) {
	return m.LookupIn(m.current, name)
}

// LookupIn returns the latest binding of name in scope.
func (m *Model) LookupIn(scope ScopeID, name string) (BindingID, bool) {
	if sc := m.Scope(scope); sc != nil {
		return sc.Get(name)
	}
	return NoBindingID, false
}

// Bindings returns the latest binding of every name of scope in insertion order.
func (m *Model) Bindings(scope ScopeID) []BindingID {
	sc := m.Scope(scope)
	if sc == nil {
		return nil
	}
	out := make([]BindingID, 0, len(sc.names))
	for _, name := range sc.names {
		out = append(out, sc.bindings[name])
	}
	return out
}

// UnusedBindings returns bindings of scope that no reference reached.
func (m *Model) UnusedBindings(scope ScopeID) []BindingID {
	var out []BindingID
	for _, id := range m.Bindings(scope) {
		b := m.Binding(id)
		switch b.Kind {
		case BindBuiltin, BindDeletion, BindUnboundException, BindExport, BindGlobal, BindNonlocal:
			continue
		}
		if !b.IsUsed() {
			out = append(out, id)
		}
	}
	return out
}

// AllBindings iterates every binding in creation order.
func (m *Model) AllBindings() iter.Seq2[BindingID, *Binding] {
	return func(yield func(BindingID, *Binding) bool) {
		data := m.bindings.Slice()
		for i := range data {
			if !yield(BindingID(i+1), &data[i]) { // #nosec G115 -- bounded by Allocate
				return
			}
		}
	}
}

// Ancestors returns scope and its parents up to the module scope.
func (m *Model) Ancestors(scope ScopeID) []ScopeID {
	var out []ScopeID
	for id := scope; id.IsValid(); id = m.Scope(id).Parent {
		out = append(out, id)
	}
	return out
}

// ShadowedBinding returns the same-scope binding that id replaced.
func (m *Model) ShadowedBinding(id BindingID) (BindingID, bool) {
	b := m.Binding(id)
	if b == nil {
		return NoBindingID, false
	}
	prev, ok := m.Scope(b.Scope).shadowed[id]
	return prev, ok
}

// ShadowedBindings lists same-scope shadowing pairs in creation order.
func (m *Model) ShadowedBindings(scope ScopeID) []Shadow {
	if sc := m.Scope(scope); sc != nil {
		return sc.shadows
	}
	return nil
}

// IsMethod reports function scopes defined directly in a class body.
func (m *Model) IsMethod(scope ScopeID) bool {
	sc := m.Scope(scope)
	if sc == nil || sc.Kind != ScopeFunction {
		return false
	}
	parent := m.Scope(sc.Parent)
	return parent != nil && parent.Kind == ScopeClass
}

// EnclosingFunction returns the nearest function or lambda scope.
func (m *Model) EnclosingFunction(scope ScopeID) (ScopeID, bool) {
	for _, id := range m.Ancestors(scope) {
		if m.Scope(id).Kind.IsFunctionLike() {
			return id, true
		}
	}
	return NoScopeID, false
}

// ResolveExports marks module names listed in `__all__` as used and
// returns export names that are not bound at module level.
func (m *Model) ResolveExports() []ExportName {
	sc := m.Scope(m.module)
	var missing []ExportName
	for _, id := range m.Bindings(m.module) {
		b := m.Binding(id)
		if b.Kind != BindExport {
			continue
		}
		for _, export := range b.Exports {
			bid, ok := sc.bindings[export.Name]
			if ok && m.Binding(bid).Kind != BindBuiltin && !m.Binding(bid).Kind.IsUnbound() {
				ref := Reference{Name: export.Name, Scope: m.module, Span: export.Span, Ctx: ast.Load, Binding: bid, Resolution: Resolved}
				rid := ReferenceID(m.refs.Allocate(ref))
				m.Binding(bid).References = append(m.Binding(bid).References, rid)
				continue
			}
			if !sc.HasStarImport() {
				missing = append(missing, export)
			}
		}
	}
	return missing
}

// PushBranch opens a new branch below the current one.
func (m *Model) PushBranch() BranchID {
	id := BranchID(m.branches.Allocate(Branch{Parent: m.branch}))
	m.branch = id
	return id
}

// PopBranch returns to the parent of the current branch.
func (m *Model) PopBranch() {
	if b := m.branches.Get(uint32(m.branch)); b != nil {
		m.branch = b.Parent
	}
}

// CurrentBranch returns the active branch.
func (m *Model) CurrentBranch() BranchID { return m.branch }

// SameBranch reports whether two branch IDs denote the same arm.
func (m *Model) SameBranch(a, b BranchID) bool { return a == b }

// DifferentBranches reports arms that cannot both execute, i.e. neither
// branch is an ancestor of the other.
func (m *Model) DifferentBranches(a, b BranchID) bool {
	return !m.branchWithin(a, b) && !m.branchWithin(b, a)
}

// branchWithin reports whether inner equals outer or is nested in it.
func (m *Model) branchWithin(inner, outer BranchID) bool {
	for id := inner; ; {
		if id == outer {
			return true
		}
		b := m.branches.Get(uint32(id))
		if b == nil {
			return false
		}
		id = b.Parent
	}
}

// Flags returns the active traversal flags.
func (m *Model) Flags() Flags { return m.flags }

// Has reports whether every flag of mask is active.
func (m *Model) Has(mask Flags) bool { return m.flags.Has(mask) }

// PushFlags adds flags and returns the previous set for RestoreFlags.
func (m *Model) PushFlags(add Flags) Flags {
	old := m.flags
	m.flags |= add
	return old
}

// ClearFlags removes flags and returns the previous set.
func (m *Model) ClearFlags(mask Flags) Flags {
	old := m.flags
	m.flags &^= mask
	return old
}

// RestoreFlags reinstates a set returned by PushFlags or ClearFlags.
func (m *Model) RestoreFlags(old Flags) { m.flags = old }

// Snapshot captures the traversal position.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{Scope: m.current, Branch: m.branch, Flags: m.flags}
}

// Restore returns to a captured traversal position.
func (m *Model) Restore(s Snapshot) {
	m.current = s.Scope
	m.branch = s.Branch
	m.flags = s.Flags
}
