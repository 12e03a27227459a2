package semantic

import (
	"slices"
	"testing"

	"krait/internal/ast"
	"krait/internal/source"
)

func at(start uint32) source.Span { return source.Span{Start: start, End: start + 1} }

func TestModelStartsInModuleScope(t *testing.T) {
	m := New(Options{Builtins: []string{"_"}})
	if !m.IsModuleScope() || m.Depth() != 1 {
		t.Fatalf("IsModuleScope = %v, Depth = %d", m.IsModuleScope(), m.Depth())
	}
	for _, name := range []string{"print", "__file__", "_"} {
		r := m.Resolve(name)
		if r.Kind != Resolved || m.Binding(r.Binding).Kind != BindBuiltin {
			t.Fatalf("Resolve(%s) = %+v", name, r)
		}
	}
	if r := m.Resolve("nope"); r.Kind != NotFound {
		t.Fatalf("Resolve(nope) = %s", r.Kind)
	}
}

func TestScopeStackBalance(t *testing.T) {
	m := New(Options{})
	m.EnterScope(ScopeClass, Owner{}, source.Span{})
	m.EnterScope(ScopeFunction, Owner{}, source.Span{})
	if m.Depth() != 3 || m.Balanced() {
		t.Fatalf("Depth = %d, Balanced = %v", m.Depth(), m.Balanced())
	}
	fn, _ := m.ExitScope()
	cls, _ := m.ExitScope()
	mod, _ := m.ExitScope()
	if m.Depth() != 0 || !m.Balanced() {
		t.Fatalf("after exits Depth = %d, Balanced = %v", m.Depth(), m.Balanced())
	}
	if !slices.Equal(m.ExitOrder(), []ScopeID{fn, cls, mod}) {
		t.Fatalf("ExitOrder = %v", m.ExitOrder())
	}
	if !slices.Equal(m.Scope(mod).Children, []ScopeID{cls}) {
		t.Fatalf("module children = %v", m.Scope(mod).Children)
	}
}

func TestOuterBindingIsShadowedNotReplaced(t *testing.T) {
	m := New(Options{})
	outer := m.Bind("x", BindAssignment, at(0), Source{})
	m.EnterScope(ScopeFunction, Owner{}, source.Span{})
	inner := m.Bind("x", BindAssignment, at(10), Source{})

	if got := m.Binding(inner).Shadows; got != outer {
		t.Fatalf("inner.Shadows = %d, want %d", got, outer)
	}
	if _, ok := m.ShadowedBinding(inner); ok {
		t.Fatalf("outer-scope shadowing must not be recorded as same-scope")
	}
	m.ExitScope()
	if r := m.Resolve("x"); r.Binding != outer {
		t.Fatalf("module x resolves to %d, want %d", r.Binding, outer)
	}
}

func TestSameScopeShadowCopiesReferences(t *testing.T) {
	m := New(Options{})
	first := m.Bind("x", BindAssignment, at(0), Source{})
	m.ResolveLoad("x", at(5), ast.ExprID(1))
	second := m.Bind("x", BindAssignment, at(10), Source{})

	if prev, ok := m.ShadowedBinding(second); !ok || prev != first {
		t.Fatalf("ShadowedBinding = %d, %v", prev, ok)
	}
	if !m.Binding(second).IsUsed() {
		t.Fatalf("references of the shadowed binding must carry over")
	}
	if got := m.ShadowedBindings(m.ModuleScope()); len(got) != 1 || got[0] != (Shadow{Binding: second, Shadowed: first}) {
		t.Fatalf("ShadowedBindings = %v", got)
	}
	// builtins do not pass references on
	m.ResolveLoad("len", at(20), ast.ExprID(2))
	own := m.Bind("len", BindAssignment, at(30), Source{})
	if m.Binding(own).IsUsed() {
		t.Fatalf("binding shadowing a builtin inherited references")
	}
}

func TestClassScopeSkippedForNestedScopes(t *testing.T) {
	m := New(Options{})
	m.EnterScope(ScopeClass, Owner{}, source.Span{})
	attr := m.Bind("y", BindAssignment, at(0), Source{})
	if r := m.Resolve("y"); r.Binding != attr {
		t.Fatalf("class body must see its own names: %+v", r)
	}
	m.EnterScope(ScopeFunction, Owner{}, source.Span{})
	if r := m.Resolve("y"); r.Kind != NotFound {
		t.Fatalf("method resolved class attribute: %+v", r)
	}
	if r := m.Resolve("__class__"); r.Kind != Implicit {
		t.Fatalf("__class__ in method = %s", r.Kind)
	}
	m.EnterScope(ScopeGenerator, Owner{}, source.Span{})
	if r := m.Resolve("y"); r.Kind != NotFound {
		t.Fatalf("generator in method resolved class attribute: %+v", r)
	}
}

func TestGlobalDeclarationRedirectsBinding(t *testing.T) {
	m := New(Options{})
	if id := m.DeclareGlobal("x", at(0), Source{}); id.IsValid() {
		t.Fatalf("global at module level must be a no-op")
	}
	fn := m.EnterScope(ScopeFunction, Owner{}, source.Span{})
	decl := m.DeclareGlobal("counter", at(10), Source{})
	if r := m.Resolve("counter"); r.Binding != decl {
		t.Fatalf("unassigned global resolves to %+v, want declaration binding", r)
	}
	id := m.Bind("counter", BindAssignment, at(20), Source{})

	b := m.Binding(id)
	if b.Scope != m.ModuleScope() || !b.Flags.Has(BindingViaDeclaration) {
		t.Fatalf("binding scope = %d flags = %b", b.Scope, b.Flags)
	}
	if _, ok := m.LookupIn(fn, "counter"); ok {
		t.Fatalf("declared name leaked into the function scope")
	}
	d, ok := m.GlobalDeclaration(fn, "counter")
	if !ok || !d.Assigned || d.Kind != DeclGlobal {
		t.Fatalf("declaration = %+v, %v", d, ok)
	}
	if r := m.Resolve("counter"); r.Binding != id {
		t.Fatalf("Resolve after assignment = %+v", r)
	}
}

func TestNonlocalTargetsEnclosingFunction(t *testing.T) {
	m := New(Options{})
	outer := m.EnterScope(ScopeFunction, Owner{}, source.Span{})
	m.Bind("n", BindAssignment, at(0), Source{})
	m.EnterScope(ScopeFunction, Owner{}, source.Span{})
	m.DeclareNonlocal("n", at(10), Source{})
	m.DeclareNonlocal("missing", at(12), Source{})
	id := m.Bind("n", BindAssignment, at(20), Source{})

	if m.Binding(id).Scope != outer {
		t.Fatalf("nonlocal assignment bound in scope %d, want %d", m.Binding(id).Scope, outer)
	}
	d, _ := m.GlobalDeclaration(m.CurrentScope(), "missing")
	if d.Target.IsValid() {
		t.Fatalf("nonlocal without binding got target %d", d.Target)
	}
}

func TestDeletionMakesNameUnbound(t *testing.T) {
	m := New(Options{})
	m.Bind("x", BindAssignment, at(0), Source{})
	if r := m.ResolveDel("x", at(4), ast.ExprID(1)); r.Kind != Resolved {
		t.Fatalf("ResolveDel = %s", r.Kind)
	}
	m.Bind("x", BindDeletion, at(4), Source{})
	r := m.ResolveLoad("x", at(8), ast.ExprID(2))
	if r.Kind != Unbound {
		t.Fatalf("load after del = %s", r.Kind)
	}
	if got, _ := m.ResolvedName(ast.ExprID(2)); got != r {
		t.Fatalf("ResolvedName = %+v", got)
	}
}

func TestAnnotationOnlyBindingIsSkipped(t *testing.T) {
	m := New(Options{})
	m.Bind("x", BindAnnotation, at(0), Source{})
	if r := m.Resolve("x"); r.Kind != NotFound {
		t.Fatalf("annotation-only name resolved: %+v", r)
	}
}

func TestStarImportMakesMissesUncertain(t *testing.T) {
	m := New(Options{})
	m.AddStarImport("os")
	r := m.ResolveLoad("path", at(0), ast.ExprID(1))
	if r.Kind != StarImport {
		t.Fatalf("Resolve = %s", r.Kind)
	}
	if len(m.Unresolved()) != 1 {
		t.Fatalf("Unresolved = %v", m.Unresolved())
	}
}

func TestWalrusBindsOutsideGenerator(t *testing.T) {
	m := New(Options{})
	fn := m.EnterScope(ScopeFunction, Owner{}, source.Span{})
	m.EnterScope(ScopeGenerator, Owner{}, source.Span{})
	m.EnterScope(ScopeGenerator, Owner{}, source.Span{})
	id := m.BindNamedExpr("total", at(0), Source{})
	if m.Binding(id).Scope != fn || m.Binding(id).Kind != BindNamedExprAssignment {
		t.Fatalf("walrus binding = %+v", m.Binding(id))
	}
}

func TestUnusedBindings(t *testing.T) {
	m := New(Options{})
	fn := m.EnterScope(ScopeFunction, Owner{}, source.Span{})
	used := m.Bind("a", BindAssignment, at(0), Source{})
	unused := m.Bind("b", BindAssignment, at(2), Source{})
	m.Bind("c", BindDeletion, at(4), Source{})
	m.ResolveLoad("a", at(6), ast.ExprID(1))

	if got := m.UnusedBindings(fn); !slices.Equal(got, []BindingID{unused}) {
		t.Fatalf("UnusedBindings = %v (used %d)", got, used)
	}
	_, bindings := m.ExitScope()
	if len(bindings) != 3 {
		t.Fatalf("ExitScope returned %d bindings", len(bindings))
	}
}

func TestQualifiedNames(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{})
	m := New(Options{})
	sub := m.Bind("os", BindSubmoduleImport, at(0), Source{})
	m.SetImport(sub, ImportInfo{Module: "os.path", Qualified: "os.path"})
	alias := m.Bind("p", BindFromImport, at(1), Source{})
	m.SetImport(alias, ImportInfo{Module: "os", Member: "path", Qualified: "os.path"})
	rel := m.Bind("helper", BindFromImport, at(2), Source{})
	m.SetImport(rel, ImportInfo{Module: "..pkg", Member: "helper", Qualified: "..pkg.helper"})

	attr := func(parts ...string) ast.ExprID {
		id := b.Exprs.NewName(source.Span{}, parts[0], ast.Load)
		for _, p := range parts[1:] {
			id = b.Exprs.NewAttribute(source.Span{}, id, ast.Identifier{Name: p}, ast.Load)
		}
		return id
	}
	tests := []struct {
		expr ast.ExprID
		want string
	}{
		{attr("os", "path", "join"), "os.path.join"},
		{attr("p", "exists"), "os.path.exists"},
		{attr("helper", "run"), "..pkg.helper.run"},
	}
	for _, tt := range tests {
		got, ok := m.QualifiedName(b.Exprs, tt.expr)
		if !ok || !got.Is(tt.want) {
			t.Errorf("QualifiedName = %v, %v; want %s", got, ok, tt.want)
		}
	}
	open, ok := m.QualifiedName(b.Exprs, attr("open"))
	if !ok || !open.IsBuiltin("open") || open.String() != "open" {
		t.Fatalf("builtin open = %v, %v", open, ok)
	}
	m.Bind("local", BindAssignment, at(3), Source{})
	if _, ok := m.QualifiedName(b.Exprs, attr("local", "x")); ok {
		t.Fatalf("plain assignment has no qualified name")
	}
}

func TestBranches(t *testing.T) {
	m := New(Options{})
	body := m.PushBranch()
	nested := m.PushBranch()
	m.PopBranch()
	m.PopBranch()
	orelse := m.PushBranch()
	m.PopBranch()

	if m.CurrentBranch() != NoBranchID {
		t.Fatalf("CurrentBranch = %d after pops", m.CurrentBranch())
	}
	if !m.DifferentBranches(body, orelse) || !m.DifferentBranches(nested, orelse) {
		t.Fatalf("sibling arms must be different branches")
	}
	if m.DifferentBranches(body, nested) || m.DifferentBranches(NoBranchID, orelse) {
		t.Fatalf("nested arms share a branch path")
	}
	if !m.SameBranch(body, body) || m.SameBranch(body, nested) {
		t.Fatalf("SameBranch compares identity")
	}
}

func TestSnapshotRestore(t *testing.T) {
	m := New(Options{})
	old := m.PushFlags(InLoop)
	m.PushBranch()
	snap := m.Snapshot()
	m.RestoreFlags(old)
	m.PopBranch()
	m.EnterScope(ScopeFunction, Owner{}, source.Span{})

	m.Restore(snap)
	if !m.Has(InLoop) || m.CurrentBranch() != snap.Branch || !m.IsModuleScope() {
		t.Fatalf("Restore did not return to %+v", snap)
	}
}

func TestResolveExports(t *testing.T) {
	m := New(Options{})
	imp := m.Bind("json", BindImport, at(0), Source{})
	m.SetImport(imp, ImportInfo{Module: "json", Qualified: "json"})
	all := m.Bind("__all__", BindExport, at(10), Source{})
	m.SetExports(all, []ExportName{{Name: "json", Span: at(12)}, {Name: "missing", Span: at(20)}})

	missing := m.ResolveExports()
	if len(missing) != 1 || missing[0].Name != "missing" {
		t.Fatalf("ResolveExports = %v", missing)
	}
	if !m.Binding(imp).IsUsed() {
		t.Fatalf("exported import should count as used")
	}
}

func TestUnboundExceptionRestoresPriorBinding(t *testing.T) {
	m := New(Options{})
	prior := m.Bind("e", BindAssignment, at(0), Source{})
	m.Bind("e", BindBoundException, at(10), Source{})
	m.UnbindException("e", at(10), Source{}, prior)
	if r := m.Resolve("e"); r.Kind != Resolved || r.Binding != prior {
		t.Fatalf("Resolve(e) after handler = %+v, want %d", r, prior)
	}

	m.Bind("err", BindBoundException, at(20), Source{})
	m.UnbindException("err", at(20), Source{}, NoBindingID)
	if r := m.Resolve("err"); r.Kind != Unbound {
		t.Fatalf("Resolve(err) = %s, want unbound", r.Kind)
	}
}
