package starlark_test

import (
	"context"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"krait/internal/ast"
	"krait/internal/source"
	"krait/internal/starlark"
)

func lower(t *testing.T, src string) (*ast.Module, *source.File) {
	t.Helper()
	file := source.NewFile(1, "defs.bzl", []byte(src))
	mod, err := starlark.Parse(context.Background(), file)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if mod.Dialect != starlark.Dialect {
		t.Fatalf("dialect = %q", mod.Dialect)
	}
	return mod, file
}

func TestHandles(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"rules/defs.bzl", true},
		{"config.star", true},
		{"pkg/BUILD", true},
		{"pkg/BUILD.bazel", true},
		{"WORKSPACE.bazel", true},
		{"main.py", false},
		{"BUILDING.md", false},
	}
	for _, tt := range tests {
		if got := starlark.Handles(tt.path); got != tt.want {
			t.Errorf("Handles(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestUniverse(t *testing.T) {
	u := starlark.Universe()
	if !slices.IsSorted(u) {
		t.Fatalf("universe is not sorted")
	}
	for _, name := range []string{"len", "None", "True", "print"} {
		if _, ok := slices.BinarySearch(u, name); !ok {
			t.Errorf("universe lacks %q", name)
		}
	}
}

func TestLoad(t *testing.T) {
	mod, file := lower(t, "load(\"//tools:defs.bzl\", \"cc_lib\", lib = \"py_lib\")\n")
	if len(mod.Body) != 1 {
		t.Fatalf("body = %d statements", len(mod.Body))
	}
	imp, ok := mod.Tree.Stmts.ImportFrom(mod.Body[0])
	if !ok {
		t.Fatalf("expected import-from, got %s", mod.Tree.Stmts.Kind(mod.Body[0]))
	}
	if imp.Module != "//tools:defs.bzl" || imp.Level != 0 {
		t.Fatalf("module = %q level %d", imp.Module, imp.Level)
	}
	var bound []string
	for _, a := range imp.Names {
		bound = append(bound, a.Name+"->"+a.BoundName())
	}
	if diff := cmp.Diff([]string{"cc_lib->cc_lib", "py_lib->lib"}, bound); diff != "" {
		t.Fatalf("aliases mismatch (-want +got):\n%s", diff)
	}
	if got := file.Text(imp.Names[1].NameSpan); got != "lib" {
		t.Fatalf("bound name span covers %q", got)
	}
}

func TestFunctionParameters(t *testing.T) {
	mod, _ := lower(t, "def rule(name, deps = [], *args, visibility, **kwargs):\n    return name\n")
	fn, ok := mod.Tree.Stmts.FunctionDef(mod.Body[0])
	if !ok {
		t.Fatalf("expected function def, got %s", mod.Tree.Stmts.Kind(mod.Body[0]))
	}
	names := func(ids []ast.ParamID) []string {
		var out []string
		for _, id := range ids {
			out = append(out, mod.Tree.Params.Get(id).Name.Name)
		}
		return out
	}
	p := fn.Params
	if diff := cmp.Diff([]string{"name", "deps"}, names(p.Args)); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"visibility"}, names(p.KwOnly)); diff != "" {
		t.Fatalf("kwonly mismatch (-want +got):\n%s", diff)
	}
	if got := mod.Tree.Params.Get(p.Vararg).Name.Name; got != "args" {
		t.Fatalf("vararg = %q", got)
	}
	if got := mod.Tree.Params.Get(p.Kwarg).Name.Name; got != "kwargs" {
		t.Fatalf("kwarg = %q", got)
	}
	deps := mod.Tree.Params.Get(p.Args[1])
	if !mod.Tree.Exprs.IsMutableLiteral(deps.Default) {
		t.Fatalf("default of deps is %s", mod.Tree.Exprs.Kind(deps.Default))
	}
	if len(fn.Body) != 1 || mod.Tree.Stmts.Kind(fn.Body[0]) != ast.StmtReturn {
		t.Fatalf("body = %v", fn.Body)
	}
}

func TestConstantsBecomeLiterals(t *testing.T) {
	mod, _ := lower(t, "x = True\ny = None\nz = -1\n")
	want := []ast.LiteralKind{ast.LitTrue, ast.LitNone}
	for i, kind := range want {
		a, ok := mod.Tree.Stmts.Assign(mod.Body[i])
		if !ok {
			t.Fatalf("statement %d is %s", i, mod.Tree.Stmts.Kind(mod.Body[i]))
		}
		if !mod.Tree.Exprs.IsLiteral(a.Value, kind) {
			t.Fatalf("statement %d value is %s", i, mod.Tree.Exprs.Kind(a.Value))
		}
		if n, ok := mod.Tree.Exprs.Name(a.Targets[0]); !ok || n.Ctx != ast.Store {
			t.Fatalf("statement %d target is not a stored name", i)
		}
	}
	a, _ := mod.Tree.Stmts.Assign(mod.Body[2])
	if mod.Tree.Exprs.Kind(a.Value) != ast.ExprUnaryOp {
		t.Fatalf("-1 lowered to %s", mod.Tree.Exprs.Kind(a.Value))
	}
}

func TestElifChain(t *testing.T) {
	mod, _ := lower(t, "if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n")
	outer, ok := mod.Tree.Stmts.If(mod.Body[0])
	if !ok || outer.Elif {
		t.Fatalf("outer if = %+v", outer)
	}
	if len(outer.Orelse) != 1 {
		t.Fatalf("orelse = %d statements", len(outer.Orelse))
	}
	inner, ok := mod.Tree.Stmts.If(outer.Orelse[0])
	if !ok || !inner.Elif {
		t.Fatalf("elif arm = %+v", inner)
	}
	if len(inner.Orelse) != 1 {
		t.Fatalf("else arm = %d statements", len(inner.Orelse))
	}
}

func TestCallArguments(t *testing.T) {
	mod, _ := lower(t, "cc_library(\"x\", *srcs, name = \"lib\", **common)\n")
	es, ok := mod.Tree.Stmts.Expr(mod.Body[0])
	if !ok {
		t.Fatalf("expected expression statement")
	}
	call, ok := mod.Tree.Exprs.Call(es.Value)
	if !ok {
		t.Fatalf("expected call, got %s", mod.Tree.Exprs.Kind(es.Value))
	}
	if len(call.Args) != 2 || mod.Tree.Exprs.Kind(call.Args[1]) != ast.ExprStarred {
		t.Fatalf("args = %v", call.Args)
	}
	if len(call.Keywords) != 2 || call.Keywords[0].Arg.Name != "name" || call.Keywords[1].Arg.Name != "" {
		t.Fatalf("keywords = %+v", call.Keywords)
	}
}

func TestComments(t *testing.T) {
	src := "x = 1  # noqa: F841\n# trailing\n"
	mod, file := lower(t, src)
	var got []string
	for _, c := range mod.Comments {
		got = append(got, file.Text(c))
	}
	if diff := cmp.Diff([]string{"# noqa: F841", "# trailing"}, got); diff != "" {
		t.Fatalf("comments mismatch (-want +got):\n%s", diff)
	}
}

func TestCommentsInNestedBlocks(t *testing.T) {
	src := "def impl(ctx):\n" +
		"    # first\n" +
		"    if ctx:\n" +
		"        return \"\"\"a\nb\"\"\"  # second\n" +
		"    return None\n"
	mod, file := lower(t, src)
	var got []string
	for _, c := range mod.Comments {
		got = append(got, file.Text(c))
	}
	if diff := cmp.Diff([]string{"# first", "# second"}, got); diff != "" {
		t.Fatalf("comments mismatch (-want +got):\n%s", diff)
	}
	if len(mod.Strings) != 1 {
		t.Fatalf("multi-line strings = %d, want 1", len(mod.Strings))
	}
}

func TestSyntaxError(t *testing.T) {
	mod, _ := lower(t, "def f(:\n    pass\n")
	if !mod.HasErrors() {
		t.Fatalf("expected a syntax error")
	}
	if len(mod.Body) != 0 {
		t.Fatalf("body = %d statements after a syntax error", len(mod.Body))
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := starlark.Parse(ctx, source.NewFile(1, "x.star", []byte("x = 1\n"))); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
