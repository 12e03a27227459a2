package parser_test

import (
	"context"
	"testing"

	"krait/internal/ast"
	"krait/internal/parser"
	"krait/internal/source"
)

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	file := source.NewFile(1, "test.py", []byte(src))
	mod, err := parser.Parse(context.Background(), file)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if mod.Dialect != parser.Dialect {
		t.Fatalf("dialect = %q", mod.Dialect)
	}
	return mod
}

func parseClean(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod := parse(t, src)
	if mod.HasErrors() {
		t.Fatalf("unexpected syntax errors: %+v", mod.Errors)
	}
	return mod
}

func TestFunctionParameters(t *testing.T) {
	mod := parseClean(t, "def f(a, /, b: int, c=1, *args, d, e: str = '', **kw) -> None:\n    pass\n")
	if len(mod.Body) != 1 {
		t.Fatalf("body = %d statements", len(mod.Body))
	}
	fn, ok := mod.Tree.Stmts.FunctionDef(mod.Body[0])
	if !ok {
		t.Fatalf("expected function def, got %s", mod.Tree.Stmts.Kind(mod.Body[0]))
	}
	if fn.Name.Name != "f" {
		t.Fatalf("name = %q", fn.Name.Name)
	}
	names := func(ids []ast.ParamID) []string {
		var out []string
		for _, id := range ids {
			out = append(out, mod.Tree.Params.Get(id).Name.Name)
		}
		return out
	}
	p := fn.Params
	if got := names(p.PosOnly); len(got) != 1 || got[0] != "a" {
		t.Fatalf("posonly = %v", got)
	}
	if got := names(p.Args); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("args = %v", got)
	}
	if got := names(p.KwOnly); len(got) != 2 || got[0] != "d" || got[1] != "e" {
		t.Fatalf("kwonly = %v", got)
	}
	if mod.Tree.Params.Get(p.Vararg).Name.Name != "args" || mod.Tree.Params.Get(p.Kwarg).Name.Name != "kw" {
		t.Fatalf("vararg/kwarg not lowered")
	}
	if mod.Tree.Params.Get(p.PosOnly[0]).Kind != ast.ParamPositionalOnly {
		t.Fatalf("a should be positional-only")
	}
	if !mod.Tree.Params.Get(p.Args[1]).Default.IsValid() {
		t.Fatalf("c has no default")
	}
	if !fn.Returns.IsValid() {
		t.Fatalf("missing return annotation")
	}
}

func TestImports(t *testing.T) {
	mod := parseClean(t, "import os.path as p, sys\nfrom ..pkg import a as b, c\nfrom x import *\nfrom __future__ import annotations\n")
	imp, ok := mod.Tree.Stmts.Import(mod.Body[0])
	if !ok || len(imp.Names) != 2 {
		t.Fatalf("import = %+v", imp)
	}
	if imp.Names[0].Name != "os.path" || imp.Names[0].AsName != "p" || imp.Names[1].BoundName() != "sys" {
		t.Fatalf("aliases = %+v", imp.Names)
	}
	from, ok := mod.Tree.Stmts.ImportFrom(mod.Body[1])
	if !ok {
		t.Fatalf("expected import-from")
	}
	if from.Level != 2 || from.Module != "pkg" || len(from.Names) != 2 || from.Names[0].BoundName() != "b" {
		t.Fatalf("from = %+v", from)
	}
	star, _ := mod.Tree.Stmts.ImportFrom(mod.Body[2])
	if star == nil || !star.Star || star.Module != "x" {
		t.Fatalf("star = %+v", star)
	}
	future, _ := mod.Tree.Stmts.ImportFrom(mod.Body[3])
	if future == nil || future.Module != "__future__" || len(future.Names) != 1 || future.Names[0].Name != "annotations" {
		t.Fatalf("future = %+v", future)
	}
}

func TestElifChain(t *testing.T) {
	mod := parseClean(t, "if a:\n    pass\nelif b:\n    pass\nelse:\n    x = 1\n")
	top, ok := mod.Tree.Stmts.If(mod.Body[0])
	if !ok || top.Elif {
		t.Fatalf("top if = %+v", top)
	}
	if len(top.Orelse) != 1 {
		t.Fatalf("orelse = %v", top.Orelse)
	}
	elif, ok := mod.Tree.Stmts.If(top.Orelse[0])
	if !ok || !elif.Elif {
		t.Fatalf("elif = %+v", elif)
	}
	if len(elif.Orelse) != 1 || mod.Tree.Stmts.Kind(elif.Orelse[0]) != ast.StmtAssign {
		t.Fatalf("else body = %v", elif.Orelse)
	}
}

func TestExceptHandler(t *testing.T) {
	mod := parseClean(t, "try:\n    pass\nexcept ValueError as e:\n    raise\nexcept:\n    pass\nelse:\n    pass\nfinally:\n    pass\n")
	try, ok := mod.Tree.Stmts.Try(mod.Body[0])
	if !ok || len(try.Handlers) != 2 {
		t.Fatalf("try = %+v", try)
	}
	h := mod.Tree.Stmts.Handler(try.Handlers[0])
	if h.Name.Name != "e" || mod.Tree.Exprs.NameOf(h.Type) != "ValueError" {
		t.Fatalf("handler = %+v", h)
	}
	bare := mod.Tree.Stmts.Handler(try.Handlers[1])
	if bare.Type.IsValid() || bare.Name.Name != "" {
		t.Fatalf("bare handler = %+v", bare)
	}
	if len(try.Orelse) != 1 || len(try.Finally) != 1 {
		t.Fatalf("orelse/finally = %v/%v", try.Orelse, try.Finally)
	}
}

func TestChainedAssignmentAndTargets(t *testing.T) {
	mod := parseClean(t, "a = b = 1\nx, *y = z\n")
	as, ok := mod.Tree.Stmts.Assign(mod.Body[0])
	if !ok || len(as.Targets) != 2 {
		t.Fatalf("assign = %+v", as)
	}
	for _, target := range as.Targets {
		if n, ok := mod.Tree.Exprs.Name(target); !ok || n.Ctx != ast.Store {
			t.Fatalf("target not a store name: %+v", n)
		}
	}
	unpack, _ := mod.Tree.Stmts.Assign(mod.Body[1])
	seq, ok := mod.Tree.Exprs.Seq(unpack.Targets[0])
	if !ok || len(seq.Elts) != 2 || seq.Ctx != ast.Store {
		t.Fatalf("unpack target = %+v", seq)
	}
	if mod.Tree.Exprs.Kind(seq.Elts[1]) != ast.ExprStarred {
		t.Fatalf("second target kind = %s", mod.Tree.Exprs.Kind(seq.Elts[1]))
	}
}

func TestStringsAndComments(t *testing.T) {
	src := "# leading\n__all__ = ['a', \"b\\n\"]  # trailing\ndoc = \"\"\"one\ntwo\"\"\"\nmsg = f'{name!r} {width:>4}'\n"
	mod := parseClean(t, src)
	if len(mod.Comments) != 2 {
		t.Fatalf("comments = %d", len(mod.Comments))
	}
	if got := mod.Text(mod.Comments[0]); got != "# leading" {
		t.Fatalf("comment text = %q", got)
	}
	as, _ := mod.Tree.Stmts.Assign(mod.Body[0])
	list, _ := mod.Tree.Exprs.Seq(as.Value)
	lit, ok := mod.Tree.Exprs.Literal(list.Elts[1])
	if !ok || lit.Kind != ast.LitStr || lit.Value != "b\n" {
		t.Fatalf("literal = %+v", lit)
	}
	if len(mod.Strings) != 1 || mod.Text(mod.Strings[0]) != "\"\"\"one\ntwo\"\"\"" {
		t.Fatalf("multi-line strings = %v", mod.Strings)
	}
	fsAssign, _ := mod.Tree.Stmts.Assign(mod.Body[2])
	fs, ok := mod.Tree.Exprs.FString(fsAssign.Value)
	if !ok || len(fs.Parts) != 1 || !fs.Parts[0].IsF {
		t.Fatalf("f-string = %+v", fs)
	}
	var names []string
	for _, v := range fs.Parts[0].Values {
		names = append(names, mod.Tree.Exprs.NameOf(v))
	}
	if len(names) != 2 || names[0] != "name" || names[1] != "width" {
		t.Fatalf("placeholders = %v", names)
	}
}

func TestIdentifiersAreNFKC(t *testing.T) {
	mod := parseClean(t, "ｆｉｌｅ = 1\n")
	as, _ := mod.Tree.Stmts.Assign(mod.Body[0])
	if got := mod.Tree.Exprs.NameOf(as.Targets[0]); got != "file" {
		t.Fatalf("name = %q", got)
	}
}

func TestSyntaxErrorsAreRecorded(t *testing.T) {
	mod := parse(t, "def f(:\n    pass\nx = 1\n")
	if !mod.HasErrors() {
		t.Fatalf("expected syntax errors")
	}
	for _, e := range mod.Errors {
		if e.Span.File != 1 || e.Message == "" {
			t.Fatalf("bad error %+v", e)
		}
	}
}

func TestComparisonOperators(t *testing.T) {
	mod := parseClean(t, "a not in b is not c\n")
	st, _ := mod.Tree.Stmts.Expr(mod.Body[0])
	cmp, ok := mod.Tree.Exprs.Compare(st.Value)
	if !ok || len(cmp.Ops) != 2 {
		t.Fatalf("compare = %+v", cmp)
	}
	if cmp.Ops[0] != ast.CmpNotIn || cmp.Ops[1] != ast.CmpIsNot {
		t.Fatalf("ops = %v", cmp.Ops)
	}
	if got := mod.Text(cmp.OpSpans[0]); got != "not in" {
		t.Fatalf("op span text = %q", got)
	}
}

func TestDecoratedClass(t *testing.T) {
	mod := parseClean(t, "@dataclass\nclass C(Base, metaclass=M):\n    x: int = 0\n")
	cls, ok := mod.Tree.Stmts.ClassDef(mod.Body[0])
	if !ok {
		t.Fatalf("expected class def")
	}
	if cls.Name.Name != "C" || len(cls.Decorators) != 1 || len(cls.Bases) != 1 || len(cls.Keywords) != 1 {
		t.Fatalf("class = %+v", cls)
	}
	if cls.Keywords[0].Arg.Name != "metaclass" {
		t.Fatalf("keyword = %+v", cls.Keywords[0])
	}
	if mod.Tree.Stmts.Kind(cls.Body[0]) != ast.StmtAnnAssign {
		t.Fatalf("class body kind = %s", mod.Tree.Stmts.Kind(cls.Body[0]))
	}
}
