package mccabe_test

import (
	"testing"

	"krait/internal/ast"
	"krait/internal/parser"
	"krait/internal/rules/mccabe"
	"krait/internal/source"
	"krait/internal/testkit"
)

func functionBody(t *testing.T, src string) (*ast.Builder, []ast.StmtID) {
	t.Helper()
	file := source.NewFile(0, "test.py", []byte(src))
	mod, err := parser.Parse(t.Context(), file)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if mod.HasErrors() {
		t.Fatalf("syntax errors: %v", mod.Errors)
	}
	fn, ok := mod.Tree.Stmts.FunctionDef(mod.Body[0])
	if !ok {
		t.Fatalf("first statement is not a def")
	}
	return mod.Tree, fn.Body
}

func TestComplexity(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"straight", "def f():\n    return 1\n", 0},
		{"if elif else", "def f(x):\n    if x:\n        return 1\n    elif x > 1:\n        return 2\n    else:\n        return 3\n", 2},
		{"loops", "def f(xs):\n    for x in xs:\n        while x:\n            x -= 1\n", 2},
		{"handlers", "def f():\n    try:\n        pass\n    except ValueError:\n        pass\n    except TypeError:\n        pass\n", 2},
		{"nested def", "def f():\n    def g(x):\n        if x:\n            return 1\n    return g\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, body := functionBody(t, tt.src)
			if got := mccabe.Complexity(tree, body); got != tt.want {
				t.Fatalf("Complexity = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComplexStructure(t *testing.T) {
	src := "def f(x):\n    if x:\n        return 1\n    elif x > 1:\n        return 2\n    return 3\n"
	s := testkit.Settings(t, "C901")
	s.McCabe.MaxComplexity = 2
	res := testkit.LintWith(t, "test.py", src, s)
	if len(res.Diagnostics) != 1 {
		t.Fatalf("got %v, want one C901", testkit.Codes(res))
	}
	if got, want := res.Diagnostics[0].Message, "`f` is too complex (3 > 2)"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
	if got := testkit.Codes(res)[0]; got != "C901 1:5" {
		t.Fatalf("position = %s, want C901 1:5", got)
	}

	s.McCabe.MaxComplexity = 3
	if res := testkit.LintWith(t, "test.py", src, s); len(res.Diagnostics) != 0 {
		t.Fatalf("got %v, want none at the limit", testkit.Codes(res))
	}
}
