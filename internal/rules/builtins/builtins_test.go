package builtins_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"krait/internal/testkit"
)

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"assignment", "list = 1\n", []string{"A001 1:1"}},
		{"loop variable", "for str in []:\n    pass\n", []string{"A001 1:5"}},
		{"function", "def print():\n    pass\n", []string{"A001 1:5"}},
		{"class attribute", "class C:\n    list = 1\n", nil},
		{"argument", "def f(id):\n    return id\n", []string{"A002 1:7"}},
		{"plain names", "values = 1\ndef f(ident):\n    return ident\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testkit.Lint(t, tt.src, "A")
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIgnorelist(t *testing.T) {
	s := testkit.Settings(t, "A")
	s.Flake8Builtins.BuiltinsIgnorelist = []string{"id"}
	res := testkit.LintWith(t, "test.py", "id = 1\ndef f(id, type):\n    return id, type\n", s)
	if got := testkit.Codes(res); !cmp.Equal(got, []string{"A002 2:11"}) {
		t.Fatalf("got %v, want [A002 2:11]", got)
	}
}
