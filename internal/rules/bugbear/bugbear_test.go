package bugbear_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"krait/internal/testkit"
)

func TestBugbear(t *testing.T) {
	tests := []struct {
		name string
		sel  string
		src  string
		want []string
	}{
		{"mutable list default", "B006", "def f(x=[]):\n    return x\n", []string{"B006 1:9"}},
		{"mutable call default", "B006", "def f(a, x=dict()):\n    return a, x\n", []string{"B006 1:12"}},
		{"immutable default", "B006", "def f(x=None, y=()):\n    return x, y\n", nil},
		{"unused loop variable", "B007", "for i in range(3):\n    pass\n", []string{"B007 1:5"}},
		{"unused tuple element", "B007", "for i, j in []:\n    print(j)\n", []string{"B007 1:5"}},
		{"dummy loop variable", "B007", "for _ in range(3):\n    pass\n", nil},
		{"used in nested function", "B007", "for i in range(3):\n    def g():\n        return i\n", nil},
		{"assert false", "B011", "assert False\n", []string{"B011 1:8"}},
		{"assert true", "B011", "assert True\n", nil},
		{"return in finally", "B012", "def f():\n    try:\n        pass\n    finally:\n        return 1\n", []string{"B012 5:9"}},
		{"break in finally", "B012", "for x in []:\n    try:\n        pass\n    finally:\n        break\n", []string{"B012 5:9"}},
		{"break in loop inside finally", "B012", "try:\n    pass\nfinally:\n    for x in []:\n        break\n", nil},
		{"return in nested function", "B012", "try:\n    pass\nfinally:\n    def g():\n        return 1\n", nil},
		{"useless literal", "B018", "1\n", []string{"B018 1:1"}},
		{"useless list", "B018", "[1, 2]\n", []string{"B018 1:1"}},
		{"useless attribute", "B018", "x = 1\nx.real\n", []string{"B018 2:1"}},
		{"docstring", "B018", "'doc'\n", nil},
		{"call", "B018", "print(1)\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testkit.Lint(t, tt.src, tt.sel)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssertFalseFix(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{"assert False\n", "raise AssertionError()\n"},
		{"assert False, 'boom'\n", "raise AssertionError('boom')\n"},
	}
	for _, tt := range tests {
		if got := testkit.Fixed(t, tt.src, "B011"); got != tt.want {
			t.Errorf("Fixed(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}
