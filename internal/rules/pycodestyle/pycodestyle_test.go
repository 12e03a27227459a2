package pycodestyle_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"krait/internal/testkit"
)

func TestPycodestyle(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"none comparison", "x = 1\nif x == None:\n    pass\n", []string{"E711 2:9"}},
		{"none on the left", "x = 1\nif None != x:\n    pass\n", []string{"E711 2:4"}},
		{"true comparison", "x = 1\nif x == True:\n    pass\n", []string{"E712 2:9"}},
		{"is none", "x = 1\nif x is None:\n    pass\n", nil},
		{"bare except", "try:\n    pass\nexcept:\n    pass\n", []string{"E722 3:1"}},
		{"bare except reraises", "try:\n    pass\nexcept:\n    raise\n", nil},
		{"typed except", "try:\n    pass\nexcept ValueError:\n    pass\n", nil},
		{"lambda assignment", "f = lambda x: x\n", []string{"E731 1:1"}},
		{"lambda in call", "print(lambda x: x)\n", nil},
		{"ambiguous name", "l = 1\n", []string{"E741 1:1"}},
		{"ambiguous argument", "def f(I):\n    return I\n", []string{"E741 1:7"}},
		{"ambiguous loop var", "for O in range(3):\n    print(O)\n", []string{"E741 1:5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testkit.Lint(t, tt.src, "E7")
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFixes(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{"x = 1\nif x == None:\n    pass\n", "x = 1\nif x is None:\n    pass\n"},
		{"x = 1\nif x != False:\n    pass\n", "x = 1\nif x is not False:\n    pass\n"},
		{"f = lambda x: x\n", "def f(x):\n    return x\n"},
		{"if True:\n    g = lambda: 0\n", "if True:\n    def g():\n        return 0\n"},
	}
	for _, tt := range tests {
		if got := testkit.Fixed(t, tt.src, "E7"); got != tt.want {
			t.Errorf("Fixed(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestTrueFalseMessage(t *testing.T) {
	got := testkit.Golden(t, "x = 1\nif x != True:\n    pass\n", "E712")
	want := "E712 2:9 Avoid equality comparisons to `True`; use `if not cond:` for truth checks [*]"
	if got != want {
		t.Fatalf("Golden = %q, want %q", got, want)
	}
}

func TestSyntaxError(t *testing.T) {
	got := testkit.Lint(t, "def f(:\n    pass\n", "E7")
	if len(got) == 0 || got[0][:4] != "E999" {
		t.Fatalf("got %v, want E999 first", got)
	}
}
