package bandit_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"krait/internal/settings"
	"krait/internal/testkit"
)

func TestBandit(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"assert", "assert True\n", []string{"S101 1:1"}},
		{"exec", "exec('1')\n", []string{"S102 1:1"}},
		{"eval", "x = eval('1')\n", []string{"S307 1:5"}},
		{"shadowed eval", "def eval(x):\n    return x\neval('1')\n", nil},
		{"except pass", "try:\n    pass\nexcept Exception:\n    pass\n", []string{"S110 3:1"}},
		{"bare except pass", "try:\n    pass\nexcept:\n    pass\n", []string{"S110 3:1"}},
		{"typed except pass", "try:\n    pass\nexcept ValueError:\n    pass\n", nil},
		{"except continue", "for i in []:\n    try:\n        pass\n    except:\n        continue\n", []string{"S112 4:5"}},
		{"except with body", "try:\n    pass\nexcept Exception:\n    print(1)\n    pass\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testkit.Lint(t, tt.src, "S")
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckTypedException(t *testing.T) {
	s := testkit.Settings(t, "S110")
	s.Bandit.CheckTypedException = true
	res := testkit.LintWith(t, "test.py", "try:\n    pass\nexcept ValueError:\n    pass\n", s)
	if got := testkit.Codes(res); !cmp.Equal(got, []string{"S110 3:1"}) {
		t.Fatalf("got %v, want [S110 3:1]", got)
	}
}

func TestDefaults(t *testing.T) {
	if settings.Default().Bandit.CheckTypedException {
		t.Fatal("check-typed-exception should default to false")
	}
}
