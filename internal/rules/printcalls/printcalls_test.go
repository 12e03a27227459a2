package printcalls_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"krait/internal/testkit"
)

func TestPrintCalls(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"print", "print(1)\n", []string{"T201 1:1"}},
		{"print to stderr", "import sys\nprint(1, file=sys.stderr)\n", []string{"T201 2:1"}},
		{"print to none", "print(1, file=None)\n", []string{"T201 1:1"}},
		{"print to buffer", "import io\nbuf = io.StringIO()\nprint(1, file=buf)\n", nil},
		{"shadowed print", "def print(x):\n    pass\nprint(1)\n", nil},
		{"pprint", "from pprint import pprint\npprint({})\n", []string{"T203 2:1"}},
		{"pprint module", "import pprint\npprint.pp([])\n", []string{"T203 2:1"}},
		{"pformat", "import pprint\nx = pprint.pformat([])\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testkit.Lint(t, tt.src, "T20")
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNoFix(t *testing.T) {
	src := "print(1)\n"
	if got := testkit.Fixed(t, src, "T201"); got != src {
		t.Fatalf("Fixed(%q) = %q, want unchanged", src, got)
	}
}
