package pathlib_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"krait/internal/testkit"
)

func TestPathlib(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"getcwd", "import os\nos.getcwd()\n", []string{"PTH109 2:1"}},
		{"submodule import", "import os.path\nos.path.join('a', 'b')\n", []string{"PTH118 2:1"}},
		{"from import", "from os import path\npath.exists('a')\n", []string{"PTH110 2:1"}},
		{"aliased member", "from os import mkdir as mk\nmk('a')\n", []string{"PTH103 2:1"}},
		{"several", "import os\nos.makedirs(os.path.dirname('a'))\n", []string{"PTH102 2:1", "PTH120 2:13"}},
		{"open", "open('f')\n", []string{"PTH123 1:1"}},
		{"open file descriptor", "open(3)\n", nil},
		{"open with opener", "open('f', opener=None)\n", nil},
		{"unrelated os call", "import os\nos.listdir('.')\n", nil},
		{"shadowed os", "class os:\n    pass\nos.getcwd()\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testkit.Lint(t, tt.src, "PTH")
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	got := testkit.Golden(t, "import os\nos.remove('a')\n", "PTH")
	if want := "PTH107 2:1 `os.remove()` should be replaced by `Path.unlink()`"; got != want {
		t.Fatalf("Golden = %q, want %q", got, want)
	}
}
