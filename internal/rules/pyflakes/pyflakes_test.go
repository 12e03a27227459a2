package pyflakes_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"krait/internal/testkit"
)

func TestPyflakes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"unused import", "import os\n", []string{"F401 1:8"}},
		{"unused from import", "from os import path\n", []string{"F401 1:16"}},
		{"used import", "import os\nos.getcwd()\n", nil},
		{"explicit re-export", "import os as os\n", nil},
		{"redefined import", "import os\nimport os\n", []string{"F401 2:8", "F811 2:8"}},
		{"redefined function", "def f():\n    pass\ndef f():\n    pass\n", []string{"F811 3:5"}},
		{"loop shadows import", "import os\nfor os in range(3):\n    pass\n", []string{"F401 1:8", "F402 2:5"}},
		{"star import", "from os import *\ngetcwd()\n", []string{"F403 1:1", "F405 2:1"}},
		{"f-string without placeholders", "x = f'hello'\n", []string{"F541 1:5"}},
		{"f-string with placeholder", "y = 1\nx = f'{y}'\n", nil},
		{"assert tuple", "assert (1, 2)\n", []string{"F631 1:1"}},
		{"is literal", "x = 1\nif x is 'a':\n    pass\n", []string{"F632 2:4"}},
		{"is None", "x = 1\nif x is None:\n    pass\n", nil},
		{"break outside loop", "break\n", []string{"F701 1:1"}},
		{"continue outside loop", "continue\n", []string{"F702 1:1"}},
		{"break in loop", "for i in range(3):\n    break\n", nil},
		{"default except first", "try:\n    pass\nexcept:\n    pass\nexcept ValueError:\n    pass\n", []string{"F707 3:1"}},
		{"undefined name", "x = undefined\n", []string{"F821 1:5"}},
		{"builtin", "print(len([]))\n", nil},
		{"class implicit names", "class C:\n    x = __qualname__\n", nil},
		{"undefined export", "__all__ = ['missing']\n", []string{"F822 1:12"}},
		{"defined export", "x = 1\n__all__ = ['x']\n", nil},
		{"referenced before assignment", "x = 1\ndef f():\n    print(x)\n    x = 2\n", []string{"F823 3:11", "F841 4:5"}},
		{"unused local", "def f():\n    x = 1\n", []string{"F841 2:5"}},
		{"dummy local", "def f():\n    _ = 1\n", nil},
		{"module level assignment", "x = 1\n", nil},
		{"unused exception name", "try:\n    pass\nexcept ValueError as e:\n    pass\n", []string{"F841 3:22"}},
		{"raise NotImplemented", "raise NotImplemented\n", []string{"F901 1:7"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testkit.Lint(t, tt.src, "F")
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnusedImportMessage(t *testing.T) {
	got := testkit.Golden(t, "import os.path\n", "F401")
	want := "F401 1:8 `os.path` imported but unused [*]"
	if got != want {
		t.Fatalf("golden mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestUnusedImportInInitIsUnsafe(t *testing.T) {
	s := testkit.Settings(t, "F401")
	res := testkit.LintWith(t, "pkg/__init__.py", "import os\n", s)
	if len(res.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(res.Diagnostics))
	}
	fix := res.Diagnostics[0].Fix
	if fix == nil || fix.Applicability.String() != "unsafe" {
		t.Fatalf("fix = %+v, want an unsafe fix", fix)
	}
}

func TestUndefinedExportInInit(t *testing.T) {
	s := testkit.Settings(t, "F822")
	res := testkit.LintWith(t, "pkg/__init__.py", "__all__ = ['sub']\n", s)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("got %d diagnostics, want none", len(res.Diagnostics))
	}
}
