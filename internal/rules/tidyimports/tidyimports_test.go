package tidyimports_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"krait/internal/settings"
	"krait/internal/testkit"
)

func banned(t *testing.T) *settings.Settings {
	t.Helper()
	s := testkit.Settings(t, "TID")
	s.TidyImports.BannedAPI = map[string]string{
		"cgi":              "removed in 3.13",
		"typing.TypedDict": "use typing_extensions",
	}
	s.TidyImports.BannedModuleLevelImports = []string{"torch"}
	return s
}

func TestTidyImports(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"banned module", "import cgi\n", []string{"TID251 1:8"}},
		{"banned submodule", "import cgi.util\n", []string{"TID251 1:8"}},
		{"banned from module", "from cgi import escape\n", []string{"TID251 1:1"}},
		{"banned member", "from typing import TypedDict\nx = TypedDict\n", []string{"TID251 1:20", "TID251 2:5"}},
		{"banned attribute", "import typing\nx = typing.TypedDict\n", []string{"TID251 2:5"}},
		{"allowed member", "from typing import Any\nx = Any\n", nil},
		{"sibling import", "from . import x\n", nil},
		{"parent import", "from .. import x\n", []string{"TID252 1:1"}},
		{"module level import", "import torch.nn\n", []string{"TID253 1:8"}},
		{"module level from import", "from torch import nn\n", []string{"TID253 1:1"}},
		{"function level import", "def f():\n    import torch\n    return torch\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testkit.Codes(testkit.LintWith(t, "test.py", tt.src, banned(t)))
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBanAllRelative(t *testing.T) {
	s := banned(t)
	s.TidyImports.BanRelativeImports = settings.BanAll
	got := testkit.Codes(testkit.LintWith(t, "test.py", "from . import x\nfrom .. import y\n", s))
	if want := []string{"TID252 1:1", "TID252 2:1"}; !cmp.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBannedMessage(t *testing.T) {
	res := testkit.LintWith(t, "test.py", "import cgi\n", banned(t))
	if len(res.Diagnostics) != 1 {
		t.Fatalf("got %v", testkit.Codes(res))
	}
	if got, want := res.Diagnostics[0].Message, "`cgi` is banned: removed in 3.13"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}
