package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"krait/internal/rule"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefaultSelection(t *testing.T) {
	s := Default()
	for _, r := range []rule.Rule{rule.UnusedImport, rule.BareExcept, rule.SyntaxError} {
		if !s.Enabled.Contains(r) {
			t.Errorf("default selection misses %s", r)
		}
	}
	if s.Enabled.Contains(rule.Print) {
		t.Fatalf("T201 must not be enabled by default")
	}
	if !s.IsDummy("_") || !s.IsDummy("__unused") || s.IsDummy("value") {
		t.Fatalf("dummy regexp mismatch")
	}
}

func TestApplyOverrides(t *testing.T) {
	s := Default()
	if err := s.Apply(Overrides{Select: []string{"F"}, ExtendSelect: []string{"T20"}, Ignore: []string{"F401"}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.Enabled.Contains(rule.UnusedImport) || !s.Enabled.Contains(rule.Print) || s.Enabled.Contains(rule.BareExcept) {
		t.Fatalf("Enabled = %s", s.Enabled)
	}
}

func TestUnknownSelectorSuggests(t *testing.T) {
	s := Default()
	err := s.Apply(Overrides{Select: []string{"F4O1", "unused-imprt"}})
	if !errors.Is(err, ErrUnknownSelector) {
		t.Fatalf("err = %v, want ErrUnknownSelector", err)
	}
	if !strings.Contains(err.Error(), "did you mean") || !strings.Contains(err.Error(), "unused-import") {
		t.Fatalf("missing suggestion in %q", err)
	}
}

func TestLoadKraitToml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "krait.toml"), `
cache-dir = ".cache"

[lint]
select = ["F", "PL"]
ignore = ["PLW0603"]
dummy-variable-rgx = "^ignored_"

[lint.per-file-ignores]
"tests/*.py" = ["F401"]

[lint.pylint]
max-args = 3

[lint.flake8-tidy-imports]
ban-relative-imports = "all"

[lint.flake8-tidy-imports.banned-api]
"cgi" = { msg = "cgi is removed in 3.13" }
`)
	s, err := Discover(filepath.Join(dir, "pkg", "sub"))
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if s.Path != filepath.Join(dir, "krait.toml") {
		t.Fatalf("Path = %q", s.Path)
	}
	if s.Pylint.MaxArgs != 3 || s.Pylint.MaxLocals != 15 {
		t.Fatalf("Pylint = %+v", s.Pylint)
	}
	if s.Enabled.Contains(rule.GlobalStatement) || !s.Enabled.Contains(rule.GlobalAtModuleLevel) {
		t.Fatalf("Enabled = %s", s.Enabled)
	}
	if s.IsDummy("_") || !s.IsDummy("ignored_x") {
		t.Fatalf("dummy-variable-rgx not applied")
	}
	if s.TidyImports.BanRelativeImports != BanAll {
		t.Fatalf("ban-relative-imports = %s", s.TidyImports.BanRelativeImports)
	}
	if name, msg, ok := s.IsBanned("cgi.parse"); !ok || name != "cgi" || msg != "cgi is removed in 3.13" {
		t.Fatalf("IsBanned = %q, %q, %v", name, msg, ok)
	}
	if s.CacheDir != filepath.Join(dir, ".cache") {
		t.Fatalf("CacheDir = %q", s.CacheDir)
	}

	test := filepath.Join(dir, "tests", "test_a.py")
	if s.EnabledFor(test).Contains(rule.UnusedImport) {
		t.Fatalf("per-file ignore not applied to %s", test)
	}
	if !s.EnabledFor(filepath.Join(dir, "src", "a.py")).Contains(rule.UnusedImport) {
		t.Fatalf("per-file ignore leaked to src")
	}
}

func TestPyprojectWithoutTableIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), "[tool.black]\nline-length = 100\n")
	s, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if s.Path != "" {
		t.Fatalf("Path = %q, want defaults", s.Path)
	}

	writeFile(t, filepath.Join(dir, "pyproject.toml"), "[tool.black]\nline-length = 100\n\n[tool.krait.lint]\nextend-select = [\"S101\"]\n")
	s, err = Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if !s.Enabled.Contains(rule.Assert) || !s.Enabled.Contains(rule.UnusedImport) {
		t.Fatalf("Enabled = %s", s.Enabled)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "krait.toml")
	writeFile(t, path, "[lint]\nselekt = [\"F\"]\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "lint.selekt") {
		t.Fatalf("Load err = %v", err)
	}
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern, name string
		want          bool
	}{
		{"tests/*.py", "tests/test_a.py", true},
		{"tests/*.py", "src/a.py", false},
		{"**/conftest.py", "a/b/conftest.py", true},
		{"__init__.py", "__init__.py", true},
	}
	for _, tt := range tests {
		if got := matchGlob(tt.pattern, tt.name); got != tt.want {
			t.Errorf("matchGlob(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}

func TestIsExcluded(t *testing.T) {
	s := Default()
	if !s.IsExcluded("project/.venv/lib/a.py") || s.IsExcluded("project/src/a.py") {
		t.Fatalf("exclude mismatch")
	}
}
