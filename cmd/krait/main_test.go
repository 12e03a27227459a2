package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"krait/internal/diag"
	"krait/internal/linter"
	"krait/internal/report"
	"krait/internal/rule"
)

func TestMain(m *testing.M) {
	setupRoot()
	os.Exit(m.Run())
}

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mod.py"), []byte("import os\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := execRoot(t, "check", "--no-cache", "--ui", "off", "--select", "F401", "--output-format", "json", dir)
	if !errors.Is(err, errViolations) {
		t.Fatalf("err = %v, want errViolations", err)
	}
	var got report.Output
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Count != 1 || got.Diagnostics[0].Code != "F401" {
		t.Fatalf("output = %+v, want one F401", got)
	}
}

func TestRuleExplain(t *testing.T) {
	out, err := execRoot(t, "rule", "unused-import")
	if err != nil {
		t.Fatalf("rule: %v", err)
	}
	if !strings.HasPrefix(out, "# unused-import (F401)\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRulesList(t *testing.T) {
	out, err := execRoot(t, "rules", "E7")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	set, _ := rule.Select("E7")
	if len(lines) != set.Len() {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), set.Len(), out)
	}
	if !strings.HasPrefix(lines[0], "E711 [*] none-comparison") {
		t.Fatalf("first line = %q", lines[0])
	}
}

func TestLookupRule(t *testing.T) {
	for _, arg := range []string{"F401", "f401", "unused-import"} {
		r, err := lookupRule(arg)
		if err != nil || r.Code() != "F401" {
			t.Errorf("lookupRule(%q) = %v, %v", arg, r, err)
		}
	}
	_, err := lookupRule("unused-imprt")
	if err == nil || !strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("err = %v, want a suggestion", err)
	}
}

func TestParsePathMode(t *testing.T) {
	tests := map[string]report.PathMode{
		"":         report.PathModeAuto,
		"auto":     report.PathModeAuto,
		"absolute": report.PathModeAbsolute,
		"basename": report.PathModeBasename,
	}
	for in, want := range tests {
		got, err := parsePathMode(in)
		if err != nil || got != want {
			t.Errorf("parsePathMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := parsePathMode("relative"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestCheckStatus(t *testing.T) {
	clean := &linter.Result{Files: []linter.FileResult{{Path: "a.py"}}}
	if err := checkStatus(clean, false); err != nil {
		t.Fatalf("clean run: %v", err)
	}

	dirty := &linter.Result{Files: []linter.FileResult{{Path: "a.py"}}}
	dirty.Files[0].Diagnostics = make([]diag.Diagnostic, 1)
	if err := checkStatus(dirty, false); !errors.Is(err, errViolations) {
		t.Fatalf("dirty run: %v, want errViolations", err)
	}
	if err := checkStatus(dirty, true); err != nil {
		t.Fatalf("exit-zero: %v", err)
	}

	broken := &linter.Result{Files: []linter.FileResult{{Path: "a.py", Err: os.ErrNotExist}}}
	err := checkStatus(broken, true)
	if diff := cmp.Diff("1 file(s) could not be read", errString(err)); diff != "" {
		t.Fatalf("unreadable (-want +got):\n%s", diff)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
