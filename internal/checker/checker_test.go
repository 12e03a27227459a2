package checker_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/parser"
	"krait/internal/rule"
	"krait/internal/rules"
	"krait/internal/semantic"
	"krait/internal/settings"
	"krait/internal/source"
	"krait/internal/testkit"
)

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, err := parser.Parse(context.Background(), source.NewFile(0, "test.py", []byte(src)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if mod.HasErrors() {
		t.Fatalf("syntax errors: %v", mod.Errors)
	}
	return mod
}

func run(t *testing.T, src string, hooks ...checker.Hook) *checker.Result {
	t.Helper()
	reg, err := checker.NewRegistry(hooks)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	res, err := checker.Check(context.Background(), parse(t, src), checker.Options{
		Dispatch: reg.Dispatch(reg.Rules()),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	return res
}

func TestRegistryValidation(t *testing.T) {
	noop := func(*checker.Snapshot, checker.Node) {}
	tests := []struct {
		name string
		hook checker.Hook
		want string
	}{
		{"invalid kind", checker.Hook{Name: "x", Rules: []rule.Rule{rule.UnusedImport}, Run: noop}, "invalid kind"},
		{"nil run", checker.Hook{Name: "x", Kind: checker.KindName, Rules: []rule.Rule{rule.UnusedImport}}, "nil Run"},
		{"no rules", checker.Hook{Name: "x", Kind: checker.KindName, Run: noop}, "no rules"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checker.NewRegistry([]checker.Hook{tt.hook})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDefaultHookName(t *testing.T) {
	reg, err := checker.NewRegistry([]checker.Hook{{Kind: checker.KindName, Rules: []rule.Rule{rule.UndefinedName}, Run: func(*checker.Snapshot, checker.Node) {}}})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if got := reg.Hooks()[0].Name; got != "F821" {
		t.Fatalf("Name = %q, want F821", got)
	}
}

func TestDispatchSkipsDisabledHooks(t *testing.T) {
	noop := func(*checker.Snapshot, checker.Node) {}
	reg, err := checker.NewRegistry([]checker.Hook{
		{Name: "a", Kind: checker.KindName, Rules: []rule.Rule{rule.UnusedImport}, Run: noop},
		{Name: "b", Kind: checker.KindName, Rules: []rule.Rule{rule.UndefinedName, rule.UnusedVariable}, Run: noop},
		{Name: "c", Kind: checker.KindCall, Rules: []rule.Rule{rule.Print}, Run: noop},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	d := reg.Dispatch(rule.SetOf(rule.UnusedVariable))
	if d.Len() != 1 || len(d.Hooks(checker.KindName)) != 1 || d.Hooks(checker.KindName)[0].Name != "b" {
		t.Fatalf("dispatch = %d hooks, want only b", d.Len())
	}
	if d.Has(checker.KindCall) {
		t.Fatal("call hook should be inactive")
	}
	var nilDispatch *checker.Dispatch
	if nilDispatch.Len() != 0 || nilDispatch.Has(checker.KindName) || !nilDispatch.Enabled().IsEmpty() {
		t.Fatal("nil dispatch should be empty")
	}
}

func TestHookRunsOncePerNode(t *testing.T) {
	seen := make(map[source.Span]int)
	var bindings int
	res := run(t, "import os\nx = os.sep\ndef f(a):\n    return a + x\n",
		checker.Hook{Name: "names", Kind: checker.KindName, Rules: []rule.Rule{rule.UndefinedName}, Run: func(_ *checker.Snapshot, n checker.Node) {
			seen[n.Span]++
		}},
		checker.Hook{Name: "bindings", Kind: checker.KindBinding, Rules: []rule.Rule{rule.UnusedVariable}, Run: func(*checker.Snapshot, checker.Node) {
			bindings++
		}},
	)
	for span, n := range seen {
		if n != 1 {
			t.Errorf("name at %s dispatched %d times", span, n)
		}
	}
	// x (store), os, a, x (load)
	if len(seen) != 4 {
		t.Errorf("saw %d names, want 4", len(seen))
	}
	// os, x, f, a
	if bindings != 4 {
		t.Errorf("saw %d bindings, want 4", bindings)
	}
	if res.Stats.Deferred != 1 {
		t.Errorf("Deferred = %d, want 1", res.Stats.Deferred)
	}
}

func TestPanicBecomesFault(t *testing.T) {
	res := run(t, "x = 1\n",
		checker.Hook{Name: "boom", Kind: checker.KindAssign, Rules: []rule.Rule{rule.UnusedImport}, Run: func(s *checker.Snapshot, n checker.Node) {
			s.ReportRule(rule.UnusedImport, n.Span, "dropped with the panic")
			panic("boom")
		}},
		checker.Hook{Name: "ok", Kind: checker.KindAssign, Rules: []rule.Rule{rule.UndefinedName}, Run: func(s *checker.Snapshot, n checker.Node) {
			s.ReportRule(rule.UndefinedName, n.Span, "kept")
		}},
	)
	if len(res.Faults) != 1 {
		t.Fatalf("got %d faults, want 1", len(res.Faults))
	}
	f := res.Faults[0]
	if f.Hook != "boom" || f.Value != "boom" || f.Kind != checker.KindAssign || f.Stack == "" {
		t.Fatalf("fault = %+v", f)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Message != "kept" {
		t.Fatalf("diagnostics = %+v, want only the healthy hook's report", res.Diagnostics)
	}
}

func TestReportOutsideSource(t *testing.T) {
	res := run(t, "x = 1\n",
		checker.Hook{Name: "far", Kind: checker.KindModule, Rules: []rule.Rule{rule.UnusedImport}, Run: func(s *checker.Snapshot, n checker.Node) {
			s.ReportRule(rule.UnusedImport, source.Span{File: n.Span.File, Start: 100, End: 104}, "out of range")
		}},
	)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v, want none", res.Diagnostics)
	}
	if len(res.Faults) != 1 || !strings.Contains(res.Faults[0].Value, "outside source range") {
		t.Fatalf("faults = %+v", res.Faults)
	}
}

func TestReportAfterHookReturns(t *testing.T) {
	var kept *checker.Snapshot
	res := run(t, "x = 1\ny = 2\n",
		checker.Hook{Name: "leak", Kind: checker.KindAssign, Rules: []rule.Rule{rule.UnusedImport}, Run: func(s *checker.Snapshot, n checker.Node) {
			if kept != nil {
				kept.ReportRule(rule.UnusedImport, n.Span, "late")
			}
			kept = s
		}},
	)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("a closed snapshot reported %d diagnostics", len(res.Diagnostics))
	}
}

func TestDisabledRuleIsDropped(t *testing.T) {
	res := run(t, "x = 1\n",
		checker.Hook{Name: "two", Kind: checker.KindAssign, Rules: []rule.Rule{rule.UnusedImport}, Run: func(s *checker.Snapshot, n checker.Node) {
			s.ReportRule(rule.UndefinedName, n.Span, "not declared by the hook nor enabled")
			s.ReportRule(rule.UnusedImport, n.Span, "enabled")
		}},
	)
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Rule != rule.UnusedImport {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestRunTwice(t *testing.T) {
	c := checker.New(parse(t, "x = 1\n"), checker.Options{})
	if c.State() != checker.NotStarted {
		t.Fatalf("State = %s, want not-started", c.State())
	}
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.State() != checker.Finished || c.Depth() != 0 {
		t.Fatalf("State = %s depth %d after Run", c.State(), c.Depth())
	}
	if _, err := c.Run(context.Background()); !errors.Is(err, checker.ErrAlreadyRun) {
		t.Fatalf("second Run err = %v, want ErrAlreadyRun", err)
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := checker.Check(ctx, parse(t, "def f():\n    pass\n"), checker.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res == nil {
		t.Fatal("a canceled run still returns the partial result")
	}
}

func TestScopesInExitOrder(t *testing.T) {
	var kinds []semantic.ScopeKind
	run(t, "class C:\n    def m(self):\n        return lambda: 1\n",
		checker.Hook{Name: "scopes", Kind: checker.KindScope, Rules: []rule.Rule{rule.UnusedVariable}, Run: func(s *checker.Snapshot, n checker.Node) {
			kinds = append(kinds, s.Semantic().Scope(n.Scope).Kind)
			if s.Semantic().CurrentScope() != n.Scope {
				t.Errorf("current scope %d, want %d", s.Semantic().CurrentScope(), n.Scope)
			}
		}},
	)
	// the module closes last and is visited first
	if len(kinds) != 4 || kinds[0] != semantic.ScopeModule {
		t.Fatalf("scope kinds = %v, want four starting with the module", kinds)
	}
}

func TestNestedDefinitionsBalanceScopes(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"method", "class A:\n    def f(self):\n        pass\n"},
		{"nested function", "def outer():\n    def inner():\n        pass\n"},
		{"class then module code", "class A: ...\nx = 1\n"},
		{"lambda in method", "class A:\n    def f(self):\n        return lambda: self\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var atModule []bool
			reg, err := checker.NewRegistry([]checker.Hook{
				{Name: "module", Kind: checker.KindModule, Rules: []rule.Rule{rule.UnusedVariable}, Run: func(s *checker.Snapshot, n checker.Node) {
					atModule = append(atModule, s.Semantic().IsModuleScope())
				}},
			})
			if err != nil {
				t.Fatalf("NewRegistry: %v", err)
			}
			c := checker.New(parse(t, tt.src), checker.Options{Dispatch: reg.Dispatch(reg.Rules())})
			if _, err := c.Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if c.State() != checker.Finished || c.Depth() != 0 {
				t.Fatalf("State = %s depth %d after Run", c.State(), c.Depth())
			}
			if len(atModule) != 1 || !atModule[0] {
				t.Fatalf("module hook calls = %v, want one in the module scope", atModule)
			}
		})
	}
}

func TestTerminates(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"return 1\n", true},
		{"raise ValueError\n", true},
		{"x = 1\n", false},
		{"if x:\n    return 1\n", false},
		{"if x:\n    return 1\nelse:\n    raise ValueError\n", true},
		{"while True:\n    pass\n", true},
		{"while True:\n    break\n", false},
		{"try:\n    return 1\nexcept ValueError:\n    return 2\n", true},
		{"try:\n    return 1\nexcept ValueError:\n    pass\n", false},
		{"try:\n    pass\nfinally:\n    return 1\n", true},
		{"with x:\n    return 1\n", true},
	}
	for _, tt := range tests {
		src := "def f():\n" + indent(tt.src)
		mod := parse(t, src)
		fn, _ := mod.Tree.Stmts.FunctionDef(mod.Body[0])
		if got := checker.Terminates(mod.Tree, fn.Body[0]); got != tt.want {
			t.Errorf("Terminates(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func indent(src string) string {
	lines := strings.SplitAfter(src, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = "    " + l
		}
	}
	return strings.Join(lines, "")
}

func TestDeterministic(t *testing.T) {
	reg, err := rules.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	s := settings.Default()
	if err := s.Apply(settings.Overrides{Select: []string{"ALL"}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	src := "import os, sys\nfrom typing import *\n\ndef f(l, id=[]):\n    x = undefined\n    for i in range(3):\n        print(i == None)\n    return\n    y = 1\n"
	var first []string
	for i := range 5 {
		res, err := checker.Check(context.Background(), parse(t, src), checker.Options{Settings: s, Dispatch: reg.Dispatch(s.Enabled)})
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if len(res.Faults) > 0 {
			t.Fatalf("faults: %v", res.Faults)
		}
		var got []string
		for _, d := range res.Diagnostics {
			got = append(got, d.Rule.Code()+" "+d.Span.String()+" "+d.Message)
		}
		if i == 0 {
			first = got
			continue
		}
		if diff := cmp.Diff(first, got); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
	if len(first) == 0 {
		t.Fatal("expected diagnostics")
	}
}

func TestClassScopeIsSkipped(t *testing.T) {
	got := testkit.Lint(t, "class C:\n    x = 1\n    def m(self):\n        return x\n", "F821")
	if want := []string{"F821 4:16"}; !cmp.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGlobalAtModuleLevelOnly(t *testing.T) {
	src := "global a\n\ndef f():\n    global a\n    a = 1\n"
	got := testkit.Lint(t, src, "PLW0604")
	if want := []string{"PLW0604 1:1"}; !cmp.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
