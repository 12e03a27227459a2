package pylint_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"krait/internal/testkit"
)

func TestPylint(t *testing.T) {
	tests := []struct {
		name string
		sel  string
		src  string
		want []string
	}{
		{"global at module level", "PLW0604", "global x\nx = 1\n", []string{"PLW0604 1:1"}},
		{"global in function", "PLW0604", "x = 1\ndef f():\n    global x\n    x = 2\n", nil},
		{"load before global", "PLE0118", "x = 1\ndef f():\n    print(x)\n    global x\n", []string{"PLE0118 3:11"}},
		{"nonlocal without binding", "PLE0117", "def f():\n    nonlocal x\n", []string{"PLE0117 2:14"}},
		{"nonlocal with binding", "PLE0117", "def f():\n    x = 1\n    def g():\n        nonlocal x\n        x = 2\n    return g\n", nil},
		{"nonlocal and global", "PLE0115", "def f():\n    global x\n    nonlocal x\n", []string{"PLE0115 3:14"}},
		{"global not assigned", "PLW060", "x = 1\ndef f():\n    global x\n    return x\n", []string{"PLW0602 3:12"}},
		{"global statement", "PLW060", "x = 1\ndef f():\n    global x\n    x = 2\n", []string{"PLW0603 3:12"}},
		{"too many arguments", "PLR0913", "def f(a, b, c, d, e, g):\n    pass\n", []string{"PLR0913 1:5"}},
		{"dummy arguments", "PLR0913", "def f(a, b, c, d, e, _):\n    pass\n", nil},
		{"variadic arguments", "PLR0913", "def f(a, b, c, d, e, *args, **kwargs):\n    pass\n", nil},
		{"exit", "PLR1722", "exit(0)\n", []string{"PLR1722 1:1"}},
		{"quit", "PLR1722", "import sys\nquit()\n", []string{"PLR1722 2:1"}},
		{"sys exit", "PLR1722", "import sys\nsys.exit(0)\n", nil},
		{"useless else on for", "PLW0120", "for x in []:\n    pass\nelse:\n    pass\n", []string{"PLW0120 3:1"}},
		{"else with break", "PLW0120", "for x in []:\n    break\nelse:\n    pass\n", nil},
		{"useless else on while", "PLW0120", "while False:\n    pass\nelse:\n    pass\n", []string{"PLW0120 3:1"}},
		{"nested loop break", "PLW0120", "for x in []:\n    for y in []:\n        break\nelse:\n    pass\n", []string{"PLW0120 4:1"}},
		{"self assignment", "PLW0127", "x = 1\nx = x\n", []string{"PLW0127 2:1"}},
		{"tuple self assignment", "PLW0127", "a, b = 1, 2\na, b = a, b\n", []string{"PLW0127 2:1", "PLW0127 2:4"}},
		{"swap", "PLW0127", "a, b = 1, 2\na, b = b, a\n", nil},
		{"class attribute", "PLW0127", "x = 1\nclass C:\n    x = x\n", nil},
		{"redefined argument", "PLR1704", "def f(x):\n    for x in []:\n        pass\n", []string{"PLR1704 2:9"}},
		{"return in init", "PLE0101", "class C:\n    def __init__(self):\n        return 1\n", []string{"PLE0101 3:9"}},
		{"bare return in init", "PLE0101", "class C:\n    def __init__(self):\n        return\n", nil},
		{"await outside async", "PLE1142", "def f():\n    await g()\n", []string{"PLE1142 2:5"}},
		{"await in async", "PLE1142", "async def f():\n    await g()\n", nil},
		{"unreachable", "PLW0101", "def f():\n    return 1\n    x = 2\n    y = 3\n", []string{"PLW0101 3:5"}},
		{"reachable", "PLW0101", "def f(x):\n    if x:\n        return 1\n    return 2\n", nil},
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

func TestLimits(t *testing.T) {
	s := testkit.Settings(t, "PLR0911", "PLR0912", "PLR0914")
	s.Pylint.MaxReturns = 1
	s.Pylint.MaxBranches = 1
	s.Pylint.MaxLocals = 1
	src := "def f(x):\n" +
		"    a = 1\n" +
		"    if x:\n" +
		"        return a\n" +
		"    else:\n" +
		"        return 2\n"
	res := testkit.LintWith(t, "test.py", src, s)
	want := []string{
		"PLR0911 1:5 Too many return statements (2 > 1)",
		"PLR0912 1:5 Too many branches (2 > 1)",
		"PLR0914 1:5 Too many local variables (2/1)",
	}
	codes := testkit.Codes(res)
	var msgs []string
	for i, d := range res.Diagnostics {
		msgs = append(msgs, codes[i]+" "+d.Message)
	}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestUnreachableMessage(t *testing.T) {
	got := testkit.Golden(t, "def f():\n    raise ValueError\n    print(1)\n", "PLW0101")
	if want := "PLW0101 3:5 Unreachable code in `f`"; got != want {
		t.Fatalf("Golden = %q, want %q", got, want)
	}
}

func TestSysExitFix(t *testing.T) {
	if got, want := testkit.Fixed(t, "import sys\nquit()\n", "PLR1722"), "import sys\nsys.exit()\n"; got != want {
		t.Fatalf("Fixed = %q, want %q", got, want)
	}
	if got, want := testkit.Fixed(t, "exit()\n", "PLR1722"), "exit()\n"; got != want {
		t.Fatalf("Fixed without sys import = %q, want %q", got, want)
	}
}
