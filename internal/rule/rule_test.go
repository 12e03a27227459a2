package rule

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestCatalogIsComplete(t *testing.T) {
	seen := map[string]Rule{}
	for _, r := range All() {
		m := r.Meta()
		if m.Code == "" || m.Name == "" || m.Summary == "" {
			t.Fatalf("rule %d has incomplete metadata: %+v", r, m)
		}
		if m.Linter == LinterInvalid {
			t.Fatalf("rule %s has no linter", m.Code)
		}
		if !strings.HasPrefix(m.Code, m.Linter.Prefix()) {
			t.Fatalf("rule %s does not start with linter prefix %q", m.Code, m.Linter.Prefix())
		}
		if prev, ok := seen[m.Code]; ok {
			t.Fatalf("code %s used by %d and %d", m.Code, prev, r)
		}
		seen[m.Code] = r
	}
	if len(seen) != Count {
		t.Fatalf("catalog size = %d, want %d", len(seen), Count)
	}
}

func TestRuleOrderMatchesCodeOrder(t *testing.T) {
	codes := AllRules().Codes()
	if !slices.IsSorted(codes) {
		t.Fatalf("codes are not declared in ascending order: %v", codes)
	}
}

func TestFromCodeAndName(t *testing.T) {
	r, ok := FromCode("plw0604")
	if !ok || r != GlobalAtModuleLevel {
		t.Fatalf("FromCode(plw0604) = %v, %v", r, ok)
	}
	r, ok = FromName("unused-import")
	if !ok || r != UnusedImport {
		t.Fatalf("FromName(unused-import) = %v, %v", r, ok)
	}
	if _, ok := FromCode("X999"); ok {
		t.Fatalf("unexpected match for X999")
	}
	if SyntaxError.Suppressible() {
		t.Fatalf("syntax errors must not be suppressible")
	}
	if !UnusedImport.Suppressible() {
		t.Fatalf("F401 must be suppressible")
	}
}

func TestSetOperations(t *testing.T) {
	a := SetOf(UnusedImport, UndefinedName, BareExcept)
	b := SetOf(UndefinedName, TooManyLocals)

	if !a.Contains(UnusedImport) || a.Contains(TooManyLocals) {
		t.Fatalf("Contains mismatch for %v", a)
	}
	if a.Contains(Invalid) || a.Contains(Rule(60000)) {
		t.Fatalf("invalid rules must never be members")
	}
	if got := a.Union(b).Len(); got != 4 {
		t.Fatalf("union len = %d, want 4", got)
	}
	if got := a.Difference(b).Rules(); !slices.Equal(got, []Rule{BareExcept, UnusedImport}) {
		t.Fatalf("difference = %v", got)
	}
	if got := a.Intersect(b).Rules(); !slices.Equal(got, []Rule{UndefinedName}) {
		t.Fatalf("intersect = %v", got)
	}
	// операции возвращают копии
	if a.Len() != 3 {
		t.Fatalf("receiver modified: %v", a)
	}
	a.Remove(BareExcept)
	if a.Contains(BareExcept) {
		t.Fatalf("Remove did not clear the bit")
	}
	if AllRules().Len() != Count {
		t.Fatalf("AllRules len = %d", AllRules().Len())
	}
	if !(Set{}).IsEmpty() {
		t.Fatalf("zero set must be empty")
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		sel     string
		has     []Rule
		hasNot  []Rule
		wantErr bool
	}{
		{sel: "ALL", has: []Rule{UnusedImport, BannedAPI}},
		{sel: "F", has: []Rule{UnusedImport, RaiseNotImplemented}, hasNot: []Rule{BareExcept}},
		{sel: "E7", has: []Rule{BareExcept, AmbiguousVariableName}, hasNot: []Rule{SyntaxError}},
		{sel: "PLW", has: []Rule{GlobalAtModuleLevel}, hasNot: []Rule{NonlocalAndGlobal}},
		{sel: "PL", has: []Rule{GlobalAtModuleLevel, NonlocalAndGlobal, TooManyLocals}},
		{sel: "B", has: []Rule{MutableArgumentDefault}, hasNot: []Rule{BlindExcept}},
		{sel: "pylint", has: []Rule{TooManyArguments}, hasNot: []Rule{UnusedImport}},
		{sel: "unused-variable", has: []Rule{UnusedVariable}, hasNot: []Rule{UnusedImport}},
		{sel: "ZZ1", wantErr: true},
		{sel: "", wantErr: true},
	}
	for _, tt := range tests {
		s, err := Select(tt.sel)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownSelector) {
				t.Fatalf("Select(%q) err = %v, want ErrUnknownSelector", tt.sel, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Select(%q): %v", tt.sel, err)
		}
		for _, r := range tt.has {
			if !s.Contains(r) {
				t.Errorf("Select(%q) misses %s", tt.sel, r)
			}
		}
		for _, r := range tt.hasNot {
			if s.Contains(r) {
				t.Errorf("Select(%q) unexpectedly has %s", tt.sel, r)
			}
		}
	}
}

func TestSelectAllJoinsErrors(t *testing.T) {
	s, err := SelectAll([]string{"F401", "QQ", "E741"})
	if !errors.Is(err, ErrUnknownSelector) {
		t.Fatalf("expected ErrUnknownSelector, got %v", err)
	}
	if !s.Contains(UnusedImport) || !s.Contains(AmbiguousVariableName) {
		t.Fatalf("valid selectors dropped: %v", s)
	}
}
