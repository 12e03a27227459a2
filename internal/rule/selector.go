package rule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSelector is returned for selectors that match no rule.
var ErrUnknownSelector = errors.New("unknown rule selector")

// Select resolves a selector into the set of rules it names.
// Accepted forms: "ALL", an exact code ("E741"), a code prefix ("E7", "PLW"),
// a linter name ("pyflakes") or a rule name ("unused-import").
func Select(selector string) (Set, error) {
	sel := strings.TrimSpace(selector)
	if sel == "" {
		return Set{}, fmt.Errorf("%w: empty selector", ErrUnknownSelector)
	}
	if strings.EqualFold(sel, "ALL") {
		return AllRules(), nil
	}
	if r, ok := FromName(sel); ok {
		return SetOf(r), nil
	}
	if l, ok := LinterByName(sel); ok {
		return ByLinter(l), nil
	}

	prefix := strings.ToUpper(sel)
	// "B" is flake8-bugbear, not every code starting with B
	for _, l := range Linters() {
		if l.Prefix() == prefix {
			return ByLinter(l), nil
		}
	}
	var out Set
	for r := Rule(1); r < numRules; r++ {
		if strings.HasPrefix(metas[r].Code, prefix) {
			out.Insert(r)
		}
	}
	if out.IsEmpty() {
		return Set{}, fmt.Errorf("%w: %q", ErrUnknownSelector, selector)
	}
	return out, nil
}

// SelectAll resolves every selector and unions the results.
func SelectAll(selectors []string) (Set, error) {
	var out Set
	var errs []error
	for _, sel := range selectors {
		s, err := Select(sel)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = out.Union(s)
	}
	return out, errors.Join(errs...)
}

// ByLinter returns all rules of one linter.
func ByLinter(l Linter) Set {
	var out Set
	for r := Rule(1); r < numRules; r++ {
		if metas[r].Linter == l {
			out.Insert(r)
		}
	}
	return out
}
