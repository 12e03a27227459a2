package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"krait/internal/rule"
)

// ErrUnknownSelector is rule.ErrUnknownSelector, re-exported for callers
// that only depend on settings.
var ErrUnknownSelector = rule.ErrUnknownSelector

const maxSuggestions = 3

// selectAll resolves selectors of one option, collecting every failure.
func selectAll(option string, selectors []string) (rule.Set, error) {
	var out rule.Set
	var errs []error
	for _, sel := range selectors {
		set, err := rule.Select(sel)
		if err != nil {
			if hint := Suggest(sel); len(hint) > 0 {
				err = fmt.Errorf("%s: %w (did you mean %s?)", option, err, strings.Join(hint, ", "))
			} else {
				err = fmt.Errorf("%s: %w", option, err)
			}
			errs = append(errs, err)
			continue
		}
		out = out.Union(set)
	}
	return out, errors.Join(errs...)
}

var candidates = func() []string {
	out := make([]string, 0, 2*rule.Count)
	for _, r := range rule.All() {
		out = append(out, r.Code(), r.Name())
	}
	for _, l := range rule.Linters() {
		out = append(out, l.String())
	}
	return out
}()

// Suggest returns rule codes, rule names or linter names close to an
// unknown selector, best match first.
func Suggest(selector string) []string {
	sel := strings.TrimSpace(selector)
	if sel == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, pattern := range []string{strings.ToUpper(sel), strings.ToLower(sel)} {
		for _, m := range fuzzy.Find(pattern, candidates) {
			if seen[m.Str] {
				continue
			}
			seen[m.Str] = true
			out = append(out, m.Str)
			if len(out) == maxSuggestions {
				return out
			}
		}
	}
	return out
}
