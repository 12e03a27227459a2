package settings

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"krait/internal/rule"
)

// DefaultDummyVariableRgx matches names that are intentionally unused.
const DefaultDummyVariableRgx = `^(_+|(_+[a-zA-Z0-9_]*[a-zA-Z0-9]+?))$`

// DefaultSelect is the selection used when neither the file nor the
// command line names one.
var DefaultSelect = []string{"E7", "E9", "F"}

// RelativeImportsPolicy is lint.flake8-tidy-imports.ban-relative-imports.
type RelativeImportsPolicy uint8

const (
	// BanParents flags relative imports that reach a parent package.
	BanParents RelativeImportsPolicy = iota
	// BanAll flags every relative import.
	BanAll
)

func (p RelativeImportsPolicy) String() string {
	if p == BanAll {
		return "all"
	}
	return "parents"
}

// ParseRelativeImportsPolicy accepts "parents" and "all".
func ParseRelativeImportsPolicy(s string) (RelativeImportsPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "parents":
		return BanParents, nil
	case "all":
		return BanAll, nil
	default:
		return BanParents, fmt.Errorf("unknown ban-relative-imports policy %q (expected parents|all)", s)
	}
}

type Pylint struct {
	MaxArgs     int
	MaxLocals   int
	MaxReturns  int
	MaxBranches int
}

type McCabe struct {
	MaxComplexity int
}

type Flake8Builtins struct {
	BuiltinsIgnorelist []string
}

type Flake8TidyImports struct {
	BanRelativeImports RelativeImportsPolicy
	// BannedAPI maps a dotted module or member to the message shown.
	BannedAPI                map[string]string
	BannedModuleLevelImports []string
}

type Flake8Bandit struct {
	CheckTypedException bool
}

// PerFileIgnore removes rules for paths matching a glob.
type PerFileIgnore struct {
	Pattern  string
	Selector []string
	Rules    rule.Set
}

// Settings is the resolved linter configuration shared by every file of a run.
type Settings struct {
	Select       []string
	ExtendSelect []string
	Ignore       []string
	// Enabled is the resolved selection; filled by Resolve.
	Enabled        rule.Set
	PerFileIgnores []PerFileIgnore

	DummyVariableRgx *regexp.Regexp
	Builtins         []string

	Pylint         Pylint
	McCabe         McCabe
	Flake8Builtins Flake8Builtins
	TidyImports    Flake8TidyImports
	Bandit         Flake8Bandit

	CacheDir string
	Exclude  []string

	// Root is the directory per-file-ignore patterns are relative to.
	Root string
	// Path is the configuration file the settings came from, if any.
	Path string
}

// Default returns a resolved configuration with upstream defaults.
func Default() *Settings {
	s := &Settings{
		Select:           slices.Clone(DefaultSelect),
		DummyVariableRgx: regexp.MustCompile(DefaultDummyVariableRgx),
		Pylint: Pylint{
			MaxArgs:     5,
			MaxLocals:   15,
			MaxReturns:  6,
			MaxBranches: 12,
		},
		McCabe:      McCabe{MaxComplexity: 10},
		TidyImports: Flake8TidyImports{BannedAPI: map[string]string{}},
		Exclude:     slices.Clone(DefaultExclude),
	}
	if err := s.Resolve(); err != nil {
		panic(fmt.Errorf("default settings: %w", err))
	}
	return s
}

// DefaultExclude lists directories never linted.
var DefaultExclude = []string{
	".git", ".hg", ".mypy_cache", ".nox", ".ruff_cache", ".tox", ".venv",
	"__pycache__", "build", "dist", "node_modules", "venv",
}

// Overrides carries command-line values that win over the file.
type Overrides struct {
	Select       []string
	ExtendSelect []string
	Ignore       []string
	CacheDir     string
}

// Apply merges command-line values and re-resolves the selection.
func (s *Settings) Apply(o Overrides) error {
	if len(o.Select) > 0 {
		s.Select = slices.Clone(o.Select)
	}
	s.ExtendSelect = append(s.ExtendSelect, o.ExtendSelect...)
	s.Ignore = append(s.Ignore, o.Ignore...)
	if o.CacheDir != "" {
		s.CacheDir = o.CacheDir
	}
	return s.Resolve()
}

// Resolve turns selectors into the Enabled set. Every unknown selector
// is reported, wrapping rule.ErrUnknownSelector.
func (s *Settings) Resolve() error {
	selected, selErr := selectAll("select", append(slices.Clone(s.Select), s.ExtendSelect...))
	ignored, ignErr := selectAll("ignore", s.Ignore)
	if err := errors.Join(selErr, ignErr); err != nil {
		return err
	}
	s.Enabled = selected.Difference(ignored)

	for i := range s.PerFileIgnores {
		pfi := &s.PerFileIgnores[i]
		set, err := selectAll("per-file-ignores "+strconv.Quote(pfi.Pattern), pfi.Selector)
		if err != nil {
			return err
		}
		pfi.Rules = set
	}
	return nil
}

// IsDummy reports whether name matches lint.dummy-variable-rgx.
func (s *Settings) IsDummy(name string) bool {
	if s.DummyVariableRgx == nil {
		return false
	}
	return s.DummyVariableRgx.MatchString(name)
}

// EnabledFor returns the enabled rules for one file after per-file ignores.
func (s *Settings) EnabledFor(path string) rule.Set {
	enabled := s.Enabled
	if len(s.PerFileIgnores) == 0 {
		return enabled
	}
	rel := path
	if s.Root != "" {
		if r, err := filepath.Rel(s.Root, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)
	for _, pfi := range s.PerFileIgnores {
		if matchGlob(pfi.Pattern, rel) || matchGlob(pfi.Pattern, base) {
			enabled = enabled.Difference(pfi.Rules)
		}
	}
	return enabled
}

// IsExcluded reports whether a path segment matches an exclude entry.
func (s *Settings) IsExcluded(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range s.Exclude {
		if matchGlob(pattern, slashed) {
			return true
		}
		for _, part := range strings.Split(slashed, "/") {
			if matchGlob(pattern, part) {
				return true
			}
		}
	}
	return false
}

// IsBanned returns the banned-api message for a dotted name, matching
// the name itself or any module prefix.
func (s *Settings) IsBanned(dotted string) (string, string, bool) {
	for name := dotted; name != ""; {
		if msg, ok := s.TidyImports.BannedAPI[name]; ok {
			return name, msg, true
		}
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			break
		}
		name = name[:i]
	}
	return "", "", false
}

// Fingerprint identifies the settings that influence lint results.
func (s *Settings) Fingerprint() string {
	var b strings.Builder
	b.WriteString(s.Enabled.String())
	for _, pfi := range s.PerFileIgnores {
		fmt.Fprintf(&b, "|%s=%s", pfi.Pattern, pfi.Rules.String())
	}
	if s.DummyVariableRgx != nil {
		fmt.Fprintf(&b, "|dummy=%s", s.DummyVariableRgx.String())
	}
	fmt.Fprintf(&b, "|builtins=%s", strings.Join(s.Builtins, ","))
	fmt.Fprintf(&b, "|pylint=%+v|mccabe=%d", s.Pylint, s.McCabe.MaxComplexity)
	fmt.Fprintf(&b, "|a=%s", strings.Join(s.Flake8Builtins.BuiltinsIgnorelist, ","))
	banned := make([]string, 0, len(s.TidyImports.BannedAPI))
	for name, msg := range s.TidyImports.BannedAPI {
		banned = append(banned, name+":"+msg)
	}
	slices.Sort(banned)
	fmt.Fprintf(&b, "|tid=%s;%s;%s", s.TidyImports.BanRelativeImports,
		strings.Join(banned, ","), strings.Join(s.TidyImports.BannedModuleLevelImports, ","))
	fmt.Fprintf(&b, "|s=%v", s.Bandit.CheckTypedException)
	return b.String()
}

// matchGlob is filepath.Match with `**/` prefixes treated as "any directory".
func matchGlob(pattern, name string) bool {
	pattern = filepath.ToSlash(pattern)
	if strings.HasPrefix(pattern, "**/") {
		pattern = pattern[3:]
		parts := strings.Split(name, "/")
		for i := range parts {
			if ok, _ := filepath.Match(pattern, strings.Join(parts[i:], "/")); ok {
				return true
			}
		}
		return false
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}
