package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
)

// ConfigNames are the files Discover looks for, in priority order.
var ConfigNames = []string{"krait.toml", ".krait.toml", "pyproject.toml"}

type fileConfig struct {
	CacheDir      string     `toml:"cache-dir"`
	Exclude       []string   `toml:"exclude"`
	ExtendExclude []string   `toml:"extend-exclude"`
	Lint          lintConfig `toml:"lint"`
}

type lintConfig struct {
	Select           []string            `toml:"select"`
	Ignore           []string            `toml:"ignore"`
	ExtendSelect     []string            `toml:"extend-select"`
	PerFileIgnores   map[string][]string `toml:"per-file-ignores"`
	DummyVariableRgx string              `toml:"dummy-variable-rgx"`
	Builtins         []string            `toml:"builtins"`

	Pylint struct {
		MaxArgs     int64 `toml:"max-args"`
		MaxLocals   int64 `toml:"max-locals"`
		MaxReturns  int64 `toml:"max-returns"`
		MaxBranches int64 `toml:"max-branches"`
	} `toml:"pylint"`
	McCabe struct {
		MaxComplexity int64 `toml:"max-complexity"`
	} `toml:"mccabe"`
	Flake8Builtins struct {
		BuiltinsIgnorelist []string `toml:"builtins-ignorelist"`
	} `toml:"flake8-builtins"`
	TidyImports struct {
		BanRelativeImports       string               `toml:"ban-relative-imports"`
		BannedAPI                map[string]bannedAPI `toml:"banned-api"`
		BannedModuleLevelImports []string             `toml:"banned-module-level-imports"`
	} `toml:"flake8-tidy-imports"`
	Bandit struct {
		CheckTypedException bool `toml:"check-typed-exception"`
	} `toml:"flake8-bandit"`
}

type bannedAPI struct {
	Msg string `toml:"msg"`
}

type pyprojectConfig struct {
	Tool struct {
		Krait fileConfig `toml:"krait"`
	} `toml:"tool"`
}

// Discover walks from startDir upwards and loads the first configuration
// file found. Without one, defaults rooted at startDir are returned.
func Discover(startDir string) (*Settings, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		for _, name := range ConfigNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue
				}
				return nil, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
			s, ok, err := load(candidate)
			if err != nil {
				return nil, err
			}
			if ok {
				return s, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	s := Default()
	abs, _ := filepath.Abs(startDir)
	s.Root = abs
	return s, nil
}

// Load reads one configuration file. A pyproject.toml without a
// [tool.krait] table yields defaults.
func Load(path string) (*Settings, error) {
	s, ok, err := load(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		s = Default()
		s.Root = filepath.Dir(path)
		s.Path = path
	}
	return s, nil
}

func load(path string) (*Settings, bool, error) {
	var (
		cfg    fileConfig
		meta   toml.MetaData
		prefix []string
		err    error
	)
	if filepath.Base(path) == "pyproject.toml" {
		var py pyprojectConfig
		meta, err = toml.DecodeFile(path, &py)
		if err != nil {
			return nil, false, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if !meta.IsDefined("tool", "krait") {
			return nil, false, nil
		}
		cfg = py.Tool.Krait
		prefix = []string{"tool", "krait"}
	} else {
		meta, err = toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, false, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
	}
	if err := checkUndecoded(path, meta, prefix); err != nil {
		return nil, false, err
	}

	s := Default()
	s.Path = path
	s.Root = filepath.Dir(path)
	if abs, err := filepath.Abs(s.Root); err == nil {
		s.Root = abs
	}
	if err := apply(s, &cfg, func(keys ...string) bool {
		return meta.IsDefined(append(slices.Clone(prefix), keys...)...)
	}); err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	return s, true, nil
}

func checkUndecoded(path string, meta toml.MetaData, prefix []string) error {
	var unknown []string
	for _, key := range meta.Undecoded() {
		if len(key) < len(prefix) || !slices.Equal(key[:len(prefix)], prefix) {
			continue
		}
		unknown = append(unknown, key.String())
	}
	if len(unknown) == 0 {
		return nil
	}
	return fmt.Errorf("%s: unknown option(s): %s", path, strings.Join(unknown, ", "))
}

func apply(s *Settings, cfg *fileConfig, defined func(keys ...string) bool) error {
	if defined("cache-dir") {
		s.CacheDir = cfg.CacheDir
		if !filepath.IsAbs(s.CacheDir) {
			s.CacheDir = filepath.Join(s.Root, s.CacheDir)
		}
	}
	if defined("exclude") {
		s.Exclude = slices.Clone(cfg.Exclude)
	}
	s.Exclude = append(s.Exclude, cfg.ExtendExclude...)

	lint := &cfg.Lint
	if defined("lint", "select") {
		s.Select = slices.Clone(lint.Select)
	}
	s.Ignore = slices.Clone(lint.Ignore)
	s.ExtendSelect = slices.Clone(lint.ExtendSelect)
	s.Builtins = slices.Clone(lint.Builtins)

	patterns := make([]string, 0, len(lint.PerFileIgnores))
	for pattern := range lint.PerFileIgnores {
		patterns = append(patterns, pattern)
	}
	slices.Sort(patterns)
	for _, pattern := range patterns {
		s.PerFileIgnores = append(s.PerFileIgnores, PerFileIgnore{
			Pattern:  pattern,
			Selector: lint.PerFileIgnores[pattern],
		})
	}

	if defined("lint", "dummy-variable-rgx") {
		re, err := regexp.Compile(lint.DummyVariableRgx)
		if err != nil {
			return fmt.Errorf("lint.dummy-variable-rgx: %w", err)
		}
		s.DummyVariableRgx = re
	}

	ints := []struct {
		key  []string
		src  int64
		dest *int
	}{
		{[]string{"lint", "pylint", "max-args"}, lint.Pylint.MaxArgs, &s.Pylint.MaxArgs},
		{[]string{"lint", "pylint", "max-locals"}, lint.Pylint.MaxLocals, &s.Pylint.MaxLocals},
		{[]string{"lint", "pylint", "max-returns"}, lint.Pylint.MaxReturns, &s.Pylint.MaxReturns},
		{[]string{"lint", "pylint", "max-branches"}, lint.Pylint.MaxBranches, &s.Pylint.MaxBranches},
		{[]string{"lint", "mccabe", "max-complexity"}, lint.McCabe.MaxComplexity, &s.McCabe.MaxComplexity},
	}
	for _, opt := range ints {
		if !defined(opt.key...) {
			continue
		}
		n, err := safecast.Conv[int](opt.src)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: invalid value %d", strings.Join(opt.key, "."), opt.src)
		}
		*opt.dest = n
	}

	s.Flake8Builtins.BuiltinsIgnorelist = slices.Clone(lint.Flake8Builtins.BuiltinsIgnorelist)

	policy, err := ParseRelativeImportsPolicy(lint.TidyImports.BanRelativeImports)
	if err != nil {
		return fmt.Errorf("lint.flake8-tidy-imports: %w", err)
	}
	s.TidyImports.BanRelativeImports = policy
	for name, api := range lint.TidyImports.BannedAPI {
		s.TidyImports.BannedAPI[name] = api.Msg
	}
	s.TidyImports.BannedModuleLevelImports = slices.Clone(lint.TidyImports.BannedModuleLevelImports)
	s.Bandit.CheckTypedException = lint.Bandit.CheckTypedException

	return s.Resolve()
}
