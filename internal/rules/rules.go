// Package rules assembles the hook registry of every rule package.
package rules

import (
	"sync"

	"krait/internal/checker"
	"krait/internal/rules/bandit"
	"krait/internal/rules/blindexcept"
	"krait/internal/rules/bugbear"
	"krait/internal/rules/builtins"
	"krait/internal/rules/mccabe"
	"krait/internal/rules/naming"
	"krait/internal/rules/pathlib"
	"krait/internal/rules/printcalls"
	"krait/internal/rules/pycodestyle"
	"krait/internal/rules/pyflakes"
	"krait/internal/rules/pylint"
	"krait/internal/rules/ruff"
	"krait/internal/rules/tidyimports"
	"krait/internal/rules/unusedargs"
)

// Registry returns the process-wide registry. Hook order within a kind
// is the order of the lists below.
var Registry = sync.OnceValues(func() (*checker.Registry, error) {
	return checker.NewRegistry(
		pyflakes.Hooks(),
		pycodestyle.Hooks(),
		pylint.Hooks(),
		bugbear.Hooks(),
		builtins.Hooks(),
		unusedargs.Hooks(),
		naming.Hooks(),
		bandit.Hooks(),
		blindexcept.Hooks(),
		mccabe.Hooks(),
		pathlib.Hooks(),
		printcalls.Hooks(),
		tidyimports.Hooks(),
		ruff.Hooks(),
	)
})
