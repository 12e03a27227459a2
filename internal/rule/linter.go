package rule

// Linter is the upstream tool a rule family originates from.
type Linter uint8

const (
	LinterInvalid Linter = iota
	Flake8Builtins
	Flake8UnusedArguments
	Flake8Bugbear
	Flake8BlindExcept
	McCabe
	Pycodestyle
	Pyflakes
	PEP8Naming
	Pylint
	Flake8UsePathlib
	Ruff
	Flake8Bandit
	Flake8Print
	Flake8TidyImports
)

type linterInfo struct {
	prefix string
	name   string
}

var linters = [...]linterInfo{
	LinterInvalid:         {"", "invalid"},
	Flake8Builtins:        {"A", "flake8-builtins"},
	Flake8UnusedArguments: {"ARG", "flake8-unused-arguments"},
	Flake8Bugbear:         {"B", "flake8-bugbear"},
	Flake8BlindExcept:     {"BLE", "flake8-blind-except"},
	McCabe:                {"C90", "mccabe"},
	Pycodestyle:           {"E", "pycodestyle"},
	Pyflakes:              {"F", "pyflakes"},
	PEP8Naming:            {"N", "pep8-naming"},
	Pylint:                {"PL", "pylint"},
	Flake8UsePathlib:      {"PTH", "flake8-use-pathlib"},
	Ruff:                  {"RUF", "ruff"},
	Flake8Bandit:          {"S", "flake8-bandit"},
	Flake8Print:           {"T20", "flake8-print"},
	Flake8TidyImports:     {"TID", "flake8-tidy-imports"},
}

// Prefix returns the code prefix shared by every rule of the linter.
func (l Linter) Prefix() string {
	if int(l) >= len(linters) {
		return ""
	}
	return linters[l].prefix
}

// String returns the linter's canonical name.
func (l Linter) String() string {
	if int(l) >= len(linters) {
		return "invalid"
	}
	return linters[l].name
}

// Linters returns every known linter in prefix order.
func Linters() []Linter {
	out := make([]Linter, 0, len(linters)-1)
	for l := Flake8Builtins; int(l) < len(linters); l++ {
		out = append(out, l)
	}
	return out
}

// LinterByName finds a linter by its canonical name.
func LinterByName(name string) (Linter, bool) {
	for l := Flake8Builtins; int(l) < len(linters); l++ {
		if linters[l].name == name {
			return l, true
		}
	}
	return LinterInvalid, false
}
