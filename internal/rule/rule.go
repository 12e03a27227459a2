package rule

import "strings"

// Rule identifies one check of the catalog.
// Declaration order matches ascending code order, so comparing two rules
// numerically is the same as comparing their codes.
type Rule uint16

const (
	Invalid Rule = iota

	BuiltinVariableShadowing  // A001
	BuiltinArgumentShadowing  // A002
	UnusedFunctionArgument    // ARG001
	UnusedMethodArgument      // ARG002
	UnusedLambdaArgument      // ARG005
	MutableArgumentDefault    // B006
	UnusedLoopControlVariable // B007
	AssertFalse               // B011
	JumpStatementInFinally    // B012
	UselessExpression         // B018
	BlindExcept               // BLE001
	ComplexStructure          // C901
	NoneComparison            // E711
	TrueFalseComparison       // E712
	BareExcept                // E722
	LambdaAssignment          // E731
	AmbiguousVariableName     // E741
	SyntaxError               // E999
	UnusedImport              // F401
	ImportShadowedByLoopVar   // F402
	UndefinedLocalWithImportStar
	UndefinedLocalWithImportStarUsage
	FStringMissingPlaceholders
	AssertTuple
	IsLiteral
	BreakOutsideLoop
	ContinueOutsideLoop
	DefaultExceptNotLast
	RedefinedWhileUnused
	UndefinedName
	UndefinedExport
	UndefinedLocal
	UnusedVariable
	RaiseNotImplemented
	InvalidClassName
	InvalidFunctionName
	InvalidFirstArgumentNameForMethod
	NonLowercaseVariableInFunction
	ReturnInInit
	NonlocalAndGlobal
	NonlocalWithoutBinding
	LoadBeforeGlobalDeclaration
	AwaitOutsideAsync
	TooManyReturnStatements
	TooManyBranches
	TooManyArguments
	TooManyLocals
	RedefinedArgumentFromLocal
	SysExitAlias
	UnreachableCode
	UselessElseOnLoop
	SelfAssigningVariable
	GlobalVariableNotAssigned
	GlobalStatement
	GlobalAtModuleLevel
	OsPathAbspath
	OsChmod
	OsMakedirs
	OsMkdir
	OsRename
	OsRemove
	OsGetcwd
	OsPathExists
	OsPathIsdir
	OsPathIsfile
	OsPathJoin
	OsPathBasename
	OsPathDirname
	BuiltinOpen
	MutableClassDefault
	UnusedNOQA
	Assert
	ExecBuiltin
	TryExceptPass
	TryExceptContinue
	SuspiciousEvalUsage
	Print
	PPrint
	BannedAPI
	RelativeImports
	BannedModuleLevelImports

	numRules
)

// Count is the number of rules in the catalog.
const Count = int(numRules) - 1

// FixAvailability tells whether a rule can offer a fix.
type FixAvailability uint8

const (
	FixNone FixAvailability = iota
	FixSometimes
	FixAlways
)

func (f FixAvailability) String() string {
	switch f {
	case FixSometimes:
		return "sometimes"
	case FixAlways:
		return "always"
	default:
		return "none"
	}
}

// Meta is the static description of a rule.
type Meta struct {
	Code    string
	Linter  Linter
	Name    string
	Summary string
	Fix     FixAvailability
	// NoSuppress rules ignore noqa directives.
	NoSuppress bool
}

var metas = [numRules]Meta{
	Invalid: {Code: "", Name: "invalid"},

	BuiltinVariableShadowing:  {Code: "A001", Linter: Flake8Builtins, Name: "builtin-variable-shadowing", Summary: "Variable is shadowing a Python builtin"},
	BuiltinArgumentShadowing:  {Code: "A002", Linter: Flake8Builtins, Name: "builtin-argument-shadowing", Summary: "Function argument is shadowing a Python builtin"},
	UnusedFunctionArgument:    {Code: "ARG001", Linter: Flake8UnusedArguments, Name: "unused-function-argument", Summary: "Unused function argument"},
	UnusedMethodArgument:      {Code: "ARG002", Linter: Flake8UnusedArguments, Name: "unused-method-argument", Summary: "Unused method argument"},
	UnusedLambdaArgument:      {Code: "ARG005", Linter: Flake8UnusedArguments, Name: "unused-lambda-argument", Summary: "Unused lambda argument"},
	MutableArgumentDefault:    {Code: "B006", Linter: Flake8Bugbear, Name: "mutable-argument-default", Summary: "Do not use mutable data structures for argument defaults"},
	UnusedLoopControlVariable: {Code: "B007", Linter: Flake8Bugbear, Name: "unused-loop-control-variable", Summary: "Loop control variable not used within loop body", Fix: FixSometimes},
	AssertFalse:               {Code: "B011", Linter: Flake8Bugbear, Name: "assert-false", Summary: "Do not `assert False`, raise `AssertionError()`", Fix: FixAlways},
	JumpStatementInFinally:    {Code: "B012", Linter: Flake8Bugbear, Name: "jump-statement-in-finally", Summary: "Jump statement in `finally` block"},
	UselessExpression:         {Code: "B018", Linter: Flake8Bugbear, Name: "useless-expression", Summary: "Found useless expression"},
	BlindExcept:               {Code: "BLE001", Linter: Flake8BlindExcept, Name: "blind-except", Summary: "Do not catch blind exception"},
	ComplexStructure:          {Code: "C901", Linter: McCabe, Name: "complex-structure", Summary: "Function is too complex"},
	NoneComparison:            {Code: "E711", Linter: Pycodestyle, Name: "none-comparison", Summary: "Comparison to `None` should be `is` or `is not`", Fix: FixAlways},
	TrueFalseComparison:       {Code: "E712", Linter: Pycodestyle, Name: "true-false-comparison", Summary: "Avoid equality comparisons to `True` or `False`", Fix: FixAlways},
	BareExcept:                {Code: "E722", Linter: Pycodestyle, Name: "bare-except", Summary: "Do not use bare `except`"},
	LambdaAssignment:          {Code: "E731", Linter: Pycodestyle, Name: "lambda-assignment", Summary: "Do not assign a `lambda` expression, use a `def`"},
	AmbiguousVariableName:     {Code: "E741", Linter: Pycodestyle, Name: "ambiguous-variable-name", Summary: "Ambiguous variable name"},
	SyntaxError:               {Code: "E999", Linter: Pycodestyle, Name: "syntax-error", Summary: "Syntax error", NoSuppress: true},

	UnusedImport:                      {Code: "F401", Linter: Pyflakes, Name: "unused-import", Summary: "Module imported but unused", Fix: FixSometimes},
	ImportShadowedByLoopVar:           {Code: "F402", Linter: Pyflakes, Name: "import-shadowed-by-loop-var", Summary: "Import shadowed by loop variable"},
	UndefinedLocalWithImportStar:      {Code: "F403", Linter: Pyflakes, Name: "undefined-local-with-import-star", Summary: "`from module import *` used; unable to detect undefined names"},
	UndefinedLocalWithImportStarUsage: {Code: "F405", Linter: Pyflakes, Name: "undefined-local-with-import-star-usage", Summary: "Name may be undefined, or defined from star imports"},
	FStringMissingPlaceholders:        {Code: "F541", Linter: Pyflakes, Name: "f-string-missing-placeholders", Summary: "f-string without any placeholders", Fix: FixAlways},
	AssertTuple:                       {Code: "F631", Linter: Pyflakes, Name: "assert-tuple", Summary: "Assert test is a non-empty tuple, which is always `True`"},
	IsLiteral:                         {Code: "F632", Linter: Pyflakes, Name: "is-literal", Summary: "Use `==` to compare constant literals", Fix: FixAlways},
	BreakOutsideLoop:                  {Code: "F701", Linter: Pyflakes, Name: "break-outside-loop", Summary: "`break` outside loop"},
	ContinueOutsideLoop:               {Code: "F702", Linter: Pyflakes, Name: "continue-outside-loop", Summary: "`continue` not properly in loop"},
	DefaultExceptNotLast:              {Code: "F707", Linter: Pyflakes, Name: "default-except-not-last", Summary: "An `except` block as not the last exception handler"},
	RedefinedWhileUnused:              {Code: "F811", Linter: Pyflakes, Name: "redefined-while-unused", Summary: "Redefinition of unused name", Fix: FixSometimes},
	UndefinedName:                     {Code: "F821", Linter: Pyflakes, Name: "undefined-name", Summary: "Undefined name"},
	UndefinedExport:                   {Code: "F822", Linter: Pyflakes, Name: "undefined-export", Summary: "Undefined name in `__all__`"},
	UndefinedLocal:                    {Code: "F823", Linter: Pyflakes, Name: "undefined-local", Summary: "Local variable referenced before assignment"},
	UnusedVariable:                    {Code: "F841", Linter: Pyflakes, Name: "unused-variable", Summary: "Local variable is assigned to but never used", Fix: FixSometimes},
	RaiseNotImplemented:               {Code: "F901", Linter: Pyflakes, Name: "raise-not-implemented", Summary: "`raise NotImplemented` should be `raise NotImplementedError`", Fix: FixSometimes},

	InvalidClassName:                  {Code: "N801", Linter: PEP8Naming, Name: "invalid-class-name", Summary: "Class name should use CapWords convention"},
	InvalidFunctionName:               {Code: "N802", Linter: PEP8Naming, Name: "invalid-function-name", Summary: "Function name should be lowercase"},
	InvalidFirstArgumentNameForMethod: {Code: "N805", Linter: PEP8Naming, Name: "invalid-first-argument-name-for-method", Summary: "First argument of a method should be named `self`"},
	NonLowercaseVariableInFunction:    {Code: "N806", Linter: PEP8Naming, Name: "non-lowercase-variable-in-function", Summary: "Variable in function should be lowercase"},

	ReturnInInit:                {Code: "PLE0101", Linter: Pylint, Name: "return-in-init", Summary: "Explicit return in `__init__`"},
	NonlocalAndGlobal:           {Code: "PLE0115", Linter: Pylint, Name: "nonlocal-and-global", Summary: "Name is both `nonlocal` and `global`"},
	NonlocalWithoutBinding:      {Code: "PLE0117", Linter: Pylint, Name: "nonlocal-without-binding", Summary: "Nonlocal name found without binding"},
	LoadBeforeGlobalDeclaration: {Code: "PLE0118", Linter: Pylint, Name: "load-before-global-declaration", Summary: "Name is used prior to global declaration"},
	AwaitOutsideAsync:           {Code: "PLE1142", Linter: Pylint, Name: "await-outside-async", Summary: "`await` should be used within an async function"},
	TooManyReturnStatements:     {Code: "PLR0911", Linter: Pylint, Name: "too-many-return-statements", Summary: "Too many return statements"},
	TooManyBranches:             {Code: "PLR0912", Linter: Pylint, Name: "too-many-branches", Summary: "Too many branches"},
	TooManyArguments:            {Code: "PLR0913", Linter: Pylint, Name: "too-many-arguments", Summary: "Too many arguments in function definition"},
	TooManyLocals:               {Code: "PLR0914", Linter: Pylint, Name: "too-many-locals", Summary: "Too many local variables"},
	RedefinedArgumentFromLocal:  {Code: "PLR1704", Linter: Pylint, Name: "redefined-argument-from-local", Summary: "Redefining argument with the local name"},
	SysExitAlias:                {Code: "PLR1722", Linter: Pylint, Name: "sys-exit-alias", Summary: "Use `sys.exit()` instead of `exit` or `quit`"},
	UnreachableCode:             {Code: "PLW0101", Linter: Pylint, Name: "unreachable-code", Summary: "Unreachable code"},
	UselessElseOnLoop:           {Code: "PLW0120", Linter: Pylint, Name: "useless-else-on-loop", Summary: "`else` clause on loop without a `break` statement"},
	SelfAssigningVariable:       {Code: "PLW0127", Linter: Pylint, Name: "self-assigning-variable", Summary: "Self-assignment of variable"},
	GlobalVariableNotAssigned:   {Code: "PLW0602", Linter: Pylint, Name: "global-variable-not-assigned", Summary: "Using global for a name but no assignment is done"},
	GlobalStatement:             {Code: "PLW0603", Linter: Pylint, Name: "global-statement", Summary: "Using the global statement to update a name is discouraged"},
	GlobalAtModuleLevel:         {Code: "PLW0604", Linter: Pylint, Name: "global-at-module-level", Summary: "`global` at module level is redundant"},

	OsPathAbspath:  {Code: "PTH100", Linter: Flake8UsePathlib, Name: "os-path-abspath", Summary: "`os.path.abspath()` should be replaced by `Path.resolve()`"},
	OsChmod:        {Code: "PTH101", Linter: Flake8UsePathlib, Name: "os-chmod", Summary: "`os.chmod()` should be replaced by `Path.chmod()`"},
	OsMakedirs:     {Code: "PTH102", Linter: Flake8UsePathlib, Name: "os-makedirs", Summary: "`os.makedirs()` should be replaced by `Path.mkdir(parents=True)`"},
	OsMkdir:        {Code: "PTH103", Linter: Flake8UsePathlib, Name: "os-mkdir", Summary: "`os.mkdir()` should be replaced by `Path.mkdir()`"},
	OsRename:       {Code: "PTH104", Linter: Flake8UsePathlib, Name: "os-rename", Summary: "`os.rename()` should be replaced by `Path.rename()`"},
	OsRemove:       {Code: "PTH107", Linter: Flake8UsePathlib, Name: "os-remove", Summary: "`os.remove()` should be replaced by `Path.unlink()`"},
	OsGetcwd:       {Code: "PTH109", Linter: Flake8UsePathlib, Name: "os-getcwd", Summary: "`os.getcwd()` should be replaced by `Path.cwd()`"},
	OsPathExists:   {Code: "PTH110", Linter: Flake8UsePathlib, Name: "os-path-exists", Summary: "`os.path.exists()` should be replaced by `Path.exists()`"},
	OsPathIsdir:    {Code: "PTH112", Linter: Flake8UsePathlib, Name: "os-path-isdir", Summary: "`os.path.isdir()` should be replaced by `Path.is_dir()`"},
	OsPathIsfile:   {Code: "PTH113", Linter: Flake8UsePathlib, Name: "os-path-isfile", Summary: "`os.path.isfile()` should be replaced by `Path.is_file()`"},
	OsPathJoin:     {Code: "PTH118", Linter: Flake8UsePathlib, Name: "os-path-join", Summary: "`os.path.join()` should be replaced by `Path` with `/` operator"},
	OsPathBasename: {Code: "PTH119", Linter: Flake8UsePathlib, Name: "os-path-basename", Summary: "`os.path.basename()` should be replaced by `Path.name`"},
	OsPathDirname:  {Code: "PTH120", Linter: Flake8UsePathlib, Name: "os-path-dirname", Summary: "`os.path.dirname()` should be replaced by `Path.parent`"},
	BuiltinOpen:    {Code: "PTH123", Linter: Flake8UsePathlib, Name: "builtin-open", Summary: "`open()` should be replaced by `Path.open()`"},

	MutableClassDefault: {Code: "RUF012", Linter: Ruff, Name: "mutable-class-default", Summary: "Mutable class attributes should be annotated with `typing.ClassVar`"},
	UnusedNOQA:          {Code: "RUF100", Linter: Ruff, Name: "unused-noqa", Summary: "Unused `noqa` directive", Fix: FixAlways},

	Assert:              {Code: "S101", Linter: Flake8Bandit, Name: "assert", Summary: "Use of `assert` detected"},
	ExecBuiltin:         {Code: "S102", Linter: Flake8Bandit, Name: "exec-builtin", Summary: "Use of `exec` detected"},
	TryExceptPass:       {Code: "S110", Linter: Flake8Bandit, Name: "try-except-pass", Summary: "`try`-`except`-`pass` detected, consider logging the exception"},
	TryExceptContinue:   {Code: "S112", Linter: Flake8Bandit, Name: "try-except-continue", Summary: "`try`-`except`-`continue` detected, consider logging the exception"},
	SuspiciousEvalUsage: {Code: "S307", Linter: Flake8Bandit, Name: "suspicious-eval-usage", Summary: "Use of possibly insecure function; consider using `ast.literal_eval`"},

	Print:  {Code: "T201", Linter: Flake8Print, Name: "print", Summary: "`print` found"},
	PPrint: {Code: "T203", Linter: Flake8Print, Name: "p-print", Summary: "`pprint` found"},

	BannedAPI:                {Code: "TID251", Linter: Flake8TidyImports, Name: "banned-api", Summary: "Banned module or member"},
	RelativeImports:          {Code: "TID252", Linter: Flake8TidyImports, Name: "relative-imports", Summary: "Prefer absolute imports over relative imports", Fix: FixSometimes},
	BannedModuleLevelImports: {Code: "TID253", Linter: Flake8TidyImports, Name: "banned-module-level-imports", Summary: "Module must be imported within a function"},
}

var byCode = func() map[string]Rule {
	m := make(map[string]Rule, Count)
	for r := Rule(1); r < numRules; r++ {
		m[metas[r].Code] = r
	}
	return m
}()

var byName = func() map[string]Rule {
	m := make(map[string]Rule, Count)
	for r := Rule(1); r < numRules; r++ {
		m[metas[r].Name] = r
	}
	return m
}()

// IsValid reports whether r names a catalog rule.
func (r Rule) IsValid() bool { return r > Invalid && r < numRules }

// Meta returns the static metadata of the rule.
func (r Rule) Meta() Meta {
	if !r.IsValid() {
		return metas[Invalid]
	}
	return metas[r]
}

// Code returns the rule code such as "F401".
func (r Rule) Code() string { return r.Meta().Code }

// Name returns the kebab-case rule name.
func (r Rule) Name() string { return r.Meta().Name }

// Linter returns the linter the rule belongs to.
func (r Rule) Linter() Linter { return r.Meta().Linter }

// Suppressible reports whether noqa directives may silence the rule.
func (r Rule) Suppressible() bool { return !r.Meta().NoSuppress }

func (r Rule) String() string { return r.Code() }

// FromCode looks up a rule by exact code.
func FromCode(code string) (Rule, bool) {
	r, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// FromName looks up a rule by its kebab-case name.
func FromName(name string) (Rule, bool) {
	r, ok := byName[name]
	return r, ok
}

// All returns every catalog rule in code order.
func All() []Rule {
	out := make([]Rule, 0, Count)
	for r := Rule(1); r < numRules; r++ {
		out = append(out, r)
	}
	return out
}
