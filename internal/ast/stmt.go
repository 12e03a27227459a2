package ast

import (
	"krait/internal/source"
)

type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtFunctionDef
	StmtClassDef
	StmtReturn
	StmtDelete
	StmtAssign
	StmtAugAssign
	StmtAnnAssign
	StmtFor
	StmtWhile
	StmtIf
	StmtWith
	StmtRaise
	StmtTry
	StmtAssert
	StmtImport
	StmtImportFrom
	StmtGlobal
	StmtNonlocal
	StmtExpr
	StmtPass
	StmtBreak
	StmtContinue

	stmtKindCount
)

// StmtKindCount is the number of statement kinds including StmtInvalid.
const StmtKindCount = int(stmtKindCount)

var stmtKindNames = [...]string{
	StmtInvalid:     "invalid",
	StmtFunctionDef: "function-def",
	StmtClassDef:    "class-def",
	StmtReturn:      "return",
	StmtDelete:      "delete",
	StmtAssign:      "assign",
	StmtAugAssign:   "aug-assign",
	StmtAnnAssign:   "ann-assign",
	StmtFor:         "for",
	StmtWhile:       "while",
	StmtIf:          "if",
	StmtWith:        "with",
	StmtRaise:       "raise",
	StmtTry:         "try",
	StmtAssert:      "assert",
	StmtImport:      "import",
	StmtImportFrom:  "import-from",
	StmtGlobal:      "global",
	StmtNonlocal:    "nonlocal",
	StmtExpr:        "expr",
	StmtPass:        "pass",
	StmtBreak:       "break",
	StmtContinue:    "continue",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "invalid"
}

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

// Identifier is a name together with the span it was written at.
type Identifier struct {
	Name string
	Span source.Span
}

type FunctionDefStmt struct {
	Name       Identifier
	Decorators []ExprID
	Params     Parameters
	Returns    ExprID
	Body       []StmtID
	IsAsync    bool
}

type ClassDefStmt struct {
	Name       Identifier
	Decorators []ExprID
	Bases      []ExprID
	Keywords   []Keyword
	Body       []StmtID
}

type ReturnStmt struct {
	Value ExprID
}

type DeleteStmt struct {
	Targets []ExprID
}

type AssignStmt struct {
	Targets []ExprID // a = b = value
	Value   ExprID
}

type AugAssignStmt struct {
	Target ExprID
	Op     Operator
	Value  ExprID
}

type AnnAssignStmt struct {
	Target     ExprID
	Annotation ExprID
	Value      ExprID // может отсутствовать
}

type ForStmt struct {
	Target  ExprID
	Iter    ExprID
	Body    []StmtID
	Orelse  []StmtID
	IsAsync bool
}

type WhileStmt struct {
	Test   ExprID
	Body   []StmtID
	Orelse []StmtID
}

// IfStmt stores elif chains as a nested IfStmt alone in Orelse.
type IfStmt struct {
	Test   ExprID
	Body   []StmtID
	Orelse []StmtID
	// Elif marks an if produced from an elif clause.
	Elif bool
}

type WithItem struct {
	Context ExprID
	Vars    ExprID
}

type WithStmt struct {
	Items   []WithItem
	Body    []StmtID
	IsAsync bool
}

type RaiseStmt struct {
	Exc   ExprID
	Cause ExprID
}

type TryStmt struct {
	Body     []StmtID
	Handlers []HandlerID
	Orelse   []StmtID
	Finally  []StmtID
}

type AssertStmt struct {
	Test ExprID
	Msg  ExprID
}

// Alias is one imported name: `a.b as c`.
type Alias struct {
	Name     string // dotted name as written
	AsName   string
	Span     source.Span
	NameSpan source.Span // span of the bound identifier
}

// BoundName returns the local name the alias introduces.
func (a Alias) BoundName() string {
	if a.AsName != "" {
		return a.AsName
	}
	return a.Name
}

type ImportStmt struct {
	Names []Alias
}

type ImportFromStmt struct {
	Module     string // "" for `from . import x`
	ModuleSpan source.Span
	Level      uint32 // number of leading dots
	Names      []Alias
	Star       bool
}

// NamesStmt is the payload of global and nonlocal statements.
type NamesStmt struct {
	Names []Identifier
}

type ExprStmt struct {
	Value ExprID
}

// Handler is one except clause.
type Handler struct {
	Type ExprID
	Name Identifier // Name.Name == "" when no `as` clause
	Body []StmtID
	Span source.Span
	Star bool // except*
}
