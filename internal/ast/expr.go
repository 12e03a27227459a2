package ast

import (
	"krait/internal/source"
)

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprName
	ExprAttribute
	ExprCall
	ExprLiteral
	ExprFString
	ExprBinOp
	ExprBoolOp
	ExprUnaryOp
	ExprCompare
	ExprIfExp
	ExprLambda
	ExprList
	ExprTuple
	ExprSet
	ExprDict
	ExprListComp
	ExprSetComp
	ExprDictComp
	ExprGenerator
	ExprSubscript
	ExprSlice
	ExprStarred
	ExprAwait
	ExprYield
	ExprYieldFrom
	ExprNamed

	exprKindCount
)

// ExprKindCount is the number of expression kinds including ExprInvalid.
const ExprKindCount = int(exprKindCount)

var exprKindNames = [...]string{
	ExprInvalid:   "invalid",
	ExprName:      "name",
	ExprAttribute: "attribute",
	ExprCall:      "call",
	ExprLiteral:   "literal",
	ExprFString:   "f-string",
	ExprBinOp:     "bin-op",
	ExprBoolOp:    "bool-op",
	ExprUnaryOp:   "unary-op",
	ExprCompare:   "compare",
	ExprIfExp:     "if-exp",
	ExprLambda:    "lambda",
	ExprList:      "list",
	ExprTuple:     "tuple",
	ExprSet:       "set",
	ExprDict:      "dict",
	ExprListComp:  "list-comp",
	ExprSetComp:   "set-comp",
	ExprDictComp:  "dict-comp",
	ExprGenerator: "generator",
	ExprSubscript: "subscript",
	ExprSlice:     "slice",
	ExprStarred:   "starred",
	ExprAwait:     "await",
	ExprYield:     "yield",
	ExprYieldFrom: "yield-from",
	ExprNamed:     "named",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "invalid"
}

// IsComprehension reports whether the kind opens a generator scope.
func (k ExprKind) IsComprehension() bool {
	return k == ExprListComp || k == ExprSetComp || k == ExprDictComp || k == ExprGenerator
}

// Context tells how an expression is used.
type Context uint8

const (
	Load Context = iota
	Store
	Del
)

func (c Context) String() string {
	switch c {
	case Store:
		return "store"
	case Del:
		return "del"
	default:
		return "load"
	}
}

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type NameExpr struct {
	Name string
	Ctx  Context
}

type AttributeExpr struct {
	Value ExprID
	Attr  Identifier
	Ctx   Context
}

// Keyword is a call or class keyword argument; Arg.Name is empty for **kwargs.
type Keyword struct {
	Arg   Identifier
	Value ExprID
	Span  source.Span
}

type CallExpr struct {
	Func     ExprID
	Args     []ExprID
	Keywords []Keyword
}

// Keyword returns the keyword argument with the given name.
func (c *CallExpr) Keyword(name string) (Keyword, bool) {
	for _, kw := range c.Keywords {
		if kw.Arg.Name == name {
			return kw, true
		}
	}
	return Keyword{}, false
}

type LiteralKind uint8

const (
	LitNone LiteralKind = iota + 1
	LitTrue
	LitFalse
	LitInt
	LitFloat
	LitComplex
	LitStr
	LitBytes
	LitEllipsis
)

func (k LiteralKind) String() string {
	switch k {
	case LitNone:
		return "None"
	case LitTrue:
		return "True"
	case LitFalse:
		return "False"
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitComplex:
		return "complex"
	case LitStr:
		return "str"
	case LitBytes:
		return "bytes"
	case LitEllipsis:
		return "Ellipsis"
	default:
		return "invalid"
	}
}

type LiteralExpr struct {
	Kind  LiteralKind
	Raw   string // исходный текст
	Value string // декодированное содержимое строк (без кавычек и префикса)
}

// IsString reports whether the literal is a str or bytes literal.
func (l *LiteralExpr) IsString() bool { return l.Kind == LitStr || l.Kind == LitBytes }

// FStringPart is one piece of an (implicitly concatenated) f-string.
type FStringPart struct {
	Span       source.Span
	PrefixSpan source.Span // span of the prefix letters, empty for plain strings
	IsF        bool
	Values     []ExprID // placeholder expressions
}

type FStringExpr struct {
	Parts []FStringPart
}

// Operator is a binary or augmented-assignment operator.
type Operator uint8

const (
	OpAdd Operator = iota + 1
	OpSub
	OpMult
	OpMatMult
	OpDiv
	OpMod
	OpPow
	OpLShift
	OpRShift
	OpBitOr
	OpBitXor
	OpBitAnd
	OpFloorDiv
)

var operatorText = map[string]Operator{
	"+": OpAdd, "-": OpSub, "*": OpMult, "@": OpMatMult, "/": OpDiv, "%": OpMod, "**": OpPow,
	"<<": OpLShift, ">>": OpRShift, "|": OpBitOr, "^": OpBitXor, "&": OpBitAnd, "//": OpFloorDiv,
}

// ParseOperator maps operator text ("+", "+=", "//=") to an Operator.
func ParseOperator(text string) (Operator, bool) {
	if len(text) > 1 && text[len(text)-1] == '=' {
		text = text[:len(text)-1]
	}
	op, ok := operatorText[text]
	return op, ok
}

type BinOpExpr struct {
	Left  ExprID
	Op    Operator
	Right ExprID
}

type BoolOp uint8

const (
	And BoolOp = iota + 1
	Or
)

type BoolOpExpr struct {
	Op     BoolOp
	Values []ExprID
}

type UnaryOp uint8

const (
	Not UnaryOp = iota + 1
	Invert
	UAdd
	USub
)

type UnaryOpExpr struct {
	Op      UnaryOp
	Operand ExprID
}

type CmpOp uint8

const (
	CmpEq CmpOp = iota + 1
	CmpNotEq
	CmpLt
	CmpLtE
	CmpGt
	CmpGtE
	CmpIs
	CmpIsNot
	CmpIn
	CmpNotIn
)

var cmpOpText = [...]string{
	CmpEq: "==", CmpNotEq: "!=", CmpLt: "<", CmpLtE: "<=", CmpGt: ">", CmpGtE: ">=",
	CmpIs: "is", CmpIsNot: "is not", CmpIn: "in", CmpNotIn: "not in",
}

func (op CmpOp) String() string {
	if int(op) < len(cmpOpText) && op != 0 {
		return cmpOpText[op]
	}
	return "?"
}

// ParseCmpOp maps comparison text to a CmpOp; inner whitespace is ignored.
func ParseCmpOp(text string) (CmpOp, bool) {
	fields := make([]byte, 0, len(text))
	space := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\\' {
			space = len(fields) > 0
			continue
		}
		if space {
			fields = append(fields, ' ')
			space = false
		}
		fields = append(fields, c)
	}
	norm := string(fields)
	if norm == "<>" {
		return CmpNotEq, true
	}
	for op := CmpEq; int(op) < len(cmpOpText); op++ {
		if cmpOpText[op] == norm {
			return op, true
		}
	}
	return 0, false
}

type CompareExpr struct {
	Left        ExprID
	Ops         []CmpOp
	OpSpans     []source.Span
	Comparators []ExprID
}

type IfExpExpr struct {
	Test   ExprID
	Body   ExprID
	Orelse ExprID
}

type LambdaExpr struct {
	Params Parameters
	Body   ExprID
}

// SeqExpr is the payload of list, tuple and set displays.
type SeqExpr struct {
	Elts []ExprID
	Ctx  Context
}

// DictExpr keeps parallel slices; a NoExprID key marks a **spread entry.
type DictExpr struct {
	Keys   []ExprID
	Values []ExprID
}

type Comprehension struct {
	Target  ExprID
	Iter    ExprID
	Ifs     []ExprID
	IsAsync bool
	Span    source.Span
}

// CompExpr is shared by list, set, dict comprehensions and generators.
type CompExpr struct {
	Elt        ExprID // key for dict comprehensions
	Value      ExprID // only dict comprehensions
	Generators []Comprehension
}

type SubscriptExpr struct {
	Value ExprID
	Slice ExprID
	Ctx   Context
}

type SliceExpr struct {
	Lower ExprID
	Upper ExprID
	Step  ExprID
}

type StarredExpr struct {
	Value ExprID
	Ctx   Context
}

// ValueExpr is the payload of await, yield and yield from.
type ValueExpr struct {
	Value ExprID
}

type NamedExpr struct {
	Target ExprID
	Value  ExprID
}
