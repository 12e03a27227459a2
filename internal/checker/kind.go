package checker

import "krait/internal/ast"

// Kind is a dispatch point of the traversal.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindModule
	KindSuite

	// statements
	KindFunctionDef
	KindClassDef
	KindReturn
	KindDelete
	KindAssign
	KindAugAssign
	KindAnnAssign
	KindFor
	KindWhile
	KindIf
	KindWith
	KindRaise
	KindTry
	KindAssert
	KindImport
	KindImportFrom
	KindGlobal
	KindNonlocal
	KindExprStmt
	KindPass
	KindBreak
	KindContinue

	// expressions
	KindName
	KindAttribute
	KindCall
	KindCompare
	KindBoolOp
	KindLambda
	// KindString covers str and bytes literals and f-strings.
	KindString
	KindDict
	KindAwait
	// KindYield covers yield and yield from.
	KindYield
	KindNamedExpr
	KindSubscript
	KindComprehension

	KindParameters
	KindParameter
	KindExceptHandler
	KindExceptHandlerExit

	// deferred
	KindForLoop
	KindScope
	KindBinding

	kindCount
)

var kindNames = [...]string{
	KindInvalid:           "invalid",
	KindModule:            "module",
	KindSuite:             "suite",
	KindFunctionDef:       "function-def",
	KindClassDef:          "class-def",
	KindReturn:            "return",
	KindDelete:            "delete",
	KindAssign:            "assign",
	KindAugAssign:         "aug-assign",
	KindAnnAssign:         "ann-assign",
	KindFor:               "for",
	KindWhile:             "while",
	KindIf:                "if",
	KindWith:              "with",
	KindRaise:             "raise",
	KindTry:               "try",
	KindAssert:            "assert",
	KindImport:            "import",
	KindImportFrom:        "import-from",
	KindGlobal:            "global",
	KindNonlocal:          "nonlocal",
	KindExprStmt:          "expr-stmt",
	KindPass:              "pass",
	KindBreak:             "break",
	KindContinue:          "continue",
	KindName:              "name",
	KindAttribute:         "attribute",
	KindCall:              "call",
	KindCompare:           "compare",
	KindBoolOp:            "bool-op",
	KindLambda:            "lambda",
	KindString:            "string",
	KindDict:              "dict",
	KindAwait:             "await",
	KindYield:             "yield",
	KindNamedExpr:         "named-expr",
	KindSubscript:         "subscript",
	KindComprehension:     "comprehension",
	KindParameters:        "parameters",
	KindParameter:         "parameter",
	KindExceptHandler:     "except-handler",
	KindExceptHandlerExit: "except-handler-exit",
	KindForLoop:           "for-loop",
	KindScope:             "scope",
	KindBinding:           "binding",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsValid reports whether k is a dispatch point.
func (k Kind) IsValid() bool { return k > KindInvalid && k < kindCount }

// IsDeferred reports kinds dispatched after the main walk.
func (k Kind) IsDeferred() bool {
	return k == KindForLoop || k == KindScope || k == KindBinding || k == KindModule
}

var stmtKinds = [ast.StmtKindCount]Kind{
	ast.StmtFunctionDef: KindFunctionDef,
	ast.StmtClassDef:    KindClassDef,
	ast.StmtReturn:      KindReturn,
	ast.StmtDelete:      KindDelete,
	ast.StmtAssign:      KindAssign,
	ast.StmtAugAssign:   KindAugAssign,
	ast.StmtAnnAssign:   KindAnnAssign,
	ast.StmtFor:         KindFor,
	ast.StmtWhile:       KindWhile,
	ast.StmtIf:          KindIf,
	ast.StmtWith:        KindWith,
	ast.StmtRaise:       KindRaise,
	ast.StmtTry:         KindTry,
	ast.StmtAssert:      KindAssert,
	ast.StmtImport:      KindImport,
	ast.StmtImportFrom:  KindImportFrom,
	ast.StmtGlobal:      KindGlobal,
	ast.StmtNonlocal:    KindNonlocal,
	ast.StmtExpr:        KindExprStmt,
	ast.StmtPass:        KindPass,
	ast.StmtBreak:       KindBreak,
	ast.StmtContinue:    KindContinue,
}

// StmtKind maps a statement kind to its dispatch point.
func StmtKind(k ast.StmtKind) Kind {
	if int(k) < len(stmtKinds) {
		return stmtKinds[k]
	}
	return KindInvalid
}

var exprKinds = [ast.ExprKindCount]Kind{
	ast.ExprName:      KindName,
	ast.ExprAttribute: KindAttribute,
	ast.ExprCall:      KindCall,
	ast.ExprFString:   KindString,
	ast.ExprCompare:   KindCompare,
	ast.ExprBoolOp:    KindBoolOp,
	ast.ExprLambda:    KindLambda,
	ast.ExprDict:      KindDict,
	ast.ExprListComp:  KindComprehension,
	ast.ExprSetComp:   KindComprehension,
	ast.ExprDictComp:  KindComprehension,
	ast.ExprGenerator: KindComprehension,
	ast.ExprSubscript: KindSubscript,
	ast.ExprAwait:     KindAwait,
	ast.ExprYield:     KindYield,
	ast.ExprYieldFrom: KindYield,
	ast.ExprNamed:     KindNamedExpr,
}

// ExprKind maps an expression to its dispatch point; string literals map
// to KindString, other literals have none.
func ExprKind(exprs *ast.Exprs, id ast.ExprID) Kind {
	k := exprs.Kind(id)
	if k == ast.ExprLiteral {
		if lit, ok := exprs.Literal(id); ok && lit.IsString() {
			return KindString
		}
		return KindInvalid
	}
	if int(k) < len(exprKinds) {
		return exprKinds[k]
	}
	return KindInvalid
}
