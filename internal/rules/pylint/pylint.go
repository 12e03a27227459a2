// Package pylint implements the PL rules ported from pylint: global and
// nonlocal misuse, design limits and a handful of error checks.
package pylint

import (
	"krait/internal/checker"
	"krait/internal/rule"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "PLW0604 global-at-module-level", Kind: checker.KindGlobal, Rules: []rule.Rule{rule.GlobalAtModuleLevel}, Run: globalAtModuleLevel},
		{Name: "PLE0118 load-before-global-declaration", Kind: checker.KindGlobal, Rules: []rule.Rule{rule.LoadBeforeGlobalDeclaration}, Run: loadBeforeGlobalDeclaration},
		{Name: "PLE0117 nonlocal-without-binding", Kind: checker.KindNonlocal, Rules: []rule.Rule{rule.NonlocalWithoutBinding}, Run: nonlocalWithoutBinding},
		{Name: "PLE0115/PLW0602/PLW0603 declarations", Kind: checker.KindScope, Rules: []rule.Rule{rule.NonlocalAndGlobal, rule.GlobalVariableNotAssigned, rule.GlobalStatement}, Run: declarations},
		{Name: "PLR0913 too-many-arguments", Kind: checker.KindFunctionDef, Rules: []rule.Rule{rule.TooManyArguments}, Run: tooManyArguments},
		{Name: "PLR0911/PLR0912 function-limits", Kind: checker.KindFunctionDef, Rules: []rule.Rule{rule.TooManyReturnStatements, rule.TooManyBranches}, Run: functionLimits},
		{Name: "PLR0914 too-many-locals", Kind: checker.KindScope, Rules: []rule.Rule{rule.TooManyLocals}, Run: tooManyLocals},
		{Name: "PLR1722 sys-exit-alias", Kind: checker.KindCall, Rules: []rule.Rule{rule.SysExitAlias}, Run: sysExitAlias},
		{Name: "PLW0120 useless-else-on-for", Kind: checker.KindFor, Rules: []rule.Rule{rule.UselessElseOnLoop}, Run: uselessElseOnLoop},
		{Name: "PLW0120 useless-else-on-while", Kind: checker.KindWhile, Rules: []rule.Rule{rule.UselessElseOnLoop}, Run: uselessElseOnLoop},
		{Name: "PLW0127 self-assigning-variable", Kind: checker.KindAssign, Rules: []rule.Rule{rule.SelfAssigningVariable}, Run: selfAssigningVariable},
		{Name: "PLR1704 redefined-argument-from-local", Kind: checker.KindBinding, Rules: []rule.Rule{rule.RedefinedArgumentFromLocal}, Run: redefinedArgumentFromLocal},
		{Name: "PLE0101 return-in-init", Kind: checker.KindReturn, Rules: []rule.Rule{rule.ReturnInInit}, Run: returnInInit},
		{Name: "PLE1142 await-outside-async", Kind: checker.KindAwait, Rules: []rule.Rule{rule.AwaitOutsideAsync}, Run: awaitOutsideAsync},
		{Name: "PLW0101 unreachable-code", Kind: checker.KindSuite, Rules: []rule.Rule{rule.UnreachableCode}, Run: unreachableCode},
	}
}
