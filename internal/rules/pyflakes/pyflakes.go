// Package pyflakes implements the F rules: unused and undefined names,
// import hygiene and a few statement-level mistakes.
package pyflakes

import (
	"krait/internal/checker"
	"krait/internal/rule"
)

// Hooks returns the pyflakes hooks in dispatch order.
func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "F401 unused-import", Kind: checker.KindScope, Rules: []rule.Rule{rule.UnusedImport}, Run: unusedImports},
		{Name: "F402 import-shadowed-by-loop-var", Kind: checker.KindBinding, Rules: []rule.Rule{rule.ImportShadowedByLoopVar}, Run: importShadowedByLoopVar},
		{Name: "F403 import-star", Kind: checker.KindImportFrom, Rules: []rule.Rule{rule.UndefinedLocalWithImportStar}, Run: importStar},
		{Name: "F405/F821 unresolved", Kind: checker.KindModule, Rules: []rule.Rule{rule.UndefinedLocalWithImportStarUsage, rule.UndefinedName}, Run: unresolvedNames},
		{Name: "F541 f-string-missing-placeholders", Kind: checker.KindString, Rules: []rule.Rule{rule.FStringMissingPlaceholders}, Run: fstringMissingPlaceholders},
		{Name: "F631 assert-tuple", Kind: checker.KindAssert, Rules: []rule.Rule{rule.AssertTuple}, Run: assertTuple},
		{Name: "F632 is-literal", Kind: checker.KindCompare, Rules: []rule.Rule{rule.IsLiteral}, Run: isLiteral},
		{Name: "F701 break-outside-loop", Kind: checker.KindBreak, Rules: []rule.Rule{rule.BreakOutsideLoop}, Run: outsideLoop},
		{Name: "F702 continue-outside-loop", Kind: checker.KindContinue, Rules: []rule.Rule{rule.ContinueOutsideLoop}, Run: outsideLoop},
		{Name: "F707 default-except-not-last", Kind: checker.KindTry, Rules: []rule.Rule{rule.DefaultExceptNotLast}, Run: defaultExceptNotLast},
		{Name: "F811 redefined-while-unused", Kind: checker.KindScope, Rules: []rule.Rule{rule.RedefinedWhileUnused}, Run: redefinedWhileUnused},
		{Name: "F822 undefined-export", Kind: checker.KindModule, Rules: []rule.Rule{rule.UndefinedExport}, Run: undefinedExports},
		{Name: "F823 undefined-local", Kind: checker.KindScope, Rules: []rule.Rule{rule.UndefinedLocal}, Run: undefinedLocal},
		{Name: "F841 unused-variable", Kind: checker.KindScope, Rules: []rule.Rule{rule.UnusedVariable}, Run: unusedVariables},
		{Name: "F841 unused-exception-name", Kind: checker.KindExceptHandlerExit, Rules: []rule.Rule{rule.UnusedVariable}, Run: unusedExceptionName},
		{Name: "F901 raise-not-implemented", Kind: checker.KindRaise, Rules: []rule.Rule{rule.RaiseNotImplemented}, Run: raiseNotImplemented},
	}
}
