// Package tidyimports implements flake8-tidy-imports: banned APIs,
// relative import policy and imports that must stay inside functions.
package tidyimports

import (
	"strings"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/rule"
	"krait/internal/settings"
	"krait/internal/source"
)

func Hooks() []checker.Hook {
	return []checker.Hook{
		{Name: "TID251 banned-api import", Kind: checker.KindImport, Rules: []rule.Rule{rule.BannedAPI}, Run: bannedImport},
		{Name: "TID251 banned-api import-from", Kind: checker.KindImportFrom, Rules: []rule.Rule{rule.BannedAPI}, Run: bannedImportFrom},
		{Name: "TID251 banned-api name", Kind: checker.KindName, Rules: []rule.Rule{rule.BannedAPI}, Run: bannedUsage},
		{Name: "TID251 banned-api attribute", Kind: checker.KindAttribute, Rules: []rule.Rule{rule.BannedAPI}, Run: bannedUsage},
		{Name: "TID252 relative-imports", Kind: checker.KindImportFrom, Rules: []rule.Rule{rule.RelativeImports}, Run: relativeImports},
		{Name: "TID253 banned-module-level-imports import", Kind: checker.KindImport, Rules: []rule.Rule{rule.BannedModuleLevelImports}, Run: moduleLevelImport},
		{Name: "TID253 banned-module-level-imports import-from", Kind: checker.KindImportFrom, Rules: []rule.Rule{rule.BannedModuleLevelImports}, Run: moduleLevelImport},
	}
}

func reportBanned(s *checker.Snapshot, span source.Span, dotted string) bool {
	name, msg, ok := s.Settings().IsBanned(dotted)
	if ok {
		s.Reportf(rule.BannedAPI, span, "`%s` is banned: %s", name, msg)
	}
	return ok
}

func bannedImport(s *checker.Snapshot, n checker.Node) {
	imp, ok := s.Stmts().Import(n.Stmt)
	if !ok {
		return
	}
	for _, alias := range imp.Names {
		reportBanned(s, alias.Span, alias.Name)
	}
}

func bannedImportFrom(s *checker.Snapshot, n checker.Node) {
	from, ok := s.Stmts().ImportFrom(n.Stmt)
	if !ok || from.Level > 0 || from.Module == "" {
		return
	}
	if reportBanned(s, n.Span, from.Module) {
		return
	}
	for _, alias := range from.Names {
		reportBanned(s, alias.Span, from.Module+"."+alias.Name)
	}
}

// bannedUsage matches only the exact path; the import statement already
// reported parent modules.
func bannedUsage(s *checker.Snapshot, n checker.Node) {
	exprs := s.Exprs()
	if name, ok := exprs.Name(n.Expr); ok && name.Ctx != ast.Load {
		return
	}
	q, ok := s.Semantic().QualifiedName(exprs, n.Expr)
	if !ok || len(q) == 0 || q[0] == "" {
		return
	}
	dotted := q.String()
	if msg, ok := s.Settings().TidyImports.BannedAPI[dotted]; ok {
		s.Reportf(rule.BannedAPI, n.Span, "`%s` is banned: %s", dotted, msg)
	}
}

func relativeImports(s *checker.Snapshot, n checker.Node) {
	from, ok := s.Stmts().ImportFrom(n.Stmt)
	if !ok || from.Level == 0 {
		return
	}
	switch s.Settings().TidyImports.BanRelativeImports {
	case settings.BanAll:
		s.ReportRule(rule.RelativeImports, n.Span, "Prefer absolute imports over relative imports")
	case settings.BanParents:
		if from.Level > 1 {
			s.ReportRule(rule.RelativeImports, n.Span, "Prefer absolute imports over relative imports from parent modules")
		}
	}
}

func moduleLevelImport(s *checker.Snapshot, n checker.Node) {
	q := s.Semantic()
	if _, inFunc := q.EnclosingFunction(q.CurrentScope()); inFunc {
		return
	}
	banned := s.Settings().TidyImports.BannedModuleLevelImports
	if len(banned) == 0 {
		return
	}
	check := func(span source.Span, module string) {
		for _, b := range banned {
			if module == b || strings.HasPrefix(module, b+".") {
				s.Reportf(rule.BannedModuleLevelImports, span, "`%s` is banned at the module level", b)
				return
			}
		}
	}
	if imp, ok := s.Stmts().Import(n.Stmt); ok {
		for _, alias := range imp.Names {
			check(alias.Span, alias.Name)
		}
		return
	}
	if from, ok := s.Stmts().ImportFrom(n.Stmt); ok && from.Level == 0 {
		check(n.Span, from.Module)
	}
}
