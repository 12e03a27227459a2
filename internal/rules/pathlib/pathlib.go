// Package pathlib flags os and os.path calls that have a pathlib
// replacement.
package pathlib

import (
	"maps"
	"slices"

	"krait/internal/ast"
	"krait/internal/checker"
	"krait/internal/rule"
	"krait/internal/rules/internal/pyutil"
)

var replacements = map[string]rule.Rule{
	"os.path.abspath":  rule.OsPathAbspath,
	"os.chmod":         rule.OsChmod,
	"os.makedirs":      rule.OsMakedirs,
	"os.mkdir":         rule.OsMkdir,
	"os.rename":        rule.OsRename,
	"os.remove":        rule.OsRemove,
	"os.getcwd":        rule.OsGetcwd,
	"os.path.exists":   rule.OsPathExists,
	"os.path.isdir":    rule.OsPathIsdir,
	"os.path.isfile":   rule.OsPathIsfile,
	"os.path.join":     rule.OsPathJoin,
	"os.path.basename": rule.OsPathBasename,
	"os.path.dirname":  rule.OsPathDirname,
}

func Hooks() []checker.Hook {
	rules := append(slices.Sorted(maps.Values(replacements)), rule.BuiltinOpen)
	return []checker.Hook{
		{Name: "PTH os-calls", Kind: checker.KindCall, Rules: rules, Run: osCalls},
	}
}

func osCalls(s *checker.Snapshot, n checker.Node) {
	exprs := s.Exprs()
	call, ok := exprs.Call(n.Expr)
	if !ok {
		return
	}
	if pyutil.IsBuiltinCall(s, call, "open") {
		// open(fd) и open(..., opener=...) не заменяются на Path.open
		if len(call.Args) > 0 && exprs.IsLiteral(call.Args[0], ast.LitInt) {
			return
		}
		if _, ok := call.Keyword("opener"); ok {
			return
		}
		s.ReportRule(rule.BuiltinOpen, exprs.Span(call.Func), rule.BuiltinOpen.Meta().Summary)
		return
	}
	q, ok := s.Semantic().QualifiedName(exprs, call.Func)
	if !ok {
		return
	}
	if r, ok := replacements[q.String()]; ok {
		s.ReportRule(r, exprs.Span(call.Func), r.Meta().Summary)
	}
}
