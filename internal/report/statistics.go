package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/mattn/go-runewidth"

	"krait/internal/linter"
	"krait/internal/rule"
)

// Stat is one row of the statistics table.
type Stat struct {
	Rule    rule.Rule
	Count   int
	Fixable bool
}

// Stats counts diagnostics per rule, most frequent first, ties by code.
func Stats(res *linter.Result) []Stat {
	idx := make(map[rule.Rule]int)
	var out []Stat
	for i := range res.Files {
		for _, d := range res.Files[i].Diagnostics {
			j, ok := idx[d.Rule]
			if !ok {
				j = len(out)
				idx[d.Rule] = j
				out = append(out, Stat{Rule: d.Rule})
			}
			out[j].Count++
			out[j].Fixable = out[j].Fixable || d.Fixable()
		}
	}
	slices.SortFunc(out, func(a, b Stat) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Rule.Code(), b.Rule.Code())
	})
	return out
}

// Statistics prints `count  code  [*] name` rows with aligned columns.
func Statistics(w io.Writer, res *linter.Result, opts Options) error {
	p := newPalette(opts.Color)
	stats := Stats(res)
	countWidth, codeWidth := 0, 0
	anyFix := false
	for _, s := range stats {
		countWidth = max(countWidth, len(strconv.Itoa(s.Count)))
		codeWidth = max(codeWidth, runewidth.StringWidth(s.Rule.Code()))
		anyFix = anyFix || s.Fixable
	}
	for _, s := range stats {
		marker := ""
		if anyFix {
			marker = "    "
			if s.Fixable {
				marker = p.fix.Sprint("[*]") + " "
			}
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%s%s\n",
			runewidth.FillLeft(strconv.Itoa(s.Count), countWidth),
			p.code.Sprint(runewidth.FillRight(s.Rule.Code(), codeWidth)),
			marker, s.Rule.Name())
		if err != nil {
			return err
		}
	}
	return nil
}
