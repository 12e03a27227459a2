package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"krait/internal/diag"
	"krait/internal/linter"
	"krait/internal/source"
)

type palette struct {
	path, code, fix, gutter, caret, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:   color.New(color.Bold),
		code:   color.New(color.FgRed, color.Bold),
		fix:    color.New(color.FgCyan),
		gutter: color.New(color.FgBlue, color.Bold),
		caret:  color.New(color.FgRed),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.path, p.code, p.fix, p.gutter, p.caret, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Text prints one `path:line:col: CODE [*] message` line per diagnostic,
// files in result order, followed by a summary.
func Text(w io.Writer, res *linter.Result, opts Options) error {
	p := newPalette(opts.Color)
	total, fixable := 0, 0
	for i := range res.Files {
		f := &res.Files[i]
		path := opts.path(f.Path)
		if f.Err != nil {
			if _, err := fmt.Fprintf(w, "%s: %s\n", p.path.Sprint(path), f.Err); err != nil {
				return err
			}
			continue
		}
		for _, d := range f.Diagnostics {
			total++
			if d.Fixable() {
				fixable++
			}
			if err := textDiagnostic(w, f.File, path, d, opts, p); err != nil {
				return err
			}
		}
		for _, fault := range f.Faults {
			if _, err := fmt.Fprintf(w, "%s: rule fault: %s\n", p.path.Sprint(path), fault.Error()); err != nil {
				return err
			}
		}
	}
	return summary(w, total, fixable, p)
}

func textDiagnostic(w io.Writer, file *source.File, path string, d diag.Diagnostic, opts Options, p palette) error {
	pos := file.Position(d.Span.Start)
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s ", p.path.Sprint(path), pos.Line, pos.Col, p.code.Sprint(d.Rule.Code()))
	if d.Fixable() {
		b.WriteString(p.fix.Sprint("[*]") + " ")
	}
	b.WriteString(d.Message)
	b.WriteByte('\n')
	if opts.Context {
		writeContext(&b, file, d.Span, opts.Width, p)
		for _, n := range d.Notes {
			np := file.Position(n.Span.Start)
			fmt.Fprintf(&b, "  %s %d:%d: %s\n", p.gutter.Sprint("note"), np.Line, np.Col, n.Msg)
		}
	}
	if opts.ShowFixes && d.Fixable() {
		writeFix(&b, file, d, p)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeContext prints the first line of span with a ^~~~ underline.
// Columns are measured in display cells so wide runes stay aligned.
func writeContext(b *strings.Builder, file *source.File, span source.Span, width int, p palette) {
	pos := file.Position(span.Start)
	line := file.GetLine(pos.Line)
	start := min(int(pos.Col-1), len(line))
	end := start + min(int(span.Len()), len(line)-start)

	num := strconv.FormatUint(uint64(pos.Line), 10)
	pad := strings.Repeat(" ", len(num))
	text := strings.ReplaceAll(line, "\t", " ")
	if width > 0 {
		text = truncate(text, max(width-len(num)-3, 8))
	}
	fmt.Fprintf(b, "%s %s\n", pad, p.gutter.Sprint("|"))
	fmt.Fprintf(b, "%s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), text)
	lead := runewidth.StringWidth(strings.ReplaceAll(line[:start], "\t", " "))
	mark := max(runewidth.StringWidth(line[start:end]), 1)
	fmt.Fprintf(b, "%s %s %s%s\n", pad, p.gutter.Sprint("|"), strings.Repeat(" ", lead),
		p.caret.Sprint("^"+strings.Repeat("~", mark-1)))
}

func writeFix(b *strings.Builder, file *source.File, d diag.Diagnostic, p palette) {
	fmt.Fprintf(b, "  %s %s (%s)\n", p.fix.Sprint("fix:"), d.FixTitle, d.Fix.Applicability)
	for _, edit := range d.Fix.Edits {
		preview, err := buildEditPreview(file, edit)
		if err != nil {
			continue
		}
		for _, l := range preview.before {
			fmt.Fprintf(b, "    %s %s\n", p.caret.Sprint("-"), l)
		}
		for _, l := range preview.after {
			fmt.Fprintf(b, "    %s %s\n", p.fix.Sprint("+"), l)
		}
	}
}

func summary(w io.Writer, total, fixable int, p palette) error {
	if total == 0 {
		_, err := fmt.Fprintln(w, "All checks passed!")
		return err
	}
	noun := "errors"
	if total == 1 {
		noun = "error"
	}
	if _, err := fmt.Fprintf(w, "Found %s %s.\n", p.bold.Sprint(total), noun); err != nil {
		return err
	}
	if fixable > 0 {
		_, err := fmt.Fprintf(w, "%s %d fixable with the shown fixes.\n", p.fix.Sprint("[*]"), fixable)
		return err
	}
	return nil
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
