package diag

import (
	"fmt"
	"strings"

	"krait/internal/source"
)

// FormatGolden renders diagnostics one per line as `CODE line:col message`,
// a stable form for golden tests. Fixable diagnostics get a ` [*]` suffix.
func FormatGolden(diags []Diagnostic, file *source.File) string {
	var b strings.Builder
	for i, d := range diags {
		var pos source.LineCol
		if file != nil {
			pos = file.Position(d.Span.Start)
		}
		fmt.Fprintf(&b, "%s %d:%d %s", d.Rule.Code(), pos.Line, pos.Col, sanitizeMessage(d.Message))
		if d.Fixable() {
			b.WriteString(" [*]")
		}
		if i < len(diags)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
