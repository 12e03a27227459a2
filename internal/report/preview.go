package report

import (
	"fmt"
	"strings"

	"krait/internal/diag"
	"krait/internal/source"
)

type editPreview struct {
	before []string
	after  []string
}

// buildEditPreview renders the full lines touched by edit before and
// after applying it.
func buildEditPreview(file *source.File, edit diag.Edit) (editPreview, error) {
	if file == nil {
		return editPreview{}, fmt.Errorf("nil file")
	}
	if !file.InBounds(edit.Span) {
		return editPreview{}, fmt.Errorf("edit span %s out of range for %s", edit.Span, file.Path)
	}
	block := file.LineSpan(edit.Span)
	block.End = max(block.End, edit.Span.End)
	original := file.Text(block)

	relStart := int(edit.Span.Start - block.Start)
	relEnd := int(edit.Span.End - block.Start)
	if relStart > len(original) || relEnd < relStart || relEnd > len(original) {
		return editPreview{}, fmt.Errorf("edit span %s out of range for preview block", edit.Span)
	}
	after := original[:relStart] + edit.Content + original[relEnd:]
	return editPreview{
		before: splitPreviewLines(original),
		after:  splitPreviewLines(after),
	}, nil
}

func splitPreviewLines(text string) []string {
	if text == "" {
		return nil
	}
	// последний \n не даёт лишней пустой строки
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
