package report

import (
	"encoding/json"
	"io"

	"krait/internal/diag"
	"krait/internal/linter"
	"krait/internal/source"
)

// LocationJSON is a 1-based row and column.
type LocationJSON struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

// EditJSON is one text edit of a fix.
type EditJSON struct {
	Content     string       `json:"content"`
	Location    LocationJSON `json:"location"`
	EndLocation LocationJSON `json:"end_location"`
}

// FixJSON describes a fix; it is never applied by krait.
type FixJSON struct {
	Applicability string     `json:"applicability"`
	Message       string     `json:"message"`
	Edits         []EditJSON `json:"edits"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Message     string       `json:"message"`
	Filename    string       `json:"filename"`
	Location    LocationJSON `json:"location"`
	EndLocation LocationJSON `json:"end_location"`
	NoqaRow     uint32       `json:"noqa_row"`
	Notes       []NoteJSON   `json:"notes,omitempty"`
	Fix         *FixJSON     `json:"fix"`
}

// ErrorJSON is a file that could not be read.
type ErrorJSON struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// Output is the root of the JSON document.
type Output struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Errors      []ErrorJSON      `json:"errors,omitempty"`
	Count       int              `json:"count"`
	Suppressed  int              `json:"suppressed"`
}

func location(file *source.File, off uint32) LocationJSON {
	pos := file.Position(off)
	return LocationJSON{Row: pos.Line, Column: pos.Col}
}

// BuildOutput формирует структуру JSON-вывода без сериализации.
func BuildOutput(res *linter.Result, opts Options) Output {
	out := Output{Diagnostics: make([]DiagnosticJSON, 0, res.Diagnostics())}
	for i := range res.Files {
		f := &res.Files[i]
		path := opts.path(f.Path)
		if f.Err != nil {
			out.Errors = append(out.Errors, ErrorJSON{Filename: path, Message: f.Err.Error()})
			continue
		}
		out.Suppressed += f.Suppressed
		for _, d := range f.Diagnostics {
			out.Diagnostics = append(out.Diagnostics, diagnosticJSON(f.File, path, d))
		}
	}
	out.Count = len(out.Diagnostics)
	return out
}

func diagnosticJSON(file *source.File, path string, d diag.Diagnostic) DiagnosticJSON {
	dj := DiagnosticJSON{
		Code:        d.Rule.Code(),
		Name:        d.Rule.Name(),
		Message:     d.Message,
		Filename:    path,
		Location:    location(file, d.Span.Start),
		EndLocation: location(file, d.Span.End),
		NoqaRow:     file.Position(d.Span.Start).Line,
	}
	for _, n := range d.Notes {
		dj.Notes = append(dj.Notes, NoteJSON{Message: n.Msg, Location: location(file, n.Span.Start)})
	}
	if d.Fixable() {
		fj := &FixJSON{Applicability: d.Fix.Applicability.String(), Message: d.FixTitle}
		for _, e := range d.Fix.Edits {
			fj.Edits = append(fj.Edits, EditJSON{
				Content:     e.Content,
				Location:    location(file, e.Span.Start),
				EndLocation: location(file, e.Span.End),
			})
		}
		dj.Fix = fj
	}
	return dj
}

// JSON writes the indented JSON document.
func JSON(w io.Writer, res *linter.Result, opts Options) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildOutput(res, opts))
}
