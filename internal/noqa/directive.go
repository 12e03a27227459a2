package noqa

import (
	"strings"

	"krait/internal/source"
)

// Code is one rule code written inside a directive.
type Code struct {
	Name string
	Span source.Span
}

// Directive is a line-level `# noqa` or `# noqa: CODE, ...` comment.
type Directive struct {
	// Span covers the directive from its '#' through the last code.
	Span  source.Span
	Line  uint32
	All   bool
	Codes []Code
}

// Exemption is a file-level `# ruff: noqa` or `# flake8: noqa` comment.
type Exemption struct {
	Span   source.Span
	All    bool
	Codes  []Code
	Flake8 bool
}

// ParseDirective finds a noqa directive in comment text. base is the file
// offset of text[0]. A directive may follow other content in the same
// comment, e.g. `# type: ignore  # noqa: E501`.
func ParseDirective(text string, base source.Span) (Directive, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '#' {
			continue
		}
		j := skipBlank(text, i+1)
		if !hasPrefixFold(text[j:], "noqa") {
			continue
		}
		k := j + len("noqa")
		if k < len(text) && text[k] == ':' {
			codes, end := lexCodes(text, k+1, base)
			if len(codes) == 0 {
				// `# noqa:` без кодов не считается директивой
				continue
			}
			return Directive{Span: sub(base, i, end), Codes: codes}, true
		}
		if k < len(text) && isWordChar(text[k]) {
			continue
		}
		return Directive{Span: sub(base, i, k), All: true}, true
	}
	return Directive{}, false
}

// ParseExemption recognizes a file-level exemption comment.
func ParseExemption(text string, base source.Span) (Exemption, bool) {
	if !strings.HasPrefix(text, "#") {
		return Exemption{}, false
	}
	i := skipBlank(text, 1)
	var ex Exemption
	switch {
	case hasPrefixFold(text[i:], "ruff"):
		i += len("ruff")
	case hasPrefixFold(text[i:], "flake8"):
		i += len("flake8")
		ex.Flake8 = true
	default:
		return Exemption{}, false
	}
	i = skipBlank(text, i)
	if i >= len(text) || text[i] != ':' {
		return Exemption{}, false
	}
	i = skipBlank(text, i+1)
	if !hasPrefixFold(text[i:], "noqa") {
		return Exemption{}, false
	}
	k := i + len("noqa")
	if k < len(text) && text[k] == ':' {
		codes, end := lexCodes(text, k+1, base)
		if len(codes) > 0 {
			ex.Codes = codes
			ex.Span = sub(base, 0, end)
			return ex, true
		}
	}
	if k < len(text) && isWordChar(text[k]) {
		return Exemption{}, false
	}
	ex.All = true
	ex.Span = sub(base, 0, k)
	return ex, true
}

// lexCodes reads codes separated by commas or blanks starting at i and
// returns them with the offset past the last one.
func lexCodes(text string, i int, base source.Span) ([]Code, int) {
	var codes []Code
	end := i
	for {
		j := i
		for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == ',') {
			j++
		}
		n := codeLen(text[j:])
		if n == 0 {
			return codes, end
		}
		codes = append(codes, Code{Name: text[j : j+n], Span: sub(base, j, j+n)})
		end = j + n
		i = end
	}
}

// codeLen measures a leading `[A-Z]+[0-9]+` code.
func codeLen(s string) int {
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 {
		return 0
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits || (i < len(s) && isWordChar(s[i])) {
		return 0
	}
	return i
}

func sub(base source.Span, start, end int) source.Span {
	return source.Span{File: base.File, Start: base.Start + uint32(start), End: base.Start + uint32(end)} // #nosec G115 -- comment offsets fit in uint32
}

func skipBlank(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func isWordChar(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
