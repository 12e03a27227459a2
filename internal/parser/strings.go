package parser

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"krait/internal/ast"
	"krait/internal/source"
)

// stringExpr lowers a string or an implicit concatenation of strings.
// Any f-string part turns the whole expression into an ExprFString.
func (l *lowerer) stringExpr(n *sitter.Node) ast.ExprID {
	parts := []*sitter.Node{n}
	if n.Type() == "concatenated_string" {
		parts = parts[:0]
		for _, c := range named(n) {
			if c.Type() == "string" {
				parts = append(parts, c)
			}
		}
	}
	var (
		fparts  []ast.FStringPart
		value   strings.Builder
		isF     bool
		isBytes bool
	)
	for _, p := range parts {
		raw := l.text(p)
		lit := scanString(raw)
		if strings.Contains(raw, "\n") {
			l.mod.Strings = append(l.mod.Strings, l.span(p))
		}
		part := ast.FStringPart{Span: l.span(p), IsF: lit.f}
		if lit.prefixLen > 0 {
			part.PrefixSpan = source.Span{File: l.file.ID, Start: p.StartByte(), End: p.StartByte() + lit.prefixLen}
		}
		if lit.f {
			isF = true
			l.interpolations(p, &part.Values)
		}
		isBytes = isBytes || lit.bytes
		value.WriteString(lit.value)
		fparts = append(fparts, part)
	}
	span := l.span(n)
	if isF {
		return l.b.Exprs.NewFString(span, fparts)
	}
	kind := ast.LitStr
	if isBytes {
		kind = ast.LitBytes
	}
	return l.b.Exprs.NewLiteral(span, kind, l.text(n), value.String())
}

// interpolations collects placeholder expressions, including the
// ones nested in format specs.
func (l *lowerer) interpolations(n *sitter.Node, out *[]ast.ExprID) {
	for _, c := range named(n) {
		switch c.Type() {
		case "interpolation", "format_expression":
			if e := c.ChildByFieldName("expression"); e != nil {
				*out = append(*out, l.expr(e))
			} else if inner := firstNamed(c); inner != nil && inner.Type() != "type_conversion" && inner.Type() != "format_specifier" {
				*out = append(*out, l.expr(inner))
			}
			for _, inner := range named(c) {
				if inner.Type() == "format_specifier" {
					l.interpolations(inner, out)
				}
			}
		case "string_content", "format_specifier":
			l.interpolations(c, out)
		}
	}
}

type stringLit struct {
	prefixLen uint32
	raw       bool
	f         bool
	bytes     bool
	value     string
}

// scanString splits a literal into prefix and body and decodes the body.
// Unterminated literals decode whatever follows the opening quote.
func scanString(text string) stringLit {
	var lit stringLit
	i := 0
loop:
	for i < len(text) {
		switch text[i] {
		case 'r', 'R':
			lit.raw = true
		case 'f', 'F', 't', 'T':
			lit.f = true
		case 'b', 'B':
			lit.bytes = true
		case 'u', 'U':
		default:
			break loop
		}
		i++
		lit.prefixLen++
	}
	rest := text[i:]
	if rest == "" {
		return lit
	}
	delim := rest[:1]
	if strings.HasPrefix(rest, `"""`) || strings.HasPrefix(rest, `'''`) {
		delim = rest[:3]
	}
	body := rest[len(delim):]
	if strings.HasSuffix(body, delim) {
		body = body[:len(body)-len(delim)]
	}
	if lit.raw {
		lit.value = body
	} else {
		lit.value = unescape(body)
	}
	return lit
}

// unescape decodes backslash escapes; unknown escapes stay verbatim.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		c := s[0]
		if c != '\\' || len(s) == 1 {
			b.WriteByte(c)
			s = s[1:]
			continue
		}
		switch next := s[1]; {
		case next == '\n':
			s = s[2:]
			continue
		case next == '\'' || next == '"':
			b.WriteByte(next)
			s = s[2:]
			continue
		case next >= '0' && next <= '7':
			n, j := 0, 1
			for j < 4 && j < len(s) && s[j] >= '0' && s[j] <= '7' {
				n = n*8 + int(s[j]-'0')
				j++
			}
			b.WriteRune(rune(n))
			s = s[j:]
			continue
		}
		r, multibyte, tail, err := strconv.UnquoteChar(s, 0)
		if err != nil {
			b.WriteByte('\\')
			s = s[1:]
			continue
		}
		if multibyte || r >= 0x80 {
			b.WriteRune(r)
		} else {
			b.WriteByte(byte(r))
		}
		s = tail
	}
	return b.String()
}
