package parser

import "testing"

func TestScanString(t *testing.T) {
	tests := []struct {
		in     string
		value  string
		prefix uint32
		f      bool
		bytes  bool
	}{
		{in: `'abc'`, value: "abc"},
		{in: `"a\tb"`, value: "a\tb"},
		{in: `r"a\tb"`, value: `a\tb`, prefix: 1},
		{in: `b'\x41'`, value: "A", prefix: 1, bytes: true},
		{in: `'''x'y'''`, value: "x'y"},
		{in: `f"{x}"`, value: "{x}", prefix: 1, f: true},
		{in: `Rb"\d"`, value: `\d`, prefix: 2, bytes: true},
		{in: `'\d\0'`, value: "\\d\x00"},
		{in: `'it\'s'`, value: "it's"},
		{in: `"unterminated`, value: "unterminated"},
	}
	for _, tt := range tests {
		got := scanString(tt.in)
		if got.value != tt.value || got.prefixLen != tt.prefix || got.f != tt.f || got.bytes != tt.bytes {
			t.Fatalf("scanString(%s) = %+v", tt.in, got)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	if got := normalizeName("plain"); got != "plain" {
		t.Fatalf("ascii changed: %q", got)
	}
	if got := normalizeName("ｆｕｌｌ"); got != "full" {
		t.Fatalf("fullwidth = %q", got)
	}
}
