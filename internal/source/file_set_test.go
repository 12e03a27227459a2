package source

import "testing"

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("pkg/mod.py", []byte("x = 1\n"), 0)
	id2 := fs.Add("pkg/./mod.py", []byte("x = 2\n"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}
	latest, ok := fs.GetLatest("pkg/mod.py")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d, true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "x = 1\n" {
		t.Fatalf("first version content = %q", got)
	}
	if fs.Get(FileID(42)) != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestAddVirtualNormalizes(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("<stdin>", []byte("\xEF\xBB\xBFa = 1\r\nb = 2\r\n"))
	f := fs.Get(id)
	if string(f.Content) != "a = 1\nb = 2\n" {
		t.Fatalf("content = %q", f.Content)
	}
	want := FileVirtual | FileHadBOM | FileNormalizedCRLF
	if f.Flags != want {
		t.Fatalf("flags = %b, want %b", f.Flags, want)
	}
	if len(f.LineIdx) != 2 || f.LineIdx[0] != 5 || f.LineIdx[1] != 11 {
		t.Fatalf("LineIdx = %v", f.LineIdx)
	}
}

func TestPositionAndLines(t *testing.T) {
	f := NewFile(0, "m.py", []byte("import os\n\ndef f():\n    pass\n"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{7, LineCol{1, 8}},
		{9, LineCol{1, 10}}, // сам '\n' относится к первой строке
		{10, LineCol{2, 1}},
		{11, LineCol{3, 1}},
		{24, LineCol{4, 5}},
	}
	for _, tt := range tests {
		if got := f.Position(tt.off); got != tt.want {
			t.Errorf("Position(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}

	if got := f.GetLine(3); got != "def f():" {
		t.Fatalf("GetLine(3) = %q", got)
	}
	if got := f.GetLine(2); got != "" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.LineCount(); got != 4 {
		t.Fatalf("LineCount = %d, want 4", got)
	}
	if got := f.Text(Span{Start: 7, End: 9}); got != "os" {
		t.Fatalf("Text = %q", got)
	}
	if got := f.Text(Span{Start: 24, End: 500}); got != "pass\n" {
		t.Fatalf("clamped Text = %q", got)
	}
}

func TestOffsetCountsRunes(t *testing.T) {
	f := NewFile(0, "u.py", []byte("x = 1\nπ = 'é'; y\n"))
	// column 10 (1-based, runes) is "y"
	off := f.Offset(2, 10)
	if got := f.Text(Span{Start: off, End: off + 1}); got != "y" {
		t.Fatalf("Offset(2, 10) points at %q", got)
	}
	if got := f.Offset(2, 100); got != f.LineEnd(2) {
		t.Fatalf("Offset past line end = %d, want %d", got, f.LineEnd(2))
	}
}

func TestSpanHelpers(t *testing.T) {
	a := Span{Start: 4, End: 10}
	b := Span{Start: 2, End: 6}
	if got := a.Cover(b); got.Start != 2 || got.End != 10 {
		t.Fatalf("Cover = %v", got)
	}
	if !a.ContainsSpan(Span{Start: 5, End: 10}) || a.ContainsSpan(b) {
		t.Fatalf("ContainsSpan mismatch")
	}
	if a.Compare(b) != 1 || b.Compare(a) != -1 || a.Compare(a) != 0 {
		t.Fatalf("Compare mismatch")
	}
	if s := NewSpan(0, 9, 3); s.Start != 3 || s.End != 9 {
		t.Fatalf("NewSpan = %v", s)
	}
	f := NewFile(0, "b.py", []byte("abc"))
	if !f.InBounds(Span{Start: 0, End: 3}) || f.InBounds(Span{Start: 2, End: 4}) {
		t.Fatalf("InBounds mismatch")
	}
}
