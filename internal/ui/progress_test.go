package ui

import (
	"strings"
	"testing"

	"krait/internal/linter"
)

func TestProgressModel(t *testing.T) {
	events := make(chan linter.Event)
	m := NewProgressModel("checking", events).(*progressModel)
	for _, ev := range []linter.Event{
		{Path: "a.py", Status: linter.StatusQueued},
		{Path: "b.py", Status: linter.StatusQueued},
		{Path: "a.py", Status: linter.StatusLinting},
		{Path: "b.py", Status: linter.StatusLinting},
		{Path: "a.py", Status: linter.StatusDone, Diagnostics: 2},
	} {
		m.applyEvent(ev)
	}
	if m.total != 2 || m.finished() != 1 || m.diags != 2 {
		t.Fatalf("total=%d finished=%d diags=%d", m.total, m.finished(), m.diags)
	}
	view := m.View()
	for _, want := range []string{"checking (1/2 files)", "b.py", "1 linted", "2 diagnostics"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "a.py") {
		t.Errorf("finished file still listed:\n%s", view)
	}

	_, _ = m.Update(doneMsg{})
	if !m.done || !strings.Contains(m.View(), "done: checking") {
		t.Fatalf("model not done:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.py", 20, "short.py"},
		{"a/very/long/path.py", 10, "a/very/..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
