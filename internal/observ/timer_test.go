package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerAggregatesByName(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("discover")
	tm.End(idx, "3 files")

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Record("parse", time.Millisecond)
		}()
	}
	wg.Wait()

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	parse := report.Phases[1]
	if parse.Name != "parse" || parse.Count != 4 || parse.DurationMS < 4 {
		t.Fatalf("parse = %+v", parse)
	}
	if report.Phases[0].Note != "3 files" {
		t.Fatalf("note lost: %+v", report.Phases[0])
	}
	if s := tm.Summary(); !strings.Contains(s, "parse") || !strings.Contains(s, "total") {
		t.Fatalf("Summary = %q", s)
	}
}

func TestTimerIgnoresUnknownIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "")
	var nilTimer *Timer
	nilTimer.Record("x", time.Second)
	if got := tm.Report(); len(got.Phases) != 0 {
		t.Fatalf("Report = %+v", got)
	}
}
