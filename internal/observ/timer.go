package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase accumulates the time spent in one named phase of a run.
type Phase struct {
	Name  string
	Dur   time.Duration
	Count int
	Note  string
}

// Timer tracks phases of a lint run. Driver phases are measured with
// Begin/End; per-file phases running in parallel are folded in with Record.
// Timer is safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
	index  map[string]int
	starts map[int]time.Time
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer {
	return &Timer{
		phases: make([]Phase, 0, 8),
		index:  make(map[string]int),
		starts: make(map[int]time.Time),
	}
}

func (t *Timer) slot(name string) int {
	if idx, ok := t.index[name]; ok {
		return idx
	}
	t.phases = append(t.phases, Phase{Name: name})
	t.index[name] = len(t.phases) - 1
	return len(t.phases) - 1
}

// Begin starts measuring a phase and returns its index.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.slot(name)
	t.starts[idx] = time.Now()
	return idx
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	start, ok := t.starts[idx]
	if !ok || idx < 0 || idx >= len(t.phases) {
		return
	}
	delete(t.starts, idx)
	p := &t.phases[idx]
	p.Dur += time.Since(start)
	p.Count++
	if note != "" {
		p.Note = note
	}
}

// Record adds an externally measured duration to a phase.
func (t *Timer) Record(name string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p := &t.phases[t.slot(name)]
	p.Dur += d
	p.Count++
}

// Summary returns a human-readable string summarizing all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	var out strings.Builder
	out.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&out, "  %-20s %9.2f ms  x%d", p.Name, p.DurationMS, p.Count)
		if p.Note != "" {
			out.WriteString("  // " + p.Note)
		}
		out.WriteString("\n")
	}
	fmt.Fprintf(&out, "  %-20s %9.2f ms\n", "total", report.TotalMS)
	return out.String()
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report формирует срез фаз и общую длительность в миллисекундах.
// Per-file phases overlap in wall time, so the total is a sum of work.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Count:      phase.Count,
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
