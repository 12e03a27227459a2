package trace

import (
	"errors"
	"io"
	"sync"
)

const defaultRingSize = 4096

// RingTracer keeps the last capacity events in memory. With a dump target
// set, Close writes the retained events there, so `--trace-mode ring`
// costs nothing per event beyond the copy and still leaves a trace of the
// end of the run.
type RingTracer struct {
	mu     sync.RWMutex
	events []Event
	total  uint64
	level  Level

	dump   io.Writer
	closer io.Closer
	format Format
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{events: make([]Event, capacity), level: level, format: FormatText}
}

// DumpOnClose makes Close write the snapshot to w and then close c,
// which may be nil.
func (t *RingTracer) DumpOnClose(w io.Writer, c io.Closer, format Format) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dump, t.closer, t.format = w, c, format
}

// Emit stores a copy of ev, overwriting the oldest event when full.
func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Kind, ev.Scope) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()
	t.mu.Lock()
	t.events[t.total%uint64(len(t.events))] = stored
	t.total++
	t.mu.Unlock()
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	size := uint64(len(t.events))
	if t.total <= size {
		return append([]Event(nil), t.events[:t.total]...)
	}
	head := t.total % size
	out := make([]Event, 0, size)
	out = append(out, t.events[head:]...)
	return append(out, t.events[:head]...)
}

// Dump writes the snapshot to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }

// Close dumps to the DumpOnClose target, if any. Later calls do nothing.
func (t *RingTracer) Close() error {
	t.mu.Lock()
	w, c, format := t.dump, t.closer, t.format
	t.dump, t.closer = nil, nil
	t.mu.Unlock()
	if w == nil {
		return nil
	}
	err := t.Dump(w, format)
	if c != nil {
		err = errors.Join(err, c.Close())
	}
	return err
}

func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
