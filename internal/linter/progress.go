package linter

// Status captures the progress of one file.
type Status string

const (
	// StatusQueued indicates the file was discovered and waits for a worker.
	StatusQueued Status = "queued"
	// StatusLinting indicates a worker is linting the file.
	StatusLinting Status = "linting"
	// StatusCached indicates the result was read from the cache.
	StatusCached Status = "cached"
	// StatusDone indicates the file was linted.
	StatusDone Status = "done"
	// StatusError indicates the file could not be read.
	StatusError Status = "error"
)

// Event reports progress for a file.
type Event struct {
	Path        string
	Status      Status
	Diagnostics int
}

// ProgressSink receives events from concurrent workers.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, path string, status Status, diagnostics int) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Path: path, Status: status, Diagnostics: diagnostics})
}
