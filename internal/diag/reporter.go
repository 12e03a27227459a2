package diag

// Reporter is the minimal sink for diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// CollectionReporter adapts a Collection to Reporter.
type CollectionReporter struct{ Collection *Collection }

func (r CollectionReporter) Report(d Diagnostic) {
	if r.Collection == nil {
		return
	}
	r.Collection.Add(d)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}
