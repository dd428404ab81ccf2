package domain

// Event is the normalised vocabulary every transport adapter produces.
// It is a closed union; the reducer switches over the concrete types and
// applies them serially, so no two events ever interleave a partial update.
type Event interface {
	event()
}

// StatusEvent is a progress-free status notice. The tracker refreshes the
// progress message and appends the notice to the message log, collapsing
// consecutive duplicates.
type StatusEvent struct {
	// Status optionally carries the backend's own status word
	// (e.g. "processing"). Informational only; it never moves the
	// state machine.
	Status  string
	Message string
}

// ProgressEvent carries a percentage and a status message.
type ProgressEvent struct {
	Percent int
	Message string
}

// PartialEvent carries an incremental chunk of streamed text.
type PartialEvent struct {
	Text string
}

// MetadataEvent carries the extracted query fields and targets.
type MetadataEvent struct {
	Fields  []string
	Targets []string
}

// WarningEvent is a non-fatal problem appended to the message log without
// changing status. Used for the best-effort preview fetch.
type WarningEvent struct {
	Message string
}

// DoneEvent is the terminal success event.
type DoneEvent struct {
	DownloadURL string
	Fields      []string
	Targets     []string
	Message     string
	PreviewHTML string
}

// ErrorEvent is the terminal failure event.
type ErrorEvent struct {
	Message string
}

func (StatusEvent) event()   {}
func (ProgressEvent) event() {}
func (PartialEvent) event()  {}
func (MetadataEvent) event() {}
func (WarningEvent) event()  {}
func (DoneEvent) event()     {}
func (ErrorEvent) event()    {}
