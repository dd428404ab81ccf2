// Package domain contains the core types for client-side job tracking:
// the Job record, the normalised transport event vocabulary, and the
// reducer that applies events to a Job.
package domain

import "time"

// Status is the lifecycle state of a job as observed by the client.
type Status string

const (
	// StatusIdle means no job is in flight.
	StatusIdle Status = "idle"

	// StatusUploading means the upload request is in progress.
	StatusUploading Status = "uploading"

	// StatusProcessing means the backend accepted the upload and an
	// event-stream transport is delivering updates.
	StatusProcessing Status = "processing"

	// StatusPolling means the backend accepted the upload and the client
	// is polling for the result.
	StatusPolling Status = "polling"

	// StatusDone is the terminal success state.
	StatusDone Status = "done"

	// StatusError is the terminal failure state.
	StatusError Status = "error"
)

// Terminal reports whether no further transitions occur without a reset.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Active reports whether a live transport is expected to mutate the job.
func (s Status) Active() bool {
	return s == StatusProcessing || s == StatusPolling
}

// Metadata holds the query fields and targets the backend extracts from
// the uploaded spreadsheet. Delivered at most once per job, but redundant
// delivery is tolerated as an idempotent overwrite.
type Metadata struct {
	QueryFields  []string
	QueryTargets []string
}

// LogEntry is one line of the visible message log.
type LogEntry struct {
	At   time.Time
	Text string
}

// Job is the canonical record of one in-flight backend analysis task.
// At most one Job is active per tracker; a fresh submission supersedes it.
type Job struct {
	// ID is the opaque identifier issued by the upload call.
	// Empty until the upload succeeds.
	ID string

	// AttemptID is a client-generated id for this submission attempt,
	// used to correlate log output across retries.
	AttemptID string

	// Workflow selects the upload endpoint and transport variant.
	Workflow Workflow

	Status Status

	// ProgressPercent is clamped to [0,100] when applied.
	ProgressPercent int

	// ProgressMessage is the latest human-readable status; overwritten,
	// never appended.
	ProgressMessage string

	// PartialText accumulates streamed text chunks; append-only,
	// cleared only by a full reset.
	PartialText string

	Metadata *Metadata

	// ResultLocation is set if and only if Status is StatusDone.
	ResultLocation string

	// PreviewHTML is the rendered result preview fetched by the polling
	// workflow after completion. Best-effort; may be empty on done.
	PreviewHTML string

	// ErrorDetail is set if and only if Status is StatusError.
	ErrorDetail string

	// Log is the visible message log. Consecutive duplicate lines are
	// collapsed on append.
	Log []LogEntry
}

// AppendLog adds a timestamped line to the message log, dropping the line
// if it is identical to the immediately preceding one.
func (j *Job) AppendLog(text string) {
	if n := len(j.Log); n > 0 && j.Log[n-1].Text == text {
		return
	}
	j.Log = append(j.Log, LogEntry{At: time.Now(), Text: text})
}

// LogLines returns the log texts without timestamps, oldest first.
func (j *Job) LogLines() []string {
	lines := make([]string, 0, len(j.Log))
	for _, e := range j.Log {
		lines = append(lines, e.Text)
	}
	return lines
}

// ClampPercent bounds a progress value to [0,100]. Out-of-range values
// from the backend are clamped rather than rejected.
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
