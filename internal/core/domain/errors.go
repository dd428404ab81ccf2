package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent client-observable failure classes.
// These are distinct from infrastructure errors.
var (
	// ErrTransport indicates a connection-level failure: a broken
	// event-stream or a failed poll request. No structured detail is
	// available beyond the wrapped cause.
	ErrTransport = errors.New("transport failure")

	// ErrProtocol indicates a received event payload failed to parse.
	// Fatal for the current job: a malformed terminal event must not
	// leave the UI stuck in a processing state.
	ErrProtocol = errors.New("malformed event payload")

	// ErrLivenessTimeout indicates the event-stream went silent for
	// longer than the liveness window. Reported as a transport failure.
	ErrLivenessTimeout = errors.New("no progress events received before timeout")

	// ErrNoActiveJob indicates an operation that needs an in-flight job
	// (e.g. downloading the result) found none.
	ErrNoActiveJob = errors.New("no active job")
)

// ValidationError reports a selection that violates the workflow's
// file-count or file-type constraints. Raised synchronously before any
// network call; the job is left untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid selection: " + e.Reason
}

// UploadError reports a failed upload call. Detail carries the
// backend-provided reason when the response included one.
type UploadError struct {
	Detail string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Detail != "" {
		return "upload failed: " + e.Detail
	}
	if e.Err != nil {
		return fmt.Sprintf("upload failed: %v", e.Err)
	}
	return "upload failed"
}

func (e *UploadError) Unwrap() error { return e.Err }
