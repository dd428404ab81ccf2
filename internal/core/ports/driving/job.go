package driving

import (
	"context"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

// JobService tracks the lifecycle of the single in-flight job.
type JobService interface {
	// Submit validates the selection, uploads it and begins tracking the
	// issued job. A fresh submission supersedes any previous job: the
	// prior transport is torn down before the upload starts. Submit
	// blocks until the upload call completes; transport events arrive
	// asynchronously afterwards.
	//
	// Returns *domain.ValidationError without any network activity when
	// the selection violates the workflow's constraints.
	Submit(ctx context.Context, w domain.Workflow, sel *domain.Selection) error

	// Reset clears all job state back to idle and synchronously cancels
	// the active transport. Events delivered by a superseded transport
	// afterwards are ignored.
	Reset()

	// Snapshot returns a copy of the current job state.
	Snapshot() domain.Job

	// Updates returns a channel that receives a state snapshot after
	// every change. Slow consumers miss intermediate snapshots, never
	// the latest one.
	Updates() <-chan domain.Job

	// DownloadResult fetches the completed job's result file to destPath.
	// Returns domain.ErrNoActiveJob unless the job is done.
	DownloadResult(ctx context.Context, destPath string) error
}
