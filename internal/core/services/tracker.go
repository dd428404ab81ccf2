package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driving"
	"github.com/halide-labs/partlens-cli/internal/logger"
)

// Ensure Tracker implements the interface.
var _ driving.JobService = (*Tracker)(nil)

// Tracker owns the canonical state of the single in-flight job. All
// mutation goes through it: the upload path under Submit, and transport
// events through a sink that applies the reducer serially under one
// mutex. A generation counter tags each submission; events carrying a
// stale generation are dropped, so a superseded transport can never
// touch the current job.
type Tracker struct {
	coordinator *Coordinator
	backend     driven.Backend
	transports  driven.TransportFactory

	mu        sync.Mutex
	job       domain.Job
	transport driven.Transport
	gen       uint64

	updates chan domain.Job
}

// NewTracker creates a job tracker.
func NewTracker(backend driven.Backend, transports driven.TransportFactory) *Tracker {
	return &Tracker{
		coordinator: NewCoordinator(backend),
		backend:     backend,
		transports:  transports,
		job:         domain.Job{Status: domain.StatusIdle},
		updates:     make(chan domain.Job, 1),
	}
}

// Submit validates, uploads and begins tracking. See driving.JobService.
func (t *Tracker) Submit(ctx context.Context, w domain.Workflow, sel *domain.Selection) error {
	// Fail fast before touching the current job: an invalid selection
	// must not cancel an in-flight submission.
	if err := w.Validate(sel); err != nil {
		return err
	}

	t.mu.Lock()
	t.teardownLocked()
	gen := t.gen
	t.job = domain.Job{
		AttemptID:       uuid.NewString(),
		Workflow:        w,
		Status:          domain.StatusUploading,
		ProgressMessage: "Uploading files...",
	}
	t.job.AppendLog("Uploading files...")
	t.publishLocked()
	t.mu.Unlock()

	jobID, err := t.coordinator.Upload(ctx, w, sel)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		// Superseded while the upload was in flight; the result belongs
		// to a job that no longer exists.
		return nil
	}

	if err != nil {
		t.job.Status = domain.StatusError
		t.job.ErrorDetail = err.Error()
		t.job.AppendLog("error: " + err.Error())
		t.publishLocked()
		return err
	}

	t.job.ID = jobID
	t.job.Status = w.ActiveStatus()
	t.job.ProgressMessage = "Waiting for backend..."
	t.job.AppendLog(fmt.Sprintf("Job %s accepted, waiting for results...", jobID))
	logger.Info("job %s accepted (attempt %s)", jobID, t.job.AttemptID)

	tr := t.transports.NewTransport(w)
	t.transport = tr
	t.publishLocked()
	tr.Start(ctx, jobID, t.sinkFor(gen))
	return nil
}

// Reset clears all job state back to idle and synchronously cancels the
// active transport.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.teardownLocked()
	t.job = domain.Job{Status: domain.StatusIdle}
	t.publishLocked()
}

// Snapshot returns a copy of the current job state.
func (t *Tracker) Snapshot() domain.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyJob(t.job)
}

// Updates returns the snapshot channel. The channel holds at most the
// latest snapshot; intermediate states may be skipped.
func (t *Tracker) Updates() <-chan domain.Job {
	return t.updates
}

// DownloadResult fetches the completed job's result file to destPath.
func (t *Tracker) DownloadResult(ctx context.Context, destPath string) error {
	t.mu.Lock()
	status, location := t.job.Status, t.job.ResultLocation
	t.mu.Unlock()

	if status != domain.StatusDone || location == "" {
		return domain.ErrNoActiveJob
	}
	if err := t.backend.Download(ctx, location, destPath); err != nil {
		return fmt.Errorf("download result: %w", err)
	}
	return nil
}

// sinkFor returns the event sink for one submission generation. Stale
// events - delivered after a reset or a superseding submission - are
// dropped before they can touch the job.
func (t *Tracker) sinkFor(gen uint64) driven.EventSink {
	return func(ev domain.Event) {
		t.mu.Lock()
		if gen != t.gen || !t.job.Status.Active() {
			t.mu.Unlock()
			return
		}

		domain.Reduce(&t.job, ev)

		var cancel driven.Transport
		if t.job.Status.Terminal() {
			cancel = t.transport
			t.transport = nil
		}
		t.publishLocked()
		t.mu.Unlock()

		// The transport is closed outside the lock; Cancel only signals
		// and is safe to call from the delivery goroutine itself.
		if cancel != nil {
			cancel.Cancel()
		}
	}
}

// teardownLocked cancels the live transport and advances the generation
// so anything it still delivers is ignored. Caller holds t.mu.
func (t *Tracker) teardownLocked() {
	t.gen++
	if t.transport != nil {
		tr := t.transport
		t.transport = nil
		tr.Cancel()
	}
}

// publishLocked replaces the pending snapshot. Caller holds t.mu.
func (t *Tracker) publishLocked() {
	snap := copyJob(t.job)
	select {
	case <-t.updates:
	default:
	}
	select {
	case t.updates <- snap:
	default:
	}
}

// copyJob deep-copies the mutable parts of a job so snapshots are safe
// to read while the tracker keeps mutating.
func copyJob(j domain.Job) domain.Job {
	out := j
	if j.Metadata != nil {
		m := domain.Metadata{
			QueryFields:  append([]string(nil), j.Metadata.QueryFields...),
			QueryTargets: append([]string(nil), j.Metadata.QueryTargets...),
		}
		out.Metadata = &m
	}
	out.Log = append([]domain.LogEntry(nil), j.Log...)
	return out
}
