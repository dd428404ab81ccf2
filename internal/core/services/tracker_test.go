package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

func altSelection() *domain.Selection {
	sel := domain.NewSelection()
	sel.Add(domain.File{Name: "parts.xlsx", Path: "/tmp/parts.xlsx"})
	return sel
}

func valueSelection() *domain.Selection {
	sel := domain.NewSelection()
	sel.Add(domain.File{Name: "parts.xlsx", Path: "/tmp/parts.xlsx"})
	sel.Add(domain.File{Name: "quote.pdf", Path: "/tmp/quote.pdf"})
	return sel
}

func newTrackerForTest(backend *mockBackend) (*Tracker, *mockTransportFactory) {
	factory := &mockTransportFactory{}
	return NewTracker(backend, factory), factory
}

func TestTracker_SubmitHappyPath(t *testing.T) {
	backend := &mockBackend{jobID: "job-42"}
	tracker, factory := newTrackerForTest(backend)

	err := tracker.Submit(context.Background(), domain.WorkflowAlt, altSelection())
	require.NoError(t, err)

	job := tracker.Snapshot()
	assert.Equal(t, "job-42", job.ID)
	assert.Equal(t, domain.StatusProcessing, job.Status)
	assert.NotEmpty(t, job.AttemptID)
	assert.Contains(t, job.LogLines(), "Job job-42 accepted, waiting for results...")

	tr := factory.last()
	require.NotNil(t, tr)
	assert.True(t, tr.started)
	assert.Equal(t, "job-42", tr.jobID)
}

func TestTracker_SubmitPollingWorkflowEntersPolling(t *testing.T) {
	backend := &mockBackend{jobID: "job-7"}
	tracker, _ := newTrackerForTest(backend)

	err := tracker.Submit(context.Background(), domain.WorkflowValuePoll, valueSelection())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPolling, tracker.Snapshot().Status)
	assert.Equal(t, 1, backend.uploadBatchCalls)
	assert.Equal(t, domain.WorkflowValuePoll, backend.lastWorkflow)
	require.Len(t, backend.lastSpreadsheets, 1)
	require.Len(t, backend.lastDocuments, 1)
}

func TestTracker_SubmitValidationFailsFast(t *testing.T) {
	backend := &mockBackend{jobID: "job-1"}
	tracker, factory := newTrackerForTest(backend)

	err := tracker.Submit(context.Background(), domain.WorkflowAlt, domain.NewSelection())

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, backend.uploadSingleCalls, "invalid selection must not hit the network")
	assert.Nil(t, factory.last())
	assert.Equal(t, domain.StatusIdle, tracker.Snapshot().Status)
}

func TestTracker_SubmitUploadFailure(t *testing.T) {
	backend := &mockBackend{uploadErr: &domain.UploadError{Detail: "file too large"}}
	tracker, factory := newTrackerForTest(backend)

	err := tracker.Submit(context.Background(), domain.WorkflowAlt, altSelection())
	require.Error(t, err)

	job := tracker.Snapshot()
	assert.Equal(t, domain.StatusError, job.Status)
	assert.Contains(t, job.ErrorDetail, "file too large")
	assert.Nil(t, factory.last(), "no transport may start after a failed upload")
}

func TestTracker_EventsFlowThroughReducer(t *testing.T) {
	backend := &mockBackend{jobID: "job-42"}
	tracker, factory := newTrackerForTest(backend)
	require.NoError(t, tracker.Submit(context.Background(), domain.WorkflowAlt, altSelection()))

	tr := factory.last()
	tr.deliver(domain.ProgressEvent{Percent: 30, Message: "Parsing sheet"})
	tr.deliver(domain.PartialEvent{Text: "partial output"})

	job := tracker.Snapshot()
	assert.Equal(t, 30, job.ProgressPercent)
	assert.Equal(t, "Parsing sheet", job.ProgressMessage)
	assert.Equal(t, "partial output", job.PartialText)
}

func TestTracker_TerminalEventCancelsTransport(t *testing.T) {
	backend := &mockBackend{jobID: "job-42"}
	tracker, factory := newTrackerForTest(backend)
	require.NoError(t, tracker.Submit(context.Background(), domain.WorkflowAlt, altSelection()))

	tr := factory.last()
	tr.deliver(domain.DoneEvent{DownloadURL: "/api/download/out.xlsx"})

	job := tracker.Snapshot()
	assert.Equal(t, domain.StatusDone, job.Status)
	assert.Equal(t, "/api/download/out.xlsx", job.ResultLocation)
	assert.True(t, tr.Cancelled(), "terminal event must close the transport")

	// Stragglers after the terminal event are dropped.
	tr.deliver(domain.ErrorEvent{Message: "late error"})
	assert.Equal(t, domain.StatusDone, tracker.Snapshot().Status)
}

func TestTracker_ResubmissionSupersedes(t *testing.T) {
	backend := &mockBackend{jobID: "job-1"}
	tracker, factory := newTrackerForTest(backend)
	require.NoError(t, tracker.Submit(context.Background(), domain.WorkflowAlt, altSelection()))
	first := factory.last()

	backend.jobID = "job-2"
	require.NoError(t, tracker.Submit(context.Background(), domain.WorkflowAlt, altSelection()))
	second := factory.last()

	require.NotSame(t, first, second)
	assert.True(t, first.Cancelled(), "superseded transport must be cancelled")

	// Events from the first transport must not touch the new job.
	first.deliver(domain.ErrorEvent{Message: "stale failure"})
	job := tracker.Snapshot()
	assert.Equal(t, "job-2", job.ID)
	assert.Equal(t, domain.StatusProcessing, job.Status)
	assert.Empty(t, job.ErrorDetail)

	// The live transport still works.
	second.deliver(domain.ProgressEvent{Percent: 10})
	assert.Equal(t, 10, tracker.Snapshot().ProgressPercent)
}

func TestTracker_RepeatedResubmissionLeavesOneLiveTransport(t *testing.T) {
	backend := &mockBackend{jobID: "job-n"}
	tracker, factory := newTrackerForTest(backend)

	for i := 0; i < 5; i++ {
		require.NoError(t, tracker.Submit(context.Background(), domain.WorkflowAlt, altSelection()))
	}

	live := 0
	for _, tr := range factory.created {
		if !tr.Cancelled() {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

func TestTracker_Reset(t *testing.T) {
	backend := &mockBackend{jobID: "job-42"}
	tracker, factory := newTrackerForTest(backend)
	require.NoError(t, tracker.Submit(context.Background(), domain.WorkflowAlt, altSelection()))

	tr := factory.last()
	tracker.Reset()

	assert.True(t, tr.Cancelled())
	job := tracker.Snapshot()
	assert.Equal(t, domain.StatusIdle, job.Status)
	assert.Empty(t, job.ID)
	assert.Empty(t, job.Log)

	// Events delivered after the reset are dropped.
	tr.deliver(domain.ProgressEvent{Percent: 99})
	assert.Zero(t, tracker.Snapshot().ProgressPercent)
}

func TestTracker_UpdatesCarriesLatestSnapshot(t *testing.T) {
	backend := &mockBackend{jobID: "job-42"}
	tracker, factory := newTrackerForTest(backend)
	require.NoError(t, tracker.Submit(context.Background(), domain.WorkflowAlt, altSelection()))

	tr := factory.last()
	tr.deliver(domain.ProgressEvent{Percent: 10})
	tr.deliver(domain.ProgressEvent{Percent: 80})

	// The channel holds only the newest snapshot.
	snap := <-tracker.Updates()
	assert.Equal(t, 80, snap.ProgressPercent)
}

func TestTracker_DownloadResult(t *testing.T) {
	backend := &mockBackend{jobID: "job-42"}
	tracker, factory := newTrackerForTest(backend)

	t.Run("requires a completed job", func(t *testing.T) {
		err := tracker.DownloadResult(context.Background(), "out.xlsx")
		assert.ErrorIs(t, err, domain.ErrNoActiveJob)
	})

	require.NoError(t, tracker.Submit(context.Background(), domain.WorkflowAlt, altSelection()))
	factory.last().deliver(domain.DoneEvent{DownloadURL: "/api/download/out.xlsx"})

	t.Run("downloads the result location", func(t *testing.T) {
		err := tracker.DownloadResult(context.Background(), "out.xlsx")
		require.NoError(t, err)
		require.Len(t, backend.downloads, 1)
		assert.Equal(t, "/api/download/out.xlsx", backend.downloads[0])
	})
}

func TestTracker_SnapshotIsACopy(t *testing.T) {
	backend := &mockBackend{jobID: "job-42"}
	tracker, factory := newTrackerForTest(backend)
	require.NoError(t, tracker.Submit(context.Background(), domain.WorkflowAlt, altSelection()))

	factory.last().deliver(domain.MetadataEvent{Fields: []string{"part"}, Targets: []string{"price"}})

	snap := tracker.Snapshot()
	snap.Metadata.QueryFields[0] = "mutated"
	snap.Log[0].Text = "mutated"

	fresh := tracker.Snapshot()
	assert.Equal(t, "part", fresh.Metadata.QueryFields[0])
	assert.NotEqual(t, "mutated", fresh.Log[0].Text)
}
