package services

import (
	"context"
	"sync"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
)

// mockBackend is a hand-written test double for driven.Backend.
type mockBackend struct {
	mu sync.Mutex

	uploadSingleCalls int
	uploadBatchCalls  int
	lastWorkflow      domain.Workflow
	lastSpreadsheets  []domain.File
	lastDocuments     []domain.File
	downloads         []string

	jobID       string
	uploadErr   error
	downloadErr error
	previewHTML string
}

var _ driven.Backend = (*mockBackend)(nil)

func (m *mockBackend) UploadSingle(_ context.Context, _ domain.File) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadSingleCalls++
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	return m.jobID, nil
}

func (m *mockBackend) UploadBatch(_ context.Context, w domain.Workflow, spreadsheets, documents []domain.File) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadBatchCalls++
	m.lastWorkflow = w
	m.lastSpreadsheets = spreadsheets
	m.lastDocuments = documents
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	return m.jobID, nil
}

func (m *mockBackend) FetchPreview(_ context.Context, _ string) (string, error) {
	return m.previewHTML, nil
}

func (m *mockBackend) Download(_ context.Context, downloadURL, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads = append(m.downloads, downloadURL)
	return m.downloadErr
}

// mockTransport records Start/Cancel calls and exposes the sink so tests
// can inject events as if they came off the wire.
type mockTransport struct {
	mu        sync.Mutex
	started   bool
	cancelled bool
	jobID     string
	sink      driven.EventSink
}

var _ driven.Transport = (*mockTransport)(nil)

func (m *mockTransport) Start(_ context.Context, jobID string, sink driven.EventSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	m.jobID = jobID
	m.sink = sink
}

func (m *mockTransport) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = true
}

func (m *mockTransport) Cancelled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelled
}

// deliver pushes an event through the captured sink.
func (m *mockTransport) deliver(ev domain.Event) {
	m.mu.Lock()
	sink := m.sink
	m.mu.Unlock()
	if sink != nil {
		sink(ev)
	}
}

// mockTransportFactory hands out a fresh mockTransport per call and keeps
// them all for inspection.
type mockTransportFactory struct {
	mu      sync.Mutex
	created []*mockTransport
}

var _ driven.TransportFactory = (*mockTransportFactory)(nil)

func (f *mockTransportFactory) NewTransport(_ domain.Workflow) driven.Transport {
	f.mu.Lock()
	defer f.mu.Unlock()
	tr := &mockTransport{}
	f.created = append(f.created, tr)
	return tr
}

func (f *mockTransportFactory) last() *mockTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}
