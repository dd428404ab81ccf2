package driven

import (
	"context"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

// EventSink receives normalised events from a transport. Sinks must be
// cheap and non-blocking; the tracker serialises the actual state
// mutation behind them.
type EventSink func(domain.Event)

// Transport is one live update channel bound to a single job: an
// event-stream connection or a polling loop. Instances are single-use;
// a new job gets a new transport.
//
// Implementations guarantee that after Cancel returns no further events
// are delivered to the sink, and that the underlying connection or timer
// is released. Cancel is idempotent and safe to call from the sink's own
// goroutine.
type Transport interface {
	// Start begins delivering events for the job. It does not block;
	// events arrive asynchronously, in arrival order, until a terminal
	// event is delivered or Cancel is called.
	Start(ctx context.Context, jobID string, sink EventSink)

	// Cancel tears the channel down: closes the connection or stops the
	// polling interval.
	Cancel()
}

// TransportFactory creates the transport variant for a workflow.
// Exactly one transport is live per job; the tracker cancels the
// previous instance before starting a successor.
type TransportFactory interface {
	NewTransport(w domain.Workflow) Transport
}
