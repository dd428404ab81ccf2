package backend

import (
	"context"
	"sync"
	"time"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
)

const (
	// DefaultPollInterval is the cadence of the polling transport.
	DefaultPollInterval = 2 * time.Second

	// DefaultLivenessTimeout is the maximum silence the discrete-SSE
	// transport tolerates before declaring the connection dead.
	DefaultLivenessTimeout = 60 * time.Second

	// DefaultLivenessTick is the granularity at which the liveness
	// window is checked.
	DefaultLivenessTick = 5 * time.Second
)

// TransportConfig tunes the transport adapters. Zero values fall back to
// the defaults above.
type TransportConfig struct {
	PollInterval    time.Duration
	LivenessTimeout time.Duration
	LivenessTick    time.Duration
}

func (c TransportConfig) withDefaults() TransportConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.LivenessTimeout <= 0 {
		c.LivenessTimeout = DefaultLivenessTimeout
	}
	if c.LivenessTick <= 0 {
		c.LivenessTick = DefaultLivenessTick
	}
	return c
}

// Ensure TransportFactory implements the interface.
var _ driven.TransportFactory = (*TransportFactory)(nil)

// TransportFactory creates the transport variant for a workflow. Each
// call returns a fresh single-use instance.
type TransportFactory struct {
	client *Client
	cfg    TransportConfig
}

// NewTransportFactory creates a factory over the given client.
func NewTransportFactory(client *Client, cfg TransportConfig) *TransportFactory {
	return &TransportFactory{client: client, cfg: cfg.withDefaults()}
}

// NewTransport returns the transport for workflow w.
func (f *TransportFactory) NewTransport(w domain.Workflow) driven.Transport {
	switch w {
	case domain.WorkflowValueSSE:
		return NewDiscreteTransport(f.client, f.cfg)
	case domain.WorkflowValuePoll:
		return NewPollTransport(f.client, f.cfg)
	default:
		return NewStreamTransport(f.client)
	}
}

// lifecycle ties a transport instance to one cancellable context and
// makes Cancel idempotent and safe before, during or after Start.
type lifecycle struct {
	mu        sync.Mutex
	cancelled bool
	cancel    context.CancelFunc
}

// begin derives the transport's context. Returns ok=false when Cancel
// already happened, in which case the transport must not start.
func (l *lifecycle) begin(parent context.Context) (context.Context, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancelled {
		return nil, false
	}
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	return ctx, true
}

// Cancel signals teardown. It never blocks on delivery goroutines, so it
// is safe to call from an event sink.
func (l *lifecycle) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancelled = true
	if l.cancel != nil {
		l.cancel()
	}
}
