package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
	"github.com/halide-labs/partlens-cli/internal/logger"
)

// Ensure DiscreteTransport implements the interface.
var _ driven.Transport = (*DiscreteTransport)(nil)

// DiscreteTransport consumes the multi-file workflow's event stream.
// Default (unnamed) messages are generic status notices; named events:
// status (progress-free message), result (terminal success), error
// (terminal failure).
//
// A liveness window guards against a silently dead connection: if no
// event is received within the timeout, checked on a coarse tick, the
// transport forces an error and closes. Every successfully parsed event
// resets the window.
type DiscreteTransport struct {
	client  *Client
	timeout time.Duration
	tick    time.Duration
	life    lifecycle
}

// NewDiscreteTransport creates a discrete-SSE transport.
func NewDiscreteTransport(client *Client, cfg TransportConfig) *DiscreteTransport {
	cfg = cfg.withDefaults()
	return &DiscreteTransport{
		client:  client,
		timeout: cfg.LivenessTimeout,
		tick:    cfg.LivenessTick,
	}
}

// Start opens the event stream and delivers events until a terminal
// event, a liveness timeout, or cancellation.
func (t *DiscreteTransport) Start(ctx context.Context, jobID string, sink driven.EventSink) {
	ctx, ok := t.life.begin(ctx)
	if !ok {
		return
	}
	go t.run(ctx, jobID, sink)
}

// Cancel closes the connection and stops the liveness timer. Idempotent.
func (t *DiscreteTransport) Cancel() { t.life.Cancel() }

func (t *DiscreteTransport) run(ctx context.Context, jobID string, sink driven.EventSink) {
	defer t.life.Cancel()

	body, err := t.client.openStream(ctx, "/api/value/subscribe_sse/"+url.PathEscape(jobID))
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		sink(domain.ErrorEvent{Message: err.Error()})
		return
	}
	defer body.Close()

	// Reader goroutine: cancelling ctx closes the body via the request
	// context, which unblocks the scanner.
	frames := make(chan *sseEvent)
	readErr := make(chan error, 1)
	go func() {
		sc := newSSEScanner(body)
		for {
			frame, err := sc.Next()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()
	lastEvent := time.Now()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-readErr:
			if ctx.Err() != nil {
				return
			}
			sink(domain.ErrorEvent{Message: fmt.Sprintf("%v: %v", domain.ErrTransport, err)})
			return

		case frame := <-frames:
			terminal, handled := t.dispatch(frame, sink)
			if handled {
				lastEvent = time.Now()
			}
			if terminal {
				return
			}

		case <-ticker.C:
			if time.Since(lastEvent) > t.timeout {
				sink(domain.ErrorEvent{Message: domain.ErrLivenessTimeout.Error()})
				return
			}
		}
	}
}

// dispatch translates one frame. Returns whether it was terminal and
// whether it parsed well enough to reset the liveness window.
func (t *DiscreteTransport) dispatch(frame *sseEvent, sink driven.EventSink) (terminal, handled bool) {
	switch frame.Name {
	case "", "message":
		// Default messages: JSON {"message": ...} when the backend
		// cooperates, raw text otherwise. Either way it is a notice.
		var p struct {
			Message string `json:"message"`
		}
		msg := frame.Data
		if err := json.Unmarshal([]byte(frame.Data), &p); err == nil && p.Message != "" {
			msg = p.Message
		}
		sink(domain.StatusEvent{Message: msg})
		return false, true

	case "status":
		var p struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(frame.Data), &p); err != nil {
			sink(protocolError("status", err))
			return true, false
		}
		sink(domain.StatusEvent{Status: p.Status, Message: p.Message})
		return false, true

	case "result":
		var p struct {
			DownloadURL  string   `json:"download_url"`
			QueryFields  []string `json:"query_fields"`
			QueryTargets []string `json:"query_targets"`
			Message      string   `json:"message"`
		}
		if err := json.Unmarshal([]byte(frame.Data), &p); err != nil {
			sink(protocolError("result", err))
			return true, false
		}
		sink(domain.DoneEvent{
			DownloadURL: p.DownloadURL,
			Fields:      p.QueryFields,
			Targets:     p.QueryTargets,
			Message:     p.Message,
		})
		return true, true

	case "error":
		msg := "stream reported a processing error"
		var p struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(frame.Data), &p); err == nil && p.Message != "" {
			msg = p.Message
		}
		sink(domain.ErrorEvent{Message: msg})
		return true, true

	default:
		logger.Debug("ignoring unknown subscribe event %q", frame.Name)
		return false, false
	}
}
