package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
	"github.com/halide-labs/partlens-cli/internal/logger"
)

// Ensure StreamTransport implements the interface.
var _ driven.Transport = (*StreamTransport)(nil)

// StreamTransport consumes the single-file workflow's event stream.
// Named events: progress (percent + message), partial (incremental text),
// metadata (fields/targets), done (terminal success). Any stream-level
// failure or parse failure maps to a terminal error event.
type StreamTransport struct {
	client *Client
	life   lifecycle
}

// NewStreamTransport creates a streaming-SSE transport.
func NewStreamTransport(client *Client) *StreamTransport {
	return &StreamTransport{client: client}
}

// Start opens the event stream and delivers events until a terminal
// event arrives or the transport is cancelled.
func (t *StreamTransport) Start(ctx context.Context, jobID string, sink driven.EventSink) {
	ctx, ok := t.life.begin(ctx)
	if !ok {
		return
	}
	go t.run(ctx, jobID, sink)
}

// Cancel closes the connection. Idempotent.
func (t *StreamTransport) Cancel() { t.life.Cancel() }

func (t *StreamTransport) run(ctx context.Context, jobID string, sink driven.EventSink) {
	defer t.life.Cancel()

	body, err := t.client.openStream(ctx, "/api/alt/stream/"+url.PathEscape(jobID))
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		sink(domain.ErrorEvent{Message: err.Error()})
		return
	}
	defer body.Close()

	sc := newSSEScanner(body)
	for {
		frame, err := sc.Next()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// The stream ended without a terminal event.
			sink(domain.ErrorEvent{Message: fmt.Sprintf("%v: %v", domain.ErrTransport, err)})
			return
		}
		if terminal := t.dispatch(frame, sink); terminal {
			return
		}
	}
}

// dispatch translates one frame into a normalised event. Returns true
// when the frame was terminal.
func (t *StreamTransport) dispatch(frame *sseEvent, sink driven.EventSink) bool {
	switch frame.Name {
	case "progress":
		var p struct {
			Percent int    `json:"percent"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(frame.Data), &p); err != nil {
			sink(protocolError("progress", err))
			return true
		}
		sink(domain.ProgressEvent{Percent: p.Percent, Message: p.Message})

	case "partial":
		var p struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal([]byte(frame.Data), &p); err != nil {
			sink(protocolError("partial", err))
			return true
		}
		sink(domain.PartialEvent{Text: p.Text})

	case "metadata":
		var m struct {
			QueryFields  []string `json:"query_fields"`
			QueryTargets []string `json:"query_targets"`
		}
		if err := json.Unmarshal([]byte(frame.Data), &m); err != nil {
			sink(protocolError("metadata", err))
			return true
		}
		sink(domain.MetadataEvent{Fields: m.QueryFields, Targets: m.QueryTargets})

	case "done":
		var d struct {
			DownloadURL string `json:"download_url"`
		}
		if err := json.Unmarshal([]byte(frame.Data), &d); err != nil {
			// A malformed terminal payload must surface as a failure,
			// not leave the job stuck in processing.
			sink(protocolError("done", err))
			return true
		}
		sink(domain.DoneEvent{DownloadURL: d.DownloadURL})
		return true

	default:
		logger.Debug("ignoring unknown stream event %q", frame.Name)
	}
	return false
}

func protocolError(event string, err error) domain.ErrorEvent {
	return domain.ErrorEvent{
		Message: fmt.Sprintf("%v: %s event: %v", domain.ErrProtocol, event, err),
	}
}
