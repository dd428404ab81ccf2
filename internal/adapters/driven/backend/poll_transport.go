package backend

import (
	"context"
	"fmt"
	"path"
	"time"

	"golang.org/x/time/rate"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
	"github.com/halide-labs/partlens-cli/internal/logger"
)

// Ensure PollTransport implements the interface.
var _ driven.Transport = (*PollTransport)(nil)

// PollTransport tracks a job by querying the result endpoint on a fixed
// cadence. Non-terminal responses become status notices; done ends the
// loop after a best-effort preview fetch; error surfaces the backend's
// message. A failed poll request is a terminal transport error - the
// core never retries silently.
type PollTransport struct {
	client   *Client
	interval time.Duration
	life     lifecycle
}

// NewPollTransport creates a polling transport.
func NewPollTransport(client *Client, cfg TransportConfig) *PollTransport {
	return &PollTransport{client: client, interval: cfg.withDefaults().PollInterval}
}

// Start begins the polling loop.
func (t *PollTransport) Start(ctx context.Context, jobID string, sink driven.EventSink) {
	ctx, ok := t.life.begin(ctx)
	if !ok {
		return
	}
	go t.run(ctx, jobID, sink)
}

// Cancel stops the polling loop. Idempotent.
func (t *PollTransport) Cancel() { t.life.Cancel() }

func (t *PollTransport) run(ctx context.Context, jobID string, sink driven.EventSink) {
	defer t.life.Cancel()

	// Burst of one: the first poll fires immediately, the rest pace out
	// at the configured interval.
	limiter := rate.NewLimiter(rate.Every(t.interval), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		res, err := t.client.PollResult(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			sink(domain.ErrorEvent{Message: err.Error()})
			return
		}

		switch res.Status {
		case "done":
			sink(t.doneEvent(ctx, res, sink))
			return

		case "error":
			msg := res.Message
			if msg == "" {
				msg = "backend processing failed"
			}
			sink(domain.ErrorEvent{Message: msg})
			return

		default: // pending / processing
			sink(domain.StatusEvent{Status: res.Status, Message: res.Message})
		}
	}
}

// doneEvent assembles the terminal success event, fetching the result
// preview first. Preview failure is a warning, never an error: the job
// still completes.
func (t *PollTransport) doneEvent(ctx context.Context, res *PollResult, sink driven.EventSink) domain.DoneEvent {
	ev := domain.DoneEvent{
		Fields:  res.QueryFields,
		Targets: res.QueryTargets,
		Message: res.Message,
	}
	if res.DownloadURL != nil {
		ev.DownloadURL = *res.DownloadURL
	}

	if fileID := resultFileID(ev.DownloadURL); fileID != "" {
		html, err := t.client.FetchPreview(ctx, fileID)
		if err != nil {
			logger.Warn("result preview unavailable: %v", err)
			sink(domain.WarningEvent{Message: fmt.Sprintf("could not load result preview: %v", err)})
		} else {
			ev.PreviewHTML = html
		}
	}
	return ev
}

// resultFileID extracts the file id from a download URL, its last path
// segment.
func resultFileID(downloadURL string) string {
	if downloadURL == "" {
		return ""
	}
	id := path.Base(downloadURL)
	if id == "." || id == "/" {
		return ""
	}
	return id
}
