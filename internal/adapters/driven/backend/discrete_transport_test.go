package backend

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

func TestDiscreteTransport_StatusThenResult(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, "/api/value/subscribe_sse/job-9",
		"data: {\"message\": \"Queued\"}\n\n",
		"event: status\ndata: {\"status\": \"processing\", \"message\": \"Extracting text\"}\n\n",
		"event: result\ndata: {\"download_url\": \"/api/download/out.xlsx\", \"query_fields\": [\"part\"], \"query_targets\": [\"price\"], \"message\": \"All done\"}\n\n",
	))
	defer srv.Close()

	collector := newEventCollector()
	tr := NewDiscreteTransport(NewClient(srv.URL), TransportConfig{})
	tr.Start(t.Context(), "job-9", collector.sink())
	collector.waitTerminal(t)

	events := collector.all()
	require.Len(t, events, 3)
	assert.Equal(t, domain.StatusEvent{Message: "Queued"}, events[0])
	assert.Equal(t, domain.StatusEvent{Status: "processing", Message: "Extracting text"}, events[1])
	assert.Equal(t, domain.DoneEvent{
		DownloadURL: "/api/download/out.xlsx",
		Fields:      []string{"part"},
		Targets:     []string{"price"},
		Message:     "All done",
	}, events[2])
}

func TestDiscreteTransport_PlainTextDefaultMessage(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, "/api/value/subscribe_sse/job-9",
		"data: halfway there\n\n",
		"event: result\ndata: {\"download_url\": \"/x\"}\n\n",
	))
	defer srv.Close()

	collector := newEventCollector()
	tr := NewDiscreteTransport(NewClient(srv.URL), TransportConfig{})
	tr.Start(t.Context(), "job-9", collector.sink())
	collector.waitTerminal(t)

	events := collector.all()
	require.Len(t, events, 2)
	assert.Equal(t, domain.StatusEvent{Message: "halfway there"}, events[0])
}

func TestDiscreteTransport_ErrorEvent(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, "/api/value/subscribe_sse/job-9",
		"event: error\ndata: {\"message\": \"no query fields found\"}\n\n",
	))
	defer srv.Close()

	collector := newEventCollector()
	tr := NewDiscreteTransport(NewClient(srv.URL), TransportConfig{})
	tr.Start(t.Context(), "job-9", collector.sink())
	collector.waitTerminal(t)

	events := collector.all()
	require.Len(t, events, 1)
	assert.Equal(t, domain.ErrorEvent{Message: "no query fields found"}, events[0])
}

func TestDiscreteTransport_ErrorEventWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, "/api/value/subscribe_sse/job-9",
		"event: error\ndata: {}\n\n",
	))
	defer srv.Close()

	collector := newEventCollector()
	tr := NewDiscreteTransport(NewClient(srv.URL), TransportConfig{})
	tr.Start(t.Context(), "job-9", collector.sink())
	collector.waitTerminal(t)

	events := collector.all()
	require.Len(t, events, 1)
	assert.Equal(t, domain.ErrorEvent{Message: "stream reported a processing error"}, events[0])
}

func TestDiscreteTransport_MalformedResultIsTerminal(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, "/api/value/subscribe_sse/job-9",
		"event: result\ndata: not json\n\n",
	))
	defer srv.Close()

	collector := newEventCollector()
	tr := NewDiscreteTransport(NewClient(srv.URL), TransportConfig{})
	tr.Start(t.Context(), "job-9", collector.sink())
	collector.waitTerminal(t)

	events := collector.all()
	require.Len(t, events, 1)
	errEv, ok := events[0].(domain.ErrorEvent)
	require.True(t, ok)
	assert.Contains(t, errEv.Message, "result event")
}

func TestDiscreteTransport_LivenessTimeout(t *testing.T) {
	// Stream that connects and then goes silent.
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"message\": \"Queued\"}\n\n")
		w.(http.Flusher).Flush()
		<-block
	}))
	defer srv.Close()
	defer close(block)

	collector := newEventCollector()
	tr := NewDiscreteTransport(NewClient(srv.URL), TransportConfig{
		LivenessTimeout: 150 * time.Millisecond,
		LivenessTick:    20 * time.Millisecond,
	})
	tr.Start(t.Context(), "job-9", collector.sink())
	collector.waitTerminal(t)

	events := collector.all()
	require.NotEmpty(t, events)
	last, ok := events[len(events)-1].(domain.ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, domain.ErrLivenessTimeout.Error(), last.Message)
}

func TestDiscreteTransport_EventsResetLivenessWindow(t *testing.T) {
	// Keep sending notices faster than the timeout, then finish. The
	// transport must ride through well past the configured window.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 0; i < 6; i++ {
			fmt.Fprintf(w, "data: {\"message\": \"tick %d\"}\n\n", i)
			flusher.Flush()
			time.Sleep(60 * time.Millisecond)
		}
		fmt.Fprint(w, "event: result\ndata: {\"download_url\": \"/x\"}\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	collector := newEventCollector()
	tr := NewDiscreteTransport(NewClient(srv.URL), TransportConfig{
		LivenessTimeout: 150 * time.Millisecond,
		LivenessTick:    20 * time.Millisecond,
	})
	tr.Start(t.Context(), "job-9", collector.sink())
	collector.waitTerminal(t)

	events := collector.all()
	assert.IsType(t, domain.DoneEvent{}, events[len(events)-1])
}
