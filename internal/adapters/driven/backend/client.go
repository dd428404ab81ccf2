// Package backend implements the driven adapters for the analysis
// service: the request/response HTTP client and the three transport
// variants (streaming SSE, discrete SSE, polling) that feed normalised
// events to the job tracker.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
	"github.com/halide-labs/partlens-cli/internal/logger"
)

const (
	// DefaultTimeout bounds request/response calls. Event streams use a
	// separate client with no timeout; their lifetime is context-bound.
	DefaultTimeout = 30 * time.Second

	uploadPathSingle  = "/api/alt/upload"
	uploadPathPolling = "/api/value/upload_polling"
	uploadPathSSE     = "/api/value/upload_sse"
)

// Ensure Client implements the interface.
var _ driven.Backend = (*Client)(nil)

// Client talks to the analysis backend over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
	streamc *http.Client
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: DefaultTimeout},
		streamc: &http.Client{},
	}
}

// UploadSingle submits one spreadsheet to the single-file workflow.
func (c *Client) UploadSingle(ctx context.Context, file domain.File) (string, error) {
	return c.upload(ctx, uploadPathSingle, []formFile{{field: "file", file: file}})
}

// UploadBatch submits one spreadsheet plus attachments to the multi-file
// workflow matching w.
func (c *Client) UploadBatch(ctx context.Context, w domain.Workflow, spreadsheets, documents []domain.File) (string, error) {
	path := uploadPathPolling
	if w == domain.WorkflowValueSSE {
		path = uploadPathSSE
	}

	files := make([]formFile, 0, len(spreadsheets)+len(documents))
	for _, f := range spreadsheets {
		files = append(files, formFile{field: "excels", file: f})
	}
	for _, f := range documents {
		files = append(files, formFile{field: "pdfs", file: f})
	}
	return c.upload(ctx, path, files)
}

// PollResult is one response from the polling status endpoint.
type PollResult struct {
	Status       string   `json:"status"`
	Message      string   `json:"message"`
	DownloadURL  *string  `json:"download_url"`
	QueryFields  []string `json:"query_fields"`
	QueryTargets []string `json:"query_targets"`
}

// PollResult queries the status of a polling-workflow job.
func (c *Client) PollResult(ctx context.Context, jobID string) (*PollResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.url("/api/value/result_polling/"+url.PathEscape(jobID)), nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: poll returned %s: %s",
			domain.ErrTransport, resp.Status, decodeDetail(resp.Body))
	}

	var out PollResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProtocol, err)
	}
	return &out, nil
}

// FetchPreview retrieves the rendered HTML preview of a result file.
func (c *Client) FetchPreview(ctx context.Context, fileID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.url("/api/download/preview/"+url.PathEscape(fileID)), nil)
	if err != nil {
		return "", fmt.Errorf("build preview request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch preview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch preview: %s: %s", resp.Status, decodeDetail(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read preview: %w", err)
	}
	return string(body), nil
}

// Download fetches the result at downloadURL into destPath.
func (c *Client) Download(ctx context.Context, downloadURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(downloadURL), nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download: %s: %s", resp.Status, decodeDetail(resp.Body))
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return nil
}

// openStream opens an event-stream request. The caller owns the body;
// closing it or cancelling ctx ends the stream.
func (c *Client) openStream(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := decodeDetail(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: stream returned %s: %s", domain.ErrTransport, resp.Status, detail)
	}
	return resp.Body, nil
}

type formFile struct {
	field string
	file  domain.File
}

// upload POSTs a multipart form and decodes the issued job id. Non-2xx
// responses surface the backend's detail text via *domain.UploadError.
func (c *Client) upload(ctx context.Context, path string, files []formFile) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for _, ff := range files {
		part, err := form.CreateFormFile(ff.field, ff.file.Name)
		if err != nil {
			return "", &domain.UploadError{Err: err}
		}
		src, err := os.Open(ff.file.Path)
		if err != nil {
			return "", &domain.UploadError{Err: err}
		}
		_, err = io.Copy(part, src)
		src.Close()
		if err != nil {
			return "", &domain.UploadError{Err: err}
		}
	}
	if err := form.Close(); err != nil {
		return "", &domain.UploadError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), &buf)
	if err != nil {
		return "", &domain.UploadError{Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", &domain.UploadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.UploadError{Detail: decodeDetail(resp.Body)}
	}

	var out struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &domain.UploadError{Err: fmt.Errorf("%w: %w", domain.ErrProtocol, err)}
	}
	if out.JobID == "" {
		return "", &domain.UploadError{Err: fmt.Errorf("%w: response carried no job id", domain.ErrProtocol)}
	}

	logger.Debug("upload to %s issued job %s", path, out.JobID)
	return out.JobID, nil
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// decodeDetail extracts the backend's {"detail": ...} error text, falling
// back to the raw body when the response is not structured.
func decodeDetail(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return "unknown error"
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(body))
}
