package driven

import (
	"context"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

// Backend is the analysis service's request/response surface: the upload
// calls, the polling endpoint, and result retrieval. The long-lived
// update channels are modelled separately by Transport.
type Backend interface {
	// UploadSingle submits one spreadsheet to the single-file workflow
	// and returns the issued job id.
	UploadSingle(ctx context.Context, file domain.File) (string, error)

	// UploadBatch submits one spreadsheet plus attachments to the
	// multi-file workflow matching w (polling or SSE variant) and
	// returns the issued job id.
	UploadBatch(ctx context.Context, w domain.Workflow, spreadsheets, documents []domain.File) (string, error)

	// FetchPreview retrieves the rendered HTML preview of a result file.
	FetchPreview(ctx context.Context, fileID string) (string, error)

	// Download fetches the result at downloadURL into destPath.
	Download(ctx context.Context, downloadURL, destPath string) error
}

// SpreadsheetReader extracts a local preview from a selected Excel file.
// Preview extraction is independent of submission and must not block it.
type SpreadsheetReader interface {
	Preview(path string, maxRows int) (*domain.TablePreview, error)
}
