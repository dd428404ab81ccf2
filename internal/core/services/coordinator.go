package services

import (
	"context"
	"fmt"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
	"github.com/halide-labs/partlens-cli/internal/logger"
)

// Coordinator validates a selection against its workflow's constraints and
// performs the upload call. Validation failures are raised synchronously,
// before any network activity.
type Coordinator struct {
	backend driven.Backend
}

// NewCoordinator creates an upload coordinator.
func NewCoordinator(backend driven.Backend) *Coordinator {
	return &Coordinator{backend: backend}
}

// Upload validates sel for workflow w and, if valid, submits it to the
// matching upload endpoint. Returns the job id issued by the backend.
func (c *Coordinator) Upload(ctx context.Context, w domain.Workflow, sel *domain.Selection) (string, error) {
	if err := w.Validate(sel); err != nil {
		return "", err
	}

	logger.Debug("uploading %d file(s) for workflow %s", sel.Len(), w)

	switch w {
	case domain.WorkflowAlt:
		jobID, err := c.backend.UploadSingle(ctx, sel.Files()[0])
		if err != nil {
			return "", err
		}
		return jobID, nil

	case domain.WorkflowValueSSE, domain.WorkflowValuePoll:
		jobID, err := c.backend.UploadBatch(ctx, w, sel.Spreadsheets(), sel.Documents())
		if err != nil {
			return "", err
		}
		return jobID, nil

	default:
		return "", &domain.ValidationError{Reason: fmt.Sprintf("unknown workflow %q", w)}
	}
}
