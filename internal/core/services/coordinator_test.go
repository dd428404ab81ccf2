package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

func TestCoordinator_UploadAlt(t *testing.T) {
	backend := &mockBackend{jobID: "job-1"}
	c := NewCoordinator(backend)

	jobID, err := c.Upload(context.Background(), domain.WorkflowAlt, altSelection())
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, 1, backend.uploadSingleCalls)
	assert.Zero(t, backend.uploadBatchCalls)
}

func TestCoordinator_UploadValueSplitsByCategory(t *testing.T) {
	backend := &mockBackend{jobID: "job-2"}
	c := NewCoordinator(backend)

	sel := domain.NewSelection()
	sel.Add(domain.File{Name: "quote.pdf"})
	sel.Add(domain.File{Name: "parts.xlsx"})
	sel.Add(domain.File{Name: "terms.pdf"})

	jobID, err := c.Upload(context.Background(), domain.WorkflowValueSSE, sel)
	require.NoError(t, err)
	assert.Equal(t, "job-2", jobID)
	assert.Equal(t, domain.WorkflowValueSSE, backend.lastWorkflow)
	require.Len(t, backend.lastSpreadsheets, 1)
	assert.Equal(t, "parts.xlsx", backend.lastSpreadsheets[0].Name)
	require.Len(t, backend.lastDocuments, 2)
}

func TestCoordinator_UploadRejectsInvalidSelectionBeforeNetwork(t *testing.T) {
	backend := &mockBackend{jobID: "job-3"}
	c := NewCoordinator(backend)

	sel := domain.NewSelection()
	sel.Add(domain.File{Name: "notes.txt"})

	_, err := c.Upload(context.Background(), domain.WorkflowAlt, sel)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, backend.uploadSingleCalls)
	assert.Zero(t, backend.uploadBatchCalls)
}
