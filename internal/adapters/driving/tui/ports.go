// Package tui provides an interactive terminal user interface for partlens.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driving"
)

// Ports aggregates the service interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Job submits uploads and tracks the resulting job.
	Job driving.JobService

	// Reader previews local spreadsheets before submission.
	Reader driven.SpreadsheetReader

	// PreviewRows is how many data rows local previews show.
	PreviewRows int
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Job == nil {
		return ErrMissingJobService
	}
	if p.Reader == nil {
		return ErrMissingReader
	}
	return nil
}
