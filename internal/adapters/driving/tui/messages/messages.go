// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewUpload is the file selection and submission view.
	ViewUpload ViewType = iota
	// ViewJob is the job tracking view.
	ViewJob
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewUpload:
		return "upload"
	case ViewJob:
		return "job"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// FileAdded is sent when a file is added to the selection.
type FileAdded struct {
	File     domain.File
	Category domain.FileCategory
}

// FileRemoved is sent when a file is removed from the selection.
type FileRemoved struct {
	Name string
}

// WorkflowChanged is sent when the workflow selector cycles.
type WorkflowChanged struct {
	Workflow domain.Workflow
}

// SubmitRequested asks the app to submit the current selection.
type SubmitRequested struct {
	Workflow  domain.Workflow
	Selection *domain.Selection
}

// SubmitFinished carries the outcome of a submission attempt.
type SubmitFinished struct {
	Err error
}

// JobUpdated carries a fresh job snapshot from the tracker.
type JobUpdated struct {
	Job domain.Job
}

// PreviewLoaded carries a local spreadsheet preview.
type PreviewLoaded struct {
	Path    string
	Preview *domain.TablePreview
	Err     error
}

// DownloadFinished signals a result download completed.
type DownloadFinished struct {
	Path string
	Err  error
}

// ResetRequested asks the app to abandon the current job.
type ResetRequested struct{}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
