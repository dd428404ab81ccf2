package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Workflow selects the upload endpoint and transport variant for a job.
type Workflow string

const (
	// WorkflowAlt is the single-spreadsheet workflow with streamed
	// partial-text updates over SSE.
	WorkflowAlt Workflow = "alt"

	// WorkflowValueSSE is the spreadsheet-plus-attachments workflow with
	// discrete status messages over SSE.
	WorkflowValueSSE Workflow = "value-sse"

	// WorkflowValuePoll is the spreadsheet-plus-attachments workflow
	// tracked by polling the result endpoint.
	WorkflowValuePoll Workflow = "value-poll"
)

// ActiveStatus is the state the job enters once the upload succeeds.
func (w Workflow) ActiveStatus() Status {
	if w == WorkflowValuePoll {
		return StatusPolling
	}
	return StatusProcessing
}

// String implements fmt.Stringer.
func (w Workflow) String() string { return string(w) }

// FileCategory classifies a selected file by extension.
type FileCategory int

const (
	// CategoryUnknown is any extension outside the supported sets.
	CategoryUnknown FileCategory = iota
	// CategorySpreadsheet is .xlsx or .xls.
	CategorySpreadsheet
	// CategoryDocument is .pdf.
	CategoryDocument
)

// String implements fmt.Stringer.
func (c FileCategory) String() string {
	switch c {
	case CategorySpreadsheet:
		return "spreadsheet"
	case CategoryDocument:
		return "document"
	default:
		return "unsupported"
	}
}

// File references one local input file.
type File struct {
	// Name is the base name and the natural key within a selection.
	Name string
	// Path is the location on disk the upload reads from.
	Path string
}

// Categorise classifies a file name by its extension. Classification
// happens at selection time, not at submit time.
func Categorise(name string) FileCategory {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return CategorySpreadsheet
	case ".pdf":
		return CategoryDocument
	default:
		return CategoryUnknown
	}
}

// Selection is the set of input files for one submission, keyed by file
// name. Re-selecting a name replaces the prior entry instead of
// duplicating it.
type Selection struct {
	order []string
	files map[string]File
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{files: make(map[string]File)}
}

// Add inserts or replaces a file by name and returns its category.
func (s *Selection) Add(f File) FileCategory {
	if f.Name == "" {
		f.Name = filepath.Base(f.Path)
	}
	if _, exists := s.files[f.Name]; !exists {
		s.order = append(s.order, f.Name)
	}
	s.files[f.Name] = f
	return Categorise(f.Name)
}

// Remove deletes a file by name. Unknown names are a no-op.
func (s *Selection) Remove(name string) {
	if _, exists := s.files[name]; !exists {
		return
	}
	delete(s.files, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of selected files.
func (s *Selection) Len() int { return len(s.files) }

// Files returns all files in selection order.
func (s *Selection) Files() []File {
	out := make([]File, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.files[name])
	}
	return out
}

// Spreadsheets returns the selected xlsx/xls files in selection order.
func (s *Selection) Spreadsheets() []File {
	return s.byCategory(CategorySpreadsheet)
}

// Documents returns the selected pdf files in selection order.
func (s *Selection) Documents() []File {
	return s.byCategory(CategoryDocument)
}

func (s *Selection) byCategory(c FileCategory) []File {
	var out []File
	for _, name := range s.order {
		if Categorise(name) == c {
			out = append(out, s.files[name])
		}
	}
	return out
}

// Validate checks the selection against the workflow's constraints.
// It returns a *ValidationError carrying a user-facing reason; no network
// activity is implied either way.
func (w Workflow) Validate(s *Selection) error {
	if s == nil || s.Len() == 0 {
		return &ValidationError{Reason: "no files selected"}
	}

	switch w {
	case WorkflowAlt:
		files := s.Files()
		if len(files) != 1 {
			return &ValidationError{Reason: "select exactly one Excel file"}
		}
		if Categorise(files[0].Name) != CategorySpreadsheet {
			return &ValidationError{
				Reason: fmt.Sprintf("unsupported file type %q: expected .xlsx or .xls",
					filepath.Ext(files[0].Name)),
			}
		}
		return nil

	case WorkflowValueSSE, WorkflowValuePoll:
		if n := len(s.Spreadsheets()); n != 1 {
			return &ValidationError{Reason: "select exactly one Excel file"}
		}
		if len(s.Documents()) == 0 {
			return &ValidationError{Reason: "select at least one PDF attachment"}
		}
		if len(s.Spreadsheets())+len(s.Documents()) != s.Len() {
			return &ValidationError{Reason: "selection contains unsupported file types"}
		}
		return nil

	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown workflow %q", w)}
	}
}
