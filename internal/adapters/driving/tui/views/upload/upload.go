// Package upload implements the file selection and submission view.
package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/keymap"
	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/messages"
	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/styles"
	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
)

// workflows is the cycle order for the workflow selector.
var workflows = []domain.Workflow{
	domain.WorkflowAlt,
	domain.WorkflowValueSSE,
	domain.WorkflowValuePoll,
}

// workflowLabels maps workflows to their selector captions.
var workflowLabels = map[domain.Workflow]string{
	domain.WorkflowAlt:       "alt (single spreadsheet, streamed)",
	domain.WorkflowValueSSE:  "value (spreadsheet + PDFs, SSE)",
	domain.WorkflowValuePoll: "value (spreadsheet + PDFs, polling)",
}

// View is the upload view: a file picker, the current selection, the
// workflow selector and a preview of the chosen spreadsheet.
type View struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	reader      driven.SpreadsheetReader
	previewRows int

	picker    filepicker.Model
	selection *domain.Selection
	workflow  domain.Workflow

	preview     *domain.TablePreview
	previewPath string
	err         error

	width  int
	height int
}

// NewView creates the upload view.
func NewView(s *styles.Styles, km *keymap.KeyMap, reader driven.SpreadsheetReader, previewRows int) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	fp := filepicker.New()
	fp.AllowedTypes = []string{".xlsx", ".xls", ".pdf"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}

	return &View{
		styles:      s,
		keymap:      km,
		reader:      reader,
		previewRows: previewRows,
		picker:      fp,
		selection:   domain.NewSelection(),
		workflow:    domain.WorkflowAlt,
	}
}

// Init initialises the file picker.
func (v *View) Init() tea.Cmd {
	return v.picker.Init()
}

// Update handles messages for the upload view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Workflow):
			v.cycleWorkflow()
			return v, nil

		case keymap.Matches(msg.String(), v.keymap.Remove):
			v.removeLast()
			return v, nil

		case keymap.Matches(msg.String(), v.keymap.Submit):
			if err := v.workflow.Validate(v.selection); err != nil {
				v.err = err
				return v, nil
			}
			v.err = nil
			workflow, sel := v.workflow, v.selection
			return v, func() tea.Msg {
				return messages.SubmitRequested{Workflow: workflow, Selection: sel}
			}
		}

	case messages.PreviewLoaded:
		if msg.Err != nil {
			v.err = fmt.Errorf("preview %s: %w", msg.Path, msg.Err)
			return v, nil
		}
		v.preview = msg.Preview
		v.previewPath = msg.Path
		return v, nil
	}

	var cmd tea.Cmd
	v.picker, cmd = v.picker.Update(msg)

	if ok, path := v.picker.DidSelectFile(msg); ok {
		return v, tea.Batch(cmd, v.addFile(path))
	}
	return v, cmd
}

// addFile adds a picked file to the selection and, for spreadsheets,
// kicks off a local preview.
func (v *View) addFile(path string) tea.Cmd {
	name := fileName(path)
	category := v.selection.Add(domain.File{Name: name, Path: path})
	v.err = nil

	if category != domain.CategorySpreadsheet || v.reader == nil {
		return nil
	}

	reader, rows := v.reader, v.previewRows
	return func() tea.Msg {
		preview, err := reader.Preview(path, rows)
		return messages.PreviewLoaded{Path: path, Preview: preview, Err: err}
	}
}

// removeLast drops the most recently added file from the selection.
func (v *View) removeLast() {
	files := v.selection.Files()
	if len(files) == 0 {
		return
	}
	last := files[len(files)-1]
	v.selection.Remove(last.Name)
	if v.previewPath == last.Path {
		v.preview = nil
		v.previewPath = ""
	}
}

func (v *View) cycleWorkflow() {
	for i, w := range workflows {
		if w == v.workflow {
			v.workflow = workflows[(i+1)%len(workflows)]
			return
		}
	}
	v.workflow = workflows[0]
}

// View renders the upload view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("partlens - upload"))
	b.WriteString("\n\n")

	b.WriteString(v.styles.Subtitle.Render("Workflow: "))
	b.WriteString(v.styles.Normal.Render(workflowLabels[v.workflow]))
	b.WriteString("\n\n")

	b.WriteString(v.picker.View())
	b.WriteString("\n")

	b.WriteString(v.renderSelection())

	if v.preview != nil && len(v.preview.Headers) > 0 {
		b.WriteString("\n")
		b.WriteString(v.renderPreview())
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(v.err.Error()))
		b.WriteString("\n")
	} else if err := v.workflow.Validate(v.selection); err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(err.Error()))
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render("Selection ready: press s to submit"))
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderSelection() string {
	files := v.selection.Files()
	if len(files) == 0 {
		return v.styles.Muted.Render("No files selected yet.") + "\n"
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Selected files:"))
	b.WriteString("\n")
	for _, f := range files {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			v.styles.Normal.Render(f.Name),
			v.styles.Muted.Render(fmt.Sprintf("(%s)", domain.Categorise(f.Name)))))
	}
	return b.String()
}

func (v *View) renderPreview() string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Preview: " + fileName(v.previewPath)))
	b.WriteString("\n")
	b.WriteString(v.styles.TableHeader.Render(strings.Join(v.preview.Headers, " | ")))
	b.WriteString("\n")
	for _, row := range v.preview.Rows {
		b.WriteString(v.styles.Muted.Render(strings.Join(row, " | ")))
		b.WriteString("\n")
	}
	return b.String()
}

// SetDimensions updates the view size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	pickerHeight := height - 18
	if pickerHeight < 5 {
		pickerHeight = 5
	}
	v.picker.Height = pickerHeight
}

// Selection returns the current selection.
func (v *View) Selection() *domain.Selection {
	return v.selection
}

// Workflow returns the selected workflow.
func (v *View) Workflow() domain.Workflow {
	return v.workflow
}

// Err returns the last error shown by the view.
func (v *View) Err() error {
	return v.err
}

// Reset clears the selection and preview.
func (v *View) Reset() {
	v.selection = domain.NewSelection()
	v.preview = nil
	v.previewPath = ""
	v.err = nil
}

func fileName(path string) string {
	return filepath.Base(path)
}
