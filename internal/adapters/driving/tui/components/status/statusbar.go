// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/keymap"
	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/styles"
	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

// Bar displays the tracked job's state and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	workflow domain.Workflow
	job      domain.Job
	message  string
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	padding := s.width - leftLen - rightLen
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the job state.
func (s *Bar) renderLeft() string {
	if s.message != "" {
		return s.styles.Error.Render(s.message)
	}

	parts := []string{string(s.workflow)}
	if s.job.ID != "" {
		parts = append(parts, fmt.Sprintf("job %s", s.job.ID))
	}

	switch s.job.Status {
	case domain.StatusIdle:
		parts = append(parts, s.styles.Muted.Render("ready"))
	case domain.StatusDone:
		parts = append(parts, s.styles.Success.Render("done"))
	case domain.StatusError:
		parts = append(parts, s.styles.Error.Render("failed"))
	default:
		parts = append(parts, s.styles.Warning.Render(string(s.job.Status)))
	}

	return strings.Join(parts, "  ")
}

// renderRight renders keybinding hints for the active view.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.job.Status == domain.StatusIdle {
		bindings = s.keymap.UploadHelp()
	} else {
		bindings = s.keymap.JobHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetJob updates the displayed job snapshot.
func (s *Bar) SetJob(job domain.Job) {
	s.job = job
}

// SetWorkflow updates the displayed workflow.
func (s *Bar) SetWorkflow(w domain.Workflow) {
	s.workflow = w
}

// SetMessage sets an error message shown in place of the job state.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar message.
func (s *Bar) Clear() {
	s.message = ""
}
