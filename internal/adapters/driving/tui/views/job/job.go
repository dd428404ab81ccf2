// Package job implements the job tracking view.
package job

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/keymap"
	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/messages"
	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/styles"
	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driving"
)

// defaultDownloadName is where the result workbook lands when the user
// presses download.
const defaultDownloadName = "partlens-result.xlsx"

// View renders the tracked job: progress, log, streamed output, query
// metadata and the terminal result.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	svc    driving.JobService
	ctx    context.Context

	job      domain.Job
	bar      progress.Model
	spin     spinner.Model
	partial  viewport.Model
	download string
	err      error

	width  int
	height int
}

// NewView creates the job view.
func NewView(s *styles.Styles, km *keymap.KeyMap, svc driving.JobService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:  s,
		keymap:  km,
		svc:     svc,
		ctx:     context.Background(),
		bar:     progress.New(progress.WithDefaultGradient()),
		spin:    sp,
		partial: viewport.New(80, 8),
	}
}

// WithContext sets the context used for downloads.
func (v *View) WithContext(ctx context.Context) {
	v.ctx = ctx
}

// Init starts the spinner.
func (v *View) Init() tea.Cmd {
	return v.spin.Tick
}

// Update handles messages for the job view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Download):
			if v.job.Status != domain.StatusDone {
				return v, nil
			}
			svc, ctx := v.svc, v.ctx
			return v, func() tea.Msg {
				err := svc.DownloadResult(ctx, defaultDownloadName)
				return messages.DownloadFinished{Path: defaultDownloadName, Err: err}
			}

		case keymap.Matches(msg.String(), v.keymap.Reset):
			return v, func() tea.Msg { return messages.ResetRequested{} }
		}
		return v, nil

	case messages.JobUpdated:
		v.job = msg.Job
		v.partial.SetContent(v.styles.Partial.Render(v.job.PartialText))
		v.partial.GotoBottom()
		return v, nil

	case messages.DownloadFinished:
		if msg.Err != nil {
			v.err = fmt.Errorf("download: %w", msg.Err)
		} else {
			v.download = msg.Path
			v.err = nil
		}
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd

	case progress.FrameMsg:
		model, cmd := v.bar.Update(msg)
		v.bar = model.(progress.Model)
		return v, cmd
	}

	var cmd tea.Cmd
	v.partial, cmd = v.partial.Update(msg)
	return v, cmd
}

// View renders the job view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("partlens - job"))
	if v.job.ID != "" {
		b.WriteString(v.styles.Muted.Render("  " + v.job.ID))
	}
	b.WriteString("\n\n")

	b.WriteString(v.renderStatus())
	b.WriteString("\n")
	b.WriteString(v.bar.ViewAs(float64(v.job.ProgressPercent) / 100))
	b.WriteString("\n\n")

	if v.job.PartialText != "" {
		b.WriteString(v.styles.Subtitle.Render("Analysis output"))
		b.WriteString("\n")
		b.WriteString(v.partial.View())
		b.WriteString("\n\n")
	}

	if md := v.job.Metadata; md != nil {
		if len(md.QueryFields) > 0 {
			b.WriteString(v.styles.Subtitle.Render("Query fields: "))
			b.WriteString(v.styles.Normal.Render(strings.Join(md.QueryFields, ", ")))
			b.WriteString("\n")
		}
		if len(md.QueryTargets) > 0 {
			b.WriteString(v.styles.Subtitle.Render("Query targets: "))
			b.WriteString(v.styles.Normal.Render(strings.Join(md.QueryTargets, ", ")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(v.renderLog())
	b.WriteString(v.renderOutcome())

	return b.String()
}

func (v *View) renderStatus() string {
	switch v.job.Status {
	case domain.StatusDone:
		return v.styles.Success.Render("✓ " + v.job.ProgressMessage)
	case domain.StatusError:
		return v.styles.Error.Render("✗ " + v.job.ErrorDetail)
	default:
		return v.spin.View() + " " + v.styles.Normal.Render(v.job.ProgressMessage)
	}
}

func (v *View) renderLog() string {
	if len(v.job.Log) == 0 {
		return ""
	}

	// Show the tail when the log outgrows the space.
	entries := v.job.Log
	maxLines := v.logLines()
	if len(entries) > maxLines {
		entries = entries[len(entries)-maxLines:]
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Log"))
	b.WriteString("\n")
	for _, e := range entries {
		b.WriteString(v.styles.LogLine.Render(
			fmt.Sprintf("[%s] %s", e.At.Format("15:04:05"), e.Text)))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderOutcome() string {
	var b strings.Builder

	if v.job.Status == domain.StatusDone && v.job.ResultLocation != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("Result: " + v.job.ResultLocation))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Press d to download, r to start over."))
		b.WriteString("\n")
	}
	if v.download != "" {
		b.WriteString(v.styles.Success.Render("Saved to " + v.download))
		b.WriteString("\n")
	}
	if v.err != nil {
		b.WriteString(v.styles.Error.Render(v.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) logLines() int {
	lines := v.height - 16
	if lines < 3 {
		lines = 3
	}
	return lines
}

// SetDimensions updates the view size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	barWidth := width - 4
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth > 0 {
		v.bar.Width = barWidth
	}

	v.partial.Width = width - 4
	v.partial.Height = 8
}

// Job returns the last snapshot the view rendered.
func (v *View) Job() domain.Job {
	return v.job
}

// Err returns the last download error.
func (v *View) Err() error {
	return v.err
}

// Reset clears the view for a fresh job.
func (v *View) Reset() {
	v.job = domain.Job{}
	v.download = ""
	v.err = nil
	v.partial.SetContent("")
}
