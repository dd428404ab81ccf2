package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/components/status"
	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/keymap"
	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/messages"
	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/styles"
	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/views/job"
	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/views/upload"
	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings.
	keymap *keymap.KeyMap

	// uploadView is the file selection and submission view.
	uploadView *upload.View

	// jobView is the job tracking view.
	jobView *job.View

	// statusBar shows job state and keybinding hints.
	statusBar *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	uploadView := upload.NewView(s, km, ports.Reader, ports.PreviewRows)
	jobView := job.NewView(s, km, ports.Job)
	bar := status.NewBar(s, km)
	bar.SetWorkflow(uploadView.Workflow())

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		uploadView:  uploadView,
		jobView:     jobView,
		statusBar:   bar,
		currentView: messages.ViewUpload,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.jobView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("partlens"),
		a.uploadView.Init(),
		a.waitForUpdate(),
	)
}

// waitForUpdate pumps the tracker's update channel into the Elm loop.
// Each delivered snapshot re-arms the wait.
func (a *App) waitForUpdate() tea.Cmd {
	updates := a.ports.Job.Updates()
	return func() tea.Msg {
		job, ok := <-updates
		if !ok {
			return nil
		}
		return messages.JobUpdated{Job: job}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.uploadView.SetDimensions(msg.Width, msg.Height-1)
		a.jobView.SetDimensions(msg.Width, msg.Height-1)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewUpload:
			if keymap.Matches(msg.String(), a.keymap.Quit) {
				return a, tea.Quit
			}
			if keymap.Matches(msg.String(), a.keymap.Help) {
				a.currentView = messages.ViewHelp
				return a, nil
			}
			a.uploadView, cmd = a.uploadView.Update(msg)
			a.statusBar.SetWorkflow(a.uploadView.Workflow())
			return a, cmd

		case messages.ViewJob:
			if keymap.Matches(msg.String(), a.keymap.Quit) {
				return a, tea.Quit
			}
			if keymap.Matches(msg.String(), a.keymap.Help) {
				a.currentView = messages.ViewHelp
				return a, nil
			}
			a.jobView, cmd = a.jobView.Update(msg)
			return a, cmd

		case messages.ViewHelp:
			// Esc or ? leaves help
			if msg.Type == tea.KeyEsc || keymap.Matches(msg.String(), a.keymap.Help) {
				a.currentView = a.viewBehindHelp()
				return a, nil
			}
			if keymap.Matches(msg.String(), a.keymap.Quit) {
				return a, tea.Quit
			}
			return a, nil
		}
		return a, nil

	case messages.SubmitRequested:
		a.currentView = messages.ViewJob
		a.statusBar.Clear()
		svc, ctx := a.ports.Job, a.ctx
		submit := func() tea.Msg {
			return messages.SubmitFinished{Err: svc.Submit(ctx, msg.Workflow, msg.Selection)}
		}
		return a, tea.Batch(a.jobView.Init(), submit)

	case messages.SubmitFinished:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetMessage(msg.Err.Error())
		}
		return a, nil

	case messages.JobUpdated:
		a.statusBar.SetJob(msg.Job)
		a.jobView, cmd = a.jobView.Update(msg)
		if msg.Job.Status != domain.StatusIdle && a.currentView == messages.ViewUpload {
			a.currentView = messages.ViewJob
		}
		return a, tea.Batch(cmd, a.waitForUpdate())

	case messages.ResetRequested:
		a.ports.Job.Reset()
		a.uploadView.Reset()
		a.jobView.Reset()
		a.statusBar.Clear()
		a.statusBar.SetJob(domain.Job{})
		a.currentView = messages.ViewUpload
		return a, a.uploadView.Init()

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetMessage(msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to the active view
	switch a.currentView {
	case messages.ViewUpload:
		a.uploadView, cmd = a.uploadView.Update(msg)
	case messages.ViewJob:
		a.jobView, cmd = a.jobView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// viewBehindHelp picks the view to return to when help closes.
func (a *App) viewBehindHelp() messages.ViewType {
	if a.jobView.Job().Status != domain.StatusIdle {
		return messages.ViewJob
	}
	return messages.ViewUpload
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewUpload:
		body = a.uploadView.View()
	case messages.ViewJob:
		body = a.jobView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.uploadView.View()
	}

	return body + "\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Upload:
  j/k, ↑/↓    Navigate files
  enter       Add file to selection
  x           Remove last file
  tab         Cycle workflow
  s           Submit the selection

Job:
  d           Download the result workbook
  r           Reset and start over

Global:
  ?           Toggle help
  esc         Close help
  q, ctrl+c   Quit

[esc] close help`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.uploadView.SetDimensions(width, height-1)
	a.jobView.SetDimensions(width, height-1)
	a.statusBar.SetWidth(width)
}
