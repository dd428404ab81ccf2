package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halide-labs/partlens-cli/internal/adapters/driven/dropdir"
	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

var (
	valueTransport string
	valueOutput    string
	valueWatch     bool
	valueDropDir   string
)

var valueCmd = &cobra.Command{
	Use:   "value <spreadsheet> <document.pdf> [more.pdf...]",
	Short: "Run a valuation over a spreadsheet and supporting PDFs",
	Long: `Uploads one Excel workbook together with one or more PDF documents
and tracks the valuation job to completion.

Tracking uses discrete server-sent events by default; pass
--transport poll to query the backend on a fixed cadence instead.

With --watch no arguments are needed: files dropped into the inbox
directory are collected until they form a valid selection, which is
then submitted automatically.`,
	Args: cobra.ArbitraryArgs,
	RunE: runValue,
}

func init() {
	valueCmd.Flags().StringVarP(&valueTransport, "transport", "t", "sse", "tracking transport: sse or poll")
	valueCmd.Flags().StringVarP(&valueOutput, "output", "o", "", "save the result workbook to this path")
	valueCmd.Flags().BoolVarP(&valueWatch, "watch", "w", false, "collect files from the inbox directory")
	valueCmd.Flags().StringVar(&valueDropDir, "drop-dir", "", "inbox directory for --watch (defaults to drop_dir from config)")
	rootCmd.AddCommand(valueCmd)
}

func runValue(cmd *cobra.Command, args []string) error {
	if services == nil || services.Job == nil {
		return errors.New("job service not configured")
	}

	var workflow domain.Workflow
	switch valueTransport {
	case "sse":
		workflow = domain.WorkflowValueSSE
	case "poll":
		workflow = domain.WorkflowValuePoll
	default:
		return fmt.Errorf("unknown transport %q (want sse or poll)", valueTransport)
	}

	var (
		sel *domain.Selection
		err error
	)
	if valueWatch {
		sel, err = watchSelection(cmd, workflow)
	} else {
		if len(args) == 0 {
			return errors.New("no files given (or use --watch)")
		}
		sel, err = buildSelection(args)
	}
	if err != nil {
		return err
	}

	if err := services.Job.Submit(cmd.Context(), workflow, sel); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	job, err := followJob(cmd, services.Job)
	if err != nil {
		return err
	}
	return reportOutcome(cmd, services.Job, job, valueOutput)
}

// watchSelection collects files from the inbox directory until they form
// a valid selection for the workflow.
func watchSelection(cmd *cobra.Command, workflow domain.Workflow) (*domain.Selection, error) {
	dir := valueDropDir
	if dir == "" {
		dir = services.Config.DropDir
	}
	if dir == "" {
		return nil, errors.New("no inbox directory: pass --drop-dir or set drop_dir in the config")
	}

	watcher, err := dropdir.New(dir)
	if err != nil {
		return nil, err
	}
	defer watcher.Close()

	cmd.Printf("Watching %s for files...\n", dir)

	sel := domain.NewSelection()
	for f := range watcher.Start(cmd.Context()) {
		cmd.Printf("  + %s\n", f.Name)
		sel.Add(f)
		if workflow.Validate(sel) == nil {
			return sel, nil
		}
	}
	if err := cmd.Context().Err(); err != nil {
		return nil, err
	}
	return nil, errors.New("inbox watcher stopped before the selection was complete")
}
