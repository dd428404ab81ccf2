package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

var altOutput string

var altCmd = &cobra.Command{
	Use:   "alt <spreadsheet>",
	Short: "Analyse a single spreadsheet with live streamed output",
	Long: `Uploads one Excel workbook for analysis and streams the backend's
output as it is produced. Progress, extracted query metadata and the
analysis text all appear live; when the job finishes the result
workbook can be saved with --output.`,
	Args: cobra.ExactArgs(1),
	RunE: runAlt,
}

func init() {
	altCmd.Flags().StringVarP(&altOutput, "output", "o", "", "save the result workbook to this path")
	rootCmd.AddCommand(altCmd)
}

func runAlt(cmd *cobra.Command, args []string) error {
	if services == nil || services.Job == nil {
		return errors.New("job service not configured")
	}

	sel, err := buildSelection(args)
	if err != nil {
		return err
	}

	if err := services.Job.Submit(cmd.Context(), domain.WorkflowAlt, sel); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	job, err := followJob(cmd, services.Job)
	if err != nil {
		return err
	}
	return reportOutcome(cmd, services.Job, job, altOutput)
}
