package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var previewRows int

var previewCmd = &cobra.Command{
	Use:   "preview <spreadsheet>",
	Short: "Show the header row and first rows of a workbook",
	Long: `Reads an Excel workbook locally and prints its header row together
with the first data rows, the same preview the TUI shows before a
file is uploaded.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", 0, "number of data rows to show (defaults to preview_rows from config)")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	if services == nil || services.Reader == nil {
		return errors.New("spreadsheet reader not configured")
	}

	rows := previewRows
	if rows <= 0 {
		rows = services.Config.PreviewRows
	}

	preview, err := services.Reader.Preview(args[0], rows)
	if err != nil {
		return fmt.Errorf("preview %s: %w", args[0], err)
	}
	if len(preview.Headers) == 0 {
		cmd.Println("Workbook is empty.")
		return nil
	}

	headerStyle := lipgloss.NewStyle().Bold(true)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers(preview.Headers...).
		Rows(preview.Rows...)

	cmd.Println(t.Render())
	return nil
}
