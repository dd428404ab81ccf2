// Package cli implements the partlens command-line interface using cobra.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/halide-labs/partlens-cli/internal/adapters/driven/config/file"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driving"
	"github.com/halide-labs/partlens-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services holds the service implementations the commands run against.
// main wires these up before Execute.
type Services struct {
	Job    driving.JobService
	Reader driven.SpreadsheetReader
	Config file.Config
}

var services *Services

// SetServices configures the services used by the CLI commands.
func SetServices(s *Services) {
	services = s
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "partlens",
	Short: "Upload spreadsheets for analysis and track the results",
	Long: `Partlens uploads Excel workbooks (and supporting PDF documents) to the
analysis backend and tracks the resulting job until it completes.

Three workflows are available:
  alt    - single-spreadsheet analysis with live streamed output
  value  - spreadsheet + PDF valuation, tracked over SSE or polling
  tui    - interactive terminal interface for both workflows`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
