// Command partlens uploads spreadsheets to the analysis backend and
// tracks the resulting jobs from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/halide-labs/partlens-cli/internal/adapters/driven/backend"
	"github.com/halide-labs/partlens-cli/internal/adapters/driven/config/file"
	"github.com/halide-labs/partlens-cli/internal/adapters/driven/spreadsheet"
	"github.com/halide-labs/partlens-cli/internal/adapters/driving/cli"
	"github.com/halide-labs/partlens-cli/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := file.DefaultConfig()
	if dir, err := file.DefaultDir(); err == nil {
		loaded, err := file.Load(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", err)
		} else {
			cfg = loaded
		}
	}
	if server := os.Getenv("PARTLENS_SERVER"); server != "" {
		cfg.ServerURL = server
	}

	client := backend.NewClient(cfg.ServerURL)
	transports := backend.NewTransportFactory(client, backend.TransportConfig{
		PollInterval:    cfg.PollInterval(),
		LivenessTimeout: cfg.LivenessTimeout(),
	})
	tracker := services.NewTracker(client, transports)

	cli.SetServices(&cli.Services{
		Job:    tracker,
		Reader: spreadsheet.NewReader(),
		Config: cfg,
	})
	return cli.Execute()
}
