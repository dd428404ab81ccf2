package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driving"
)

// buildSelection turns command-line paths into a selection, verifying each
// file exists before anything is uploaded.
func buildSelection(paths []string) (*domain.Selection, error) {
	sel := domain.NewSelection()
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		sel.Add(domain.File{Name: info.Name(), Path: p})
	}
	return sel, nil
}

// followJob consumes job updates until the job reaches a terminal state,
// rendering log lines and streamed output as they arrive. On a terminal
// the in-flight progress line is rewritten in place; on a pipe every
// update lands on its own line.
func followJob(cmd *cobra.Command, svc driving.JobService) (domain.Job, error) {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	var (
		printedLog  int
		printedText int
		lineOpen    bool
	)

	closeLine := func() {
		if lineOpen {
			cmd.Println()
			lineOpen = false
		}
	}

	for job := range svc.Updates() {
		// New log entries first, so the progress line stays last.
		for _, entry := range job.Log[printedLog:] {
			closeLine()
			cmd.Printf("[%s] %s\n", entry.At.Format("15:04:05"), entry.Text)
		}
		printedLog = len(job.Log)

		// Streamed partial output is printed as it grows.
		if delta := job.PartialText[printedText:]; delta != "" {
			closeLine()
			cmd.Print(delta)
			printedText = len(job.PartialText)
		}

		if job.Status.Terminal() {
			closeLine()
			if printedText > 0 && !strings.HasSuffix(job.PartialText, "\n") {
				cmd.Println()
			}
			return job, nil
		}

		if isTTY {
			closeLine()
			cmd.Printf("\r\033[K[%3d%%] %s", job.ProgressPercent, job.ProgressMessage)
			lineOpen = true
		}
	}

	return domain.Job{}, fmt.Errorf("job updates ended unexpectedly")
}

// reportOutcome prints the terminal state of a job and optionally saves
// the result workbook to destPath.
func reportOutcome(cmd *cobra.Command, svc driving.JobService, job domain.Job, destPath string) error {
	if job.Status == domain.StatusError {
		return fmt.Errorf("job failed: %s", job.ErrorDetail)
	}

	if md := job.Metadata; md != nil {
		if len(md.QueryFields) > 0 {
			cmd.Printf("Query fields:  %s\n", strings.Join(md.QueryFields, ", "))
		}
		if len(md.QueryTargets) > 0 {
			cmd.Printf("Query targets: %s\n", strings.Join(md.QueryTargets, ", "))
		}
	}
	if job.ResultLocation != "" {
		cmd.Printf("Result available at %s\n", job.ResultLocation)
	}

	if destPath != "" {
		if err := svc.DownloadResult(cmd.Context(), destPath); err != nil {
			return fmt.Errorf("download result: %w", err)
		}
		cmd.Printf("Saved result to %s\n", destPath)
	}
	return nil
}
