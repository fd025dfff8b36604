package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/tpa-risk/internal/application/riskanalysis"
	"github.com/bryanwahyu/tpa-risk/pkg/logger"
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx, rootFlags.config)
	if err != nil {
		return err
	}
	defer a.Close()

	var id string
	if len(args) == 1 {
		id = args[0]
	}
	limit, _ := cmd.Flags().GetInt("limit")
	report, runErr := a.svc.Run(ctx, id, limit)

	if runErr != nil {
		logger.Error("run aborted", "error", runErr)
	}
	failed := printReport(cmd.OutOrStdout(), report)
	return exitErr(runErr, failed)
}

// printReport writes one line per organization and returns whether any failed.
func printReport(w io.Writer, report riskanalysis.BatchReport) bool {
	failed := false
	for _, o := range report.Outcomes {
		switch o.Status {
		case riskanalysis.StatusCompleted:
			line := fmt.Sprintf("%-10s %s (%s) apps=%d", o.Status, o.Organization, o.OrganizationID, o.Apps)
			if o.Summary != nil {
				line += fmt.Sprintf(" high=%d medium=%d low=%d", o.Summary.High, o.Summary.Medium, o.Summary.Low)
			}
			if o.ParseFailed {
				line += " parse-failed"
			}
			fmt.Fprintf(w, "%s -> %s\n", line, o.ArtifactPath)
		case riskanalysis.StatusSkipped:
			fmt.Fprintf(w, "%-10s %s (%s): %s\n", o.Status, o.Organization, o.OrganizationID, o.Reason)
		default:
			failed = true
			fmt.Fprintf(w, "%-10s %s (%s) during %s: %s\n", o.Status, o.Organization, o.OrganizationID, o.Phase, o.Error)
		}
	}
	return failed
}
