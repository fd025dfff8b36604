package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyFlags struct {
	page     int
	pageSize int
	errors   bool
}

var historyCmd = &cobra.Command{
	Use:   "history <organization-id>",
	Short: "List archived analyses (or recorded failures) for an organization",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.IntVar(&historyFlags.page, "page", 1, "Page number")
	f.IntVar(&historyFlags.pageSize, "page-size", 20, "Results per page")
	f.BoolVar(&historyFlags.errors, "errors", false, "Show recorded failures instead of analyses")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx, rootFlags.config)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if historyFlags.errors {
		list, err := a.svc.RunErrors(ctx, args[0], historyFlags.pageSize)
		if err != nil {
			return fmt.Errorf("list run errors: %w", err)
		}
		for _, e := range list {
			fmt.Fprintf(out, "%s  %-8s %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Phase, e.Message)
		}
		return nil
	}

	res, err := a.svc.Analyses(ctx, args[0], historyFlags.page, historyFlags.pageSize)
	if err != nil {
		return fmt.Errorf("list analyses: %w", err)
	}
	for _, r := range res.Data {
		fmt.Fprintf(out, "%s  %s  %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID, r.ArtifactPath)
	}
	fmt.Fprintf(out, "page %d/%d (%d total)\n", res.Page, res.TotalPages, res.Total)
	return nil
}
