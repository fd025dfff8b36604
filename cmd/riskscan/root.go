package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/tpa-risk/internal/domain/organizations"
	"github.com/bryanwahyu/tpa-risk/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config    string
	debug     bool
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "riskscan [organization-id]",
	Short: "Risk analysis of third-party SaaS apps per organization",
	Long: `riskscan asks a language model to rank the third-party SaaS apps connected
to an organization by risk, and writes one JSON report per organization.

With an organization id only that organization is analyzed; without one the
most recently updated organizations are processed in order.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetupLogger(rootFlags.debug, rootFlags.logFormat)
	},
	RunE: runAnalyze,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.config, "config", "", "Path to config yaml (default $CONFIG_PATH or config.yaml)")
	f.BoolVar(&rootFlags.debug, "debug", false, "Enable debug logging")
	f.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.Flags().Int("limit", 0, "Organizations per batch run (default analysis.orgBatchSize)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.Version = version
}

// errFailures makes the process exit 1 once the report has been printed.
var errFailures = errors.New("one or more organizations failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailures) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// exitErr maps a run result onto the process exit status: an unknown
// organization is reported but is not a failure.
func exitErr(err error, failed bool) error {
	switch {
	case errors.Is(err, organizations.ErrNotFound):
		return nil
	case err != nil:
		return err
	case failed:
		return errFailures
	}
	return nil
}
