package app

import (
	"github.com/spf13/cobra"

	"github.com/zjy-dev/cov2ai/internal/logger"
)

// NewCov2AICommand creates the root command for the cov2ai tool.
func NewCov2AICommand() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "cov2ai",
		Short: "Convert lcov coverage reports into an LLM-ready payload.",
		Long: `cov2ai converts an lcov coverage report into a structured JSON payload
describing exactly which code is untested: uncovered line ranges,
uncovered branches, and never-executed functions, each with a snippet
of surrounding source text.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logLevel)
			logger.SetLevel(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")

	cmd.AddCommand(NewPayloadCommand())

	return cmd
}
