package app

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/cov2ai/internal/config"
	"github.com/zjy-dev/cov2ai/internal/lcov"
	"github.com/zjy-dev/cov2ai/internal/logger"
	"github.com/zjy-dev/cov2ai/internal/payload"
	"github.com/zjy-dev/cov2ai/internal/prompt"
	"github.com/zjy-dev/cov2ai/internal/report"
)

// NewPayloadCommand creates the "payload" subcommand.
func NewPayloadCommand() *cobra.Command {
	var (
		lcovPath     string
		repoRoot     string
		contextLines int
		size         int
		maxFiles     int
		promptPath   string
		raw          bool
		output       string
	)

	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Build the untested-code payload from an lcov report.",
		Long: `Parses an lcov report, merges uncovered lines into contiguous ranges,
collects zero-hit branches and never-executed functions, and attaches
source snippets resolved against the repository root.

The JSON payload is preceded by a prompt header (a markdown file meant
for an LLM) unless --raw is given. Output is capped to the first
--max-files records and truncated to --size bytes after serialization.

Examples:
  # Convert the default report with the default prompt header
  cov2ai payload

  # Raw JSON for a specific report, resolved against a source tree
  cov2ai payload --lcov build/coverage/lcov.info --repo-root . --raw

  # Wider snippet context, larger preview budget
  cov2ai payload --context-lines 80 --size 50000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Flags override config file values only when set explicitly.
			flags := cmd.Flags()
			if flags.Changed("lcov") {
				cfg.LcovPath = lcovPath
			}
			if flags.Changed("repo-root") {
				cfg.RepoRoot = repoRoot
			}
			if flags.Changed("context-lines") {
				cfg.ContextLines = contextLines
			}
			if flags.Changed("size") {
				cfg.MaxOutputBytes = size
			}
			if flags.Changed("max-files") {
				cfg.MaxFiles = maxFiles
			}
			if flags.Changed("prompt") {
				cfg.PromptPath = promptPath
			}
			if flags.Changed("raw") {
				cfg.Raw = raw
			}

			records, err := lcov.ParseFile(cfg.LcovPath)
			if err != nil {
				return err
			}
			logger.Debug("parsed %d coverage records from %s", len(records), cfg.LcovPath)

			builder := payload.NewBuilder(cfg.RepoRoot, cfg.ContextLines)
			payloads := builder.BuildAll(records)

			var out io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			emitter := report.NewJSONEmitter(out, cfg.MaxFiles, cfg.MaxOutputBytes).SetRaw(cfg.Raw)
			if !cfg.Raw {
				emitter.WithHeader(prompt.Header(cfg.PromptPath))
			}

			return emitter.Emit(payloads)
		},
	}

	cmd.Flags().StringVar(&lcovPath, "lcov", config.DefaultLcovPath, "Path to the lcov report")
	cmd.Flags().StringVar(&repoRoot, "repo-root", config.DefaultRepoRoot, "Repository root used to resolve source paths")
	cmd.Flags().IntVar(&contextLines, "context-lines", config.DefaultContextLines, "Source lines of context around each target span")
	cmd.Flags().IntVar(&size, "size", config.DefaultMaxOutputBytes, "Max bytes of serialized JSON to emit")
	cmd.Flags().IntVar(&maxFiles, "max-files", config.DefaultMaxFiles, "Max per-file payloads to emit")
	cmd.Flags().StringVar(&promptPath, "prompt", config.DefaultPromptPath, "Prompt header file printed before the JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "Emit raw JSON only, without the prompt header")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to a file instead of stdout")

	return cmd
}
