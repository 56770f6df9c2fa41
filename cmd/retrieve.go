package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osprey-ai/policybench/internal/corpus"
	"github.com/osprey-ai/policybench/internal/retrieval"
	"github.com/osprey-ai/policybench/internal/tokens"
	"github.com/osprey-ai/policybench/pkg/openai"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Run section-level retrieval over the benchmark documents",
	Long: `Partitions each document's sections into token-bounded groups, asks the
model which sections are relevant to each line item, and merges the
per-group verdicts into one relevant-section set per (document, line item).

Failed or malformed model calls fail open: every section of the affected
group is treated as relevant so candidate evidence is never dropped.

Examples:
  # Dry run on the first document and line item
  policybench retrieve --test-run

  # Full run with a specific model and worker count
  policybench retrieve --test-run=false --model gpt-4.1 --jobs 30`,
	RunE: runRetrieve,
}

func init() {
	f := retrieveCmd.Flags()
	f.Bool("test-run", true, "process only the first document and line item")
	f.String("model", "", "model name (overrides config)")
	f.Int("jobs", 0, "number of parallel workers (overrides config)")
	f.String("docs", "", "comma-separated document names (overrides config)")

	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applyCommonFlags(cmd)
	if err := cfg.Validate("retrieve"); err != nil {
		return err
	}

	testRun, _ := cmd.Flags().GetBool("test-run")
	jobs := cfg.Retrieval.Jobs
	if cmd.Flags().Changed("jobs") {
		jobs, _ = cmd.Flags().GetInt("jobs")
	}

	log := zap.L().With(zap.String("command", "retrieve"))

	items, err := loadLineItems(cfg.Data.RetrievalInstructions, testRun)
	if err != nil {
		return eris.Wrap(err, "retrieve: load line items")
	}
	policies, err := loadPolicies(testRun)
	if err != nil {
		return eris.Wrap(err, "retrieve: load policies")
	}

	runner := retrieval.NewRunner(
		openai.Shared(cfg.OpenAI.Key, cfg.OpenAI.BaseURL),
		tokens.NewCounter(),
		retrieval.Options{
			Model:               cfg.OpenAI.Model,
			Temperature:         float32(cfg.Retrieval.Temperature),
			MaxTokens:           cfg.Retrieval.MaxTokens,
			Jobs:                jobs,
			MaxSectionsPerGroup: cfg.Retrieval.SectionBatchSize,
			MaxTokensPerGroup:   cfg.Retrieval.SectionMaxTokens,
		},
	)

	results, logs, err := runner.Run(ctx, policies, items)
	if err != nil {
		return eris.Wrap(err, "retrieve: run")
	}

	if err := corpus.WriteJSON(retrievalResultPath(cfg.OpenAI.Model), results); err != nil {
		return err
	}
	if err := corpus.WriteJSON(retrievalLogPath(cfg.OpenAI.Model), logs); err != nil {
		return err
	}

	log.Info("retrieval results written",
		zap.String("path", retrievalResultPath(cfg.OpenAI.Model)),
		zap.Int("documents", len(results)),
		zap.Int("calls", len(logs)),
	)
	return nil
}
