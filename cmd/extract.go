package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osprey-ai/policybench/internal/corpus"
	"github.com/osprey-ai/policybench/internal/extraction"
	"github.com/osprey-ai/policybench/internal/retrieval"
	"github.com/osprey-ai/policybench/pkg/openai"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run line-item extraction over the benchmark documents",
	Long: `Builds one extraction prompt per (document, line item), over either the
retrieved relevant sections or the full document, and calls the model with
a function-calling tool derived from the line-item schema. Ground truths are
attached to the persisted log so the evaluate command can score the run.

Examples:
  # Dry run on the first document and line item
  policybench extract --test-run

  # Extract from retrieved sections using a prior retrieval run
  policybench extract --test-run=false --mode retrieved

  # Extract from full documents with a reasoning model
  policybench extract --test-run=false --mode full --reasoning-model --model o3`,
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.Bool("test-run", true, "process only the first document and line item")
	f.String("model", "", "model name (overrides config)")
	f.Int("jobs", 0, "number of parallel workers (overrides config)")
	f.String("docs", "", "comma-separated document names (overrides config)")
	f.String("mode", "", "document context: retrieved or full (overrides config)")
	f.Bool("reasoning-model", false, "treat the model as a reasoning model (overrides config)")
	f.String("retrieval-result", "", "path to a retrieval result file (default: derived from model name)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applyCommonFlags(cmd)
	if cmd.Flags().Changed("mode") {
		cfg.Extraction.Mode, _ = cmd.Flags().GetString("mode")
	}
	if cmd.Flags().Changed("reasoning-model") {
		cfg.Extraction.ReasoningModel, _ = cmd.Flags().GetBool("reasoning-model")
	}
	if err := cfg.Validate("extract"); err != nil {
		return err
	}

	testRun, _ := cmd.Flags().GetBool("test-run")
	jobs := cfg.Extraction.Jobs
	if cmd.Flags().Changed("jobs") {
		jobs, _ = cmd.Flags().GetInt("jobs")
	}

	log := zap.L().With(zap.String("command", "extract"))

	items, err := loadLineItems(cfg.Data.ExtractionInstructions, testRun)
	if err != nil {
		return eris.Wrap(err, "extract: load line items")
	}
	policies, err := loadPolicies(testRun)
	if err != nil {
		return eris.Wrap(err, "extract: load policies")
	}
	groundTruths, err := loadGroundTruths(policies)
	if err != nil {
		return eris.Wrap(err, "extract: load ground truths")
	}

	retrieved, err := loadRetrievalResults(cmd)
	if err != nil {
		return err
	}

	runner := extraction.NewRunner(
		openai.Shared(cfg.OpenAI.Key, cfg.OpenAI.BaseURL),
		extraction.Options{
			Model:          cfg.OpenAI.Model,
			Jobs:           jobs,
			Mode:           cfg.Extraction.Mode,
			ReasoningModel: cfg.Extraction.ReasoningModel,
		},
	)

	results, logs, err := runner.Run(ctx, policies, items, groundTruths, retrieved)
	if err != nil {
		return eris.Wrap(err, "extract: run")
	}

	if err := corpus.WriteJSON(extractionResultPath(cfg.OpenAI.Model), results); err != nil {
		return err
	}
	if err := corpus.WriteJSON(extractionLogPath(cfg.OpenAI.Model), logs); err != nil {
		return err
	}

	log.Info("extraction results written",
		zap.String("path", extractionResultPath(cfg.OpenAI.Model)),
		zap.Int("documents", len(results)),
		zap.Int("calls", len(logs)),
	)
	return nil
}

// loadRetrievalResults reads a prior retrieval run. In full mode a missing
// file is fine — the full document is used regardless.
func loadRetrievalResults(cmd *cobra.Command) (retrieval.Results, error) {
	path, _ := cmd.Flags().GetString("retrieval-result")
	if path == "" {
		path = retrievalResultPath(cfg.OpenAI.Model)
	}

	var results retrieval.Results
	if err := corpus.ReadJSONFile(path, &results); err != nil {
		if cfg.Extraction.Mode == extraction.ModeFull && os.IsNotExist(eris.Cause(err)) {
			return retrieval.Results{}, nil
		}
		return nil, eris.Wrapf(err, "extract: load retrieval results %s", path)
	}
	return results, nil
}
