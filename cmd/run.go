package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osprey-ai/policybench/internal/corpus"
	"github.com/osprey-ai/policybench/internal/evaluation"
	"github.com/osprey-ai/policybench/internal/extraction"
	"github.com/osprey-ai/policybench/internal/retrieval"
	"github.com/osprey-ai/policybench/internal/tokens"
	"github.com/osprey-ai/policybench/pkg/openai"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run retrieval, extraction, and evaluation end to end",
	Long: `Runs the full benchmark in one process: section retrieval, line-item
extraction over the retrieved sections, and evaluation against ground
truth. All intermediate artifacts are persisted as in the individual
commands.

Examples:
  # Dry run on the first document and line item
  policybench run --test-run

  # Full benchmark
  policybench run --test-run=false --jobs 30`,
	RunE: runAll,
}

func init() {
	f := runCmd.Flags()
	f.Bool("test-run", true, "process only the first document and line item")
	f.String("model", "", "model name (overrides config)")
	f.Int("jobs", 0, "number of parallel workers (overrides config)")
	f.String("docs", "", "comma-separated document names (overrides config)")
	f.Bool("reasoning-model", false, "treat the model as a reasoning model (overrides config)")

	rootCmd.AddCommand(runCmd)
}

func runAll(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applyCommonFlags(cmd)
	if cmd.Flags().Changed("reasoning-model") {
		cfg.Extraction.ReasoningModel, _ = cmd.Flags().GetBool("reasoning-model")
	}
	if err := cfg.Validate("retrieve"); err != nil {
		return err
	}
	if err := cfg.Validate("extract"); err != nil {
		return err
	}

	testRun, _ := cmd.Flags().GetBool("test-run")
	retrievalJobs := cfg.Retrieval.Jobs
	extractionJobs := cfg.Extraction.Jobs
	if cmd.Flags().Changed("jobs") {
		jobs, _ := cmd.Flags().GetInt("jobs")
		retrievalJobs = jobs
		extractionJobs = jobs
	}

	log := zap.L().With(zap.String("command", "run"))
	client := openai.Shared(cfg.OpenAI.Key, cfg.OpenAI.BaseURL)

	policies, err := loadPolicies(testRun)
	if err != nil {
		return eris.Wrap(err, "run: load policies")
	}
	groundTruths, err := loadGroundTruths(policies)
	if err != nil {
		return eris.Wrap(err, "run: load ground truths")
	}

	// Stage 3: retrieval.
	retrievalItems, err := loadLineItems(cfg.Data.RetrievalInstructions, testRun)
	if err != nil {
		return eris.Wrap(err, "run: load retrieval line items")
	}
	retriever := retrieval.NewRunner(client, tokens.NewCounter(), retrieval.Options{
		Model:               cfg.OpenAI.Model,
		Temperature:         float32(cfg.Retrieval.Temperature),
		MaxTokens:           cfg.Retrieval.MaxTokens,
		Jobs:                retrievalJobs,
		MaxSectionsPerGroup: cfg.Retrieval.SectionBatchSize,
		MaxTokensPerGroup:   cfg.Retrieval.SectionMaxTokens,
	})
	retrieved, retrievalLogs, err := retriever.Run(ctx, policies, retrievalItems)
	if err != nil {
		return eris.Wrap(err, "run: retrieval")
	}
	if err := corpus.WriteJSON(retrievalResultPath(cfg.OpenAI.Model), retrieved); err != nil {
		return err
	}
	if err := corpus.WriteJSON(retrievalLogPath(cfg.OpenAI.Model), retrievalLogs); err != nil {
		return err
	}

	// Stage 4: extraction over the retrieved sections.
	extractionItems, err := loadLineItems(cfg.Data.ExtractionInstructions, testRun)
	if err != nil {
		return eris.Wrap(err, "run: load extraction line items")
	}
	extractor := extraction.NewRunner(client, extraction.Options{
		Model:          cfg.OpenAI.Model,
		Jobs:           extractionJobs,
		Mode:           extraction.ModeRetrieved,
		ReasoningModel: cfg.Extraction.ReasoningModel,
	})
	results, extractionLogs, err := extractor.Run(ctx, policies, extractionItems, groundTruths, retrieved)
	if err != nil {
		return eris.Wrap(err, "run: extraction")
	}
	if err := corpus.WriteJSON(extractionResultPath(cfg.OpenAI.Model), results); err != nil {
		return err
	}
	if err := corpus.WriteJSON(extractionLogPath(cfg.OpenAI.Model), extractionLogs); err != nil {
		return err
	}

	// Stage 5: evaluation.
	report := evaluation.BuildReport(extractionLogs)
	outPath := evalReportPath(extractionLogPath(cfg.OpenAI.Model))
	if err := corpus.WriteJSON(outPath, report); err != nil {
		return err
	}

	log.Info("benchmark complete",
		zap.String("report", outPath),
		zap.Int("records", report.Summary.Total),
	)
	printSummary(report.Summary)
	return nil
}
