package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osprey-ai/policybench/internal/corpus"
	"github.com/osprey-ai/policybench/internal/evaluation"
	"github.com/osprey-ai/policybench/internal/extraction"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score an extraction run against ground truth",
	Long: `Classifies every (document, line item) prediction in an extraction log as
correct, API error, Extraction error, False positive, False negative, or
Incorrect value, and writes the evaluation report next to the log.

Examples:
  policybench evaluate --generation processed_data/step_4_extraction_log_gpt-4.1.json`,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.String("generation", "", "path to an extraction log file (default: derived from model name)")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	applyCommonFlags(cmd)
	if err := cfg.Validate("evaluate"); err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("generation")
	if path == "" {
		path = extractionLogPath(cfg.OpenAI.Model)
	}

	var logs []extraction.UnitLog
	if err := corpus.ReadJSONFile(path, &logs); err != nil {
		return eris.Wrapf(err, "evaluate: load generation %s", path)
	}

	report := evaluation.BuildReport(logs)

	outPath := evalReportPath(path)
	if err := corpus.WriteJSON(outPath, report); err != nil {
		return err
	}

	zap.L().Info("evaluation report written", zap.String("path", outPath))
	printSummary(report.Summary)
	return nil
}

// evalReportPath derives the report path from the generation path.
func evalReportPath(generationPath string) string {
	if strings.HasSuffix(generationPath, ".json") {
		return strings.TrimSuffix(generationPath, ".json") + "_eval.json"
	}
	return generationPath + "_eval.json"
}

func printSummary(s evaluation.Summary) {
	fmt.Printf("Num API error: %d, percentage: %.4f\n", s.NumAPIError, s.FracAPIError)
	fmt.Printf("Num extraction error: %d, percentage: %.4f\n", s.NumExtractionError, s.FracExtractionError)
	fmt.Printf("Num is correct: %d, percentage: %.4f\n", s.NumCorrect, s.FracCorrect)
}
