package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osprey-ai/policybench/internal/corpus"
	"github.com/osprey-ai/policybench/internal/model"
)

// applyCommonFlags overrides config values from shared flags.
func applyCommonFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("model") {
		cfg.OpenAI.Model, _ = cmd.Flags().GetString("model")
	}
	if cmd.Flags().Changed("docs") {
		docs, _ := cmd.Flags().GetString("docs")
		cfg.Data.Docs = splitList(docs)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadPolicies loads the configured benchmark documents. In test-run mode
// only the first document is processed.
func loadPolicies(testRun bool) ([]*corpus.Policy, error) {
	docs := cfg.Data.Docs
	if testRun && len(docs) > 1 {
		docs = docs[:1]
	}
	policies := make([]*corpus.Policy, 0, len(docs))
	for _, name := range docs {
		p, err := corpus.LoadPolicy(cfg.Data.DocumentsDir, name)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}

// loadLineItems loads a line-item instruction file. In test-run mode only
// the first line item is processed.
func loadLineItems(path string, testRun bool) (*model.LineItemRegistry, error) {
	reg, err := corpus.LoadLineItems(path)
	if err != nil {
		return nil, err
	}
	if testRun && len(reg.Items) > 1 {
		reg = model.NewLineItemRegistry(reg.Items[:1])
	}
	return reg, nil
}

// loadGroundTruths loads ground truths for the given policies, keyed by
// document name.
func loadGroundTruths(policies []*corpus.Policy) (map[string]map[string]any, error) {
	out := make(map[string]map[string]any, len(policies))
	for _, p := range policies {
		gt, err := corpus.LoadGroundTruth(cfg.Data.GroundTruthsDir, p.Doc.Name)
		if err != nil {
			return nil, err
		}
		out[p.Doc.Name] = gt
	}
	return out, nil
}

func outputPath(name string) string {
	return filepath.Join(cfg.Data.OutputDir, name)
}

func retrievalResultPath(modelName string) string {
	return outputPath(fmt.Sprintf("step_3_retrieval_result_%s.json", modelName))
}

func retrievalLogPath(modelName string) string {
	return outputPath(fmt.Sprintf("step_3_retrieval_log_%s.json", modelName))
}

func extractionResultPath(modelName string) string {
	return outputPath(fmt.Sprintf("step_4_extraction_result_%s.json", modelName))
}

func extractionLogPath(modelName string) string {
	return outputPath(fmt.Sprintf("step_4_extraction_log_%s.json", modelName))
}
