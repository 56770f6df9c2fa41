package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osprey-ai/policybench/internal/config"
)

func TestSplitList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"adventis", "bitgo"}, splitList("adventis,bitgo"))
	assert.Equal(t, []string{"adventis", "bitgo"}, splitList(" adventis , bitgo "))
	assert.Equal(t, []string{"adventis"}, splitList("adventis,,"))
	assert.Nil(t, splitList(""))
}

func TestOutputPaths(t *testing.T) {
	prev := cfg
	defer func() { cfg = prev }()
	cfg = &config.Config{Data: config.DataConfig{OutputDir: "processed_data"}}

	assert.Equal(t,
		filepath.Join("processed_data", "step_3_retrieval_result_gpt-4.1.json"),
		retrievalResultPath("gpt-4.1"))
	assert.Equal(t,
		filepath.Join("processed_data", "step_3_retrieval_log_gpt-4.1.json"),
		retrievalLogPath("gpt-4.1"))
	assert.Equal(t,
		filepath.Join("processed_data", "step_4_extraction_result_gpt-4.1-mini.json"),
		extractionResultPath("gpt-4.1-mini"))
	assert.Equal(t,
		filepath.Join("processed_data", "step_4_extraction_log_gpt-4.1-mini.json"),
		extractionLogPath("gpt-4.1-mini"))
}

func TestEvalReportPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"processed_data/step_4_extraction_log_gpt-4.1_eval.json",
		evalReportPath("processed_data/step_4_extraction_log_gpt-4.1.json"))
	assert.Equal(t, "generation_eval.json", evalReportPath("generation"))
}
