package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osprey-ai/policybench/internal/model"
)

var testSpec = model.LineItemSpec{
	Name:        "retention amount",
	Instruction: "Find the retention amount in the policy.",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"retention": map[string]any{"type": "number"},
		},
	},
}

func TestRenderSection(t *testing.T) {
	t.Parallel()

	out := RenderSection(model.Section{ID: "s7", Title: "Exclusions", Text: "War risks."})
	assert.Equal(t, "==== SECTION ID: s7 ====\nExclusions\nWar risks.\n==== SECTION s7 END ====", out)
}

func TestRenderSectionList(t *testing.T) {
	t.Parallel()

	out := RenderSectionList([]model.Section{
		{ID: "s1", Title: "A", Text: "a"},
		{ID: "s2", Title: "B", Text: "b"},
	})
	assert.Contains(t, out, "==== SECTION ID: s1 ====")
	assert.Contains(t, out, "==== SECTION ID: s2 ====")
	assert.Contains(t, out, "====\n\n==== SECTION ID: s2")
}

func TestRetrievalPrompt(t *testing.T) {
	t.Parallel()

	out := Retrieval([]model.Section{{ID: "s1", Title: "T", Text: "body"}}, testSpec)
	assert.Contains(t, out, "**DOCUMENT SECTION LIST**")
	assert.Contains(t, out, "**LINE ITEM INSTRUCTION**")
	assert.Contains(t, out, testSpec.Instruction)
	assert.Contains(t, out, "==== SECTION ID: s1 ====")
	assert.Contains(t, out, "MANDATORY THINKING PROCESS")
}

func TestExtractionPrompt(t *testing.T) {
	t.Parallel()

	meta := model.PolicyMetadata{
		PolicyLevelInfo: map[string]any{"retention": float64(10000)},
		CoverageLimits:  []map[string]any{{"name": "cyber"}},
	}
	out := Extraction([]model.Section{{ID: "s1", Title: "T", Text: "body"}}, meta, testSpec)

	assert.Contains(t, out, "**POLICY DOCUMENT**")
	assert.Contains(t, out, "**POLICY METADATA**")
	assert.Contains(t, out, "**LINE ITEM DEFINITION**")
	assert.Contains(t, out, `"Line item instruction"`)
	assert.Contains(t, out, `"Line item schema"`)
	assert.Contains(t, out, "NO DEFAULT VALUE")
	assert.Contains(t, out, `"retention": 10000`)
}

func TestRetrievalTool(t *testing.T) {
	t.Parallel()

	tool := RetrievalTool()
	assert.Equal(t, "output", tool.Name)

	params := tool.Parameters
	assert.Equal(t, "object", params["type"])
	assert.Equal(t, []string{"think", "relevant_sections"}, params["required"])
	assert.Equal(t, false, params["additionalProperties"])

	props, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "think")
	assert.Contains(t, props, "relevant_sections")
}

func TestExtractionTool(t *testing.T) {
	t.Parallel()

	t.Run("default mode requires think", func(t *testing.T) {
		t.Parallel()
		tool := ExtractionTool(testSpec, false)
		assert.Equal(t, "extract", tool.Name)

		params := tool.Parameters
		assert.Equal(t, []string{"think", "extraction"}, params["required"])

		props := params["properties"].(map[string]any)
		assert.Contains(t, props, "think")
		extraction, ok := props["extraction"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, extractionDescription, extraction["description"])
		assert.Equal(t, "object", extraction["type"])
	})

	t.Run("reasoning mode omits think", func(t *testing.T) {
		t.Parallel()
		tool := ExtractionTool(testSpec, true)

		params := tool.Parameters
		assert.Equal(t, []string{"extraction"}, params["required"])

		props := params["properties"].(map[string]any)
		assert.NotContains(t, props, "think")
		assert.Contains(t, props, "extraction")
	})

	t.Run("does not mutate the shared schema", func(t *testing.T) {
		t.Parallel()
		_ = ExtractionTool(testSpec, false)
		assert.NotContains(t, testSpec.Schema, "description")
	})
}
