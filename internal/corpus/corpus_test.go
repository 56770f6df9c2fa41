package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadPolicy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "acme.json", `{
        "chunker_result": {
            "document_sections": [
                {"id": "s1", "title": "Declarations", "text": "Limit: $1M"},
                {"id": "s2", "title": "Exclusions", "text": "War risks"}
            ]
        },
        "policy_conditions": {"retention": 10000},
        "sub_limits": [{"name": "cyber", "limit": 250000}]
    }`)

	p, err := LoadPolicy(dir, "acme")
	require.NoError(t, err)

	assert.Equal(t, "acme", p.Doc.Name)
	assert.Equal(t, []string{"s1", "s2"}, p.Doc.SectionIDs())
	assert.Equal(t, float64(10000), p.PolicyConditions["retention"])
	require.Len(t, p.SubLimits, 1)
	assert.Equal(t, "cyber", p.SubLimits[0]["name"])
}

func TestLoadPolicyDuplicateSectionID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "dup.json", `{
        "chunker_result": {
            "document_sections": [
                {"id": "s1", "title": "A", "text": "a"},
                {"id": "s1", "title": "B", "text": "b"}
            ]
        }
    }`)

	_, err := LoadPolicy(dir, "dup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate section id")
}

func TestLoadPolicyMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadPolicy(t.TempDir(), "ghost")
	require.Error(t, err)
}

func TestLoadGroundTruth(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "acme.json", `{
        "synthesizer_result": {
            "retention amount": {"retention": 10000},
            "waiting period": null
        }
    }`)

	gt, err := LoadGroundTruth(dir, "acme")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"retention": float64(10000)}, gt["retention amount"])

	// A null line item stays in the map as nil.
	v, ok := gt["waiting period"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestLoadLineItems(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "instructions.json")
	writeFixture(t, dir, "instructions.json", `[
        {
            "Line item name": "retention amount",
            "Line item instruction": "Find the retention.",
            "Line item schema": {"type": "object"}
        }
    ]`)

	reg, err := LoadLineItems(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"retention amount"}, reg.Names())
	spec := reg.ByName("retention amount")
	require.NotNil(t, spec)
	assert.Equal(t, "Find the retention.", spec.Instruction)
	assert.Equal(t, "object", spec.Schema["type"])
}

func TestWriteJSONRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "out.json")
	in := map[string]any{"a": float64(1), "b": []any{"x"}}
	require.NoError(t, WriteJSON(path, in))

	var out map[string]any
	require.NoError(t, ReadJSONFile(path, &out))
	assert.Equal(t, in, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "    \"a\": 1")
}
