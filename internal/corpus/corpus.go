// Package corpus loads the benchmark inputs: chunked policy documents with
// their structured conditions, ground truths, and line-item instruction
// files.
package corpus

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/osprey-ai/policybench/internal/model"
)

// Policy bundles one document's chunked sections with its raw structured
// conditions.
type Policy struct {
	Doc              *model.Document
	PolicyConditions map[string]any
	SubLimits        []map[string]any
}

// rawDocument mirrors the upstream chunker/extractor output file.
type rawDocument struct {
	ChunkerResult struct {
		DocumentSections []model.Section `json:"document_sections"`
	} `json:"chunker_result"`
	PolicyConditions map[string]any   `json:"policy_conditions"`
	SubLimits        []map[string]any `json:"sub_limits"`
}

// rawGroundTruth mirrors the upstream synthesizer output file.
type rawGroundTruth struct {
	SynthesizerResult map[string]any `json:"synthesizer_result"`
}

// LoadPolicy reads <dir>/<name>.json and validates the section-ID
// uniqueness invariant.
func LoadPolicy(dir, name string) (*Policy, error) {
	path := filepath.Join(dir, name+".json")
	var raw rawDocument
	if err := readJSON(path, &raw); err != nil {
		return nil, eris.Wrapf(err, "corpus: load policy %s", name)
	}

	doc, err := model.NewDocument(name, raw.ChunkerResult.DocumentSections)
	if err != nil {
		return nil, eris.Wrapf(err, "corpus: load policy %s", name)
	}

	return &Policy{
		Doc:              doc,
		PolicyConditions: raw.PolicyConditions,
		SubLimits:        raw.SubLimits,
	}, nil
}

// LoadGroundTruth reads <dir>/<name>.json and returns the per-line-item
// ground-truth objects. A line item present with a null value stays in the
// map as nil.
func LoadGroundTruth(dir, name string) (map[string]any, error) {
	path := filepath.Join(dir, name+".json")
	var raw rawGroundTruth
	if err := readJSON(path, &raw); err != nil {
		return nil, eris.Wrapf(err, "corpus: load ground truth %s", name)
	}
	return raw.SynthesizerResult, nil
}

// LoadLineItems reads a line-item instruction file.
func LoadLineItems(path string) (*model.LineItemRegistry, error) {
	var items []model.LineItemSpec
	if err := readJSON(path, &items); err != nil {
		return nil, eris.Wrap(err, "corpus: load line items")
	}
	return model.NewLineItemRegistry(items), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "read file")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrap(err, "unmarshal")
	}
	return nil
}

// WriteJSON persists v as pretty-printed JSON, creating parent directories
// as needed.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "corpus: mkdir for %s", path)
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return eris.Wrapf(err, "corpus: marshal %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "corpus: write %s", path)
	}
	return nil
}

// ReadJSONFile decodes an arbitrary JSON file into v.
func ReadJSONFile(path string, v any) error {
	return readJSON(path, v)
}
