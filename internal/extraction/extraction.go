// Package extraction runs the field-extraction stage: one model call per
// (document, line item) over either the retrieved sections or the full
// document, with the line-item schema enforced through a function-calling
// tool.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/osprey-ai/policybench/internal/corpus"
	"github.com/osprey-ai/policybench/internal/dispatch"
	"github.com/osprey-ai/policybench/internal/model"
	"github.com/osprey-ai/policybench/internal/prompt"
	"github.com/osprey-ai/policybench/internal/retrieval"
	"github.com/osprey-ai/policybench/pkg/openai"
)

// Document context modes.
const (
	ModeRetrieved = "retrieved"
	ModeFull      = "full"
)

// Sampling parameters per model family. Reasoning models reason natively,
// so they run warmer and with more headroom and skip the think field.
const (
	tempDefault        = 0.0
	tempReasoning      = 0.6
	maxTokensDefault   = 10000
	maxTokensReasoning = 32000
)

// Options configures an extraction run.
type Options struct {
	Model          string
	Jobs           int
	Mode           string // ModeRetrieved or ModeFull
	ReasoningModel bool
}

// Runner executes the extraction stage.
type Runner struct {
	client openai.Client
	opts   Options
}

// NewRunner creates an extraction runner.
func NewRunner(client openai.Client, opts Options) *Runner {
	return &Runner{client: client, opts: opts}
}

// unit is one (document, line item) model call.
type unit struct {
	DocName      string
	LineItemName string
	GroundTruth  any
	Schema       *jsonschema.Schema
	Request      openai.ChatRequest
}

// UnitLog is the persisted record of one extraction call, carrying the
// ground truth forward as the evaluation input.
type UnitLog struct {
	DocName      string         `json:"doc_name"`
	LineItemName string         `json:"line_item_name"`
	GroundTruth  any            `json:"ground_truth"`
	HasResponse  bool           `json:"has_response"`
	Reasoning    *string        `json:"reasoning"`
	Result       map[string]any `json:"result"`
}

// Results maps document name → line item name → extraction result.
type Results map[string]map[string]model.ExtractionResult

// Run builds one extraction request per (document, line item), dispatches
// them with bounded parallelism, and parses the tool-call results.
func (r *Runner) Run(ctx context.Context, policies []*corpus.Policy, items *model.LineItemRegistry, groundTruths map[string]map[string]any, retrieved retrieval.Results) (Results, []UnitLog, error) {
	temperature := float32(tempDefault)
	maxTokens := maxTokensDefault
	if r.opts.ReasoningModel {
		temperature = tempReasoning
		maxTokens = maxTokensReasoning
	}

	var units []unit
	for _, p := range policies {
		meta := NormalizeMetadata(p.PolicyConditions, p.SubLimits)

		for _, spec := range items.Items {
			sections := r.promptSections(p.Doc, spec.Name, retrieved)
			schema, err := compileSchema(spec.Schema)
			if err != nil {
				zap.L().Warn("line item schema does not compile, skipping validation",
					zap.String("item", spec.Name),
					zap.Error(err),
				)
			}

			var gt any
			if perDoc, ok := groundTruths[p.Doc.Name]; ok {
				gt = perDoc[spec.Name]
			}

			units = append(units, unit{
				DocName:      p.Doc.Name,
				LineItemName: spec.Name,
				GroundTruth:  gt,
				Schema:       schema,
				Request: openai.ChatRequest{
					Model:       r.opts.Model,
					Messages:    []openai.Message{{Role: "user", Content: prompt.Extraction(sections, meta, spec)}},
					Temperature: temperature,
					MaxTokens:   maxTokens,
					Tools:       []openai.ToolDef{prompt.ExtractionTool(spec, r.opts.ReasoningModel)},
				},
			})
		}
	}

	zap.L().Info("dispatching extraction calls", zap.Int("units", len(units)), zap.Int("jobs", r.opts.Jobs))
	responses := dispatch.Map(ctx, units, r.opts.Jobs, func(ctx context.Context, u unit) (*openai.ChatResponse, error) {
		return r.client.CreateChatCompletion(ctx, u.Request)
	})

	results := make(Results)
	logs := make([]UnitLog, len(units))
	for i, u := range units {
		res := responses[i]
		if res.Err != nil {
			zap.L().Warn("extraction call failed",
				zap.String("doc", u.DocName),
				zap.String("item", u.LineItemName),
				zap.Error(res.Err),
			)
		} else {
			res.Value.Usage.LogCost(r.opts.Model, "extraction")
		}

		parsed := ParseExtraction(res.Value, u.Schema)
		if results[u.DocName] == nil {
			results[u.DocName] = make(map[string]model.ExtractionResult)
		}
		results[u.DocName][u.LineItemName] = parsed
		logs[i] = UnitLog{
			DocName:      u.DocName,
			LineItemName: u.LineItemName,
			GroundTruth:  u.GroundTruth,
			HasResponse:  res.Err == nil,
			Reasoning:    parsed.Reasoning,
			Result:       parsed.Result,
		}
	}

	return results, logs, nil
}

// promptSections picks the document context for one line item. In retrieved
// mode an empty relevant set falls back to the full document so the unit
// still produces a prediction.
func (r *Runner) promptSections(doc *model.Document, itemName string, retrieved retrieval.Results) []model.Section {
	if r.opts.Mode != ModeRetrieved {
		return doc.Sections
	}

	relevant := map[string]struct{}{}
	if perDoc, ok := retrieved[doc.Name]; ok {
		for _, id := range perDoc[itemName].RelevantSections {
			relevant[id] = struct{}{}
		}
	}
	if len(relevant) == 0 {
		zap.L().Warn("no retrieved sections, falling back to full document",
			zap.String("doc", doc.Name),
			zap.String("item", itemName),
		)
		return doc.Sections
	}

	var sections []model.Section
	for _, s := range doc.Sections {
		if _, ok := relevant[s.ID]; ok {
			sections = append(sections, s)
		}
	}
	return sections
}

// ParseExtraction extracts an ExtractionResult from a chat response. Result
// is nil when the call failed, the extract tool was not called, the
// arguments are not valid JSON, or a non-null extraction fails schema
// validation. A nil schema skips validation.
func ParseExtraction(resp *openai.ChatResponse, schema *jsonschema.Schema) model.ExtractionResult {
	if resp == nil {
		return model.ExtractionResult{}
	}
	tc := resp.FirstToolCall(prompt.ExtractionToolName)
	if tc == nil {
		return model.ExtractionResult{}
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		return model.ExtractionResult{}
	}

	if schema != nil {
		if extraction, ok := args["extraction"]; ok && extraction != nil {
			if err := schema.Validate(extraction); err != nil {
				zap.L().Warn("extraction violates line item schema", zap.Error(err))
				return model.ExtractionResult{}
			}
		}
	}

	out := model.ExtractionResult{Result: args}
	if think, ok := args["think"].(string); ok {
		out.Reasoning = &think
	}
	return out
}

// compileSchema compiles a line-item schema map for validation.
func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	if len(schema) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("lineitem.json", bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return c.Compile("lineitem.json")
}
