// Package retrieval runs the section-level retrieval stage: one model call
// per (document, line item, section group), merged into a single relevance
// verdict per (document, line item).
package retrieval

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/osprey-ai/policybench/internal/batcher"
	"github.com/osprey-ai/policybench/internal/corpus"
	"github.com/osprey-ai/policybench/internal/dispatch"
	"github.com/osprey-ai/policybench/internal/model"
	"github.com/osprey-ai/policybench/internal/prompt"
	"github.com/osprey-ai/policybench/internal/tokens"
	"github.com/osprey-ai/policybench/pkg/openai"
)

// Options configures a retrieval run.
type Options struct {
	Model               string
	Temperature         float32
	MaxTokens           int
	Jobs                int
	MaxSectionsPerGroup int
	MaxTokensPerGroup   int
}

// Runner executes the retrieval stage.
type Runner struct {
	client  openai.Client
	counter tokens.Counter
	opts    Options
}

// NewRunner creates a retrieval runner.
func NewRunner(client openai.Client, counter tokens.Counter, opts Options) *Runner {
	return &Runner{client: client, counter: counter, opts: opts}
}

// unit is one (document, line item, section group) model call.
type unit struct {
	DocName    string
	ItemName   string
	GroupIndex int
	SectionIDs []string
	Request    openai.ChatRequest
}

// UnitLog is the persisted record of one retrieval call.
type UnitLog struct {
	DocName     string                  `json:"doc_name"`
	ItemName    string                  `json:"item_name"`
	GroupIndex  int                     `json:"section_group_idx"`
	SectionIDs  []string                `json:"section_ids"`
	HasResponse bool                    `json:"has_response"`
	Verdict     *model.RetrievalVerdict `json:"verdict"`
}

// Results maps document name → line item name → merged retrieval verdict.
type Results map[string]map[string]model.AggregatedRetrieval

// Run batches every document, fans the retrieval calls out with bounded
// parallelism, and aggregates verdicts per (document, line item).
func (r *Runner) Run(ctx context.Context, policies []*corpus.Policy, items *model.LineItemRegistry) (Results, []UnitLog, error) {
	var units []unit
	groupsByDoc := make(map[string][]batcher.SectionGroup, len(policies))
	docs := make(map[string]*model.Document, len(policies))

	for _, p := range policies {
		groups := batcher.Group(p.Doc.Sections, r.counter, r.opts.MaxTokensPerGroup, r.opts.MaxSectionsPerGroup)
		groupsByDoc[p.Doc.Name] = groups
		docs[p.Doc.Name] = p.Doc
		zap.L().Info("sections grouped",
			zap.String("doc", p.Doc.Name),
			zap.Int("sections", len(p.Doc.Sections)),
			zap.Int("groups", len(groups)),
		)

		for _, spec := range items.Items {
			for gi, group := range groups {
				units = append(units, unit{
					DocName:    p.Doc.Name,
					ItemName:   spec.Name,
					GroupIndex: gi,
					SectionIDs: group.IDs(),
					Request: openai.ChatRequest{
						Model:       r.opts.Model,
						Messages:    []openai.Message{{Role: "user", Content: prompt.Retrieval(group.Sections, spec)}},
						Temperature: r.opts.Temperature,
						MaxTokens:   r.opts.MaxTokens,
						Tools:       []openai.ToolDef{prompt.RetrievalTool()},
					},
				})
			}
		}
	}

	zap.L().Info("dispatching retrieval calls", zap.Int("units", len(units)), zap.Int("jobs", r.opts.Jobs))
	responses := dispatch.Map(ctx, units, r.opts.Jobs, func(ctx context.Context, u unit) (*openai.ChatResponse, error) {
		return r.client.CreateChatCompletion(ctx, u.Request)
	})

	logs := make([]UnitLog, len(units))
	outcomes := make(map[string]map[string][]GroupOutcome)
	for i, u := range units {
		res := responses[i]
		if res.Err != nil {
			zap.L().Warn("retrieval call failed",
				zap.String("doc", u.DocName),
				zap.String("item", u.ItemName),
				zap.Int("group", u.GroupIndex),
				zap.Error(res.Err),
			)
		} else {
			res.Value.Usage.LogCost(r.opts.Model, "retrieval")
		}

		verdict := ParseVerdict(res.Value)
		logs[i] = UnitLog{
			DocName:     u.DocName,
			ItemName:    u.ItemName,
			GroupIndex:  u.GroupIndex,
			SectionIDs:  u.SectionIDs,
			HasResponse: res.Err == nil,
			Verdict:     verdict,
		}

		if outcomes[u.DocName] == nil {
			outcomes[u.DocName] = make(map[string][]GroupOutcome)
		}
		outcomes[u.DocName][u.ItemName] = append(outcomes[u.DocName][u.ItemName], GroupOutcome{
			GroupIndex: u.GroupIndex,
			SectionIDs: u.SectionIDs,
			Verdict:    verdict,
		})
	}

	results := make(Results, len(outcomes))
	for docName, perItem := range outcomes {
		results[docName] = make(map[string]model.AggregatedRetrieval, len(perItem))
		for itemName, list := range perItem {
			results[docName][itemName] = Aggregate(docs[docName], list, r.counter)
		}
	}

	return results, logs, nil
}

// ParseVerdict extracts a RetrievalVerdict from a chat response. It returns
// nil when the call failed (nil response), the output tool was not called,
// the arguments are not valid JSON, or the required fields are missing or of
// the wrong shape. A nil verdict triggers the fail-open policy downstream.
func ParseVerdict(resp *openai.ChatResponse) *model.RetrievalVerdict {
	if resp == nil {
		return nil
	}
	tc := resp.FirstToolCall(prompt.RetrievalToolName)
	if tc == nil {
		return nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		return nil
	}
	think, ok := args["think"].(string)
	if !ok {
		return nil
	}
	rawIDs, ok := args["relevant_sections"].([]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, ok := raw.(string)
		if !ok {
			return nil
		}
		ids = append(ids, id)
	}

	return &model.RetrievalVerdict{Reasoning: think, RelevantSectionIDs: ids}
}
