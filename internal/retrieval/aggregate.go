package retrieval

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/osprey-ai/policybench/internal/model"
	"github.com/osprey-ai/policybench/internal/tokens"
)

// GroupOutcome pairs one section group's ID list with the verdict its model
// call produced. Verdict is nil when the call failed or its response was
// malformed.
type GroupOutcome struct {
	GroupIndex int
	SectionIDs []string
	Verdict    *model.RetrievalVerdict
}

// Aggregate merges the per-group verdicts for one (document, line item) pair
// into a single deduplicated, sorted relevant-section set.
//
// A failed or malformed verdict contributes every section of its group: the
// fail-open policy trades precision for recall so that retrieval failures
// never drop candidate evidence. Reasoning strings are concatenated in group
// order. TokenCount measures the serialized full sections of the final set;
// section IDs not present in the document are logged and skipped.
func Aggregate(doc *model.Document, outcomes []GroupOutcome, counter tokens.Counter) model.AggregatedRetrieval {
	seen := make(map[string]struct{})
	var reasonings []string

	for _, o := range outcomes {
		if o.Verdict == nil {
			zap.L().Warn("verdict missing, assuming all group sections relevant",
				zap.String("doc", doc.Name),
				zap.Int("group", o.GroupIndex),
				zap.Strings("section_ids", o.SectionIDs),
			)
			for _, id := range o.SectionIDs {
				seen[id] = struct{}{}
			}
			continue
		}
		for _, id := range o.Verdict.RelevantSectionIDs {
			seen[id] = struct{}{}
		}
		reasonings = append(reasonings, o.Verdict.Reasoning)
	}

	relevant := make([]string, 0, len(seen))
	for id := range seen {
		relevant = append(relevant, id)
	}
	sort.Strings(relevant)

	var sections []model.Section
	for _, id := range relevant {
		s := doc.SectionByID(id)
		if s == nil {
			zap.L().Warn("section id not found in document",
				zap.String("doc", doc.Name),
				zap.String("section_id", id),
			)
			continue
		}
		sections = append(sections, *s)
	}

	return model.AggregatedRetrieval{
		RelevantSections: relevant,
		Reasoning:        strings.Join(reasonings, "\n\n"),
		TokenCount:       counter.Count(model.SectionsJSON(sections)),
	}
}
