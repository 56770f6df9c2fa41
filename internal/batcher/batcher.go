// Package batcher partitions a document's ordered sections into groups
// bounded by token count and item count, so each retrieval prompt stays
// within a fixed budget.
package batcher

import (
	"github.com/osprey-ai/policybench/internal/model"
	"github.com/osprey-ai/policybench/internal/tokens"
)

// SectionGroup is a contiguous, ordered sub-sequence of a document's
// sections.
type SectionGroup struct {
	Sections []model.Section
}

// IDs returns the section IDs of the group in order.
func (g SectionGroup) IDs() []string {
	ids := make([]string, len(g.Sections))
	for i, s := range g.Sections {
		ids[i] = s.ID
	}
	return ids
}

// Group splits sections into ordered groups. A group is closed once its
// running token total exceeds maxTokensPerGroup or it holds
// maxSectionsPerGroup sections. The budget is checked only after insertion,
// so a single oversized section still forms a group of one rather than being
// split. Every input section appears in exactly one group, in original
// order.
func Group(sections []model.Section, counter tokens.Counter, maxTokensPerGroup, maxSectionsPerGroup int) []SectionGroup {
	var groups []SectionGroup
	var current []model.Section
	currentTokens := 0

	for _, s := range sections {
		current = append(current, s)
		currentTokens += counter.Count(model.SectionJSON(s))
		if currentTokens > maxTokensPerGroup || len(current) >= maxSectionsPerGroup {
			groups = append(groups, SectionGroup{Sections: current})
			current = nil
			currentTokens = 0
		}
	}
	if len(current) > 0 {
		groups = append(groups, SectionGroup{Sections: current})
	}
	return groups
}
