package batcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osprey-ai/policybench/internal/model"
)

// fixedCounter returns the same token count for every section.
type fixedCounter int

func (c fixedCounter) Count(string) int { return int(c) }

func makeSections(n int) []model.Section {
	sections := make([]model.Section, n)
	for i := range sections {
		sections[i] = model.Section{
			ID:    fmt.Sprintf("sec-%03d", i),
			Title: fmt.Sprintf("Section %d", i),
			Text:  "some policy text",
		}
	}
	return sections
}

func TestGroupCoversAllSectionsInOrder(t *testing.T) {
	t.Parallel()

	sections := makeSections(23)
	groups := Group(sections, fixedCounter(100), 350, 4)

	var flattened []model.Section
	for _, g := range groups {
		assert.LessOrEqual(t, len(g.Sections), 4)
		flattened = append(flattened, g.Sections...)
	}
	assert.Equal(t, sections, flattened)
}

func TestGroupScenario25Sections(t *testing.T) {
	t.Parallel()

	// 25 sections, batch size 10, no token overflow → groups of 10, 10, 5.
	sections := makeSections(25)
	groups := Group(sections, fixedCounter(1), 10000, 10)

	require.Len(t, groups, 3)
	assert.Len(t, groups[0].Sections, 10)
	assert.Len(t, groups[1].Sections, 10)
	assert.Len(t, groups[2].Sections, 5)
}

func TestGroupClosesOnTokenBudget(t *testing.T) {
	t.Parallel()

	// Each section costs 60 tokens against a budget of 100: the second
	// section pushes the running total past the budget and closes the group.
	sections := makeSections(5)
	groups := Group(sections, fixedCounter(60), 100, 10)

	require.Len(t, groups, 3)
	assert.Len(t, groups[0].Sections, 2)
	assert.Len(t, groups[1].Sections, 2)
	assert.Len(t, groups[2].Sections, 1)
}

func TestGroupOversizedSingleSection(t *testing.T) {
	t.Parallel()

	// A section larger than the whole budget still forms a group of one;
	// the budget is checked only after insertion.
	sections := makeSections(3)
	groups := Group(sections, fixedCounter(5000), 100, 10)

	require.Len(t, groups, 3)
	for _, g := range groups {
		assert.Len(t, g.Sections, 1)
	}
}

func TestGroupEmptyInput(t *testing.T) {
	t.Parallel()

	groups := Group(nil, fixedCounter(1), 100, 10)
	assert.Empty(t, groups)
}

func TestGroupIDs(t *testing.T) {
	t.Parallel()

	g := SectionGroup{Sections: makeSections(3)}
	assert.Equal(t, []string{"sec-000", "sec-001", "sec-002"}, g.IDs())
}
