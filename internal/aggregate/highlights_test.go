package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/sentidash/internal/fixture"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/table"
)

// lastSampler takes the last k items so tests can tell it from input order
type lastSampler struct{ calls int }

func (s *lastSampler) Sample(items []string, k int) []string {
	s.calls++
	return items[len(items)-k:]
}

func TestEngine_Highlights_FewModelsNotSampled(t *testing.T) {
	s := &lastSampler{}
	h := newEngine().Highlights(s)

	assert.Zero(t, s.calls)
	assert.Equal(t, []string{"Leaf", "Ariya", "Prius"}, h.Models)
	assert.Equal(t, []model.Highlight{
		{Model: "Leaf", Feature: "Battery", Polarity: "Positive", Link: "/feedback/Leaf/Battery/Positive"},
		{Model: "Ariya", Feature: "Charging", Polarity: "Negative", Link: "/feedback/Ariya/Charging/Negative"},
		{Model: "Prius", Feature: "Mileage", Polarity: "Positive", Link: "/feedback/Prius/Mileage/Positive"},
	}, h.Rows)
}

func manyModels(n int) *table.Store {
	var rows []fixture.Row
	for i := range n {
		rows = append(rows,
			fixture.Row{Model: fmt.Sprintf("M%d", i), Feature: "a", Ranking: 5},
			fixture.Row{Model: fmt.Sprintf("M%d", i), Feature: "b", Ranking: 3},
		)
	}
	return table.New(fixture.Records(rows...))
}

func TestEngine_Highlights_SamplesFive(t *testing.T) {
	e := NewEngine(manyModels(7), model.HighlightsConfig{Count: 5, Rankings: []int{1, 5}})
	s := &lastSampler{}

	h := e.Highlights(s)
	assert.Equal(t, 1, s.calls)
	assert.Len(t, h.Candidates, 7)
	assert.Equal(t, []string{"M2", "M3", "M4", "M5", "M6"}, h.Models)
	require.Len(t, h.Rows, 5)
	for _, r := range h.Rows {
		assert.Equal(t, "a", r.Feature, "ranking 3 rows never qualify")
	}
}

func TestRandSampler(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g"}

	first := NewRandSampler(42).Sample(items, 5)
	second := NewRandSampler(42).Sample(items, 5)
	assert.Equal(t, first, second, "same seed, same sample")

	require.Len(t, first, 5)
	seen := map[string]bool{}
	for _, v := range first {
		assert.Contains(t, items, v)
		assert.False(t, seen[v], "sampled without replacement")
		seen[v] = true
	}

	assert.Equal(t, []string{"a", "b"}, NewRandSampler(1).Sample([]string{"a", "b"}, 5))
}

func TestEngine_Highlights_RandomSubsetOfCandidates(t *testing.T) {
	e := NewEngine(manyModels(9), model.HighlightsConfig{Count: 5, Rankings: []int{1, 5}})

	h := e.Highlights(NewRandSampler(7))
	assert.Len(t, h.Models, 5)
	assert.Subset(t, h.Candidates, h.Models)
}
