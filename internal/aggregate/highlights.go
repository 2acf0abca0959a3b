package aggregate

import (
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/table"
)

// Sampler picks k distinct items from items
type Sampler interface {
	Sample(items []string, k int) []string
}

// RandSampler samples with a seeded PCG source. It is safe for concurrent use.
type RandSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandSampler creates a sampler; equal seeds give equal sequences
func NewRandSampler(seed uint64) *RandSampler {
	return &RandSampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sample returns k items without replacement. When k covers every item the
// input order is kept.
func (s *RandSampler) Sample(items []string, k int) []string {
	if k >= len(items) {
		return slices.Clone(items)
	}
	s.mu.Lock()
	perm := s.rng.Perm(len(items))
	s.mu.Unlock()

	out := make([]string, 0, k)
	for _, i := range perm[:k] {
		out = append(out, items[i])
	}
	return out
}

// Highlights picks rows whose ranking is one of the configured extremes.
// When more models qualify than the configured count, that many are sampled.
func (e *Engine) Highlights(s Sampler) model.Highlights {
	timer := prometheus.NewTimer(opDuration.WithLabelValues("highlights"))
	defer timer.ObserveDuration()

	rows := e.store.Query(table.RankingIn(e.rankings...))

	candidates, _ := table.Distinct(rows, model.ColumnModel)
	chosen := candidates
	if len(candidates) > e.count {
		chosen = s.Sample(candidates, e.count)
	}

	keep := make(map[string]bool, len(chosen))
	for _, m := range chosen {
		keep[m] = true
	}

	top := slices.Max(e.rankings)
	out := model.Highlights{
		Candidates: candidates,
		Models:     slices.Clone(chosen),
		Rows:       []model.Highlight{},
	}
	for _, r := range rows {
		if !keep[r.Model] {
			continue
		}
		polarity := "Negative"
		if r.CriticalRanking == top {
			polarity = "Positive"
		}
		out.Rows = append(out.Rows, model.Highlight{
			Model:    r.Model,
			Feature:  r.Feature,
			Polarity: polarity,
			Link:     model.FeedbackPath(r.Model, r.Feature, polarity),
		})
	}
	return out
}
