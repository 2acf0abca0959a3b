// Package aggregate turns filtered feedback rows into chart-ready structures.
package aggregate

import (
	"slices"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/table"
)

// maxFeatures bounds each positive and negative feature list
const maxFeatures = 3

var opDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "sentidash_aggregate_duration_seconds",
		Help:    "Aggregation latency by operation",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	},
	[]string{"operation"},
)

// Engine computes aggregates over an immutable table
type Engine struct {
	store    *table.Store
	count    int
	rankings []int
}

// NewEngine creates an engine. cfg bounds highlight sampling.
func NewEngine(store *table.Store, cfg model.HighlightsConfig) *Engine {
	count := cfg.Count
	if count <= 0 {
		count = 5
	}
	rankings := cfg.Rankings
	if len(rankings) == 0 {
		rankings = []int{1, 5}
	}
	return &Engine{store: store, count: count, rankings: slices.Clone(rankings)}
}

// filter matches the set-valued dimensions that drive the chart. Category is
// not part of it.
func filter(sel model.Selection) table.Predicate {
	return table.And(
		table.In(model.ColumnBrand, sel.Brand),
		table.In(model.ColumnModel, sel.Model),
		table.In(model.ColumnFeature, sel.Feature),
		table.In(model.ColumnFact, sel.Fact),
		table.In(model.ColumnSource, sel.Source),
	)
}

// Chart counts surviving rows per (model, fact). Without both date bounds
// the chart is empty. Rows whose date cannot be parsed never survive the
// date filter.
func (e *Engine) Chart(sel model.Selection) model.Chart {
	timer := prometheus.NewTimer(opDuration.WithLabelValues("chart"))
	defer timer.ObserveDuration()

	if !sel.HasDateRange() {
		return model.Chart{Empty: true, Models: []string{}, Counts: map[string]model.FactCounts{}}
	}

	rows := e.store.Query(table.And(filter(sel), table.DateRange(*sel.FromDate, *sel.ToDate)))

	chart := model.Chart{
		Models: []string{},
		Counts: make(map[string]model.FactCounts),
	}
	for _, r := range rows {
		counts, ok := chart.Counts[r.Model]
		if !ok {
			counts = model.NewFactCounts()
			chart.Counts[r.Model] = counts
			chart.Models = append(chart.Models, r.Model)
		}
		counts[r.SentimentFact()]++
		chart.Total++
	}
	return chart
}

// FeatureSummaries lists the first three positive (ranking >= 0) and first
// three negative (ranking <= 0) features of each model in table order. A
// ranking of 0 counts as both. An unconstrained model set covers every model.
func (e *Engine) FeatureSummaries(models []string) []model.FeatureSummary {
	timer := prometheus.NewTimer(opDuration.WithLabelValues("features"))
	defer timer.ObserveDuration()

	if model.Unconstrained(models) {
		models = e.store.Models()
	}

	out := make([]model.FeatureSummary, 0, len(models))
	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if seen[m] {
			continue
		}
		seen[m] = true

		summary := model.FeatureSummary{
			Model:    m,
			Positive: []model.FeatureRef{},
			Negative: []model.FeatureRef{},
		}
		for _, r := range e.store.Query(table.ModelIs(m)) {
			if r.CriticalRanking >= 0 && len(summary.Positive) < maxFeatures {
				summary.Positive = append(summary.Positive, featureRef(r, "Positive"))
			}
			if r.CriticalRanking <= 0 && len(summary.Negative) < maxFeatures {
				summary.Negative = append(summary.Negative, featureRef(r, "Negative"))
			}
			if len(summary.Positive) == maxFeatures && len(summary.Negative) == maxFeatures {
				break
			}
		}
		out = append(out, summary)
	}
	return out
}

func featureRef(r model.Record, polarity string) model.FeatureRef {
	return model.FeatureRef{
		Feature:         r.Feature,
		CriticalRanking: r.CriticalRanking,
		Link:            model.FeedbackPath(r.Model, r.Feature, polarity),
	}
}

// TimeSeries counts surviving rows per day, sorted by date. Date bounds are
// optional here; rows without a parseable date are skipped.
func (e *Engine) TimeSeries(sel model.Selection) []model.TimePoint {
	timer := prometheus.NewTimer(opDuration.WithLabelValues("timeseries"))
	defer timer.ObserveDuration()

	p := filter(sel)
	if sel.FromDate != nil || sel.ToDate != nil {
		from, to := model.Date{}, model.NewDate(maxDate)
		if sel.FromDate != nil {
			from = *sel.FromDate
		}
		if sel.ToDate != nil {
			to = *sel.ToDate
		}
		p = table.And(p, table.DateRange(from, to))
	}

	byDate := make(map[string]model.FactCounts)
	for _, r := range e.store.Query(p) {
		if !r.HasDate {
			continue
		}
		day := r.FormattedDate()
		counts, ok := byDate[day]
		if !ok {
			counts = model.NewFactCounts()
			byDate[day] = counts
		}
		counts[r.SentimentFact()]++
	}

	points := make([]model.TimePoint, 0, len(byDate))
	for day, counts := range byDate {
		points = append(points, model.TimePoint{Date: day, Counts: counts})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}
