// Package cascade resolves the option list of each filter dimension from the
// current selection. Model options narrow with the brand selection and
// feature options narrow with the model selection; the remaining dimensions
// are independent.
package cascade

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ppiankov/sentidash/internal/cache"
	"github.com/ppiankov/sentidash/internal/logger"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/table"
)

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sentidash_cascade_cache_lookups_total",
		Help: "Option list cache lookups by dimension and result",
	},
	[]string{"dimension", "result"},
)

// Categories is the fixed category option list
var Categories = []model.Option{
	{Label: "Segment", Value: "segment"},
	{Label: "Price", Value: "price"},
}

// Resolver computes dimension options over an immutable table
type Resolver struct {
	store *table.Store
	cache cache.Cache
	ttl   time.Duration
}

// NewResolver creates a resolver. A nil cache disables memoisation.
func NewResolver(store *table.Store, c cache.Cache, ttl time.Duration) *Resolver {
	return &Resolver{store: store, cache: c, ttl: ttl}
}

// ResolveOptions returns the options for one dimension, always led by the All
// option. Unknown dimensions resolve to the All option alone. Selected values
// that are no longer valid are left for the caller; see Stale.
func (r *Resolver) ResolveOptions(ctx context.Context, dim model.Dimension, sel model.Selection) []model.Option {
	switch dim {
	case model.DimFact:
		return withAll(factOptions())
	case model.DimCategory:
		return withAll(Categories)
	case model.DimBrand, model.DimSource, model.DimModel, model.DimFeature:
	default:
		return []model.Option{model.AllOption}
	}

	upstream := upstreamValues(dim, sel)
	key := ""
	if r.cache != nil {
		raw, _ := json.Marshal(upstream)
		key = cache.OptionsKey(string(dim), raw)
		if data, ok := r.cache.Get(key); ok {
			var opts []model.Option
			if err := json.Unmarshal(data, &opts); err == nil {
				cacheLookups.WithLabelValues(string(dim), "hit").Inc()
				return opts
			}
		}
		cacheLookups.WithLabelValues(string(dim), "miss").Inc()
	}

	values := r.distinct(ctx, dim, upstream)
	opts := make([]model.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, model.Option{Label: v, Value: v})
	}
	opts = withAll(opts)

	if r.cache != nil {
		if data, err := json.Marshal(opts); err == nil {
			if err := r.cache.Set(key, data, r.ttl); err != nil {
				logger.FromContext(ctx).V(1).Info("option cache write failed", "dimension", dim, "error", err.Error())
			}
		}
	}
	return opts
}

// ResolveAll resolves every dimension in dependency order
func (r *Resolver) ResolveAll(ctx context.Context, sel model.Selection) map[model.Dimension][]model.Option {
	out := make(map[model.Dimension][]model.Option, len(model.Dimensions))
	for _, d := range model.Dimensions {
		out[d] = r.ResolveOptions(ctx, d, sel)
	}
	return out
}

// Stale reports, per dimension, the selected values missing from the
// dimension's current options. It never modifies the selection.
func (r *Resolver) Stale(ctx context.Context, sel model.Selection) map[model.Dimension][]string {
	stale := make(map[model.Dimension][]string)
	for _, d := range model.Dimensions {
		values := sel.Values(d)
		if model.Unconstrained(values) {
			continue
		}
		opts := r.ResolveOptions(ctx, d, sel)
		for _, v := range values {
			if !containsValue(d, opts, v) {
				stale[d] = append(stale[d], v)
			}
		}
	}
	return stale
}

// upstreamValues returns the selection the dimension's options depend on.
// Unconstrained upstream selections normalise to nil so they share a cache entry.
func upstreamValues(dim model.Dimension, sel model.Selection) []string {
	var values []string
	switch dim {
	case model.DimModel:
		values = sel.Brand
	case model.DimFeature:
		values = sel.Model
	}
	if model.Unconstrained(values) {
		return nil
	}
	values = slices.Clone(values)
	slices.Sort(values)
	return slices.Compact(values)
}

func (r *Resolver) distinct(ctx context.Context, dim model.Dimension, upstream []string) []string {
	var (
		values []string
		err    error
	)
	switch {
	case dim == model.DimModel && upstream != nil:
		values, err = table.Distinct(r.store.Query(table.In(model.ColumnBrand, upstream)), model.ColumnModel)
	case dim == model.DimFeature && upstream != nil:
		values, err = table.Distinct(r.store.Query(table.In(model.ColumnModel, upstream)), model.ColumnFeature)
	default:
		values, err = r.store.DistinctValues(dim.Column())
	}
	if err != nil {
		logger.FromContext(ctx).Error(err, "distinct values failed", "dimension", dim)
		return nil
	}
	return values
}

func factOptions() []model.Option {
	opts := make([]model.Option, 0, len(model.Facts))
	for _, f := range model.Facts {
		opts = append(opts, model.Option{Label: string(f), Value: string(f)})
	}
	return opts
}

func withAll(opts []model.Option) []model.Option {
	out := make([]model.Option, 0, len(opts)+1)
	out = append(out, model.AllOption)
	return append(out, opts...)
}

func containsValue(dim model.Dimension, opts []model.Option, v string) bool {
	if dim == model.DimFact {
		f, ok := model.ParseFact(v)
		if !ok {
			return false
		}
		v = string(f)
	}
	return slices.ContainsFunc(opts, func(o model.Option) bool { return o.Value == v })
}
