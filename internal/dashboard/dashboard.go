// Package dashboard wires the table, cascade resolver, aggregation engine
// and navigator into the operations the CLI and HTTP adapters expose.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/sentidash/internal/aggregate"
	"github.com/ppiankov/sentidash/internal/cache"
	"github.com/ppiankov/sentidash/internal/cascade"
	"github.com/ppiankov/sentidash/internal/ingest"
	"github.com/ppiankov/sentidash/internal/llm"
	"github.com/ppiankov/sentidash/internal/logger"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/navigate"
	"github.com/ppiankov/sentidash/internal/session"
	"github.com/ppiankov/sentidash/internal/table"
)

// Dashboard is safe for concurrent use; all state is read-only apart from
// the option cache and the sampler, which guard themselves.
type Dashboard struct {
	store     *table.Store
	resolver  *cascade.Resolver
	engine    *aggregate.Engine
	navigator *navigate.Navigator
	sampler   aggregate.Sampler
	digester  *llm.Digester // nil when no provider is configured
	config    *model.Config
}

// Option customises a Dashboard
type Option func(*Dashboard)

// WithSampler replaces the highlight sampler
func WithSampler(s aggregate.Sampler) Option {
	return func(d *Dashboard) { d.sampler = s }
}

// WithDigester replaces the configured digester
func WithDigester(dg *llm.Digester) Option {
	return func(d *Dashboard) { d.digester = dg }
}

// New builds a dashboard over store
func New(ctx context.Context, store *table.Store, cfg *model.Config, opts ...Option) *Dashboard {
	optionCache := cache.NewMemoryCache(cfg.Cascade.CacheTTL, 10*time.Minute)

	d := &Dashboard{
		store:     store,
		resolver:  cascade.NewResolver(store, optionCache, cfg.Cascade.CacheTTL),
		engine:    aggregate.NewEngine(store, cfg.Highlights),
		navigator: navigate.New(store),
		sampler:   aggregate.NewRandSampler(uint64(time.Now().UnixNano())),
		config:    cfg,
	}

	if cfg.LLM.Provider != "" {
		dg, err := llm.NewDigester(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			logger.FromContext(ctx).Error(err, "failed to initialize LLM provider, digests disabled")
		} else {
			d.digester = dg
		}
	}

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open loads the configured table and builds a dashboard over it
func Open(ctx context.Context, cfg *model.Config, opts ...Option) (*Dashboard, error) {
	store, err := ingest.Open(ctx, cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	return New(ctx, store, cfg, opts...), nil
}

// Store exposes the underlying table
func (d *Dashboard) Store() *table.Store {
	return d.store
}

// Options resolves every dimension for sel
func (d *Dashboard) Options(ctx context.Context, sel model.Selection) map[model.Dimension][]model.Option {
	return d.resolver.ResolveAll(ctx, sel)
}

// OptionsFor resolves one dimension for sel
func (d *Dashboard) OptionsFor(ctx context.Context, dim model.Dimension, sel model.Selection) []model.Option {
	return d.resolver.ResolveOptions(ctx, dim, sel)
}

// Stale reports selected values the current options no longer offer
func (d *Dashboard) Stale(ctx context.Context, sel model.Selection) map[model.Dimension][]string {
	return d.resolver.Stale(ctx, sel)
}

// ChartView is a chart together with its render-ready series and title
type ChartView struct {
	Heading string              `json:"heading"`
	Chart   model.Chart         `json:"chart"`
	Series  []model.ChartSeries `json:"series"`
}

// Chart aggregates the selection into the stacked sentiment chart
func (d *Dashboard) Chart(sel model.Selection) ChartView {
	chart := d.engine.Chart(sel)
	return ChartView{
		Heading: aggregate.Heading(sel),
		Chart:   chart,
		Series:  chart.Series(),
	}
}

// TrendView is the daily fact series with its moving averages
type TrendView struct {
	Window   int                  `json:"window"`
	Points   []model.TimePoint    `json:"points"`
	Averages []model.AveragePoint `json:"averages"`
}

// Trend returns per-day counts and trailing averages over window days
func (d *Dashboard) Trend(sel model.Selection, window int) TrendView {
	if window <= 0 {
		window = aggregate.DefaultWindow
	}
	points := d.engine.TimeSeries(sel)
	return TrendView{
		Window:   window,
		Points:   points,
		Averages: aggregate.MovingAverages(points, window),
	}
}

// Features summarises the selected models, or every model when unconstrained
func (d *Dashboard) Features(sel model.Selection) []model.FeatureSummary {
	return d.engine.FeatureSummaries(sel.Model)
}

// Highlights samples the highlighted models table
func (d *Dashboard) Highlights() model.Highlights {
	return d.engine.Highlights(d.sampler)
}

// View resolves a navigation path
func (d *Dashboard) View(path string) model.View {
	return d.navigator.Resolve(path)
}

// Click converts a chart click into a navigation path
func (d *Dashboard) Click(click model.Click, sel model.Selection) string {
	return navigate.ClickPath(click, sel)
}

// Query filters rows with a CEL expression
func (d *Dashboard) Query(expr string) ([]model.Record, error) {
	p, err := table.CELPredicate(expr)
	if err != nil {
		return nil, err
	}
	return d.store.Query(p), nil
}

// DigestEnabled reports whether an LLM provider is configured
func (d *Dashboard) DigestEnabled() bool {
	return d.digester.IsEnabled()
}

// Digest summarises a model's feedback list with the configured LLM
func (d *Dashboard) Digest(ctx context.Context, modelName string) (*llm.Digest, error) {
	if !d.digester.IsEnabled() {
		return nil, llm.ErrDisabled
	}
	return d.digester.Digest(ctx, modelName, d.navigator.Records(modelName))
}

// Report is the full dashboard state for one saved selection
type Report struct {
	Name        string                       `json:"name"`
	Selection   session.Snapshot             `json:"selection"`
	Chart       ChartView                    `json:"chart"`
	Features    []model.FeatureSummary       `json:"features"`
	Stale       map[model.Dimension][]string `json:"stale,omitempty"`
	GeneratedAt time.Time                    `json:"generated_at"`
}

// Report renders every selection-driven view for sel
func (d *Dashboard) Report(ctx context.Context, name string, sel model.Selection) *Report {
	report := &Report{
		Name:        name,
		Selection:   session.Save(sel),
		Chart:       d.Chart(sel),
		Features:    d.Features(sel),
		GeneratedAt: time.Now().UTC(),
	}
	if stale := d.Stale(ctx, sel); len(stale) > 0 {
		report.Stale = stale
	}
	return report
}
