package cascade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/sentidash/internal/cache"
	"github.com/ppiankov/sentidash/internal/fixture"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/table"
)

func values(opts []model.Option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Value)
	}
	return out
}

func newResolver(c cache.Cache) *Resolver {
	return NewResolver(table.New(fixture.Dashboard()), c, time.Minute)
}

func TestResolver_ResolveOptions(t *testing.T) {
	ctx := context.Background()
	r := newResolver(nil)

	tests := []struct {
		name string
		dim  model.Dimension
		sel  model.Selection
		want []string
	}{
		{"brand independent", model.DimBrand, model.Selection{Model: []string{"Leaf"}}, []string{"All", "Nissan", "Toyota"}},
		{"model unconstrained", model.DimModel, model.Selection{}, []string{"All", "Leaf", "Ariya", "Prius", "Corolla"}},
		{"model all sentinel", model.DimModel, model.Selection{Brand: []string{"Toyota", "All"}}, []string{"All", "Leaf", "Ariya", "Prius", "Corolla"}},
		{"model narrowed by brand", model.DimModel, model.Selection{Brand: []string{"Toyota"}}, []string{"All", "Prius", "Corolla"}},
		{"model unknown brand", model.DimModel, model.Selection{Brand: []string{"Tesla"}}, []string{"All"}},
		{"feature narrowed by model", model.DimFeature, model.Selection{Model: []string{"Ariya", "Prius"}}, []string{"All", "Charging", "Noise", "Mileage", "Styling"}},
		{"fact fixed", model.DimFact, model.Selection{Model: []string{"Leaf"}}, []string{"All", "Very Positive", "Positive", "Neutral", "Negative", "Very Negative"}},
		{"category fixed", model.DimCategory, model.Selection{}, []string{"All", "segment", "price"}},
		{"source independent", model.DimSource, model.Selection{Brand: []string{"Toyota"}}, []string{"All", "Reddit", "Forum", "Twitter"}},
		{"unknown dimension", model.Dimension("colour"), model.Selection{}, []string{"All"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, values(r.ResolveOptions(ctx, tt.dim, tt.sel)))
		})
	}
}

func TestResolver_ResolveAll_EveryDimension(t *testing.T) {
	r := newResolver(nil)

	all := r.ResolveAll(context.Background(), model.Selection{Brand: []string{"Nissan"}})
	require.Len(t, all, len(model.Dimensions))
	assert.Equal(t, []string{"All", "Leaf", "Ariya"}, values(all[model.DimModel]))
	for _, d := range model.Dimensions {
		assert.Equal(t, model.AllOption, all[d][0], "dimension %s leads with All", d)
	}
}

func TestResolver_Memoised(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	r := newResolver(mem)

	first := r.ResolveOptions(ctx, model.DimModel, model.Selection{Brand: []string{"Toyota", "Nissan"}})
	assert.Equal(t, 1, mem.Len())

	// Same upstream set in another order hits the same entry
	second := r.ResolveOptions(ctx, model.DimModel, model.Selection{Brand: []string{"Nissan", "Toyota"}})
	assert.Equal(t, first, second)
	assert.Equal(t, 1, mem.Len())
}

func TestResolver_Stale_PassThrough(t *testing.T) {
	r := newResolver(nil)

	sel := model.Selection{
		Brand: []string{"Toyota"},
		Model: []string{"Leaf", "Prius"},
		Fact:  []string{"very_positive", "Great"},
	}
	stale := r.Stale(context.Background(), sel)

	assert.Equal(t, map[model.Dimension][]string{
		model.DimModel: {"Leaf"},
		model.DimFact:  {"Great"},
	}, stale)
	assert.Equal(t, []string{"Leaf", "Prius"}, sel.Model, "selection untouched")
}
