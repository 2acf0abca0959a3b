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

func newEngine() *Engine {
	return NewEngine(table.New(fixture.Dashboard()), model.DefaultConfig().Highlights)
}

func january() model.Selection {
	return model.Selection{FromDate: model.MustDate("2024-01-01"), ToDate: model.MustDate("2024-01-31")}
}

func TestEngine_Chart_MissingDateIsEmpty(t *testing.T) {
	e := newEngine()

	for _, sel := range []model.Selection{
		{},
		{FromDate: model.MustDate("2024-01-01")},
		{ToDate: model.MustDate("2024-01-01")},
	} {
		chart := e.Chart(sel)
		assert.True(t, chart.Empty)
		assert.Empty(t, chart.Models)
		assert.Empty(t, chart.Series())
	}
}

func TestEngine_Chart_CountsAndZeroFill(t *testing.T) {
	chart := newEngine().Chart(january())

	require.False(t, chart.Empty)
	assert.Equal(t, []string{"Leaf", "Prius"}, chart.Models)
	assert.Equal(t, 4, chart.Total)
	assert.Equal(t, model.FactCounts{
		model.FactVeryPositive: 1,
		model.FactPositive:     0,
		model.FactNeutral:      1,
		model.FactNegative:     1,
		model.FactVeryNegative: 0,
	}, chart.Counts["Leaf"])
	assert.Len(t, chart.Counts["Prius"], len(model.Facts), "every fact present")
	assert.Equal(t, 1, chart.Counts["Prius"][model.FactVeryPositive])

	series := chart.Series()
	require.Len(t, series, 5)
	assert.Equal(t, "Very Positive", series[0].Name)
	assert.Equal(t, "#234f1e", series[0].Color)
	assert.Equal(t, []model.ChartPoint{{Label: "Leaf", Value: 1}, {Label: "Prius", Value: 1}}, series[0].Data)
}

func TestEngine_Chart_CategoryIgnored(t *testing.T) {
	e := newEngine()

	sel := january()
	sel.Category = []string{"price"}
	assert.Equal(t, e.Chart(january()), e.Chart(sel))
}

func TestEngine_Chart_InclusiveBoundsAndFilters(t *testing.T) {
	e := newEngine()

	day := model.Selection{FromDate: model.MustDate("2024-01-10"), ToDate: model.MustDate("2024-01-10")}
	chart := e.Chart(day)
	assert.Equal(t, []string{"Leaf"}, chart.Models)
	assert.Equal(t, 1, chart.Total)

	year := model.Selection{
		Fact:     []string{"Positive"},
		FromDate: model.MustDate("2024-01-01"),
		ToDate:   model.MustDate("2024-12-31"),
	}
	chart = e.Chart(year)
	assert.Equal(t, []string{"Ariya", "Corolla"}, chart.Models)

	year.Fact = nil
	year.Brand = []string{"Toyota"}
	chart = e.Chart(year)
	assert.Equal(t, []string{"Prius", "Corolla"}, chart.Models)
	assert.Equal(t, 2, chart.Total, "undated Prius row excluded")
}

func TestEngine_Chart_StaleFactIsEmpty(t *testing.T) {
	sel := january()
	sel.Fact = []string{"Bogus"}

	chart := newEngine().Chart(sel)
	assert.False(t, chart.Empty)
	assert.Empty(t, chart.Models)
	assert.Zero(t, chart.Total)
}

func TestEngine_FeatureSummaries(t *testing.T) {
	summaries := newEngine().FeatureSummaries(nil)
	require.Len(t, summaries, 4)

	leaf := summaries[0]
	assert.Equal(t, "Leaf", leaf.Model)
	assert.Equal(t, []model.FeatureRef{
		{Feature: "Battery", CriticalRanking: 5, Link: "/feedback/Leaf/Battery/Positive"},
		{Feature: "Infotainment", CriticalRanking: 0, Link: "/feedback/Leaf/Infotainment/Positive"},
	}, leaf.Positive)
	assert.Equal(t, []model.FeatureRef{
		{Feature: "Seats", CriticalRanking: -3, Link: "/feedback/Leaf/Seats/Negative"},
		{Feature: "Infotainment", CriticalRanking: 0, Link: "/feedback/Leaf/Infotainment/Negative"},
	}, leaf.Negative)

	corolla := summaries[3]
	assert.Equal(t, "Corolla", corolla.Model)
	assert.NotNil(t, corolla.Negative)
	assert.Empty(t, corolla.Negative)
}

func TestEngine_FeatureSummaries_CapsAtThree(t *testing.T) {
	var rows []fixture.Row
	for i := range 5 {
		rows = append(rows, fixture.Row{Model: "X", Feature: fmt.Sprintf("f%d", i), Fact: model.FactNeutral, Ranking: 0})
	}
	e := NewEngine(table.New(fixture.Records(rows...)), model.HighlightsConfig{})

	summaries := e.FeatureSummaries([]string{"X", "X"})
	require.Len(t, summaries, 1)
	assert.Len(t, summaries[0].Positive, 3)
	assert.Len(t, summaries[0].Negative, 3)
	assert.Equal(t, "f0", summaries[0].Negative[0].Feature)
}

func TestEngine_FeatureSummaries_SelectedModels(t *testing.T) {
	summaries := newEngine().FeatureSummaries([]string{"Prius", "Unknown"})
	require.Len(t, summaries, 2)
	assert.Equal(t, "Mileage", summaries[0].Positive[0].Feature)
	assert.Equal(t, "Styling", summaries[0].Negative[0].Feature)
	assert.Empty(t, summaries[1].Positive)
}

func TestEngine_TimeSeries(t *testing.T) {
	e := newEngine()

	points := e.TimeSeries(model.Selection{})
	var dates []string
	for _, p := range points {
		dates = append(dates, p.Date)
	}
	assert.Equal(t, []string{"2024-01-10", "2024-01-12", "2024-01-15", "2024-01-20", "2024-02-01", "2024-02-03", "2024-03-05"}, dates)

	points = e.TimeSeries(model.Selection{Brand: []string{"Toyota"}})
	require.Len(t, points, 2)
	assert.Equal(t, 1, points[1].Counts[model.FactPositive])

	points = e.TimeSeries(model.Selection{FromDate: model.MustDate("2024-02-01")})
	assert.Len(t, points, 3)
}
