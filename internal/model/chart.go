package model

// Option is one entry of a dropdown option list
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AllOption is prepended to every resolved option list
var AllOption = Option{Label: All, Value: All}

// FactColors assigns the stacked bar colour for each fact
var FactColors = map[Fact]string{
	FactVeryPositive: "#234f1e",
	FactPositive:     "#299617",
	FactNeutral:      "#545454",
	FactNegative:     "#d21401",
	FactVeryNegative: "#8b0000",
}

// FactCounts holds one non-negative count per fact
type FactCounts map[Fact]int

// NewFactCounts returns counts with every fact present at zero
func NewFactCounts() FactCounts {
	c := make(FactCounts, len(Facts))
	for _, f := range Facts {
		c[f] = 0
	}
	return c
}

// Total sums the counts across all facts
func (c FactCounts) Total() int {
	total := 0
	for _, f := range Facts {
		total += c[f]
	}
	return total
}

// Chart is the (model, fact) count table behind the stacked sentiment chart
type Chart struct {
	Empty  bool                  `json:"empty"`  // Date bounds missing; nothing to draw
	Models []string              `json:"models"` // X axis, first-appearance order
	Counts map[string]FactCounts `json:"counts"`
	Total  int                   `json:"total"`
}

// ChartPoint is a single bar segment
type ChartPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// ChartSeries is one stacked layer of the chart
type ChartSeries struct {
	Name  string       `json:"name"`
	Color string       `json:"color"`
	Data  []ChartPoint `json:"data"`
}

// Series returns one series per fact in fixed fact order
func (c Chart) Series() []ChartSeries {
	if c.Empty {
		return []ChartSeries{}
	}
	series := make([]ChartSeries, 0, len(Facts))
	for _, f := range Facts {
		points := make([]ChartPoint, 0, len(c.Models))
		for _, m := range c.Models {
			points = append(points, ChartPoint{Label: m, Value: c.Counts[m][f]})
		}
		series = append(series, ChartSeries{
			Name:  string(f),
			Color: FactColors[f],
			Data:  points,
		})
	}
	return series
}

// FeatureRef is a single entry in a model's positive or negative feature list
type FeatureRef struct {
	Feature         string `json:"feature"`
	CriticalRanking int    `json:"critical_ranking"`
	Link            string `json:"link"`
}

// FeatureSummary lists up to three positive and three negative features for a model
type FeatureSummary struct {
	Model    string       `json:"model"`
	Positive []FeatureRef `json:"positive"`
	Negative []FeatureRef `json:"negative"`
}

// Highlight is one row of the random highlighted-models table
type Highlight struct {
	Model    string `json:"model"`
	Feature  string `json:"feature"`
	Polarity string `json:"polarity"` // Positive for ranking 5, Negative otherwise
	Link     string `json:"link"`
}

// Highlights is the result of random highlight sampling. The model set is
// sampled, so two calls over the same table may differ.
type Highlights struct {
	Candidates []string    `json:"candidates"` // Every qualifying model
	Models     []string    `json:"models"`     // Sampled subset
	Rows       []Highlight `json:"rows"`
}

// TimePoint is the per-day fact count table used by the trend view
type TimePoint struct {
	Date   string     `json:"date"`
	Counts FactCounts `json:"counts"`
}

// AveragePoint is a trailing moving average of fact counts
type AveragePoint struct {
	Date     string           `json:"date"`
	Averages map[Fact]float64 `json:"averages"`
}
