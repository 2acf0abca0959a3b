package aggregate

import (
	"time"

	"github.com/ppiankov/sentidash/internal/model"
)

// DefaultWindow is the moving average window in days
const DefaultWindow = 7

var maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// MovingAverages returns the trailing mean of each fact count over the
// previous window points, including the current one. Points are expected in
// date order as TimeSeries returns them.
func MovingAverages(points []model.TimePoint, window int) []model.AveragePoint {
	if window <= 0 {
		window = DefaultWindow
	}

	out := make([]model.AveragePoint, 0, len(points))
	for i, p := range points {
		start := max(0, i-window+1)
		span := points[start : i+1]

		avg := make(map[model.Fact]float64, len(model.Facts))
		for _, f := range model.Facts {
			sum := 0
			for _, q := range span {
				sum += q.Counts[f]
			}
			avg[f] = float64(sum) / float64(len(span))
		}
		out = append(out, model.AveragePoint{Date: p.Date, Averages: avg})
	}
	return out
}

// Heading titles the chart after the first selected fact and feature
func Heading(sel model.Selection) string {
	feature := sel.First(model.DimFeature, "Features")
	if feature == "" {
		feature = "Features"
	}
	fact := sel.First(model.DimFact, "")
	return fact + " Sentiment on " + feature
}
