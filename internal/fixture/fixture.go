// Package fixture builds small synthetic feedback tables for tests.
package fixture

import (
	"time"

	"github.com/ppiankov/sentidash/internal/model"
)

// Row is a compact record literal
type Row struct {
	Brand    string
	Model    string
	Feature  string
	Fact     model.Fact
	Ranking  int
	Segment  string
	Source   string
	Date     string
	Feedback string
}

// Records converts rows into records, parsing dates the way ingestion does
func Records(rows ...Row) []model.Record {
	out := make([]model.Record, 0, len(rows))
	for i, r := range rows {
		rec := model.Record{
			Row:             i,
			Brand:           r.Brand,
			Model:           r.Model,
			Feature:         r.Feature,
			Fact:            string(r.Fact),
			CriticalRanking: r.Ranking,
			Segment:         r.Segment,
			Source:          r.Source,
			Date:            r.Date,
			Feedback:        r.Feedback,
			Summary:         r.Feature + " summary",
		}
		if t, err := time.Parse(model.DateLayout, r.Date); err == nil {
			rec.Time = t
			rec.HasDate = true
		}
		out = append(out, rec)
	}
	return out
}

// Dashboard is a two-brand table used across packages
func Dashboard() []model.Record {
	return Records(
		Row{"Nissan", "Leaf", "Battery", model.FactVeryPositive, 5, "segment", "Reddit", "2024-01-10", "battery range is great for daily commuting"},
		Row{"Nissan", "Leaf", "Seats", model.FactNegative, -3, "segment", "Forum", "2024-01-12", "seats hurt"},
		Row{"Nissan", "Leaf", "Infotainment", model.FactNeutral, 0, "price", "Reddit", "2024-01-15", "screen is fine I guess"},
		Row{"Nissan", "Ariya", "Charging", model.FactPositive, 1, "segment", "Twitter", "2024-02-01", "fast charging works well on highway trips"},
		Row{"Nissan", "Ariya", "Noise", model.FactVeryNegative, -5, "price", "Forum", "2024-02-03", "cabin noise"},
		Row{"Toyota", "Prius", "Mileage", model.FactVeryPositive, 5, "segment", "Reddit", "2024-01-20", "unbeatable mileage"},
		Row{"Toyota", "Prius", "Styling", model.FactNegative, -1, "price", "Twitter", "not-a-date", "looks odd from the back"},
		Row{"Toyota", "Corolla", "Reliability", model.FactPositive, 2, "segment", "Forum", "2024-03-05", "never broke down in five years of use"},
	)
}
