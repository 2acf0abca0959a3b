package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Fact is the categorical sentiment label attached to a feedback record
type Fact string

const (
	FactVeryPositive Fact = "Very Positive"
	FactPositive     Fact = "Positive"
	FactNeutral      Fact = "Neutral"
	FactNegative     Fact = "Negative"
	FactVeryNegative Fact = "Very Negative"
)

// Facts is the closed fact domain in chart order
var Facts = []Fact{
	FactVeryPositive,
	FactPositive,
	FactNeutral,
	FactNegative,
	FactVeryNegative,
}

// ParseFact normalises a raw fact label. Matching ignores case, spaces,
// underscores and dashes, so "very_positive" and "VeryPositive" both resolve.
// Unknown labels return FactNeutral and false.
func ParseFact(raw string) (Fact, bool) {
	key := strings.ToLower(raw)
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)

	switch key {
	case "verypositive":
		return FactVeryPositive, true
	case "positive":
		return FactPositive, true
	case "neutral":
		return FactNeutral, true
	case "negative":
		return FactNegative, true
	case "verynegative":
		return FactVeryNegative, true
	}
	return FactNeutral, false
}

// DateLayout is the calendar date format used in paths and snapshots
const DateLayout = "2006-01-02"

// Record is one feedback observation. Records are immutable once loaded.
type Record struct {
	Row             int       `json:"row"`              // Position in the source table (0-based)
	Brand           string    `json:"brand"`
	Model           string    `json:"model"`
	Feature         string    `json:"feature"`
	Fact            string    `json:"fact"`             // Raw label as loaded
	CriticalRanking int       `json:"critical_ranking"` // Sign is polarity, magnitude is salience
	Segment         string    `json:"segment"`          // Category column
	Source          string    `json:"source"`
	Date            string    `json:"date"`             // Raw date string as loaded
	Time            time.Time `json:"-"`                // Parsed date, valid only when HasDate
	HasDate         bool      `json:"has_date"`
	Feedback        string    `json:"feedback"`
	Summary         string    `json:"summary"`
}

// SentimentFact returns the record's fact normalised onto the closed domain
func (r Record) SentimentFact() Fact {
	f, _ := ParseFact(r.Fact)
	return f
}

// FormattedDate returns the record date as YYYY-MM-DD, or the raw string
// when it could not be parsed.
func (r Record) FormattedDate() string {
	if !r.HasDate {
		return r.Date
	}
	return r.Time.Format(DateLayout)
}

// WordCount counts whitespace-separated tokens in the feedback text
func (r Record) WordCount() int {
	return len(strings.Fields(r.Feedback))
}

// Key returns a content hash of the record. Unlike the detail index it does
// not change when other rows are added or reordered.
func (r Record) Key() string {
	h := sha256.New()
	for _, field := range []string{
		r.Brand, r.Model, r.Feature, r.Fact, strconv.Itoa(r.CriticalRanking),
		r.Segment, r.Source, r.Date, r.Feedback, r.Summary,
	} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Column names the queryable record columns
type Column string

const (
	ColumnBrand   Column = "brand"
	ColumnModel   Column = "model"
	ColumnFeature Column = "feature"
	ColumnFact    Column = "fact"
	ColumnSegment Column = "segment"
	ColumnSource  Column = "source"
)

// Columns lists every column accepted by Value
var Columns = []Column{ColumnBrand, ColumnModel, ColumnFeature, ColumnFact, ColumnSegment, ColumnSource}

// Value projects a string column. The second result is false for unknown columns.
func (r Record) Value(col Column) (string, bool) {
	switch col {
	case ColumnBrand:
		return r.Brand, true
	case ColumnModel:
		return r.Model, true
	case ColumnFeature:
		return r.Feature, true
	case ColumnFact:
		return r.Fact, true
	case ColumnSegment:
		return r.Segment, true
	case ColumnSource:
		return r.Source, true
	default:
		return "", false
	}
}
