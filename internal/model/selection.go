package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// All is the sentinel option value meaning "do not constrain this dimension"
const All = "All"

// Dimension identifies one filter control
type Dimension string

const (
	DimBrand    Dimension = "brand"
	DimModel    Dimension = "model"
	DimFeature  Dimension = "feature"
	DimFact     Dimension = "fact"
	DimCategory Dimension = "category"
	DimSource   Dimension = "source"
)

// Dimensions lists the set-valued dimensions in cascade order
var Dimensions = []Dimension{DimBrand, DimModel, DimFeature, DimFact, DimCategory, DimSource}

// ParseDimension maps a user-supplied name onto a Dimension
func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dimension: %q", s)
}

// Column returns the record column a dimension filters on
func (d Dimension) Column() Column {
	switch d {
	case DimBrand:
		return ColumnBrand
	case DimModel:
		return ColumnModel
	case DimFeature:
		return ColumnFeature
	case DimFact:
		return ColumnFact
	case DimCategory:
		return ColumnSegment
	case DimSource:
		return ColumnSource
	default:
		return ""
	}
}

// Unconstrained reports whether a set-valued selection places no constraint.
// Nil, empty and any set containing All are equivalent.
func Unconstrained(values []string) bool {
	return len(values) == 0 || slices.Contains(values, All)
}

// Date is a calendar date with no time-of-day component
type Date struct {
	time.Time
}

// ParseDate parses YYYY-MM-DD, also accepting a full timestamp whose date part is used
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDate(t), nil
	}
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return Date{t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

// MustDate parses a date and panics on failure. Intended for tests and literals.
func MustDate(s string) *Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

// NewDate truncates t to its calendar date in UTC
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalText encodes the date as YYYY-MM-DD
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD date
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON overrides the embedded time.Time encoding
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted YYYY-MM-DD date
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	return d.UnmarshalText([]byte(s))
}

// Selection holds the current value of every filter dimension. The zero value
// is the all-unconstrained selection.
type Selection struct {
	Brand    []string `json:"brand,omitempty" yaml:"brand,omitempty"`
	Model    []string `json:"model,omitempty" yaml:"model,omitempty"`
	Feature  []string `json:"feature,omitempty" yaml:"feature,omitempty"`
	Fact     []string `json:"fact,omitempty" yaml:"fact,omitempty"`
	Category []string `json:"category,omitempty" yaml:"category,omitempty"`
	Source   []string `json:"source,omitempty" yaml:"source,omitempty"`
	FromDate *Date    `json:"from_date,omitempty" yaml:"from_date,omitempty"`
	ToDate   *Date    `json:"to_date,omitempty" yaml:"to_date,omitempty"`
}

// Values returns the selected values for a dimension
func (s Selection) Values(d Dimension) []string {
	switch d {
	case DimBrand:
		return s.Brand
	case DimModel:
		return s.Model
	case DimFeature:
		return s.Feature
	case DimFact:
		return s.Fact
	case DimCategory:
		return s.Category
	case DimSource:
		return s.Source
	default:
		return nil
	}
}

// With returns a copy of the selection with one dimension replaced
func (s Selection) With(d Dimension, values []string) Selection {
	values = slices.Clone(values)
	switch d {
	case DimBrand:
		s.Brand = values
	case DimModel:
		s.Model = values
	case DimFeature:
		s.Feature = values
	case DimFact:
		s.Fact = values
	case DimCategory:
		s.Category = values
	case DimSource:
		s.Source = values
	}
	return s
}

// First returns the first selected value of a dimension, or fallback when none
func (s Selection) First(d Dimension, fallback string) string {
	values := s.Values(d)
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}

// HasDateRange reports whether both date bounds are present
func (s Selection) HasDateRange() bool {
	return s.FromDate != nil && s.ToDate != nil
}
