// Package session saves and restores the complete filter selection so it
// survives navigation between pages.
package session

import (
	"fmt"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/sentidash/internal/model"
)

// Snapshot keys
const (
	KeyBrand    = "brand"
	KeyModel    = "model"
	KeyFeature  = "feature"
	KeyFact     = "fact"
	KeyCategory = "category"
	KeySource   = "source"
	KeyFromDate = "from_date"
	KeyToDate   = "to_date"
)

// Snapshot is the flat, serializable form of a selection
type Snapshot map[string]any

var listKeys = []struct {
	key string
	dim model.Dimension
}{
	{KeyBrand, model.DimBrand},
	{KeyModel, model.DimModel},
	{KeyFeature, model.DimFeature},
	{KeyFact, model.DimFact},
	{KeyCategory, model.DimCategory},
	{KeySource, model.DimSource},
}

// Save captures every dimension and both date bounds. Absent values are
// stored as nil so the snapshot always carries all eight keys.
func Save(sel model.Selection) Snapshot {
	snap := make(Snapshot, len(listKeys)+2)
	for _, lk := range listKeys {
		values := sel.Values(lk.dim)
		if values == nil {
			snap[lk.key] = nil
			continue
		}
		snap[lk.key] = slices.Clone(values)
	}
	snap[KeyFromDate] = dateValue(sel.FromDate)
	snap[KeyToDate] = dateValue(sel.ToDate)
	return snap
}

// Restore rebuilds a selection from a snapshot. Missing or malformed entries
// default to unconstrained; values are not checked against current options.
func Restore(snap Snapshot) model.Selection {
	var sel model.Selection
	for _, lk := range listKeys {
		if values, ok := listValue(snap[lk.key]); ok {
			sel = sel.With(lk.dim, values)
		}
	}
	sel.FromDate = parseDateValue(snap[KeyFromDate])
	sel.ToDate = parseDateValue(snap[KeyToDate])
	return sel
}

// MarshalYAML renders a selection's snapshot as YAML
func MarshalYAML(sel model.Selection) ([]byte, error) {
	data, err := yaml.Marshal(Save(sel))
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalYAML restores a selection from a YAML snapshot
func UnmarshalYAML(data []byte) (model.Selection, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return model.Selection{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return Restore(snap), nil
}

func dateValue(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// listValue accepts the shapes a snapshot list takes after a JSON or YAML
// round trip: []string, []any of strings, or a bare string.
func listValue(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case string:
		return []string{t}, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func parseDateValue(v any) *model.Date {
	switch t := v.(type) {
	case string:
		d, err := model.ParseDate(t)
		if err != nil {
			return nil
		}
		return &d
	case time.Time:
		d := model.NewDate(t)
		return &d
	case model.Date:
		return &t
	case *model.Date:
		return t
	default:
		return nil
	}
}
