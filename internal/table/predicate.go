package table

import (
	"slices"

	"github.com/ppiankov/sentidash/internal/model"
)

// Predicate selects rows
type Predicate func(model.Record) bool

// MatchAll accepts every row
func MatchAll(model.Record) bool { return true }

// In matches rows whose column value is in values. An unconstrained value set
// (empty or containing All) matches every row. Fact values are compared after
// normalisation so "Very Positive" and "very_positive" select the same rows.
// Unrecognised fact labels, on either side, never match.
func In(col model.Column, values []string) Predicate {
	if model.Unconstrained(values) {
		return MatchAll
	}

	set := make(map[string]bool, len(values))
	if col == model.ColumnFact {
		for _, v := range values {
			if f, ok := model.ParseFact(v); ok {
				set[string(f)] = true
			}
		}
		return func(r model.Record) bool {
			f, ok := model.ParseFact(r.Fact)
			return ok && set[string(f)]
		}
	}

	for _, v := range values {
		set[v] = true
	}
	return func(r model.Record) bool {
		v, _ := r.Value(col)
		return set[v]
	}
}

// ModelIs matches rows of a single model
func ModelIs(name string) Predicate {
	return func(r model.Record) bool {
		return r.Model == name
	}
}

// DateRange matches rows whose date lies within [from, to] inclusive. Rows
// without a parseable date never match.
func DateRange(from, to model.Date) Predicate {
	return func(r model.Record) bool {
		if !r.HasDate {
			return false
		}
		d := model.NewDate(r.Time)
		return !d.Before(from.Time) && !d.After(to.Time)
	}
}

// RankingIn matches rows whose critical ranking is one of values
func RankingIn(values ...int) Predicate {
	return func(r model.Record) bool {
		return slices.Contains(values, r.CriticalRanking)
	}
}

// RankingAtLeast matches rows with critical ranking >= n
func RankingAtLeast(n int) Predicate {
	return func(r model.Record) bool {
		return r.CriticalRanking >= n
	}
}

// RankingAtMost matches rows with critical ranking <= n
func RankingAtMost(n int) Predicate {
	return func(r model.Record) bool {
		return r.CriticalRanking <= n
	}
}

// And matches rows accepted by every predicate. Nil predicates are skipped.
func And(ps ...Predicate) Predicate {
	return func(r model.Record) bool {
		for _, p := range ps {
			if p != nil && !p(r) {
				return false
			}
		}
		return true
	}
}
