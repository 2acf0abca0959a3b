package table

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ppiankov/sentidash/internal/model"
)

// ErrUnknownColumn is returned when projecting a column records do not have
var ErrUnknownColumn = errors.New("unknown column")

// Store holds the immutable feedback table. It is safe for concurrent use.
type Store struct {
	records []model.Record

	mu       sync.RWMutex
	distinct map[model.Column][]string
}

// New builds a store over a copy of records. Row positions are reassigned
// so that Row always matches table order.
func New(records []model.Record) *Store {
	rows := slices.Clone(records)
	for i := range rows {
		rows[i].Row = i
	}
	return &Store{
		records:  rows,
		distinct: make(map[model.Column][]string),
	}
}

// Len returns the number of rows
func (s *Store) Len() int {
	return len(s.records)
}

// All returns a copy of every row in table order
func (s *Store) All() []model.Record {
	return slices.Clone(s.records)
}

// Query returns rows matching p in table order. A nil predicate matches
// everything. A selection matching nothing yields an empty slice.
func (s *Store) Query(p Predicate) []model.Record {
	out := make([]model.Record, 0)
	for _, r := range s.records {
		if p == nil || p(r) {
			out = append(out, r)
		}
	}
	return out
}

// DistinctValues returns the unique values of a column in first-appearance
// order, so repeated calls return the same order.
func (s *Store) DistinctValues(col model.Column) ([]string, error) {
	s.mu.RLock()
	cached, ok := s.distinct[col]
	s.mu.RUnlock()
	if ok {
		return slices.Clone(cached), nil
	}

	values, err := Distinct(s.records, col)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.distinct[col] = values
	s.mu.Unlock()

	return slices.Clone(values), nil
}

// Models returns every distinct model in table order
func (s *Store) Models() []string {
	models, _ := s.DistinctValues(model.ColumnModel)
	return models
}

// Distinct extracts unique column values from rows in first-appearance order
func Distinct(rows []model.Record, col model.Column) ([]string, error) {
	if _, ok := (model.Record{}).Value(col); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, col)
	}

	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, r := range rows {
		v, _ := r.Value(col)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	return values, nil
}
