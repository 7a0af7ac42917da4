package display

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func (d Direction) IsValid() bool {
	return d == Ascending || d == Descending
}

// SortState is the active sort column and direction.
type SortState struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Column configures how one column orders rows. Compare wins over Accessor when both are set.
type Column[T any] struct {
	Accessor func(T) any
	Compare  func(a, b T) int
}

// Sorter orders rows by named columns and remembers the active column.
type Sorter[T any] struct {
	columns map[string]Column[T]
	state   SortState
}

func NewSorter[T any](columns map[string]Column[T]) *Sorter[T] {
	cols := make(map[string]Column[T], len(columns))
	for key, col := range columns {
		cols[key] = col
	}
	return &Sorter[T]{columns: cols}
}

func (s *Sorter[T]) State() SortState {
	return s.state
}

// Keys lists the configured column names in lexical order.
func (s *Sorter[T]) Keys() []string {
	keys := make([]string, 0, len(s.columns))
	for key := range s.columns {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Toggle selects key. Selecting the active key flips its direction; a new key starts ascending.
func (s *Sorter[T]) Toggle(key string) (SortState, error) {
	if _, ok := s.columns[key]; !ok {
		return s.state, unknownColumn(key)
	}
	if s.state.Key == key {
		if s.state.Direction == Ascending {
			s.state.Direction = Descending
		} else {
			s.state.Direction = Ascending
		}
		return s.state, nil
	}
	s.state = SortState{Key: key, Direction: Ascending}
	return s.state, nil
}

// Set selects key with an explicit direction.
func (s *Sorter[T]) Set(key string, dir Direction) (SortState, error) {
	if _, ok := s.columns[key]; !ok {
		return s.state, unknownColumn(key)
	}
	if !dir.IsValid() {
		return s.state, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort direction").
			WithDetails(map[string]any{"dir": string(dir)})
	}
	s.state = SortState{Key: key, Direction: dir}
	return s.state, nil
}

// Sort returns a sorted copy of rows under the active state. Input order is preserved on ties.
func (s *Sorter[T]) Sort(rows []T) []T {
	out := slices.Clone(rows)
	if out == nil {
		out = []T{}
	}
	col, ok := s.columns[s.state.Key]
	if !ok {
		return out
	}

	compare := col.Compare
	if compare == nil {
		if col.Accessor == nil {
			return out
		}
		accessor := col.Accessor
		compare = func(a, b T) int { return CompareValues(accessor(a), accessor(b)) }
	}

	slices.SortStableFunc(out, func(a, b T) int {
		if s.state.Direction == Descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

func unknownColumn(key string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, "unknown sort column").
		WithDetails(map[string]any{"sort": key})
}

// CompareValues orders two cell values. Numbers and numeric-looking strings such as
// "$1,200.50" or "75%" compare by magnitude and sort before any other text. Nil sorts
// first. Everything else compares by its lowercased string form.
func CompareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}

	da, okA := numericValue(a)
	db, okB := numericValue(b)
	switch {
	case okA && okB:
		return da.Cmp(db)
	case okA:
		return -1
	case okB:
		return 1
	}
	return cmp.Compare(stringValue(a), stringValue(b))
}

func numericValue(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case decimal.Decimal:
		return n, true
	case string:
		parsed, ok := ParseDisplayValue(n)
		if !ok || hasLetter(parsed.Prefix) || hasLetter(parsed.Suffix) {
			return decimal.Zero, false
		}
		return parsed.Number, true
	case fmt.Stringer:
		return numericValue(n.String())
	}
	return decimal.Zero, false
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case fmt.Stringer:
		return strings.ToLower(s.String())
	}
	return strings.ToLower(fmt.Sprint(v))
}

// hasLetter keeps labels such as "Event 2" out of numeric ordering. Only symbols
// like "$" or "%" may surround a sortable number.
func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
