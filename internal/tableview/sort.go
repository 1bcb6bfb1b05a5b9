package tableview

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Indicator string

const (
	IndicatorNone Indicator = "none"
	IndicatorAsc  Indicator = "asc"
	IndicatorDesc Indicator = "desc"
)

// SortState is the active sort key and direction for one table. It lives for
// a single page view and is never persisted.
type SortState struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Sorter orders rows by a dot-delimited key path. Some columns (days/date
// style) want to open descending; defaultDirections carries those seeds.
type Sorter struct {
	state             SortState
	defaultDirections map[string]Direction
}

func NewSorter(initialKey string, initialDirection Direction) *Sorter {
	if initialDirection != Desc {
		initialDirection = Asc
	}

	return &Sorter{
		state:             SortState{Key: initialKey, Direction: initialDirection},
		defaultDirections: map[string]Direction{},
	}
}

// SeedDirection registers the direction a column starts with when it becomes
// the active sort key.
func (s *Sorter) SeedDirection(key string, direction Direction) {
	if direction == Desc {
		s.defaultDirections[key] = Desc
	} else {
		s.defaultDirections[key] = Asc
	}
}

func (s *Sorter) State() SortState {
	return s.state
}

// RequestSort flips the direction when key is already active, otherwise
// activates key at its seeded default direction (asc when unseeded).
func (s *Sorter) RequestSort(key string) {
	if key == "" {
		return
	}

	if s.state.Key == key {
		if s.state.Direction == Asc {
			s.state.Direction = Desc
		} else {
			s.state.Direction = Asc
		}
		return
	}

	direction := Asc
	if seeded, ok := s.defaultDirections[key]; ok {
		direction = seeded
	}

	s.state = SortState{Key: key, Direction: direction}
}

// Indicator reports the tri-state sort marker for a column header. Purely a
// presentation hint.
func (s *Sorter) Indicator(key string) Indicator {
	if key == "" || s.state.Key != key {
		return IndicatorNone
	}
	if s.state.Direction == Desc {
		return IndicatorDesc
	}
	return IndicatorAsc
}

// Sorted returns a stably sorted copy of rows under the current state. The
// input is never mutated; with no active key the copy keeps arrival order.
func (s *Sorter) Sorted(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)

	if s.state.Key == "" {
		return out
	}

	SortRows(out, s.state.Key, s.state.Direction)
	return out
}

// SortRows stably sorts rows in place by the value at key. Missing or null
// values hold a fixed highest rank, so they land last ascending and first
// descending. Malformed keys never raise; they just rank as missing.
func SortRows(rows []Row, key string, direction Direction) {
	ascending := direction != Desc

	less := func(i int, j int) bool {
		return compareValues(rows[i], rows[j], key) < 0
	}

	sort.SliceStable(rows, func(i int, j int) bool {
		if ascending {
			return less(i, j)
		}
		return less(j, i)
	})
}

func compareValues(a Row, b Row, key string) int {
	left, leftOK := Lookup(a, key)
	right, rightOK := Lookup(b, key)

	if !leftOK && !rightOK {
		return 0
	}
	if !leftOK {
		return 1
	}
	if !rightOK {
		return -1
	}

	leftNum, leftIsNum := asNumber(left)
	rightNum, rightIsNum := asNumber(right)
	if leftIsNum && rightIsNum {
		switch {
		case leftNum < rightNum:
			return -1
		case leftNum > rightNum:
			return 1
		default:
			return 0
		}
	}

	leftBool, leftIsBool := left.(bool)
	rightBool, rightIsBool := right.(bool)
	if leftIsBool && rightIsBool {
		switch {
		case leftBool == rightBool:
			return 0
		case !leftBool:
			return -1
		default:
			return 1
		}
	}

	return strings.Compare(foldedString(left), foldedString(right))
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func foldedString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(v)
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", v)))
	}
}
