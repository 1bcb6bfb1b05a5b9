package tableview

import "strings"

// Predicate is a single independent row filter. Predicates are pure and never
// see each other's partial results.
type Predicate func(Row) bool

// Chain applies predicates in sequence to the full candidate list. Nil
// predicates are tolerated so callers can build chains conditionally.
func Chain(rows []Row, predicates ...Predicate) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, predicate := range predicates {
			if predicate == nil {
				continue
			}
			if !predicate(row) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

// TextContains matches a case-insensitive substring against any of the named
// fields. An empty query passes everything.
func TextContains(query string, fields ...string) Predicate {
	needle := strings.ToLower(strings.TrimSpace(query))
	return func(row Row) bool {
		if needle == "" {
			return true
		}
		for _, field := range fields {
			if strings.Contains(strings.ToLower(StringAt(row, field)), needle) {
				return true
			}
		}
		return false
	}
}

// Membership keeps rows whose field value is in the selected set. An empty
// set is vacuously true: no selection means no restriction.
func Membership(field string, selected []string) Predicate {
	set := make(map[string]struct{}, len(selected))
	for _, value := range selected {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		set[strings.ToLower(trimmed)] = struct{}{}
	}

	return func(row Row) bool {
		if len(set) == 0 {
			return true
		}
		_, ok := set[strings.ToLower(StringAt(row, field))]
		return ok
	}
}

// Toggle applies predicate only while enabled.
func Toggle(enabled bool, predicate Predicate) Predicate {
	return func(row Row) bool {
		if !enabled {
			return true
		}
		return predicate(row)
	}
}

// MinThreshold keeps rows whose numeric field is at least min. Rows without a
// numeric value fail the threshold.
func MinThreshold(field string, min float64) Predicate {
	return func(row Row) bool {
		value, ok := NumberAt(row, field)
		if !ok {
			return false
		}
		return value >= min
	}
}

// HideStatusesUnlessSelected hides rows in the named terminal statuses by
// default; a hidden status the caller selected explicitly stays visible. This
// is an ordinary predicate in the chain, not a special case.
func HideStatusesUnlessSelected(field string, hidden []string, selected []string) Predicate {
	selectedSet := make(map[string]struct{}, len(selected))
	for _, value := range selected {
		selectedSet[strings.ToLower(strings.TrimSpace(value))] = struct{}{}
	}

	hiddenSet := make(map[string]struct{}, len(hidden))
	for _, value := range hidden {
		key := strings.ToLower(strings.TrimSpace(value))
		if _, chosen := selectedSet[key]; chosen {
			continue
		}
		hiddenSet[key] = struct{}{}
	}

	return func(row Row) bool {
		_, hide := hiddenSet[strings.ToLower(StringAt(row, field))]
		return !hide
	}
}
