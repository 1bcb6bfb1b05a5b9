package tableview

import (
	"fmt"
	"strings"
)

// Row is a single record as decoded from the upstream API. The engine never
// assumes a shape beyond what a dotted key path can reach.
type Row map[string]any

// Lookup walks a dot-delimited path into the row. Any missing or
// non-traversable intermediate yields (nil, false).
func Lookup(row Row, path string) (any, bool) {
	if row == nil || strings.TrimSpace(path) == "" {
		return nil, false
	}

	var current any = map[string]any(row)
	for _, segment := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		value, exists := obj[segment]
		if !exists {
			return nil, false
		}
		current = value
	}

	if current == nil {
		return nil, false
	}

	return current, true
}

// StringAt returns the value at path rendered as a plain string, or "" when
// the path is absent.
func StringAt(row Row, path string) string {
	value, ok := Lookup(row, path)
	if !ok {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; print integers without a fraction.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NumberAt returns the numeric value at path. Non-numeric values yield
// (0, false).
func NumberAt(row Row, path string) (float64, bool) {
	value, ok := Lookup(row, path)
	if !ok {
		return 0, false
	}

	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// StringsAt returns a multi-valued field as strings. Scalars come back as a
// single-element slice so callers can treat every field uniformly.
func StringsAt(row Row, path string) []string {
	value, ok := Lookup(row, path)
	if !ok {
		return nil
	}

	items, ok := value.([]any)
	if !ok {
		return []string{StringAt(row, path)}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprintf("%v", item))
	}

	return out
}
