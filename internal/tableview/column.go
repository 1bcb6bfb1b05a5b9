package tableview

import "fmt"

// ColumnDefinition declares one selectable column of a table. Definitions are
// static per entity type and never mutated at runtime.
type ColumnDefinition struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

// ColumnRenderer turns a row into the display and CSV form of one column.
// SortKey empty means the column is not sortable. CSVValue must return plain
// text (dates as YYYY-MM-DD, multi-valued fields joined with "; ", nulls as
// ""); CSV escaping belongs to the exporter, never here.
type ColumnRenderer struct {
	Header   string
	SortKey  string
	Cell     func(Row) string
	CSVValue func(Row) string
}

// Registry binds an entity type's column definitions to their renderers.
type Registry struct {
	definitions []ColumnDefinition
	renderers   map[string]ColumnRenderer
}

// NewRegistry validates that every declared column has a renderer. A missing
// renderer is a programming error in the catalog, caught at construction so
// it cannot surface mid-request.
func NewRegistry(definitions []ColumnDefinition, renderers map[string]ColumnRenderer) (*Registry, error) {
	for _, def := range definitions {
		renderer, ok := renderers[def.Key]
		if !ok {
			return nil, fmt.Errorf("column %q has no renderer", def.Key)
		}
		if renderer.Cell == nil || renderer.CSVValue == nil {
			return nil, fmt.Errorf("column %q renderer is incomplete", def.Key)
		}
	}

	defs := make([]ColumnDefinition, len(definitions))
	copy(defs, definitions)

	return &Registry{definitions: defs, renderers: renderers}, nil
}

func (r *Registry) Definitions() []ColumnDefinition {
	out := make([]ColumnDefinition, len(r.definitions))
	copy(out, r.definitions)
	return out
}

func (r *Registry) Has(key string) bool {
	_, ok := r.renderers[key]
	return ok
}

// Renderer returns the renderer for key. The second result is false for
// unknown keys; callers skip those rather than fail.
func (r *Registry) Renderer(key string) (ColumnRenderer, bool) {
	renderer, ok := r.renderers[key]
	return renderer, ok
}

// DefaultColumns lists the keys marked default-visible, in declaration order.
func (r *Registry) DefaultColumns() []string {
	keys := make([]string, 0, len(r.definitions))
	for _, def := range r.definitions {
		if def.Default {
			keys = append(keys, def.Key)
		}
	}
	return keys
}

// ProjectedColumn pairs a column key with its renderer for output assembly.
type ProjectedColumn struct {
	Key      string
	Renderer ColumnRenderer
}

// Project resolves an ordered list of selected column keys against the
// registry. Order follows the selection, not the declaration order. Keys
// without a renderer are a config/data mismatch and are skipped, not fatal.
func (r *Registry) Project(selected []string) []ProjectedColumn {
	out := make([]ProjectedColumn, 0, len(selected))
	for _, key := range selected {
		renderer, ok := r.renderers[key]
		if !ok {
			continue
		}
		out = append(out, ProjectedColumn{Key: key, Renderer: renderer})
	}
	return out
}
