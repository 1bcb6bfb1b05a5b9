// Package catalog declares the table surface of each MRM entity type: its
// selectable columns, renderers, built-in views, sort seeds, upstream path
// and filter parsing. Catalogs are static and validated at startup.
package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mrm-console/internal/tableview"
)

// Table is one entity type's complete table declaration.
type Table struct {
	Entity       string
	UpstreamPath string
	Registry     *tableview.Registry
	BuiltinViews []tableview.View
	DefaultSort  tableview.SortState
	SortSeeds    map[string]tableview.Direction
	// ParseFilters builds the predicate chain for this entity from URL query
	// parameters. Every predicate is independent; unknown parameters are
	// ignored.
	ParseFilters func(url.Values) []tableview.Predicate
}

// DefaultView returns the table's designated default view.
func (t *Table) DefaultView() tableview.View {
	for _, view := range t.BuiltinViews {
		if view.ID == "default" {
			return view.Clone()
		}
	}
	if len(t.BuiltinViews) > 0 {
		return t.BuiltinViews[0].Clone()
	}
	return tableview.View{}
}

// NewSorter builds a sorter at the table's default sort with seeds applied.
func (t *Table) NewSorter() *tableview.Sorter {
	sorter := tableview.NewSorter(t.DefaultSort.Key, t.DefaultSort.Direction)
	for key, direction := range t.SortSeeds {
		sorter.SeedDirection(key, direction)
	}
	return sorter
}

// Catalog is the set of known entity types.
type Catalog struct {
	tables map[string]*Table
	order  []string
}

func New() (*Catalog, error) {
	c := &Catalog{tables: map[string]*Table{}}

	for _, build := range []func() (*Table, error){
		newValidationRequestsTable,
		newModelsTable,
		newAttestationsTable,
		newUsersTable,
	} {
		table, err := build()
		if err != nil {
			return nil, err
		}

		for _, view := range table.BuiltinViews {
			if !view.IsDefault {
				return nil, fmt.Errorf("%s: catalog view %q must be built-in", table.Entity, view.ID)
			}
			if err := view.ValidateColumns(table.Registry); err != nil {
				return nil, fmt.Errorf("%s: view %q: %w", table.Entity, view.ID, err)
			}
		}

		c.tables[table.Entity] = table
		c.order = append(c.order, table.Entity)
	}

	return c, nil
}

func (c *Catalog) Lookup(entity string) (*Table, bool) {
	table, ok := c.tables[strings.ToLower(strings.TrimSpace(entity))]
	return table, ok
}

func (c *Catalog) Entities() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// ── Renderer helpers ─────────────────────────────────────────────

func textColumn(header string, path string) tableview.ColumnRenderer {
	return tableview.ColumnRenderer{
		Header:   header,
		SortKey:  path,
		Cell:     func(row tableview.Row) string { return tableview.StringAt(row, path) },
		CSVValue: func(row tableview.Row) string { return tableview.StringAt(row, path) },
	}
}

func unsortableTextColumn(header string, path string) tableview.ColumnRenderer {
	renderer := textColumn(header, path)
	renderer.SortKey = ""
	return renderer
}

// dateColumn renders timestamps as YYYY-MM-DD; values that do not parse pass
// through untouched so odd upstream data stays visible.
func dateColumn(header string, path string) tableview.ColumnRenderer {
	format := func(row tableview.Row) string {
		raw := tableview.StringAt(row, path)
		if raw == "" {
			return ""
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed.UTC().Format("2006-01-02")
			}
		}
		return raw
	}

	return tableview.ColumnRenderer{
		Header:   header,
		SortKey:  path,
		Cell:     format,
		CSVValue: format,
	}
}

// listColumn joins multi-valued fields with "; " for both cell and CSV forms.
func listColumn(header string, path string) tableview.ColumnRenderer {
	join := func(row tableview.Row) string {
		return strings.Join(tableview.StringsAt(row, path), "; ")
	}

	return tableview.ColumnRenderer{
		Header:   header,
		Cell:     join,
		CSVValue: join,
	}
}

func boolColumn(header string, path string, yes string, no string) tableview.ColumnRenderer {
	render := func(row tableview.Row) string {
		value, ok := tableview.Lookup(row, path)
		if !ok {
			return ""
		}
		if b, isBool := value.(bool); isBool && b {
			return yes
		}
		return no
	}

	return tableview.ColumnRenderer{
		Header:   header,
		SortKey:  path,
		Cell:     render,
		CSVValue: render,
	}
}

// ── Query parameter helpers ──────────────────────────────────────

func queryList(values url.Values, key string) []string {
	out := make([]string, 0, 4)
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func queryBool(values url.Values, key string) bool {
	raw := strings.ToLower(strings.TrimSpace(values.Get(key)))
	return raw == "true" || raw == "1" || raw == "yes"
}

func queryFloat(values url.Values, key string) (float64, bool) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
