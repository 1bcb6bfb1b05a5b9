package tableview

import (
	"fmt"
	"time"
)

// View is a named, ordered subset of an entity type's available columns.
// Built-in views ship with the catalog and are immutable; user views are
// owned, editable, deletable and optionally shared.
type View struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Columns     []string  `json:"columns"`
	IsDefault   bool      `json:"is_default"`
	IsPublic    bool      `json:"is_public,omitempty"`
	OwnerID     string    `json:"owner_id,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Clone returns a copy whose Columns slice is independent of the original.
func (v View) Clone() View {
	out := v
	out.Columns = make([]string, len(v.Columns))
	copy(out.Columns, v.Columns)
	return out
}

// ValidateColumns checks the view invariant: every column key must exist in
// the registry, and keys must be unique. An empty column set is legal.
func (v View) ValidateColumns(registry *Registry) error {
	seen := make(map[string]struct{}, len(v.Columns))
	for _, key := range v.Columns {
		if !registry.Has(key) {
			return fmt.Errorf("unknown column %q", key)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate column %q", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// FindView returns the view with the given id from views, if present.
func FindView(views []View, id string) (View, bool) {
	for _, view := range views {
		if view.ID == id {
			return view.Clone(), true
		}
	}
	return View{}, false
}
