package tableview

import "errors"

var ErrViewNotFound = errors.New("view not found")

// Preferences is the column-selection state for one (user, entity type) pair:
// the ordered selected columns and the id of the most recently loaded view.
// Toggling columns drifts the selection away from the loaded view without
// touching CurrentViewID; the set is simply ad-hoc until the user saves or
// reloads a view.
type Preferences struct {
	SelectedColumns []string `json:"selected_columns"`
	CurrentViewID   string   `json:"current_view_id"`
}

// DefaultPreferences seeds fresh state from an entity type's default view.
func DefaultPreferences(defaultView View) Preferences {
	return Preferences{
		SelectedColumns: append([]string(nil), defaultView.Columns...),
		CurrentViewID:   defaultView.ID,
	}
}

// ToggleColumn appends key when absent and removes it when present.
func (p *Preferences) ToggleColumn(key string) {
	for i, existing := range p.SelectedColumns {
		if existing == key {
			p.SelectedColumns = append(p.SelectedColumns[:i], p.SelectedColumns[i+1:]...)
			return
		}
	}
	p.SelectedColumns = append(p.SelectedColumns, key)
}

// SelectAll replaces the selection with every available column in
// declaration order.
func (p *Preferences) SelectAll(registry *Registry) {
	definitions := registry.Definitions()
	p.SelectedColumns = make([]string, 0, len(definitions))
	for _, def := range definitions {
		p.SelectedColumns = append(p.SelectedColumns, def.Key)
	}
}

func (p *Preferences) DeselectAll() {
	p.SelectedColumns = []string{}
}

// LoadView replaces the selection with a defensive copy of the named view's
// columns and makes it current. An unknown id leaves the state untouched.
func (p *Preferences) LoadView(views []View, id string) error {
	view, ok := FindView(views, id)
	if !ok {
		return ErrViewNotFound
	}

	p.SelectedColumns = append([]string(nil), view.Columns...)
	p.CurrentViewID = view.ID
	return nil
}
