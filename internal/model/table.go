package model

import "mrm-console/internal/tableview"

// TableColumn is one rendered column header of a table response.
type TableColumn struct {
	Key       string              `json:"key"`
	Header    string              `json:"header"`
	Sortable  bool                `json:"sortable"`
	Indicator tableview.Indicator `json:"indicator"`
}

// TableRow carries the projected cells of one record, keyed by column key.
type TableRow struct {
	Cells map[string]string `json:"cells"`
}

// TableData is the payload of a table rows request: the filtered, sorted,
// projected page plus the state needed to render headers and the view picker.
type TableData struct {
	Entity  string              `json:"entity"`
	Columns []TableColumn       `json:"columns"`
	Rows    []TableRow          `json:"rows"`
	Sort    tableview.SortState `json:"sort"`
	ViewID  string              `json:"view_id,omitempty"`
}

// ColumnsData lists an entity type's selectable columns for the column picker.
type ColumnsData struct {
	Entity  string                       `json:"entity"`
	Columns []tableview.ColumnDefinition `json:"columns"`
}

// ViewListData is the response of a view listing: built-ins first, then the
// caller's own and shared views.
type ViewListData struct {
	Entity string           `json:"entity"`
	Views  []tableview.View `json:"views"`
}

type SaveViewRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []string `json:"columns"`
	IsPublic    bool     `json:"is_public"`
}

type PreferencesData struct {
	Entity      string                `json:"entity"`
	Preferences tableview.Preferences `json:"preferences"`
	// Degraded is set when the preference store could not be read and the
	// defaults are being served from memory.
	Degraded bool `json:"degraded,omitempty"`
}

type UpdatePreferencesRequest struct {
	SelectedColumns []string `json:"selected_columns"`
	CurrentViewID   string   `json:"current_view_id"`
}

// DashboardSource is one settled source of the aggregate dashboard fetch.
type DashboardSource struct {
	Rows  []tableview.Row `json:"rows,omitempty"`
	Count int             `json:"count"`
	Error string          `json:"error,omitempty"`
}

type DashboardData struct {
	Sources map[string]DashboardSource `json:"sources"`
}
