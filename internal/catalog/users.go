package catalog

import (
	"net/url"

	"mrm-console/internal/tableview"
)

func newUsersTable() (*Table, error) {
	definitions := []tableview.ColumnDefinition{
		{Key: "username", Label: "Username", Default: true},
		{Key: "full_name", Label: "Full Name", Default: true},
		{Key: "email", Label: "Email", Default: true},
		{Key: "role", Label: "Role", Default: true},
		{Key: "department", Label: "Department", Default: false},
		{Key: "is_active", Label: "Active", Default: true},
		{Key: "last_login", Label: "Last Login", Default: false},
	}

	renderers := map[string]tableview.ColumnRenderer{
		"username":   textColumn("Username", "username"),
		"full_name":  textColumn("Full Name", "full_name"),
		"email":      textColumn("Email", "email"),
		"role":       textColumn("Role", "role"),
		"department": textColumn("Department", "department"),
		"is_active":  boolColumn("Active", "is_active", "Active", "Inactive"),
		"last_login": dateColumn("Last Login", "last_login"),
	}

	registry, err := tableview.NewRegistry(definitions, renderers)
	if err != nil {
		return nil, err
	}

	return &Table{
		Entity:       "users",
		UpstreamPath: "/auth/users",
		Registry:     registry,
		BuiltinViews: []tableview.View{
			{
				ID:        "default",
				Name:      "Default",
				Columns:   registry.DefaultColumns(),
				IsDefault: true,
			},
		},
		DefaultSort: tableview.SortState{Key: "username", Direction: tableview.Asc},
		SortSeeds: map[string]tableview.Direction{
			"last_login": tableview.Desc,
		},
		ParseFilters: parseUserFilters,
	}, nil
}

func parseUserFilters(values url.Values) []tableview.Predicate {
	predicates := []tableview.Predicate{
		tableview.TextContains(values.Get("q"), "username", "full_name", "email"),
		tableview.Membership("role", queryList(values, "role")),
		tableview.Membership("department", queryList(values, "department")),
	}

	if !queryBool(values, "include_inactive") {
		predicates = append(predicates, tableview.Toggle(true, func(row tableview.Row) bool {
			value, ok := tableview.Lookup(row, "is_active")
			b, isBool := value.(bool)
			return !ok || !isBool || b
		}))
	}

	return predicates
}
