package catalog

import (
	"net/url"

	"mrm-console/internal/tableview"
)

func newModelsTable() (*Table, error) {
	definitions := []tableview.ColumnDefinition{
		{Key: "model_id", Label: "Model ID", Default: true},
		{Key: "model_name", Label: "Model Name", Default: true},
		{Key: "owner", Label: "Owner", Default: true},
		{Key: "business_line", Label: "Business Line", Default: true},
		{Key: "risk_tier", Label: "Risk Tier", Default: true},
		{Key: "status", Label: "Status", Default: true},
		{Key: "last_validation_date", Label: "Last Validated", Default: true},
		{Key: "next_validation_due", Label: "Next Validation Due", Default: false},
		{Key: "regulatory_flags", Label: "Regulatory Flags", Default: false},
		{Key: "in_production", Label: "In Production", Default: false},
		{Key: "description", Label: "Description", Default: false},
	}

	renderers := map[string]tableview.ColumnRenderer{
		"model_id":             textColumn("Model ID", "model_id"),
		"model_name":           textColumn("Model Name", "model_name"),
		"owner":                textColumn("Owner", "owner.name"),
		"business_line":        textColumn("Business Line", "business_line"),
		"risk_tier":            textColumn("Risk Tier", "risk_tier"),
		"status":               textColumn("Status", "status"),
		"last_validation_date": dateColumn("Last Validated", "last_validation_date"),
		"next_validation_due":  dateColumn("Next Validation Due", "next_validation_due"),
		"regulatory_flags":     listColumn("Regulatory Flags", "regulatory_flags"),
		"in_production":        boolColumn("In Production", "in_production", "Yes", "No"),
		"description":          unsortableTextColumn("Description", "description"),
	}

	registry, err := tableview.NewRegistry(definitions, renderers)
	if err != nil {
		return nil, err
	}

	return &Table{
		Entity:       "models",
		UpstreamPath: "/models/",
		Registry:     registry,
		BuiltinViews: []tableview.View{
			{
				ID:        "default",
				Name:      "Default",
				Columns:   registry.DefaultColumns(),
				IsDefault: true,
			},
			{
				ID:          "compact",
				Name:        "Compact",
				Description: "Inventory at a glance",
				Columns:     []string{"model_id", "model_name", "risk_tier", "status"},
				IsDefault:   true,
			},
			{
				ID:          "full",
				Name:        "Full",
				Description: "Every available column",
				Columns: []string{
					"model_id", "model_name", "owner", "business_line", "risk_tier",
					"status", "last_validation_date", "next_validation_due",
					"regulatory_flags", "in_production", "description",
				},
				IsDefault: true,
			},
		},
		DefaultSort: tableview.SortState{Key: "model_name", Direction: tableview.Asc},
		SortSeeds: map[string]tableview.Direction{
			"last_validation_date": tableview.Desc,
			"next_validation_due":  tableview.Desc,
		},
		ParseFilters: parseModelFilters,
	}, nil
}

func parseModelFilters(values url.Values) []tableview.Predicate {
	predicates := []tableview.Predicate{
		tableview.TextContains(values.Get("q"), "model_id", "model_name", "owner.name", "description"),
		tableview.Membership("business_line", queryList(values, "business_line")),
		tableview.Membership("risk_tier", queryList(values, "risk_tier")),
		tableview.Membership("status", queryList(values, "status")),
		tableview.Toggle(queryBool(values, "in_production_only"), func(row tableview.Row) bool {
			value, ok := tableview.Lookup(row, "in_production")
			b, isBool := value.(bool)
			return ok && isBool && b
		}),
	}

	if !queryBool(values, "include_retired") {
		predicates = append(predicates,
			tableview.HideStatusesUnlessSelected("status", []string{"Retired"}, queryList(values, "status")))
	}

	return predicates
}
