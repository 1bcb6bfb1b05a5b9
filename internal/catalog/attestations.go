package catalog

import (
	"net/url"

	"mrm-console/internal/tableview"
)

func newAttestationsTable() (*Table, error) {
	definitions := []tableview.ColumnDefinition{
		{Key: "attestation_id", Label: "Attestation ID", Default: true},
		{Key: "model_name", Label: "Model", Default: true},
		{Key: "period", Label: "Period", Default: true},
		{Key: "attester", Label: "Attester", Default: true},
		{Key: "status", Label: "Status", Default: true},
		{Key: "due_date", Label: "Due Date", Default: true},
		{Key: "days_overdue", Label: "Days Overdue", Default: false},
		{Key: "completed_date", Label: "Completed", Default: false},
		{Key: "exceptions", Label: "Exceptions", Default: false},
	}

	renderers := map[string]tableview.ColumnRenderer{
		"attestation_id": textColumn("Attestation ID", "attestation_id"),
		"model_name":     textColumn("Model", "model.model_name"),
		"period":         textColumn("Period", "period"),
		"attester":       textColumn("Attester", "attester.name"),
		"status":         textColumn("Status", "status"),
		"due_date":       dateColumn("Due Date", "due_date"),
		"days_overdue":   textColumn("Days Overdue", "days_overdue"),
		"completed_date": dateColumn("Completed", "completed_date"),
		"exceptions":     listColumn("Exceptions", "exceptions"),
	}

	registry, err := tableview.NewRegistry(definitions, renderers)
	if err != nil {
		return nil, err
	}

	return &Table{
		Entity:       "attestations",
		UpstreamPath: "/attestations/",
		Registry:     registry,
		BuiltinViews: []tableview.View{
			{
				ID:        "default",
				Name:      "Default",
				Columns:   registry.DefaultColumns(),
				IsDefault: true,
			},
			{
				ID:          "overdue",
				Name:        "Overdue",
				Description: "Ordered for chasing late attesters",
				Columns:     []string{"attestation_id", "model_name", "attester", "due_date", "days_overdue"},
				IsDefault:   true,
			},
		},
		DefaultSort: tableview.SortState{Key: "due_date", Direction: tableview.Asc},
		SortSeeds: map[string]tableview.Direction{
			"days_overdue":   tableview.Desc,
			"completed_date": tableview.Desc,
		},
		ParseFilters: parseAttestationFilters,
	}, nil
}

func parseAttestationFilters(values url.Values) []tableview.Predicate {
	predicates := []tableview.Predicate{
		tableview.TextContains(values.Get("q"), "attestation_id", "model.model_name", "attester.name"),
		tableview.Membership("status", queryList(values, "status")),
		tableview.Membership("period", queryList(values, "period")),
		tableview.Toggle(queryBool(values, "overdue_only"), tableview.MinThreshold("days_overdue", 1)),
	}

	if min, ok := queryFloat(values, "min_days_overdue"); ok {
		predicates = append(predicates, tableview.MinThreshold("days_overdue", min))
	}

	return predicates
}
