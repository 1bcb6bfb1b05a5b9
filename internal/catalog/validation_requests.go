package catalog

import (
	"net/url"

	"mrm-console/internal/tableview"
)

// Statuses that are terminal for a validation request. Hidden from list views
// unless the caller filters for them explicitly.
var terminalRequestStatuses = []string{"Cancelled", "Rejected"}

func newValidationRequestsTable() (*Table, error) {
	definitions := []tableview.ColumnDefinition{
		{Key: "request_id", Label: "Request ID", Default: true},
		{Key: "model_name", Label: "Model", Default: true},
		{Key: "model_owner", Label: "Model Owner", Default: false},
		{Key: "validation_type", Label: "Validation Type", Default: true},
		{Key: "status", Label: "Status", Default: true},
		{Key: "priority", Label: "Priority", Default: false},
		{Key: "validator", Label: "Assigned Validator", Default: true},
		{Key: "submitted_date", Label: "Submitted", Default: true},
		{Key: "target_date", Label: "Target Date", Default: false},
		{Key: "days_pending", Label: "Days Pending", Default: true},
		{Key: "regulatory_flags", Label: "Regulatory Flags", Default: false},
		{Key: "comments", Label: "Comments", Default: false},
	}

	renderers := map[string]tableview.ColumnRenderer{
		"request_id":       textColumn("Request ID", "request_id"),
		"model_name":       textColumn("Model", "model.model_name"),
		"model_owner":      textColumn("Model Owner", "model.owner.name"),
		"validation_type":  textColumn("Validation Type", "validation_type"),
		"status":           textColumn("Status", "status"),
		"priority":         textColumn("Priority", "priority"),
		"validator":        textColumn("Assigned Validator", "validator.name"),
		"submitted_date":   dateColumn("Submitted", "submitted_date"),
		"target_date":      dateColumn("Target Date", "target_date"),
		"days_pending":     textColumn("Days Pending", "days_pending"),
		"regulatory_flags": listColumn("Regulatory Flags", "regulatory_flags"),
		"comments":         unsortableTextColumn("Comments", "comments"),
	}

	registry, err := tableview.NewRegistry(definitions, renderers)
	if err != nil {
		return nil, err
	}

	return &Table{
		Entity:       "validation_requests",
		UpstreamPath: "/validation-workflow/requests/",
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
				Description: "Just enough to triage the queue",
				Columns:     []string{"request_id", "model_name", "status", "days_pending"},
				IsDefault:   true,
			},
			{
				ID:          "full",
				Name:        "Full",
				Description: "Every available column",
				Columns: []string{
					"request_id", "model_name", "model_owner", "validation_type",
					"status", "priority", "validator", "submitted_date",
					"target_date", "days_pending", "regulatory_flags", "comments",
				},
				IsDefault: true,
			},
		},
		DefaultSort: tableview.SortState{Key: "days_pending", Direction: tableview.Desc},
		SortSeeds: map[string]tableview.Direction{
			"days_pending":   tableview.Desc,
			"submitted_date": tableview.Desc,
			"target_date":    tableview.Desc,
		},
		ParseFilters: parseValidationRequestFilters,
	}, nil
}

func parseValidationRequestFilters(values url.Values) []tableview.Predicate {
	statuses := queryList(values, "status")

	predicates := []tableview.Predicate{
		tableview.TextContains(values.Get("q"),
			"request_id", "model.model_name", "model.owner.name", "validator.name"),
		tableview.Membership("status", statuses),
		tableview.Membership("validation_type", queryList(values, "validation_type")),
		tableview.Membership("priority", queryList(values, "priority")),
		tableview.Toggle(queryBool(values, "pending_assignment"), func(row tableview.Row) bool {
			_, assigned := tableview.Lookup(row, "validator.name")
			return !assigned
		}),
	}

	if min, ok := queryFloat(values, "min_days_pending"); ok {
		predicates = append(predicates, tableview.MinThreshold("days_pending", min))
	}

	// include_cancelled suppresses the default hide entirely; an explicit
	// status selection overrides it per status.
	if !queryBool(values, "include_cancelled") {
		predicates = append(predicates,
			tableview.HideStatusesUnlessSelected("status", terminalRequestStatuses, statuses))
	}

	return predicates
}
