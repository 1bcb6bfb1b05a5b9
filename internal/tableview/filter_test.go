package tableview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func requestRows() []Row {
	return []Row{
		{"id": "r1", "status": "Intake", "model": map[string]any{"model_name": "Credit PD"}, "days_pending": float64(12)},
		{"id": "r2", "status": "In Progress", "model": map[string]any{"model_name": "Market VaR"}, "days_pending": float64(3)},
		{"id": "r3", "status": "Cancelled", "model": map[string]any{"model_name": "Credit LGD"}, "days_pending": float64(40)},
		{"id": "r4", "status": "Approved", "model": map[string]any{"model_name": "Ops Loss"}},
	}
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	t.Run("chain applies every predicate in sequence", func(t *testing.T) {
		rows := Chain(requestRows(),
			TextContains("credit", "model.model_name"),
			MinThreshold("days_pending", 10),
		)

		require.Equal(t, []string{"r1", "r3"}, rowIDs(rows))
	})

	t.Run("empty text query passes everything", func(t *testing.T) {
		rows := Chain(requestRows(), TextContains("", "model.model_name"))
		require.Len(t, rows, 4)
	})

	t.Run("empty membership set is vacuously true", func(t *testing.T) {
		rows := Chain(requestRows(), Membership("status", nil))
		require.Len(t, rows, 4)
	})

	t.Run("membership matches case-insensitively", func(t *testing.T) {
		rows := Chain(requestRows(), Membership("status", []string{"intake", "APPROVED"}))
		require.Equal(t, []string{"r1", "r4"}, rowIDs(rows))
	})

	t.Run("disabled toggle is a pass-through", func(t *testing.T) {
		rows := Chain(requestRows(), Toggle(false, MinThreshold("days_pending", 100)))
		require.Len(t, rows, 4)
	})

	t.Run("threshold fails rows without a numeric value", func(t *testing.T) {
		rows := Chain(requestRows(), MinThreshold("days_pending", 0))
		require.Equal(t, []string{"r1", "r2", "r3"}, rowIDs(rows))
	})

	t.Run("terminal statuses hide by default", func(t *testing.T) {
		rows := Chain(requestRows(),
			Membership("status", nil),
			HideStatusesUnlessSelected("status", []string{"Cancelled"}, nil),
		)

		require.Equal(t, []string{"r1", "r2", "r4"}, rowIDs(rows))
	})

	t.Run("explicit selection overrides the default hide", func(t *testing.T) {
		selected := []string{"Cancelled"}
		rows := Chain(requestRows(),
			Membership("status", selected),
			HideStatusesUnlessSelected("status", []string{"Cancelled"}, selected),
		)

		require.Equal(t, []string{"r3"}, rowIDs(rows))
	})

	t.Run("nil predicates in a chain are skipped", func(t *testing.T) {
		rows := Chain(requestRows(), nil, TextContains("ops", "model.model_name"))
		require.Equal(t, []string{"r4"}, rowIDs(rows))
	})
}
