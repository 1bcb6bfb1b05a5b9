package tableview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func daysPendingRows() []Row {
	return []Row{
		{"id": "a", "days_pending": float64(10)},
		{"id": "b", "days_pending": float64(2)},
		{"id": "c", "days_pending": float64(7)},
		{"id": "d", "days_pending": float64(7)},
		{"id": "e", "days_pending": float64(0)},
	}
}

func rowIDs(rows []Row) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, StringAt(row, "id"))
	}
	return ids
}

func TestSorter(t *testing.T) {
	t.Parallel()

	t.Run("sorts descending with stable ties", func(t *testing.T) {
		sorter := NewSorter("days_pending", Desc)
		sorted := sorter.Sorted(daysPendingRows())

		// The two 7s keep their original relative order.
		require.Equal(t, []string{"a", "c", "d", "b", "e"}, rowIDs(sorted))
	})

	t.Run("is idempotent under re-application", func(t *testing.T) {
		sorter := NewSorter("days_pending", Desc)
		once := sorter.Sorted(daysPendingRows())
		twice := sorter.Sorted(once)

		require.Equal(t, rowIDs(once), rowIDs(twice))
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		rows := daysPendingRows()
		sorter := NewSorter("days_pending", Asc)
		_ = sorter.Sorted(rows)

		require.Equal(t, []string{"a", "b", "c", "d", "e"}, rowIDs(rows))
	})

	t.Run("request on active key flips direction exactly once", func(t *testing.T) {
		sorter := NewSorter("days_pending", Asc)

		sorter.RequestSort("days_pending")
		require.Equal(t, Desc, sorter.State().Direction)

		sorter.RequestSort("days_pending")
		require.Equal(t, Asc, sorter.State().Direction)
	})

	t.Run("request on a new key resets to asc by default", func(t *testing.T) {
		sorter := NewSorter("days_pending", Desc)
		sorter.RequestSort("id")

		require.Equal(t, SortState{Key: "id", Direction: Asc}, sorter.State())
	})

	t.Run("seeded columns open in their seeded direction", func(t *testing.T) {
		sorter := NewSorter("", Asc)
		sorter.SeedDirection("days_pending", Desc)
		sorter.RequestSort("days_pending")

		require.Equal(t, SortState{Key: "days_pending", Direction: Desc}, sorter.State())
	})

	t.Run("sorts nested paths case-insensitively", func(t *testing.T) {
		rows := []Row{
			{"id": "a", "model": map[string]any{"model_name": "zeta"}},
			{"id": "b", "model": map[string]any{"model_name": "Alpha"}},
			{"id": "c", "model": map[string]any{"model_name": "beta"}},
		}

		sorter := NewSorter("model.model_name", Asc)
		require.Equal(t, []string{"b", "c", "a"}, rowIDs(sorter.Sorted(rows)))
	})

	t.Run("missing paths never panic and sort last ascending", func(t *testing.T) {
		rows := []Row{
			{"id": "a"},
			{"id": "b", "model": map[string]any{"model_name": "beta"}},
			{"id": "c", "model": map[string]any{"model_name": nil}},
			{"id": "d", "model": map[string]any{"model_name": "alpha"}},
		}

		asc := NewSorter("model.model_name", Asc).Sorted(rows)
		require.Equal(t, []string{"d", "b", "a", "c"}, rowIDs(asc))

		desc := NewSorter("model.model_name", Desc).Sorted(rows)
		require.Equal(t, []string{"a", "c", "b", "d"}, rowIDs(desc))
	})

	t.Run("indicator is tri-state", func(t *testing.T) {
		sorter := NewSorter("days_pending", Desc)

		require.Equal(t, IndicatorDesc, sorter.Indicator("days_pending"))
		require.Equal(t, IndicatorNone, sorter.Indicator("id"))

		sorter.RequestSort("days_pending")
		require.Equal(t, IndicatorAsc, sorter.Indicator("days_pending"))
	})
}

func TestLookup(t *testing.T) {
	t.Parallel()

	t.Run("walks nested objects", func(t *testing.T) {
		row := Row{"model": map[string]any{"owner": map[string]any{"name": "Risk"}}}

		value, ok := Lookup(row, "model.owner.name")
		require.True(t, ok)
		require.Equal(t, "Risk", value)
	})

	t.Run("top-level leaves report presence", func(t *testing.T) {
		row := Row{"status": "Intake"}

		value, ok := Lookup(row, "status")
		require.True(t, ok)
		require.Equal(t, "Intake", value)
	})

	t.Run("missing intermediates are absent, not errors", func(t *testing.T) {
		row := Row{"model": map[string]any{}}

		_, ok := Lookup(row, "model.owner.name")
		require.False(t, ok)

		_, ok = Lookup(row, "model.owner")
		require.False(t, ok)
	})

	t.Run("scalar intermediates stop the walk", func(t *testing.T) {
		row := Row{"model": "not-an-object"}

		_, ok := Lookup(row, "model.name")
		require.False(t, ok)
	})

	t.Run("null leaves count as absent", func(t *testing.T) {
		row := Row{"status": nil}

		_, ok := Lookup(row, "status")
		require.False(t, ok)
	})
}
