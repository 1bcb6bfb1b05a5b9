package tableview

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func csvColumns(t *testing.T) []ProjectedColumn {
	t.Helper()

	definitions := []ColumnDefinition{
		{Key: "name", Label: "Name", Default: true},
		{Key: "comment", Label: "Comment", Default: true},
	}
	renderers := map[string]ColumnRenderer{
		"name": {
			Header:   "Name",
			SortKey:  "name",
			Cell:     func(row Row) string { return StringAt(row, "name") },
			CSVValue: func(row Row) string { return StringAt(row, "name") },
		},
		"comment": {
			Header:   "Comment",
			Cell:     func(row Row) string { return StringAt(row, "comment") },
			CSVValue: func(row Row) string { return StringAt(row, "comment") },
		},
	}

	registry, err := NewRegistry(definitions, renderers)
	require.NoError(t, err)
	return registry.Project([]string{"name", "comment"})
}

func TestBuildCSV(t *testing.T) {
	t.Parallel()

	t.Run("quotes embedded commas and doubles embedded quotes", func(t *testing.T) {
		rows := []Row{{"name": "Credit PD", "comment": `He said "hi", twice`}}

		out, err := BuildCSV(csvColumns(t), rows)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		require.Equal(t, "Name,Comment", lines[0])
		require.Equal(t, `Credit PD,"He said ""hi"", twice"`, lines[1])
	})

	t.Run("round-trips through a csv parser", func(t *testing.T) {
		rows := []Row{
			{"name": "a,b", "comment": "line\nbreak"},
			{"name": `quote"inside`, "comment": "plain"},
		}

		out, err := BuildCSV(csvColumns(t), rows)
		require.NoError(t, err)

		parsed, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		require.NoError(t, err)
		require.Len(t, parsed, 3)
		require.Equal(t, []string{"a,b", "line\nbreak"}, parsed[1])
		require.Equal(t, []string{`quote"inside`, "plain"}, parsed[2])
	})

	t.Run("refuses zero rows", func(t *testing.T) {
		_, err := BuildCSV(csvColumns(t), nil)
		require.ErrorIs(t, err, ErrNothingToExport)
	})

	t.Run("refuses zero columns", func(t *testing.T) {
		_, err := BuildCSV(nil, []Row{{"name": "x"}})
		require.ErrorIs(t, err, ErrNothingToExport)
	})
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	require.Equal(t, "validation_requests_2026-08-30.csv", ExportFilename("validation_requests", at))
	require.Equal(t, "export_2026-08-30.csv", ExportFilename("  ", at))
}
