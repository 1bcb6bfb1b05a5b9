//go:build integration

package integration

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func requestFixtures() upstreamFixtures {
	return upstreamFixtures{
		"/validation-workflow/requests/": []map[string]any{
			{"request_id": "VR-1", "status": "Intake", "days_pending": 12,
				"model": map[string]any{"model_name": "Credit PD"}},
			{"request_id": "VR-2", "status": "Cancelled", "days_pending": 30,
				"model": map[string]any{"model_name": "Legacy LGD"}},
			{"request_id": "VR-3", "status": "In Progress", "days_pending": 4,
				"model":     map[string]any{"model_name": "Market VaR"},
				"validator": map[string]any{"name": "j.doe"}},
		},
	}
}

type tableRowsData struct {
	Entity  string `json:"entity"`
	Columns []struct {
		Key       string `json:"key"`
		Header    string `json:"header"`
		Indicator string `json:"indicator"`
	} `json:"columns"`
	Rows []struct {
		Cells map[string]string `json:"cells"`
	} `json:"rows"`
	ViewID string `json:"view_id"`
}

func TestTableRows(t *testing.T) {
	server, accessToken, _ := newTestServer(t, requestFixtures())

	t.Run("default render hides terminal statuses and sorts by days pending", func(t *testing.T) {
		resp := doAuthRequest(t, http.MethodGet, server.URL+"/api/v1/tables/validation_requests/rows", accessToken)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data tableRowsData
		decodeData(t, resp, &data)

		require.Equal(t, "validation_requests", data.Entity)
		require.Len(t, data.Rows, 2)
		require.Equal(t, "VR-1", data.Rows[0].Cells["request_id"])
		require.Equal(t, "VR-3", data.Rows[1].Cells["request_id"])
	})

	t.Run("explicit status filter shows a cancelled request", func(t *testing.T) {
		resp := doAuthRequest(t, http.MethodGet,
			server.URL+"/api/v1/tables/validation_requests/rows?status=Cancelled", accessToken)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data tableRowsData
		decodeData(t, resp, &data)
		require.Len(t, data.Rows, 1)
		require.Equal(t, "VR-2", data.Rows[0].Cells["request_id"])
	})

	t.Run("sort query flips the indicator", func(t *testing.T) {
		resp := doAuthRequest(t, http.MethodGet,
			server.URL+"/api/v1/tables/validation_requests/rows?sort_by=days_pending&order=asc", accessToken)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data tableRowsData
		decodeData(t, resp, &data)
		require.Equal(t, "VR-3", data.Rows[0].Cells["request_id"])
	})

	t.Run("unknown entity answers 404", func(t *testing.T) {
		resp := doAuthRequest(t, http.MethodGet, server.URL+"/api/v1/tables/widgets/rows", accessToken)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTableExport(t *testing.T) {
	server, accessToken, _ := newTestServer(t, requestFixtures())

	t.Run("exports csv with attachment headers", func(t *testing.T) {
		resp := doAuthRequest(t, http.MethodGet,
			server.URL+"/api/v1/tables/validation_requests/export?view=compact", accessToken)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
		require.Contains(t, resp.Header.Get("Content-Disposition"), "validation_requests_")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		require.Equal(t, "Request ID,Model,Status,Days Pending", strings.TrimSpace(lines[0]))
		require.Len(t, lines, 3)
	})

	t.Run("nothing to export answers 409", func(t *testing.T) {
		resp := doAuthRequest(t, http.MethodGet,
			server.URL+"/api/v1/tables/validation_requests/export?q=no-such-model", accessToken)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestDashboardSurvivesFailingSource(t *testing.T) {
	fixtures := requestFixtures()
	fixtures["/models/"] = []map[string]any{{"model_id": "M-1"}}
	fixtures["/attestations/"] = nil
	fixtures["/auth/users"] = []map[string]any{}

	server, accessToken, _ := newTestServer(t, fixtures)

	resp := doAuthRequest(t, http.MethodGet, server.URL+"/api/v1/dashboard", accessToken)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Sources map[string]struct {
			Count int    `json:"count"`
			Error string `json:"error"`
		} `json:"sources"`
	}
	decodeData(t, resp, &data)

	require.Equal(t, 3, data.Sources["validation_requests"].Count)
	require.Equal(t, 1, data.Sources["models"].Count)
	require.NotEmpty(t, data.Sources["attestations"].Error)
	require.Empty(t, data.Sources["users"].Error)
}
