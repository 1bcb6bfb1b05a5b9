//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type viewData struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Columns   []string `json:"columns"`
	IsDefault bool     `json:"is_default"`
}

type preferencesData struct {
	Entity      string `json:"entity"`
	Preferences struct {
		SelectedColumns []string `json:"selected_columns"`
		CurrentViewID   string   `json:"current_view_id"`
	} `json:"preferences"`
	Degraded bool `json:"degraded"`
}

func TestSavedViewLifecycle(t *testing.T) {
	server, accessToken, _ := newTestServer(t, requestFixtures())
	base := server.URL + "/api/v1/tables/validation_requests"

	listResp := doAuthRequest(t, http.MethodGet, base+"/views", accessToken)
	t.Cleanup(func() { _ = listResp.Body.Close() })
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var listed struct {
		Views []viewData `json:"views"`
	}
	decodeData(t, listResp, &listed)
	require.Len(t, listed.Views, 3)
	for _, view := range listed.Views {
		require.True(t, view.IsDefault)
	}

	createPayload, err := json.Marshal(map[string]any{
		"name":    "Triage",
		"columns": []string{"request_id", "status", "days_pending"},
	})
	require.NoError(t, err)

	createResp := doAuthJSONRequest(t, http.MethodPost, base+"/views", createPayload, accessToken)
	t.Cleanup(func() { _ = createResp.Body.Close() })
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	var created viewData
	decodeData(t, createResp, &created)
	require.NotEmpty(t, created.ID)
	require.False(t, created.IsDefault)

	// A freshly saved view becomes the caller's current view.
	prefsResp := doAuthRequest(t, http.MethodGet, base+"/preferences", accessToken)
	t.Cleanup(func() { _ = prefsResp.Body.Close() })
	require.Equal(t, http.StatusOK, prefsResp.StatusCode)

	var prefs preferencesData
	decodeData(t, prefsResp, &prefs)
	require.Equal(t, created.ID, prefs.Preferences.CurrentViewID)
	require.Equal(t, []string{"request_id", "status", "days_pending"}, prefs.Preferences.SelectedColumns)

	deleteResp := doAuthRequest(t, http.MethodDelete, base+"/views/"+created.ID, accessToken)
	t.Cleanup(func() { _ = deleteResp.Body.Close() })
	require.Equal(t, http.StatusOK, deleteResp.StatusCode)

	// Deleting the current view falls the preference back to the default.
	afterResp := doAuthRequest(t, http.MethodGet, base+"/preferences", accessToken)
	t.Cleanup(func() { _ = afterResp.Body.Close() })
	require.Equal(t, http.StatusOK, afterResp.StatusCode)

	var after preferencesData
	decodeData(t, afterResp, &after)
	require.Equal(t, "default", after.Preferences.CurrentViewID)
}

func TestBuiltinViewsAreImmutable(t *testing.T) {
	server, accessToken, _ := newTestServer(t, requestFixtures())
	base := server.URL + "/api/v1/tables/validation_requests"

	updatePayload, err := json.Marshal(map[string]any{
		"name":    "Hijacked",
		"columns": []string{"request_id"},
	})
	require.NoError(t, err)

	updateResp := doAuthJSONRequest(t, http.MethodPut, base+"/views/compact", updatePayload, accessToken)
	t.Cleanup(func() { _ = updateResp.Body.Close() })
	require.Equal(t, http.StatusForbidden, updateResp.StatusCode)

	deleteResp := doAuthRequest(t, http.MethodDelete, base+"/views/compact", accessToken)
	t.Cleanup(func() { _ = deleteResp.Body.Close() })
	require.Equal(t, http.StatusForbidden, deleteResp.StatusCode)
}

func TestPreferencesRoundTrip(t *testing.T) {
	server, accessToken, _ := newTestServer(t, requestFixtures())
	base := server.URL + "/api/v1/tables/validation_requests"

	updatePayload, err := json.Marshal(map[string]any{
		"selected_columns": []string{"request_id", "model_name"},
		"current_view_id":  "compact",
	})
	require.NoError(t, err)

	updateResp := doAuthJSONRequest(t, http.MethodPut, base+"/preferences", updatePayload, accessToken)
	t.Cleanup(func() { _ = updateResp.Body.Close() })
	require.Equal(t, http.StatusOK, updateResp.StatusCode)

	activateResp := doAuthJSONRequest(t, http.MethodPost, base+"/views/compact/activate", nil, accessToken)
	t.Cleanup(func() { _ = activateResp.Body.Close() })
	require.Equal(t, http.StatusOK, activateResp.StatusCode)

	var prefs preferencesData
	decodeData(t, activateResp, &prefs)
	require.Equal(t, "compact", prefs.Preferences.CurrentViewID)
	require.Equal(t, []string{"request_id", "model_name", "status", "days_pending"}, prefs.Preferences.SelectedColumns)

	rejectPayload, err := json.Marshal(map[string]any{
		"selected_columns": []string{"request_id", "no_such_column"},
	})
	require.NoError(t, err)

	rejectResp := doAuthJSONRequest(t, http.MethodPut, base+"/preferences", rejectPayload, accessToken)
	t.Cleanup(func() { _ = rejectResp.Body.Close() })
	require.Equal(t, http.StatusBadRequest, rejectResp.StatusCode)
}
