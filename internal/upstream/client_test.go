package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mrm-console/pkg/apierror"
)

func TestFetchRows(t *testing.T) {
	t.Parallel()

	t.Run("decodes a bare JSON array", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/validation-workflow/requests/", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"request_id":"VR-1","status":"Intake"}]`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "", time.Second)
		rows, err := client.FetchRows(context.Background(), "/validation-workflow/requests/", nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, "VR-1", rows[0]["request_id"])
	})

	t.Run("decodes a results wrapper", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results":[{"model_id":"M-9"}]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "", time.Second)
		rows, err := client.FetchRows(context.Background(), "/models/", nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})

	t.Run("maps upstream detail onto the api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"detail":"validator role required"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "", time.Second)
		_, err := client.FetchRows(context.Background(), "/validation-workflow/requests/", nil)
		require.Error(t, err)

		var apiErr *apierror.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusForbidden, apiErr.HTTPStatus)
		require.Equal(t, "validator role required", apiErr.Details)
	})

	t.Run("sends the service token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "svc-token", time.Second)
		_, err := client.FetchRows(context.Background(), "/models/", nil)
		require.NoError(t, err)
	})

	t.Run("unreachable upstream is a bad gateway", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "", 200*time.Millisecond)
		_, err := client.FetchRows(context.Background(), "/models/", nil)

		var apiErr *apierror.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusBadGateway, apiErr.HTTPStatus)
	})
}

func TestFetchAll(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models/":
			_, _ = w.Write([]byte(`[{"model_id":"M-1"},{"model_id":"M-2"}]`))
		case "/attestations/":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"attestation store offline"}`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	results := client.FetchAll(context.Background(), []Source{
		{Name: "models", Path: "/models/"},
		{Name: "attestations", Path: "/attestations/"},
		{Name: "requests", Path: "/validation-workflow/requests/"},
	})

	require.Len(t, results, 3)
	require.NoError(t, results["models"].Err)
	require.Len(t, results["models"].Rows, 2)

	// One failing source never hides the others.
	require.Error(t, results["attestations"].Err)
	require.NoError(t, results["requests"].Err)
	require.Empty(t, results["requests"].Rows)
}

func TestLatest(t *testing.T) {
	t.Parallel()

	guard := NewLatest()

	first := guard.Begin("validation_requests")
	second := guard.Begin("validation_requests")
	other := guard.Begin("models")

	// Only the newest ticket per key wins; older in-flight responses are stale.
	require.False(t, guard.Accept("validation_requests", first))
	require.True(t, guard.Accept("validation_requests", second))
	require.True(t, guard.Accept("models", other))

	third := guard.Begin("validation_requests")
	require.False(t, guard.Accept("validation_requests", second))
	require.True(t, guard.Accept("validation_requests", third))
}
