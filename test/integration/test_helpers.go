//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mrm-console/internal/catalog"
	"mrm-console/internal/config"
	"mrm-console/internal/event"
	"mrm-console/internal/handler"
	"mrm-console/internal/middleware"
	"mrm-console/internal/model"
	"mrm-console/internal/router"
	"mrm-console/internal/service"
	"mrm-console/internal/tableview"
	"mrm-console/internal/upstream"
	"mrm-console/internal/websocket"
)

// upstreamFixtures maps upstream paths to the JSON payload the stub serves.
// A nil entry answers 500 so a source can be forced to fail.
type upstreamFixtures map[string]any

func newUpstreamStub(t *testing.T, fixtures upstreamFixtures) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := fixtures[r.URL.Path]
		if !ok || payload == nil {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"fixture unavailable"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	t.Cleanup(server.Close)

	return server
}

type memUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]model.User{}}
}

func (s *memUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok, nil
}

func (s *memUserStore) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Username] = u
	return nil
}

func (s *memUserStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]string{}}
}

func (s *memTokenStore) Store(_ context.Context, token string, userID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return nil
}

func (s *memTokenStore) Validate(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return "", model.ErrTokenNotFound
	}
	return userID, nil
}

func (s *memTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

type memViewStore struct {
	mu    sync.Mutex
	views map[string]tableview.View
	types map[string]string
}

func newMemViewStore() *memViewStore {
	return &memViewStore{views: map[string]tableview.View{}, types: map[string]string{}}
}

func (s *memViewStore) Create(_ context.Context, entityType string, view tableview.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[view.ID] = view.Clone()
	s.types[view.ID] = entityType
	return nil
}

func (s *memViewStore) Update(_ context.Context, view tableview.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[view.ID]; !ok {
		return model.ErrViewNotFound
	}
	s.views[view.ID] = view.Clone()
	return nil
}

func (s *memViewStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[id]; !ok {
		return model.ErrViewNotFound
	}
	delete(s.views, id)
	delete(s.types, id)
	return nil
}

func (s *memViewStore) FindByID(_ context.Context, id string) (tableview.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok := s.views[id]
	if !ok {
		return tableview.View{}, model.ErrViewNotFound
	}
	return view.Clone(), nil
}

func (s *memViewStore) ListForUser(_ context.Context, entityType string, userID string) ([]tableview.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tableview.View, 0)
	for id, view := range s.views {
		if s.types[id] != entityType {
			continue
		}
		if view.OwnerID == userID || view.IsPublic {
			out = append(out, view.Clone())
		}
	}
	return out, nil
}

type memPreferenceStore struct {
	mu    sync.Mutex
	prefs map[string]tableview.Preferences
}

func newMemPreferenceStore() *memPreferenceStore {
	return &memPreferenceStore{prefs: map[string]tableview.Preferences{}}
}

func (s *memPreferenceStore) Load(_ context.Context, userID string, entityType string) (tableview.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, ok := s.prefs[userID+"/"+entityType]
	if !ok {
		return tableview.Preferences{}, model.ErrViewNotFound
	}
	return prefs, nil
}

func (s *memPreferenceStore) Save(_ context.Context, userID string, entityType string, prefs tableview.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID+"/"+entityType] = prefs
	return nil
}

func (s *memPreferenceStore) ClearCurrentView(_ context.Context, viewID string, fallbackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, prefs := range s.prefs {
		if prefs.CurrentViewID == viewID {
			prefs.CurrentViewID = fallbackID
			s.prefs[key] = prefs
		}
	}
	return nil
}

// newTestServer wires the full router against in-memory stores and the given
// upstream stub, seeds the admin account and returns a logged-in token pair.
func newTestServer(t *testing.T, fixtures upstreamFixtures) (*httptest.Server, string, string) {
	t.Helper()

	upstreamServer := newUpstreamStub(t, fixtures)

	tables, err := catalog.New()
	require.NoError(t, err)

	authService, err := service.NewAuthService("test-secret", 15*time.Minute, 24*time.Hour, newMemUserStore(), newMemTokenStore())
	require.NoError(t, err)
	require.NoError(t, authService.SeedDefaultAdmin(context.Background(), "admin123"))

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run()

	client := upstream.NewClient(upstreamServer.URL, "service-token", 5*time.Second)
	viewService := service.NewViewService(tables, newMemViewStore(), newMemPreferenceStore(), bus)
	viewHandler := handler.NewViewHandler(viewService)
	tableService := service.NewTableService(tables, client, viewService)
	tableHandler := handler.NewTableHandler(tableService)

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		JWTSecret:        "test-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    24 * time.Hour,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	server := httptest.NewServer(router.New(cfg, authMiddleware, authHandler, tableHandler, viewHandler, hub))
	t.Cleanup(server.Close)

	loginPayload := map[string]string{"username": "admin", "password": "admin123"}
	body, err := json.Marshal(loginPayload)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.True(t, parsed.Success)
	require.NotEmpty(t, parsed.Data.AccessToken)
	require.NotEmpty(t, parsed.Data.RefreshToken)

	return server, parsed.Data.AccessToken, parsed.Data.RefreshToken
}

func newAuthRequest(t *testing.T, method string, url string, body []byte, accessToken string) *http.Request {
	t.Helper()

	var payloadReader *bytes.Reader
	if body == nil {
		payloadReader = bytes.NewReader([]byte{})
	} else {
		payloadReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, payloadReader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}

func doRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func doAuthJSONRequest(t *testing.T, method string, url string, body []byte, accessToken string) *http.Response {
	t.Helper()

	req := newAuthRequest(t, method, url, body, accessToken)
	return doRequest(t, req)
}

func doAuthRequest(t *testing.T, method string, url string, accessToken string) *http.Response {
	t.Helper()

	req := newAuthRequest(t, method, url, nil, accessToken)
	return doRequest(t, req)
}

func mustNewRequest(t *testing.T, method string, url string, body []byte) *http.Request {
	t.Helper()

	var payloadReader *bytes.Reader
	if body == nil {
		payloadReader = bytes.NewReader([]byte{})
	} else {
		payloadReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, payloadReader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}

func decodeData(t *testing.T, resp *http.Response, target any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, target))
}
