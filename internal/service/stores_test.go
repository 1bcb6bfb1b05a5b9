package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"mrm-console/internal/model"
	"mrm-console/internal/tableview"
	"mrm-console/pkg/apierror"
)

// In-memory stores used across the service tests. failNext* flags simulate a
// broken backing store for the degraded-mode paths.

type memViewStore struct {
	mu       sync.Mutex
	views    map[string]tableview.View
	entities map[string]string
	fail     bool
}

func newMemViewStore() *memViewStore {
	return &memViewStore{views: map[string]tableview.View{}, entities: map[string]string{}}
}

func (s *memViewStore) Create(_ context.Context, entityType string, view tableview.View) error {
	if s.fail {
		return errors.New("view store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[view.ID] = view.Clone()
	s.entities[view.ID] = entityType
	return nil
}

func (s *memViewStore) Update(_ context.Context, view tableview.View) error {
	if s.fail {
		return errors.New("view store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[view.ID]; !ok {
		return apierror.New("NOT_FOUND", "view not found", view.ID, http.StatusNotFound)
	}
	s.views[view.ID] = view.Clone()
	return nil
}

func (s *memViewStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[id]; !ok {
		return apierror.New("NOT_FOUND", "view not found", id, http.StatusNotFound)
	}
	delete(s.views, id)
	delete(s.entities, id)
	return nil
}

func (s *memViewStore) FindByID(_ context.Context, id string) (tableview.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok := s.views[id]
	if !ok {
		return tableview.View{}, apierror.New("NOT_FOUND", "view not found", id, http.StatusNotFound)
	}
	return view.Clone(), nil
}

func (s *memViewStore) ListForUser(_ context.Context, entityType string, userID string) ([]tableview.View, error) {
	if s.fail {
		return nil, errors.New("view store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]tableview.View, 0)
	for id, view := range s.views {
		if s.entities[id] != entityType {
			continue
		}
		if view.OwnerID == userID || view.IsPublic {
			out = append(out, view.Clone())
		}
	}
	return out, nil
}

type memPreferenceStore struct {
	mu       sync.Mutex
	prefs    map[string]tableview.Preferences
	failRead bool
	failSave bool
}

func newMemPreferenceStore() *memPreferenceStore {
	return &memPreferenceStore{prefs: map[string]tableview.Preferences{}}
}

func prefKey(userID string, entityType string) string {
	return userID + "/" + entityType
}

func (s *memPreferenceStore) Load(_ context.Context, userID string, entityType string) (tableview.Preferences, error) {
	if s.failRead {
		return tableview.Preferences{}, errors.New("preference store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, ok := s.prefs[prefKey(userID, entityType)]
	if !ok {
		return tableview.Preferences{}, model.ErrViewNotFound
	}
	return prefs, nil
}

func (s *memPreferenceStore) Save(_ context.Context, userID string, entityType string, prefs tableview.Preferences) error {
	if s.failSave {
		return errors.New("preference store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[prefKey(userID, entityType)] = prefs
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
	return model.User{}, apierror.New("NOT_FOUND", "user not found", id, http.StatusNotFound)
}

func (s *memUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return model.User{}, apierror.New("NOT_FOUND", "user not found", username, http.StatusNotFound)
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
