package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"mrm-console/internal/catalog"
	"mrm-console/internal/event"
	"mrm-console/internal/model"
	"mrm-console/internal/tableview"
	"mrm-console/pkg/apierror"
)

type ViewStore interface {
	Create(ctx context.Context, entityType string, view tableview.View) error
	Update(ctx context.Context, view tableview.View) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (tableview.View, error)
	ListForUser(ctx context.Context, entityType string, userID string) ([]tableview.View, error)
}

type PreferenceStore interface {
	Load(ctx context.Context, userID string, entityType string) (tableview.Preferences, error)
	Save(ctx context.Context, userID string, entityType string, prefs tableview.Preferences) error
	ClearCurrentView(ctx context.Context, viewID string, fallbackID string) error
}

// ViewService owns saved views and per-user column preferences. Built-in
// views come from the catalog and are immutable; everything else lives in the
// stores. Store failures degrade to catalog defaults rather than failing the
// page.
type ViewService struct {
	catalog *catalog.Catalog
	views   ViewStore
	prefs   PreferenceStore
	bus     event.Bus
}

func NewViewService(c *catalog.Catalog, views ViewStore, prefs PreferenceStore, bus event.Bus) *ViewService {
	return &ViewService{catalog: c, views: views, prefs: prefs, bus: bus}
}

func (s *ViewService) table(entity string) (*catalog.Table, error) {
	table, ok := s.catalog.Lookup(entity)
	if !ok {
		return nil, apierror.New("NOT_FOUND", "unknown entity type", entity, http.StatusNotFound)
	}
	return table, nil
}

// ListViews returns built-ins followed by the user's own and shared views.
// A failing view store degrades to built-ins only.
func (s *ViewService) ListViews(ctx context.Context, entity string, userID string) (model.ViewListData, error) {
	table, err := s.table(entity)
	if err != nil {
		return model.ViewListData{}, err
	}

	views := make([]tableview.View, 0, len(table.BuiltinViews))
	for _, view := range table.BuiltinViews {
		views = append(views, view.Clone())
	}

	stored, err := s.views.ListForUser(ctx, table.Entity, userID)
	if err != nil {
		slog.Warn("view store unavailable; serving built-in views only",
			"entity", table.Entity, "error", err)
		return model.ViewListData{Entity: table.Entity, Views: views}, nil
	}

	return model.ViewListData{Entity: table.Entity, Views: append(views, stored...)}, nil
}

// SaveView creates a view from the request, or updates the view named by
// editingViewID. Updating requires ownership; built-in ids are never
// writable. A newly created view becomes the user's current view.
func (s *ViewService) SaveView(ctx context.Context, entity string, userID string, editingViewID string, req model.SaveViewRequest) (tableview.View, error) {
	table, err := s.table(entity)
	if err != nil {
		return tableview.View{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return tableview.View{}, apierror.New("BAD_REQUEST", "view name is required", "name", http.StatusBadRequest)
	}

	candidate := tableview.View{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Columns:     append([]string(nil), req.Columns...),
		IsPublic:    req.IsPublic,
		OwnerID:     userID,
	}
	if err := candidate.ValidateColumns(table.Registry); err != nil {
		return tableview.View{}, apierror.New("BAD_REQUEST", "invalid view columns", err.Error(), http.StatusBadRequest)
	}

	if editingViewID != "" {
		return s.updateView(ctx, table, userID, editingViewID, candidate)
	}

	candidate.ID = uuid.NewString()
	if err := s.views.Create(ctx, table.Entity, candidate); err != nil {
		return tableview.View{}, err
	}

	// The saved view becomes current; a preference write failure only costs
	// persistence of that selection, not the save itself.
	prefs := tableview.Preferences{
		SelectedColumns: append([]string(nil), candidate.Columns...),
		CurrentViewID:   candidate.ID,
	}
	if err := s.prefs.Save(ctx, userID, table.Entity, prefs); err != nil {
		slog.Warn("failed to persist preferences after view save",
			"entity", table.Entity, "view_id", candidate.ID, "error", err)
	}

	s.publish(event.TypeViewSaved, table.Entity, userID, candidate)
	return candidate, nil
}

func (s *ViewService) updateView(ctx context.Context, table *catalog.Table, userID string, id string, candidate tableview.View) (tableview.View, error) {
	if _, builtin := tableview.FindView(table.BuiltinViews, id); builtin {
		return tableview.View{}, apierror.New("FORBIDDEN", "built-in views cannot be modified", id, http.StatusForbidden)
	}

	existing, err := s.views.FindByID(ctx, id)
	if err != nil {
		return tableview.View{}, err
	}
	if existing.OwnerID != userID {
		return tableview.View{}, apierror.New("FORBIDDEN", "view is owned by another user", id, http.StatusForbidden)
	}

	candidate.ID = id
	candidate.UpdatedAt = time.Now().UTC()
	if err := s.views.Update(ctx, candidate); err != nil {
		return tableview.View{}, err
	}

	s.publish(event.TypeViewSaved, table.Entity, userID, candidate)
	return candidate, nil
}

func (s *ViewService) DeleteView(ctx context.Context, entity string, userID string, id string) error {
	table, err := s.table(entity)
	if err != nil {
		return err
	}

	if _, builtin := tableview.FindView(table.BuiltinViews, id); builtin {
		return apierror.New("FORBIDDEN", "built-in views cannot be deleted", id, http.StatusForbidden)
	}

	existing, err := s.views.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != userID {
		return apierror.New("FORBIDDEN", "view is owned by another user", id, http.StatusForbidden)
	}

	if err := s.views.Delete(ctx, id); err != nil {
		return err
	}

	// Anyone pointing at the deleted view falls back to the default view.
	if err := s.prefs.ClearCurrentView(ctx, id, table.DefaultView().ID); err != nil {
		slog.Warn("failed to reset preferences after view delete", "view_id", id, "error", err)
	}

	s.publish(event.TypeViewDeleted, table.Entity, userID, existing)
	return nil
}

// GetPreferences loads the user's column selection, seeding from the default
// view on first visit. A failing preference store serves defaults in
// degraded mode instead of blocking the page.
func (s *ViewService) GetPreferences(ctx context.Context, entity string, userID string) (model.PreferencesData, error) {
	table, err := s.table(entity)
	if err != nil {
		return model.PreferencesData{}, err
	}

	prefs, err := s.prefs.Load(ctx, userID, table.Entity)
	switch {
	case err == nil:
		return model.PreferencesData{Entity: table.Entity, Preferences: prefs}, nil
	case errors.Is(err, model.ErrViewNotFound):
		return model.PreferencesData{
			Entity:      table.Entity,
			Preferences: tableview.DefaultPreferences(table.DefaultView()),
		}, nil
	default:
		slog.Warn("preference store unavailable; serving defaults",
			"entity", table.Entity, "error", err)
		return model.PreferencesData{
			Entity:      table.Entity,
			Preferences: tableview.DefaultPreferences(table.DefaultView()),
			Degraded:    true,
		}, nil
	}
}

// UpdatePreferences replaces the stored selection. Unknown column keys are a
// client/config mismatch and rejected; a store write failure degrades to
// in-memory state for the session.
func (s *ViewService) UpdatePreferences(ctx context.Context, entity string, userID string, req model.UpdatePreferencesRequest) (model.PreferencesData, error) {
	table, err := s.table(entity)
	if err != nil {
		return model.PreferencesData{}, err
	}

	probe := tableview.View{Columns: req.SelectedColumns}
	if err := probe.ValidateColumns(table.Registry); err != nil {
		return model.PreferencesData{}, apierror.New("BAD_REQUEST", "invalid column selection", err.Error(), http.StatusBadRequest)
	}

	prefs := tableview.Preferences{
		SelectedColumns: append([]string(nil), req.SelectedColumns...),
		CurrentViewID:   strings.TrimSpace(req.CurrentViewID),
	}
	if prefs.CurrentViewID == "" {
		prefs.CurrentViewID = table.DefaultView().ID
	}

	data := model.PreferencesData{Entity: table.Entity, Preferences: prefs}
	if err := s.prefs.Save(ctx, userID, table.Entity, prefs); err != nil {
		slog.Warn("failed to persist preferences", "entity", table.Entity, "error", err)
		data.Degraded = true
	}

	s.publish(event.TypePreferencesUpdated, table.Entity, userID, prefs)
	return data, nil
}

// ActivateView loads a view's columns into the user's preferences, making it
// the current view. Resolution order: built-in, then stored.
func (s *ViewService) ActivateView(ctx context.Context, entity string, userID string, viewID string) (model.PreferencesData, error) {
	table, err := s.table(entity)
	if err != nil {
		return model.PreferencesData{}, err
	}

	view, err := s.resolveView(ctx, table, userID, viewID)
	if err != nil {
		return model.PreferencesData{}, err
	}

	var prefs tableview.Preferences
	if err := prefs.LoadView([]tableview.View{view}, view.ID); err != nil {
		return model.PreferencesData{}, err
	}

	data := model.PreferencesData{Entity: table.Entity, Preferences: prefs}
	if err := s.prefs.Save(ctx, userID, table.Entity, prefs); err != nil {
		slog.Warn("failed to persist preferences on view load", "entity", table.Entity, "error", err)
		data.Degraded = true
	}

	return data, nil
}

// SelectedColumns resolves the column set for a table request: an explicit
// view takes precedence, otherwise the stored preferences, otherwise the
// default view.
func (s *ViewService) SelectedColumns(ctx context.Context, table *catalog.Table, userID string, explicitViewID string) ([]string, string, error) {
	if explicitViewID != "" {
		view, err := s.resolveView(ctx, table, userID, explicitViewID)
		if err != nil {
			return nil, "", err
		}
		return view.Columns, view.ID, nil
	}

	data, err := s.GetPreferences(ctx, table.Entity, userID)
	if err != nil {
		return nil, "", err
	}
	return data.Preferences.SelectedColumns, data.Preferences.CurrentViewID, nil
}

func (s *ViewService) resolveView(ctx context.Context, table *catalog.Table, userID string, viewID string) (tableview.View, error) {
	if view, ok := tableview.FindView(table.BuiltinViews, viewID); ok {
		return view, nil
	}

	view, err := s.views.FindByID(ctx, viewID)
	if err != nil {
		return tableview.View{}, err
	}
	if view.OwnerID != userID && !view.IsPublic {
		return tableview.View{}, apierror.New("FORBIDDEN", "view is not shared", viewID, http.StatusForbidden)
	}
	return view.Clone(), nil
}

func (s *ViewService) publish(eventType event.Type, entity string, actorID string, payload any) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(event.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityType: entity,
		Payload:    payload,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		ActorID:    actorID,
	})
}
