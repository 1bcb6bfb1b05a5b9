package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mrm-console/internal/model"
	"mrm-console/internal/tableview"
)

// PreferenceRepository stores the active view id and ad-hoc column selection
// per (user, entity type).
type PreferenceRepository struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepository(pool *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{pool: pool}
}

func (r *PreferenceRepository) Load(ctx context.Context, userID string, entityType string) (tableview.Preferences, error) {
	var prefs tableview.Preferences
	err := r.pool.QueryRow(ctx,
		`SELECT current_view_id, selected_columns
		 FROM view_preferences
		 WHERE user_id = $1 AND entity_type = $2`, userID, entityType).
		Scan(&prefs.CurrentViewID, &prefs.SelectedColumns)

	if errors.Is(err, pgx.ErrNoRows) {
		return tableview.Preferences{}, model.ErrViewNotFound
	}
	if err != nil {
		return tableview.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return prefs, nil
}

// Save upserts the preference row. Two tabs writing at once settle
// last-write-wins; there is no stronger guarantee to give.
func (r *PreferenceRepository) Save(ctx context.Context, userID string, entityType string, prefs tableview.Preferences) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO view_preferences (user_id, entity_type, current_view_id, selected_columns, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (user_id, entity_type)
		 DO UPDATE SET current_view_id = $3, selected_columns = $4, updated_at = now()`,
		userID, entityType, prefs.CurrentViewID, prefs.SelectedColumns)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// ClearCurrentView resets every preference row pointing at a deleted view
// back to the given fallback view id.
func (r *PreferenceRepository) ClearCurrentView(ctx context.Context, viewID string, fallbackID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE view_preferences SET current_view_id = $2, updated_at = now()
		 WHERE current_view_id = $1`, viewID, fallbackID)
	if err != nil {
		return fmt.Errorf("clear current view: %w", err)
	}
	return nil
}
