package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mrm-console/internal/tableview"
	"mrm-console/pkg/apierror"
)

// ViewRepository persists user-created views. Built-in views never touch the
// database; they live in the catalog.
type ViewRepository struct {
	pool *pgxpool.Pool
}

func NewViewRepository(pool *pgxpool.Pool) *ViewRepository {
	return &ViewRepository{pool: pool}
}

func (r *ViewRepository) Create(ctx context.Context, entityType string, view tableview.View) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO views (id, entity_type, owner_id, name, description, columns, is_public, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`,
		view.ID, entityType, view.OwnerID, view.Name, view.Description, view.Columns, view.IsPublic)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}
	return nil
}

// Update overwrites a view row wholesale. Concurrent saves are last-write-wins
// at the granularity of one view record.
func (r *ViewRepository) Update(ctx context.Context, view tableview.View) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE views SET name = $2, description = $3, columns = $4, is_public = $5, updated_at = now()
		 WHERE id = $1`,
		view.ID, view.Name, view.Description, view.Columns, view.IsPublic)
	if err != nil {
		return fmt.Errorf("update view: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.New("NOT_FOUND", "view not found", view.ID, http.StatusNotFound)
	}
	return nil
}

func (r *ViewRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM views WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete view: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.New("NOT_FOUND", "view not found", id, http.StatusNotFound)
	}
	return nil
}

func (r *ViewRepository) FindByID(ctx context.Context, id string) (tableview.View, error) {
	var view tableview.View
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, columns, is_public, owner_id, updated_at
		 FROM views WHERE id = $1`, id).
		Scan(&view.ID, &view.Name, &view.Description, &view.Columns, &view.IsPublic,
			&view.OwnerID, &view.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return tableview.View{}, apierror.New("NOT_FOUND", "view not found", id, http.StatusNotFound)
	}
	if err != nil {
		return tableview.View{}, fmt.Errorf("find view by id: %w", err)
	}
	return view, nil
}

// ListForUser returns the user's own views plus public views shared by
// others for the entity type, own views first.
func (r *ViewRepository) ListForUser(ctx context.Context, entityType string, userID string) ([]tableview.View, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, columns, is_public, owner_id, updated_at
		 FROM views
		 WHERE entity_type = $1 AND (owner_id = $2 OR is_public)
		 ORDER BY owner_id = $2 DESC, lower(name)`, entityType, userID)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	defer rows.Close()

	views := make([]tableview.View, 0)
	for rows.Next() {
		var view tableview.View
		if err := rows.Scan(&view.ID, &view.Name, &view.Description, &view.Columns,
			&view.IsPublic, &view.OwnerID, &view.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan view: %w", err)
		}
		views = append(views, view)
	}
	return views, rows.Err()
}
