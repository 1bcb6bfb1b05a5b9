package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"mrm-console/internal/catalog"
	"mrm-console/internal/model"
	"mrm-console/internal/tableview"
	"mrm-console/internal/upstream"
	"mrm-console/pkg/apierror"
)

type RowFetcher interface {
	FetchRows(ctx context.Context, path string, query url.Values) ([]tableview.Row, error)
	FetchAll(ctx context.Context, sources []upstream.Source) map[string]upstream.SourceResult
}

// TableService runs the table pipeline for every entity type: fetch from
// upstream, filter, sort, project through the active view, paginate or
// export. A stale-response guard keeps an older upstream reply from
// overwriting the per-entity row cache once a newer fetch has started.
type TableService struct {
	catalog *catalog.Catalog
	fetcher RowFetcher
	views   *ViewService
	guard   *upstream.Latest

	mu     sync.RWMutex
	cached map[string][]tableview.Row
}

func NewTableService(c *catalog.Catalog, fetcher RowFetcher, views *ViewService) *TableService {
	return &TableService{
		catalog: c,
		fetcher: fetcher,
		views:   views,
		guard:   upstream.NewLatest(),
		cached:  map[string][]tableview.Row{},
	}
}

// TableQuery is the parsed request state for one table render.
type TableQuery struct {
	Filters url.Values
	SortBy  string
	Order   string
	ViewID  string
	Page    int
	Limit   int
}

// Rows produces one page of the filtered, sorted, projected table.
func (s *TableService) Rows(ctx context.Context, entity string, userID string, query TableQuery) (model.TableData, model.Meta, error) {
	table, ok := s.catalog.Lookup(entity)
	if !ok {
		return model.TableData{}, model.Meta{}, apierror.New("NOT_FOUND", "unknown entity type", entity, http.StatusNotFound)
	}

	rows, err := s.fetch(ctx, table)
	if err != nil {
		return model.TableData{}, model.Meta{}, err
	}

	selected, viewID, err := s.views.SelectedColumns(ctx, table, userID, query.ViewID)
	if err != nil {
		return model.TableData{}, model.Meta{}, err
	}

	filtered := tableview.Chain(rows, table.ParseFilters(query.Filters)...)
	sorter := s.sorter(table, query)
	sorted := sorter.Sorted(filtered)

	page, limit := clampPage(query.Page, query.Limit)
	total := len(sorted)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	projected := table.Registry.Project(selected)

	columns := make([]model.TableColumn, 0, len(projected))
	for _, column := range projected {
		columns = append(columns, model.TableColumn{
			Key:       column.Key,
			Header:    column.Renderer.Header,
			Sortable:  column.Renderer.SortKey != "",
			Indicator: sorter.Indicator(column.Renderer.SortKey),
		})
	}

	outRows := make([]model.TableRow, 0, end-start)
	for _, row := range sorted[start:end] {
		cells := make(map[string]string, len(projected))
		for _, column := range projected {
			cells[column.Key] = column.Renderer.Cell(row)
		}
		outRows = append(outRows, model.TableRow{Cells: cells})
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	data := model.TableData{
		Entity:  table.Entity,
		Columns: columns,
		Rows:    outRows,
		Sort:    sorter.State(),
		ViewID:  viewID,
	}
	meta := model.Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
	return data, meta, nil
}

// Export serializes the full filtered, sorted set as CSV. Nothing to export
// is a refusal, not an empty file.
func (s *TableService) Export(ctx context.Context, entity string, userID string, query TableQuery) (string, string, error) {
	table, ok := s.catalog.Lookup(entity)
	if !ok {
		return "", "", apierror.New("NOT_FOUND", "unknown entity type", entity, http.StatusNotFound)
	}

	rows, err := s.fetch(ctx, table)
	if err != nil {
		return "", "", err
	}

	selected, _, err := s.views.SelectedColumns(ctx, table, userID, query.ViewID)
	if err != nil {
		return "", "", err
	}

	filtered := tableview.Chain(rows, table.ParseFilters(query.Filters)...)
	sorted := s.sorter(table, query).Sorted(filtered)

	csvBody, err := tableview.BuildCSV(table.Registry.Project(selected), sorted)
	if err != nil {
		if errors.Is(err, tableview.ErrNothingToExport) {
			return "", "", apierror.New("CONFLICT", "nothing to export", table.Entity, http.StatusConflict)
		}
		return "", "", err
	}

	return tableview.ExportFilename(table.Entity, time.Now()), csvBody, nil
}

// Columns lists the selectable columns of an entity type.
func (s *TableService) Columns(entity string) (model.ColumnsData, error) {
	table, ok := s.catalog.Lookup(entity)
	if !ok {
		return model.ColumnsData{}, apierror.New("NOT_FOUND", "unknown entity type", entity, http.StatusNotFound)
	}

	return model.ColumnsData{Entity: table.Entity, Columns: table.Registry.Definitions()}, nil
}

// Dashboard fetches every entity's rows in parallel and settles each source
// independently; failures are reported per source beside the successes.
func (s *TableService) Dashboard(ctx context.Context) model.DashboardData {
	sources := make([]upstream.Source, 0)
	for _, entity := range s.catalog.Entities() {
		table, _ := s.catalog.Lookup(entity)
		sources = append(sources, upstream.Source{Name: table.Entity, Path: table.UpstreamPath})
	}

	results := s.fetcher.FetchAll(ctx, sources)

	data := model.DashboardData{Sources: make(map[string]model.DashboardSource, len(results))}
	for name, result := range results {
		source := model.DashboardSource{Count: len(result.Rows), Rows: result.Rows}
		if result.Err != nil {
			source = model.DashboardSource{Error: result.Err.Error()}
		}
		data.Sources[name] = source
	}

	return data
}

// fetch pulls fresh rows for the entity. Only the newest in-flight fetch may
// update the cache; a stale success still serves its own caller. On upstream
// failure the last accepted rows, when present, keep the table rendering.
func (s *TableService) fetch(ctx context.Context, table *catalog.Table) ([]tableview.Row, error) {
	ticket := s.guard.Begin(table.Entity)

	rows, err := s.fetcher.FetchRows(ctx, table.UpstreamPath, nil)
	if err != nil {
		s.mu.RLock()
		cached, ok := s.cached[table.Entity]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}
		return nil, err
	}

	if s.guard.Accept(table.Entity, ticket) {
		s.mu.Lock()
		s.cached[table.Entity] = rows
		s.mu.Unlock()
	}

	return rows, nil
}

func (s *TableService) sorter(table *catalog.Table, query TableQuery) *tableview.Sorter {
	sorter := table.NewSorter()

	sortBy := strings.TrimSpace(query.SortBy)
	if sortBy == "" {
		return sorter
	}

	sorter.RequestSort(sortBy)

	order := strings.ToLower(strings.TrimSpace(query.Order))
	if order == string(tableview.Asc) || order == string(tableview.Desc) {
		if sorter.State().Direction != tableview.Direction(order) {
			sorter.RequestSort(sortBy)
		}
	}

	return sorter
}

func clampPage(page int, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return page, limit
}
