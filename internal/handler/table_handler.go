package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mrm-console/internal/middleware"
	"mrm-console/internal/service"
	"mrm-console/pkg/apierror"
)

type TableHandler struct {
	service *service.TableService
}

func NewTableHandler(service *service.TableService) *TableHandler {
	return &TableHandler{service: service}
}

func tableQueryFromRequest(r *http.Request) service.TableQuery {
	values := r.URL.Query()

	page, _ := strconv.Atoi(values.Get("page"))
	limit, _ := strconv.Atoi(values.Get("limit"))

	return service.TableQuery{
		Filters: values,
		SortBy:  values.Get("sort_by"),
		Order:   values.Get("order"),
		ViewID:  values.Get("view"),
		Page:    page,
		Limit:   limit,
	}
}

func (h *TableHandler) Rows(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	entity := chi.URLParam(r, "entity")
	data, meta, err := h.service.Rows(r.Context(), entity, claims.UserID, tableQueryFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, data, &meta)
}

func (h *TableHandler) Columns(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Columns(chi.URLParam(r, "entity"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, data, nil)
}

// Export streams the current filtered, sorted set as a CSV attachment. The
// filter and sort query parameters match the rows endpoint, so the download
// always mirrors what the table shows.
func (h *TableHandler) Export(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	entity := chi.URLParam(r, "entity")
	filename, body, err := h.service.Export(r.Context(), entity, claims.UserID, tableQueryFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *TableHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.service.Dashboard(r.Context()), nil)
}
