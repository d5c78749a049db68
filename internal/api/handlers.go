package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/menushell/internal/apperr"
	"github.com/starford/menushell/internal/menu"
	"github.com/starford/menushell/internal/menuservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *menuservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *menuservice.Service) *Handler {
	return &Handler{svc: svc}
}

// menuPath extracts the menu key from the URL (everything after /api/menus/).
// Supports encoded slashes (e.g. tools%2Fdeploy).
func menuPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListMenus handles GET /api/menus.
//
//	@Summary		List menus in build order
//	@Tags			menus
//	@Produce		json
//	@Param			kind	query		string	false	"Filter by kind"	Enums(projects, exit, folder, unit)
//	@Success		200		{object}	MenuListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/menus [get]
func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	switch menu.Kind(kind) {
	case "", menu.KindProjects, menu.KindExit, menu.KindFolder, menu.KindUnit:
	default:
		writeError(w, http.StatusBadRequest, "unknown kind "+strconv.Quote(kind))
		return
	}

	items, err := h.svc.ListMenus(r.Context(), kind)
	if err != nil {
		slog.Error("list menus failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, MenuListResponse{Menus: items, Total: len(items)})
}

// GetMenu handles GET /api/menus/*.
//
//	@Summary		Get a single menu by key
//	@Tags			menus
//	@Produce		json
//	@Param			path	path		string	true	"Menu key"
//	@Success		200		{object}	MenuDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/menus/{path} [get]
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	path := menuPath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	m, err := h.svc.GetMenu(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("get menu failed", slog.String("path", path), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Search handles GET /api/search.
//
//	@Summary		Search menus by title, description and option labels
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: q, Results: results, Total: len(results)})
}
