package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/menushell/internal/menuservice"
)

// NewRouter returns the browse routes, all behind the same auth check:
//
//	GET /menus          list, optional ?kind=
//	GET /menus/{path}   one menu; the path may contain slashes
//	GET /search?q=      search menus
//	GET /events         tree rebuild stream, when events is non-nil
func NewRouter(svc *menuservice.Service, authEnabled bool, token string, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))
	r.Use(middleware.NoCache)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/menus", h.ListMenus)
	r.Get("/menus/*", h.GetMenu)
	r.Get("/search", h.Search)
	if events != nil {
		r.Method(http.MethodGet, "/events", events)
	}

	return r
}
