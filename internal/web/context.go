package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/itemlist/internal/logging"
)

// withView resolves the {viewID} URL parameter and runs fn while holding the
// view's lock. The request context passed to fn carries the view ID for logging.
func (s *Server) withView(w http.ResponseWriter, r *http.Request, fn func(*view, *http.Request)) {
	v, err := s.views.get(chi.URLParam(r, "viewID"))
	if err != nil {
		s.respondError(w, r, err, http.StatusGone)
		return
	}

	r = r.WithContext(logging.ContextWithView(r.Context(), v.id))

	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v, r)
}
