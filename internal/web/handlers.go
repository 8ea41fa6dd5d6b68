package web

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
	"github.com/JonMunkholm/itemlist/internal/logging"
	"github.com/JonMunkholm/itemlist/internal/store"
	"github.com/JonMunkholm/itemlist/internal/web/templates"
)

const pageTitle = "Items"

// handlePage loads the items, creates a view and renders the full page.
// Optional query parameters sort=col[:desc] and width=N seed the view. They
// are checked before the view is registered.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	state := itemlist.ParseSortState(r.URL.Query().Get("sort"))
	if !state.Unsorted() && itemlist.ColumnIndex(s.columns, state.Column) < 0 {
		s.respondError(w, r, fmt.Errorf("%w: %q", itemlist.ErrUnknownColumn, state.Column), http.StatusBadRequest)
		return
	}
	width := itemlist.Unmeasured
	if widthParam := r.URL.Query().Get("width"); widthParam != "" {
		var err error
		if width, err = parseWidth(widthParam); err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}
	}

	items, err := s.loadItems(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}

	v, evicted := s.views.create(func(v *view) *itemlist.Table {
		t := itemlist.NewTable(s.columns, s.selectionHandler(v))
		t.SetItems(items)
		_ = t.SetSort(state) // column checked above
		t.Resize(width)
		return t
	})
	if evicted > 0 {
		s.metrics.viewsEvicted.WithLabelValues("capacity").Add(float64(evicted))
	}
	s.metrics.viewsLive.Set(float64(s.views.len()))

	v.mu.Lock()
	defer v.mu.Unlock()

	logging.WithFields(logging.ContextWithView(r.Context(), v.id), "items", len(items)).Info("view created")

	s.render(w, r, templates.Page(pageTitle, templates.TableProps{ViewID: v.id, View: v.table.View(), Selected: v.selected}))
}

// handleTable re-renders the table partial.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(v *view, r *http.Request) {
		s.renderTable(w, r, v)
	})
}

// handleSort toggles sorting on a column and returns the updated partial.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(v *view, r *http.Request) {
		columnID := chi.URLParam(r, "columnID")

		state, err := v.table.ToggleSort(columnID)
		if err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}
		s.metrics.sortToggles.WithLabelValues(columnID, directionLabel(state.DirectionOf(columnID))).Inc()
		logging.FromContext(r.Context()).Debug("sort toggled", "column", columnID, "sort", state.String())

		s.renderTable(w, r, v)
	})
}

// handleWidth applies a width report. The partial is only re-rendered when
// the set of hidden columns changed; otherwise 204 tells HTMX to keep the DOM.
func (s *Server) handleWidth(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(v *view, r *http.Request) {
		width, err := parseWidth(r.FormValue("width"))
		if err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}

		changed := v.table.Resize(width)
		s.metrics.recordResize(changed)
		if !changed {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		px, _ := width.Value()
		logging.FromContext(r.Context()).Debug("visible columns changed",
			"width", px,
			"visible", len(v.table.VisibleColumns()),
		)
		s.renderTable(w, r, v)
	})
}

// handleSelect reports a row click. The identifier is sent back as an
// HX-Trigger event so the page can react to it.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(v *view, r *http.Request) {
		rowID, err := strconv.Atoi(chi.URLParam(r, "rowID"))
		if err != nil {
			s.respondError(w, r, fmt.Errorf("%w: %q", itemlist.ErrRowNotFound, chi.URLParam(r, "rowID")), http.StatusNotFound)
			return
		}

		identifier, err := v.table.SelectRow(rowID)
		if err != nil {
			s.respondError(w, r, err, http.StatusNotFound)
			return
		}

		logging.FromContext(r.Context()).Info("item selected", "identifier", identifier)

		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, map[string]string{"identifier": identifier})
			return
		}

		trigger, err := json.Marshal(map[string]any{
			"item-selected": map[string]string{"identifier": identifier},
		})
		if err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("HX-Trigger", string(trigger))
		w.WriteHeader(http.StatusNoContent)
	})
}

// handleRefresh reloads items from the source into the view. Sort state and
// width are kept.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(v *view, r *http.Request) {
		items, err := s.loadItems(r)
		if err != nil {
			s.respondError(w, r, err, http.StatusServiceUnavailable)
			return
		}
		v.table.SetItems(items)
		logging.FromContext(r.Context()).Info("view refreshed", "items", len(items))

		s.renderTable(w, r, v)
	})
}

// handleHealth reports liveness, the number of live views and, for a
// limited source, the loads in flight.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status": "ok",
		"views":  s.views.len(),
	}
	if l, ok := s.source.(interface{ Status() store.LoadStatus }); ok {
		body["loads"] = l.Status()
	}
	writeJSON(w, http.StatusOK, body)
}

// selectionHandler is the table's selection callback for view v. It runs
// inside handleSelect while the view is locked.
func (s *Server) selectionHandler(v *view) itemlist.SelectFunc {
	return func(identifier string) {
		v.selected = identifier
		s.metrics.selections.Inc()
	}
}

func (s *Server) loadItems(r *http.Request) ([]itemlist.Item, error) {
	items, err := store.Load(r.Context(), s.source, s.cfg.Source.LoadTimeout)
	s.metrics.recordLoad(err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return items, nil
}

func (s *Server) renderTable(w http.ResponseWriter, r *http.Request, v *view) {
	s.render(w, r, templates.Table(templates.TableProps{ViewID: v.id, View: v.table.View(), Selected: v.selected}))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "error", err)
	}
}

// parseWidth accepts any finite CSS pixel width. Negative values are clamped
// to zero by itemlist.Measured.
func parseWidth(raw string) (itemlist.Width, error) {
	px, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(px) || math.IsInf(px, 0) {
		return itemlist.Unmeasured, fmt.Errorf("%w: %q", ErrInvalidWidth, raw)
	}
	return itemlist.Measured(px), nil
}

func directionLabel(d itemlist.Direction) string {
	if d == itemlist.None {
		return "none"
	}
	return d.String()
}
