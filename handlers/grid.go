// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/stat-grid/cliparse"
	"github.com/danielhkuo/stat-grid/grid"
	"github.com/danielhkuo/stat-grid/logfields"
	"github.com/danielhkuo/stat-grid/middleware"
	"github.com/danielhkuo/stat-grid/models"
	"github.com/danielhkuo/stat-grid/session"
	"github.com/danielhkuo/stat-grid/views"
)

type GridHandler struct {
	sessions *session.Registry
	views    *views.Templates
	cfg      cliparse.Config
}

func NewGridHandler(sessions *session.Registry, tmpl *views.Templates, cfg cliparse.Config) *GridHandler {
	return &GridHandler{sessions: sessions, views: tmpl, cfg: cfg}
}

// Page handles GET /
// Every page load opens a new view starting from page 0. The view id is
// rendered into the grid so later requests from that page find it.
func (h *GridHandler) Page(w http.ResponseWriter, r *http.Request) {
	view := session.NewID()
	store, _, ok := h.store(w, r, view)
	if !ok {
		return
	}
	snap := h.settle(r, store, store.Dispatch(grid.Refresh{}))
	h.render(w, views.PageTemplate, view, snap)
}

// Table handles GET /grid/table
// Polled by the table while a read is pending.
func (h *GridHandler) Table(w http.ResponseWriter, r *http.Request) {
	view := session.ViewFromRequest(r)
	store, created, ok := h.store(w, r, view)
	if !ok {
		return
	}
	snap := store.Snapshot()
	if created {
		snap = store.Dispatch(grid.Refresh{})
	}
	h.render(w, views.TableTemplate, view, h.settle(r, store, snap))
}

// Next handles POST /grid/next
func (h *GridHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.paginate(w, r, grid.NextPage{})
}

// Prev handles POST /grid/prev
func (h *GridHandler) Prev(w http.ResponseWriter, r *http.Request) {
	h.paginate(w, r, grid.PrevPage{})
}

func (h *GridHandler) paginate(w http.ResponseWriter, r *http.Request, a grid.Action) {
	view := session.ViewFromRequest(r)
	store, _, ok := h.store(w, r, view)
	if !ok {
		return
	}
	snap := h.settle(r, store, store.Dispatch(a))
	h.render(w, views.GridTemplate, view, snap)
}

// PageSize handles POST /grid/page-size
// The text is taken exactly as typed, without validation.
func (h *GridHandler) PageSize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form")
		return
	}
	if _, present := r.PostForm["pageSize"]; !present {
		middleware.ErrorResponse(w, http.StatusBadRequest, "pageSize is required")
		return
	}

	view := session.ViewFromRequest(r)
	store, _, ok := h.store(w, r, view)
	if !ok {
		return
	}
	snap := h.settle(r, store, store.Dispatch(grid.SetPageSize{Text: r.PostForm.Get("pageSize")}))
	h.render(w, views.TableTemplate, view, snap)
}

// EditCell handles PATCH /grid/cells/{state}/{date}/{field}
// The patch is sent in the background; the response never waits for it.
func (h *GridHandler) EditCell(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form")
		return
	}

	h.edit(w, r, models.PatchRequest{
		State: r.PathValue("state"),
		Date:  r.PathValue("date"),
		Field: r.PathValue("field"),
		Value: r.PostForm.Get("value"),
	}, http.StatusNoContent)
}

// GetGrid handles GET /api/grid?view={view}
func (h *GridHandler) GetGrid(w http.ResponseWriter, r *http.Request) {
	store, _, ok := h.store(w, r, session.ViewFromRequest(r))
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toSnapshot(store.Snapshot()))
}

// PatchCell handles PATCH /api/grid/cells?view={view}
func (h *GridHandler) PatchCell(w http.ResponseWriter, r *http.Request) {
	var req models.PatchRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	h.edit(w, r, req, http.StatusAccepted)
}

func (h *GridHandler) edit(w http.ResponseWriter, r *http.Request, req models.PatchRequest, status int) {
	if req.State == "" || req.Date == "" || req.Field == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "state, date and field are required")
		return
	}
	if models.IsIdentifying(req.Field) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "state and date are not editable")
		return
	}

	store, _, ok := h.store(w, r, session.ViewFromRequest(r))
	if !ok {
		return
	}
	store.Dispatch(grid.EditCell{State: req.State, Date: req.Date, Field: req.Field, Value: req.Value})

	slog.Debug("cell edited",
		logfields.State(req.State),
		logfields.Date(req.Date),
		logfields.Field(req.Field),
	)
	w.WriteHeader(status)
}

// store resolves view of the session of r, starting a new session (and
// setting its cookie) when r has none. Requests without a view id share
// the session's default view. It writes the error response itself when it
// returns false.
func (h *GridHandler) store(w http.ResponseWriter, r *http.Request, view string) (*grid.Store, bool, bool) {
	id, ok := session.FromRequest(r, h.cfg.SessionSecret)
	if !ok {
		id = session.NewID()
		session.SetCookie(w, id, h.cfg.SessionSecret)
	}

	store, created, err := h.sessions.Get(session.Key{Session: id, View: view})
	if errors.Is(err, session.ErrClosed) {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Server is shutting down")
		return nil, false, false
	}
	if err != nil {
		slog.Error("failed to open view", logfields.Session(id), logfields.View(view), logfields.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to open session")
		return nil, false, false
	}
	return store, created, true
}

// settle waits, up to RenderWait, for the read snap started to finish.
func (h *GridHandler) settle(r *http.Request, store *grid.Store, snap grid.State) grid.State {
	if !snap.Fetching || h.cfg.RenderWait <= 0 {
		return snap
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RenderWait)
	defer cancel()

	if err := store.Wait(ctx, snap.Generation); err != nil {
		slog.Debug("rendering before page read settled",
			logfields.Generation(snap.Generation),
			logfields.Error(err),
		)
	}
	return store.Snapshot()
}

func (h *GridHandler) render(w http.ResponseWriter, name, view string, s grid.State) {
	v := views.NewGridView(s, h.cfg.EditMode)
	v.View = view

	var buf bytes.Buffer
	if err := h.views.Render(&buf, name, v); err != nil {
		slog.Error("failed to render grid", logfields.Template(name), logfields.Error(err))
		http.Error(w, "Failed to render grid", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func toSnapshot(s grid.State) models.GridSnapshot {
	out := models.GridSnapshot{
		Page:       s.Page,
		PageSize:   s.PageSize,
		Generation: s.Generation,
		Fetching:   s.Fetching,
		Records:    s.Records,
	}
	if !s.LastFetchedAt.IsZero() {
		at := s.LastFetchedAt
		out.LastFetchedAt = &at
	}
	return out
}
