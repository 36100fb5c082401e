// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/stat-grid/cliparse"
	"github.com/danielhkuo/stat-grid/handlers"
	"github.com/danielhkuo/stat-grid/middleware"
	"github.com/danielhkuo/stat-grid/session"
	"github.com/danielhkuo/stat-grid/views"
)

// NewRouter wires the grid routes. metrics may be nil, in which case
// /metrics is not served.
func NewRouter(sessions *session.Registry, tmpl *views.Templates, cfg cliparse.Config, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	gridHandler := handlers.NewGridHandler(sessions, tmpl, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	// Grid page and htmx partials
	mux.HandleFunc("GET /{$}", middleware.WithLogging(gridHandler.Page))
	mux.HandleFunc("GET /grid/table", middleware.WithLogging(gridHandler.Table))
	mux.HandleFunc("POST /grid/next", middleware.WithLogging(gridHandler.Next))
	mux.HandleFunc("POST /grid/prev", middleware.WithLogging(gridHandler.Prev))
	mux.HandleFunc("POST /grid/page-size", middleware.WithLogging(gridHandler.PageSize))
	mux.HandleFunc("PATCH /grid/cells/{state}/{date}/{field}", middleware.WithLogging(gridHandler.EditCell))

	// JSON API
	mux.HandleFunc("GET /api/grid", middleware.WithLogging(gridHandler.GetGrid))
	mux.HandleFunc("PATCH /api/grid/cells", middleware.WithLogging(gridHandler.PatchCell))

	return mux
}
