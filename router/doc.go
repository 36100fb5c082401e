// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the stat-grid server.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(sessions, tmpl, cfg, metrics.HTTPHandler(reg))

# Endpoints

Operational:

	GET /health  - Liveness check
	GET /metrics - Prometheus metrics

Grid page and htmx partials:

	GET   /                                   - Full page, opens a new view at page 0
	GET   /grid/table                         - Table partial, polled while a read is pending
	POST  /grid/next                          - Next page
	POST  /grid/prev                          - Previous page, never below 0
	POST  /grid/page-size                     - Set page size (form field pageSize)
	PATCH /grid/cells/{state}/{date}/{field}  - Edit one cell (form field value)

JSON API:

	GET   /api/grid?view={view}       - Snapshot of one view's grid state
	PATCH /api/grid/cells?view={view} - Edit one cell ({"state","date","field","value"})

Every grid route is wrapped with middleware.WithLogging.
*/
package router
