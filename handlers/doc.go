// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the stat-grid server.

# Grid Handler

GridHandler serves one grid per view:

	gridHandler := handlers.NewGridHandler(sessions, tmpl, cfg)

Every request resolves its session from the grid_session cookie, starting
a new session when the cookie is missing or fails verification. GET /
opens a new view at page 0 and renders its id into the grid; the other
routes find the view through the view parameter htmx sends along.

# Pagination

Next, Prev and PageSize dispatch the matching transition and wait for the
resulting page read, up to RenderWait, before rendering. If the read is
still pending the table renders with an htmx poll of GET /grid/table.

Unchanged input does not cause a read: Prev on page 0 and a page size equal
to the current one render the current state as-is.

# Cell Edits

	PATCH /grid/cells/{state}/{date}/{field} → EditCell (204)
	PATCH /api/grid/cells                    → PatchCell (202)

Both queue one patch and return without waiting for it. Local records are
not touched. Edits of state or date are rejected with 400.
*/
package handlers
