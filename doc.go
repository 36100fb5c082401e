// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the stat-grid server.

stat-grid is a paginated, editable grid over the COVID state stats service.
The server reads pages of records from the service, renders them as an HTML
table with htmx, and sends every cell edit back as a single-field patch.

# Starting the Server

All settings have defaults, so the server starts with no configuration
against a stats service on localhost:5001:

	go run .

Or with flags:

	go run . -p 3000 -api http://stats.internal:5001 -edit-mode blur

A .env file in the working directory is loaded first; variables already in
the environment win over it.

# Configuration

  - PORT (-p): Server port (default: 3000)
  - STATS_API_URL (-api): Stats service base URL (default: http://localhost:5001)
  - PAGE_SIZE (-page-size): Initial page size (default: 100)
  - EDIT_MODE (-edit-mode): live sends on every keystroke, blur on change
  - EDIT_DEBOUNCE (-edit-debounce): Coalesce rapid edits of one cell (default: off)
  - API_TIMEOUT (-api-timeout): Stats service request timeout (default: none)
  - RENDER_WAIT (-render-wait): How long a request waits for a page read (default: 5s)
  - SESSION_SECRET (-session-secret): Session cookie HMAC secret (default: random per run)
  - SESSION_LIMIT (-session-limit): Grid views held in memory (default: 256)
  - LOG_LEVEL (-log-level): debug, info, warn or error (default: info)

# Architecture

  - grid: State, the Reduce transitions, Store and the patch Writer
  - statsapi: HTTP client for the stats service
  - session: Signed session cookies and the per-view store registry
  - views: Embedded html/template templates with htmx attributes
  - handlers: HTTP request handlers for the grid and its JSON API
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - metrics: Prometheus recorder served at /metrics
  - logfields: Shared log attribute names
  - models: Records, requests and response types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
