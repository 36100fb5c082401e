// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3000)
  - APIBaseURL: Stats service base URL (default: http://localhost:5001)
  - PageSize: Initial page size text (default: 100)
  - EditMode: "live" sends a patch on every keystroke, "blur" on change
  - EditDebounce: Coalesce edits of one cell within this window (default: off)
  - APITimeout: Stats service request timeout (default: none)
  - RenderWait: How long a grid request waits for a page read (default: 5s)
  - SessionSecret: HMAC secret for session cookies (random when empty)
  - SessionLimit: Grid sessions kept in memory (default: 256)
  - LogLevel: debug, info, warn or error (default: info)

# CLI Flags

	-p              Server port
	-api            Stats service base URL
	-api-timeout    Stats request timeout
	-page-size      Initial page size
	-edit-mode      live or blur
	-edit-debounce  Edit coalescing window
	-render-wait    Wait for page reads before rendering
	-session-secret Session cookie secret
	-session-limit  Maximum sessions
	-log-level      Log level
	-env-file       Dotenv file (default: .env)

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	STATS_API_URL  → -api
	API_TIMEOUT    → -api-timeout
	PAGE_SIZE      → -page-size
	EDIT_MODE      → -edit-mode
	EDIT_DEBOUNCE  → -edit-debounce
	RENDER_WAIT    → -render-wait
	SESSION_SECRET → -session-secret
	SESSION_LIMIT  → -session-limit
	LOG_LEVEL      → -log-level

CLI flags take precedence over environment variables. The dotenv file is
loaded first and never overrides variables already set in the process
environment; a missing file is ignored.

# Validation

ParseFlags returns an error for an unknown edit mode, unparsable numbers or
durations, negative durations and a session limit below 1. The page size is
deliberately not validated: it is passed to the stats service as typed.
*/
package cliparse
