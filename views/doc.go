// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package views renders the grid with html/template and htmx attributes.
//
// Templates are embedded. "layout" is the full page, "grid" the controls
// plus table swapped in by the pagination buttons, and "grid-table" the
// table alone, swapped in by the page size input and by polling while a
// read is pending.
package views
