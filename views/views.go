// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/stat-grid/cliparse"
	"github.com/danielhkuo/stat-grid/grid"
	"github.com/danielhkuo/stat-grid/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names accepted by Render.
const (
	PageTemplate  = "layout"     // full document
	GridTemplate  = "grid"       // pagination, page size, status and table
	TableTemplate = "grid-table" // table only, used while a read is pending
)

// Templates holds the parsed grid templates.
type Templates struct {
	t *template.Template
}

// Load parses the embedded templates.
func Load() (*Templates, error) {
	funcMap := template.FuncMap{
		"comma": func(n int) string { return humanize.Comma(int64(n)) },
		"ago": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return humanize.Time(t)
		},
	}
	t, err := template.New("views").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Templates{t: t}, nil
}

// Render executes the named template into w.
func (t *Templates) Render(w io.Writer, name string, data any) error {
	if t.t.Lookup(name) == nil {
		return fmt.Errorf("template %q not found", name)
	}
	return t.t.ExecuteTemplate(w, name, data)
}

// GridView is the template data for the grid and its controls.
// View is the id every request from the rendered grid carries.
type GridView struct {
	View          string
	Page          int
	PageSize      string
	Columns       []string
	Rows          []Row
	Fetching      bool
	LastFetchedAt time.Time
	EditTrigger   string
	EditSync      string
}

// Row is one record laid out against the grid's columns.
type Row struct {
	Cells []Cell
}

// Cell is one rendered value. Editable cells carry the endpoint their input
// patches.
type Cell struct {
	Field    string
	Text     string
	Editable bool
	EditURL  string
}

// NewGridView lays out s for rendering. Columns come from the first record;
// every row gets one cell per column, in column order.
func NewGridView(s grid.State, editMode string) GridView {
	v := GridView{
		Page:          s.Page,
		PageSize:      s.PageSize,
		Columns:       s.Columns(),
		Rows:          make([]Row, 0, len(s.Records)),
		Fetching:      s.Fetching,
		LastFetchedAt: s.LastFetchedAt,
		EditTrigger:   EditTrigger(editMode),
		EditSync:      EditSync(editMode),
	}

	for _, rec := range s.Records {
		state, date := rec.Text(models.FieldState), rec.Text(models.FieldDate)
		row := Row{Cells: make([]Cell, 0, len(v.Columns))}
		for _, col := range v.Columns {
			if models.IsIdentifying(col) {
				row.Cells = append(row.Cells, Cell{Field: col, Text: rec.Text(col)})
				continue
			}
			val, ok := rec.Get(col)
			cell := Cell{Field: col, Text: models.DisplayValue(val, ok)}
			// a row without its key cannot be patched
			if state != "" && date != "" {
				cell.Editable = true
				cell.EditURL = CellURL(state, date, col)
			}
			row.Cells = append(row.Cells, cell)
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// RowCount is the number of records on the page.
func (v GridView) RowCount() int { return len(v.Rows) }

// EditTrigger is the htmx event that sends a cell edit.
func EditTrigger(editMode string) string {
	if editMode == cliparse.EditModeBlur {
		return "change"
	}
	return "input"
}

// EditSync is the hx-sync strategy of cell inputs. Live edits queue every
// request so no keystroke is dropped while an earlier patch is in flight.
func EditSync(editMode string) string {
	if editMode == cliparse.EditModeBlur {
		return "this:replace"
	}
	return "this:queue all"
}

// CellURL is the edit endpoint of one cell.
func CellURL(state, date, field string) string {
	return "/grid/cells/" + url.PathEscape(state) + "/" + url.PathEscape(date) + "/" + url.PathEscape(field)
}
