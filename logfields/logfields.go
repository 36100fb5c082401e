// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logfields

import "log/slog"

// Canonical log field names shared by the grid, the stats client and the HTTP layer.
const (
	KeySession    = "session"
	KeyView       = "view"
	KeyGeneration = "generation"
	KeyPage       = "page"
	KeyPageSize   = "page_size"
	KeyState      = "state"
	KeyDate       = "date"
	KeyField      = "field"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyRemote     = "remote"
	KeyStatus     = "status"
	KeyTemplate   = "template"
	KeyDurationMS = "duration_ms"
	KeyRows       = "rows"
	KeyError      = "error"
)

func Session(id string) slog.Attr    { return slog.String(KeySession, id) }
func View(id string) slog.Attr       { return slog.String(KeyView, id) }
func Generation(g uint64) slog.Attr  { return slog.Uint64(KeyGeneration, g) }
func Page(p int) slog.Attr           { return slog.Int(KeyPage, p) }
func PageSize(s string) slog.Attr    { return slog.String(KeyPageSize, s) }
func State(s string) slog.Attr       { return slog.String(KeyState, s) }
func Date(d string) slog.Attr        { return slog.String(KeyDate, d) }
func Field(f string) slog.Attr       { return slog.String(KeyField, f) }
func Method(m string) slog.Attr      { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func Remote(r string) slog.Attr      { return slog.String(KeyRemote, r) }
func Status(code int) slog.Attr      { return slog.Int(KeyStatus, code) }
func Template(name string) slog.Attr { return slog.String(KeyTemplate, name) }
func DurationMS(ms int64) slog.Attr  { return slog.Int64(KeyDurationMS, ms) }
func Rows(n int) slog.Attr           { return slog.Int(KeyRows, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
