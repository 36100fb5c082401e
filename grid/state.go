// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package grid

import (
	"time"

	"github.com/danielhkuo/stat-grid/models"
)

// State is everything one grid view owns. Values of State are snapshots:
// Records is replaced wholesale and never mutated in place.
type State struct {
	Records       []models.Record
	Page          int
	PageSize      string
	Generation    uint64
	Fetching      bool
	LastFetchedAt time.Time
}

// Initial returns the state of a freshly opened view.
func Initial(pageSize string) State {
	if pageSize == "" {
		pageSize = models.DefaultPageSize
	}
	return State{Records: []models.Record{}, PageSize: pageSize}
}

// PageRequest is the read the current page and page size call for.
func (s State) PageRequest() models.PageRequest {
	return models.PageRequest{Page: s.Page, PageSize: s.PageSize}
}

// Columns are the keys of the first record; later rows are rendered against them.
func (s State) Columns() []string {
	if len(s.Records) == 0 {
		return nil
	}
	return s.Records[0].Keys()
}

// Snapshot returns a copy whose record slice can be held after the state moves on.
func (s State) Snapshot() State {
	out := s
	out.Records = append([]models.Record(nil), s.Records...)
	return out
}

// Action is an event applied to State by Reduce.
type Action interface{ isAction() }

// Refresh re-reads the current page (used when a view is opened).
type Refresh struct{}

// NextPage advances one page.
type NextPage struct{}

// PrevPage goes back one page, never below zero.
type PrevPage struct{}

// SetPageSize stores the page size text exactly as typed.
type SetPageSize struct{ Text string }

// EditCell is one input event on a cell.
type EditCell struct {
	State string
	Date  string
	Field string
	Value string
}

// Loaded delivers the records of read Generation.
type Loaded struct {
	Generation uint64
	Records    []models.Record
	At         time.Time
}

// LoadFailed reports that read Generation did not produce records.
type LoadFailed struct {
	Generation uint64
	Err        error
}

func (Refresh) isAction()     {}
func (NextPage) isAction()    {}
func (PrevPage) isAction()    {}
func (SetPageSize) isAction() {}
func (EditCell) isAction()    {}
func (Loaded) isAction()      {}
func (LoadFailed) isAction()  {}

// Effect is work Reduce asks the store to perform. A nil Effect means none.
type Effect interface{ isEffect() }

// Fetch asks for a page read tagged with the generation that requested it.
type Fetch struct {
	Generation uint64
	Request    models.PageRequest
}

// Patch asks for a single-field update to be sent.
type Patch struct {
	Request models.PatchRequest
}

func (Fetch) isEffect() {}
func (Patch) isEffect() {}

// Reduce applies a to s. It is pure: it performs no I/O and never mutates s.
func Reduce(s State, a Action) (State, Effect) {
	switch a := a.(type) {
	case Refresh:
		return refetch(s)

	case NextPage:
		next := max(s.Page+1, s.Page)
		if next == s.Page {
			return s, nil
		}
		s.Page = next
		return refetch(s)

	case PrevPage:
		prev := max(s.Page-1, 0)
		if prev == s.Page {
			return s, nil
		}
		s.Page = prev
		return refetch(s)

	case SetPageSize:
		if a.Text == s.PageSize {
			return s, nil
		}
		s.PageSize = a.Text
		return refetch(s)

	case EditCell:
		// Local records are left alone: the typed value lives in the input.
		if models.IsIdentifying(a.Field) {
			return s, nil
		}
		return s, Patch{Request: models.PatchRequest{
			State: a.State,
			Date:  a.Date,
			Field: a.Field,
			Value: a.Value,
		}}

	case Loaded:
		if a.Generation != s.Generation {
			return s, nil
		}
		s.Records = a.Records
		if s.Records == nil {
			s.Records = []models.Record{}
		}
		s.Fetching = false
		s.LastFetchedAt = a.At
		return s, nil

	case LoadFailed:
		if a.Generation != s.Generation {
			return s, nil
		}
		s.Fetching = false
		return s, nil
	}
	return s, nil
}

func refetch(s State) (State, Effect) {
	s.Generation++
	s.Fetching = true
	return s, Fetch{Generation: s.Generation, Request: s.PageRequest()}
}
