// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import "time"

// FetchOutcome enumerates how a page read ended.
type FetchOutcome string

const (
	FetchOK       FetchOutcome = "ok"
	FetchError    FetchOutcome = "error"
	FetchStale    FetchOutcome = "stale"
	FetchCanceled FetchOutcome = "canceled"
)

// Recorder defines observability hooks for the grid's remote sync. Implementations
// may forward to Prometheus or drop everything (NoopRecorder).
type Recorder interface {
	ObserveFetchDuration(d time.Duration)
	IncFetchOutcome(outcome FetchOutcome)
	IncPatchResult(success bool)
	IncPatchCoalesced()
	SetActiveSessions(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveFetchDuration(time.Duration) {}
func (NoopRecorder) IncFetchOutcome(FetchOutcome)       {}
func (NoopRecorder) IncPatchResult(bool)                {}
func (NoopRecorder) IncPatchCoalesced()                 {}
func (NoopRecorder) SetActiveSessions(int)              {}
