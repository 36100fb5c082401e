// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Recorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	fetchDuration  prom.Histogram
	fetchOutcomes  *prom.CounterVec
	patchResults   *prom.CounterVec
	patchCoalesced prom.Counter
	activeSessions prom.Gauge
}

// NewPrometheusRecorder constructs and registers the grid metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		fetchDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "statgrid",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of page reads against the stats service",
			Buckets:   prom.DefBuckets,
		}),
		fetchOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "statgrid",
			Name:      "fetch_outcomes_total",
			Help:      "Page reads by outcome (ok, error, stale, canceled)",
		}, []string{"outcome"}),
		patchResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "statgrid",
			Name:      "patch_results_total",
			Help:      "Cell patches by delivery result",
		}, []string{"result"}),
		patchCoalesced: prom.NewCounter(prom.CounterOpts{
			Namespace: "statgrid",
			Name:      "patch_coalesced_total",
			Help:      "Cell edits folded into a later pending patch",
		}),
		activeSessions: prom.NewGauge(prom.GaugeOpts{
			Namespace: "statgrid",
			Name:      "active_sessions",
			Help:      "Grid views currently held in memory",
		}),
	}
	reg.MustRegister(pr.fetchDuration, pr.fetchOutcomes, pr.patchResults, pr.patchCoalesced, pr.activeSessions)
	return pr
}

func (p *PrometheusRecorder) ObserveFetchDuration(d time.Duration) {
	if p == nil || p.fetchDuration == nil {
		return
	}
	p.fetchDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFetchOutcome(outcome FetchOutcome) {
	if p == nil || p.fetchOutcomes == nil {
		return
	}
	p.fetchOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncPatchResult(success bool) {
	if p == nil || p.patchResults == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.patchResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) IncPatchCoalesced() {
	if p == nil || p.patchCoalesced == nil {
		return
	}
	p.patchCoalesced.Inc()
}

func (p *PrometheusRecorder) SetActiveSessions(n int) {
	if p == nil || p.activeSessions == nil {
		return
	}
	p.activeSessions.Set(float64(n))
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
