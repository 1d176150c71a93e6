// Package telemetry exposes runner metrics over HTTP.
package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RunsTotal counts finished jobs by outcome (succeeded, skipped, failed).
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blockforge_runs_total",
		Help: "Finished jobs by outcome.",
	}, []string{"outcome"})

	// StageDuration observes wall time per pipeline stage.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blockforge_stage_duration_seconds",
		Help:    "Wall time per pipeline stage.",
		Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
	}, []string{"stage"})

	// ScenesProcessed counts input scenes handled across all jobs.
	ScenesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockforge_scenes_processed_total",
		Help: "Input scenes handled across all jobs.",
	})
)

// Expose serves /metrics on the given port in the background.
// A port of zero disables the endpoint.
func Expose(port int) {
	if port == 0 {
		return
	}
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
	}()
}
