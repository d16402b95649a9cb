// Package metrics provides Prometheus collectors and an HTTP handler for
// exporting forge build and deploy metrics.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	promBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_builds_total",
			Help: "Total image build attempts",
		},
		[]string{"status"},
	)
	promDeploys = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_deploys_total",
			Help: "Total container deploy attempts",
		},
		[]string{"status"},
	)
	promBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "forge_build_duration_seconds",
			Help: "Duration of image builds",
			Buckets: []float64{
				1,
				5,
				10,
				30,
				60,
				120,
				300,
				600,
			},
		},
	)
	promLastBuild = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "forge_last_build_timestamp_seconds",
			Help: "Unix timestamp of the last build attempt",
		},
	)
)

func init() {
	prometheus.MustRegister(
		promBuilds,
		promDeploys,
		promBuildDuration,
		promLastBuild,
	)
}

// RecordBuild records one build attempt.
func RecordBuild(success bool, d time.Duration) {
	promBuilds.WithLabelValues(statusLabel(success)).Inc()
	promBuildDuration.Observe(d.Seconds())
	promLastBuild.SetToCurrentTime()
}

// RecordDeploy records one deploy attempt.
func RecordDeploy(success bool) {
	promDeploys.WithLabelValues(statusLabel(success)).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts the metrics listener on the given port. Blocks.
func Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
