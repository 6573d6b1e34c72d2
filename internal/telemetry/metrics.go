package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoreview_http_requests_total",
		Help: "HTTP requests by method, route pattern and status.",
	}, []string{"method", "endpoint", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "photoreview_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route pattern and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "photoreview_http_active_requests",
		Help: "Requests currently being served.",
	})

	ScanItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoreview_scan_items_total",
		Help: "Media items produced by folder scans, by pairing kind.",
	}, []string{"pairing"})

	ScanSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photoreview_scan_skipped_entries_total",
		Help: "Directory entries dropped from a scan because they could not be read.",
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "photoreview_scan_duration_seconds",
		Help:    "Wall time of a single folder scan.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	BatchFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoreview_batch_files_total",
		Help: "Physical files touched by batch operations, by operation and outcome.",
	}, []string{"op", "result"})

	ThumbnailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoreview_thumbnails_total",
		Help: "Thumbnail lookups by outcome (hit, generated, error).",
	}, []string{"result"})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
