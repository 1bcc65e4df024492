package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream vendor Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kbproxy",
			Name:      "upstream_requests_total",
			Help:      "Total number of vendor API calls",
		},
		[]string{"vendor", "operation", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kbproxy",
			Name:      "upstream_request_duration_seconds",
			Help:      "Vendor API call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"vendor", "operation"},
	)

	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kbproxy",
			Name:      "upstream_errors_total",
			Help:      "Total vendor API errors",
		},
		[]string{"vendor", "operation", "error_type"},
	)

	KnowledgeRecordsFetched = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kbproxy",
			Name:      "knowledge_records_fetched",
			Help:      "Records aggregated per full knowledge-base fetch",
			Buckets:   []float64{0, 10, 100, 1000, 2500, 5000, 10000},
		},
	)
)

var upstreamMetricsRegistered bool

// RegisterUpstreamMetrics registers vendor call metrics. Must be called once from main.
func RegisterUpstreamMetrics() {
	if upstreamMetricsRegistered {
		return
	}
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(UpstreamErrorsTotal)
	prometheus.MustRegister(KnowledgeRecordsFetched)
	upstreamMetricsRegistered = true
}

// ObserveUpstream records one finished vendor call.
// errorType is empty on success.
func ObserveUpstream(vendor, operation string, seconds float64, errorType string) {
	status := "success"
	if errorType != "" {
		status = "error"
		UpstreamErrorsTotal.WithLabelValues(vendor, operation, errorType).Inc()
	}
	UpstreamRequestsTotal.WithLabelValues(vendor, operation, status).Inc()
	UpstreamRequestDuration.WithLabelValues(vendor, operation).Observe(seconds)
}
