package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	claimsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_created_total",
			Help: "Claims created, by source (form or bulk upload).",
		},
		[]string{"source"},
	)

	claimIssuesFlaggedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_issues_flagged_total",
			Help: "Issues emitted by the claim analysis rules, by type.",
		},
		[]string{"issue_type"},
	)

	claimsDeniedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "claims_denied_total",
		Help: "Denials recorded against claims.",
	})

	bulkRowsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bulk_rows_skipped_total",
		Help: "Bulk upload rows skipped by validation or duplicate checks.",
	})
)

// Init registers all metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		claimsCreatedTotal, claimIssuesFlaggedTotal, claimsDeniedTotal,
		bulkRowsSkippedTotal,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ClaimCreated records a persisted claim. Source is "form" or "bulk".
func ClaimCreated(source string) {
	claimsCreatedTotal.WithLabelValues(source).Inc()
}

// IssueFlagged records an issue emitted by the analysis rules.
func IssueFlagged(issueType string) {
	claimIssuesFlaggedTotal.WithLabelValues(issueType).Inc()
}

// ClaimDenied records a denial.
func ClaimDenied() {
	claimsDeniedTotal.Inc()
}

// BulkRowsSkipped records skipped rows from a bulk upload.
func BulkRowsSkipped(n int) {
	bulkRowsSkippedTotal.Add(float64(n))
}

// Instrument wraps a handler with request count, latency and in-flight metrics.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses resource identifiers so metric labels stay bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if rest, ok := strings.CutPrefix(path, "/v1/claims/"); ok && rest != "" {
		switch rest {
		case "upload", "sample-csv":
			return path
		}
		if deny := strings.TrimSuffix(rest, "/deny"); deny != rest && !strings.Contains(deny, "/") {
			return "/v1/claims/:id/deny"
		}
		if !strings.Contains(rest, "/") {
			return "/v1/claims/:id"
		}
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/v1/admin/users/"); ok && rest != "" {
		if id := strings.TrimSuffix(rest, "/toggle-active"); id != rest && !strings.Contains(id, "/") {
			return "/v1/admin/users/:id/toggle-active"
		}
		if !strings.Contains(rest, "/") {
			return "/v1/admin/users/:id"
		}
	}
	return path
}

// statusWriter captures the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
