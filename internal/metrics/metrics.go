package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Auth flows and outcomes used as label values.
const (
	FlowLogin    = "login"
	FlowRegister = "register"
	FlowBearer   = "bearer"

	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookshelf",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookshelf",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// AuthAttempts counts login, registration and bearer checks by outcome.
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookshelf",
			Name:      "auth_attempts_total",
			Help:      "Authentication attempts by flow and outcome",
		},
		[]string{"flow", "outcome"},
	)

	// CatalogMutations counts successful creates and deletes of books and authors.
	CatalogMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookshelf",
			Name:      "catalog_mutations_total",
			Help:      "Catalog writes by resource and action",
		},
		[]string{"resource", "action"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, AuthAttempts, CatalogMutations)
	})
}

// NormalizePath replaces numeric path segments with {id}, for requests that
// did not match a route and so have no pattern.
// E.g. /books/delete/12 -> /books/delete/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

func RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

func RecordAuth(flow, outcome string) {
	AuthAttempts.WithLabelValues(flow, outcome).Inc()
}

func RecordMutation(resource, action string) {
	CatalogMutations.WithLabelValues(resource, action).Inc()
}
