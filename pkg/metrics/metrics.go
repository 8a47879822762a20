// Package metrics exposes the service counters on the default Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "friends_manager",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "friends_manager",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	FriendTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "friends_manager",
		Name:      "friend_transitions_total",
		Help:      "Friend request transitions by operation and outcome.",
	}, []string{"operation", "outcome"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "friends_manager",
		Name:      "rate_limited_total",
		Help:      "Attempts rejected by the rate limiter, by scope.",
	}, []string{"scope"})
)

// Outcome labels for FriendTransitions.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
