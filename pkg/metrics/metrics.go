package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PlacesRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wanderlist", Name: "places_requests_total", Help: "Number of places provider calls by outcome."},
		[]string{"outcome"},
	)
	PlacesLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "wanderlist", Name: "places_request_duration_seconds", Help: "Latency of places provider calls.", Buckets: prometheus.DefBuckets},
	)
	Searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wanderlist", Name: "searches_total", Help: "Number of search submissions by result."},
		[]string{"result"},
	)
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wanderlist", Name: "logins_total", Help: "Number of OIDC callbacks by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(PlacesRequests)
	reg.MustRegister(PlacesLatency)
	reg.MustRegister(Searches)
	reg.MustRegister(Logins)
}
