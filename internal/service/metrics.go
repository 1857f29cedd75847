package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_search_requests_total",
			Help: "Search requests by filter kind and outcome (ok, error).",
		},
		[]string{"kind", "outcome"},
	)

	searchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_search_duration_seconds",
			Help:    "Search latency by filter kind, cache hits included.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)
