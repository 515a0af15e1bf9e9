package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photo_commerce_http_requests_total",
		Help: "Total HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "photo_commerce_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	PhotosIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photo_commerce_photos_ingested_total",
		Help: "Photos that completed the full three-variant pipeline.",
	})

	PhotoIngestFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photo_commerce_photo_ingest_failures_total",
		Help: "Per-file pipeline failures by stage.",
	}, []string{"stage"})

	SignedURLsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photo_commerce_signed_urls_issued_total",
		Help: "Signed asset URLs minted.",
	})

	CheckoutAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photo_commerce_checkout_attempts_total",
		Help: "Checkout handoffs by result.",
	}, []string{"result"})
)
