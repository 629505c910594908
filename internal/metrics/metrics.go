package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glowup",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "glowup",
			Name:      "bookings_created_total",
			Help:      "Bookings accepted by the store.",
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glowup",
			Name:      "status_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"status"},
	)

	syncDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glowup",
			Name:      "sync_deliveries_total",
			Help:      "Collection deliveries to subscribers by backend.",
		},
		[]string{"backend"},
	)

	adviceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glowup",
			Name:      "advice_requests_total",
			Help:      "Advice requests by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			statusTransitions,
			syncDeliveries,
			adviceRequests,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts one accepted booking.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncTransition counts one status transition to the given status.
func IncTransition(status string) {
	statusTransitions.WithLabelValues(status).Inc()
}

// IncSyncDelivery counts one collection delivery for a backend.
func IncSyncDelivery(backend string) {
	syncDeliveries.WithLabelValues(backend).Inc()
}

// IncAdvice counts one advice request outcome (ok, fallback).
func IncAdvice(outcome string) {
	adviceRequests.WithLabelValues(outcome).Inc()
}
