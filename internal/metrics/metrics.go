package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharilka",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sharilka",
			Name:      "bookings_created_total",
			Help:      "Bookings accepted into the waiting state.",
		},
	)

	bookingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharilka",
			Name:      "booking_decisions_total",
			Help:      "Owner decisions by outcome (approved or rejected).",
		},
		[]string{"outcome"},
	)

	slotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sharilka",
			Name:      "slot_conflicts_total",
			Help:      "Bookings refused because the slot overlaps an approved one.",
		},
	)

	versionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sharilka",
			Name:      "version_conflicts_total",
			Help:      "Updates lost to a concurrent modification.",
		},
	)

	exportTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharilka",
			Name:      "export_tasks_total",
			Help:      "Export queue tasks by final status.",
		},
		[]string{"status"},
	)

	timelineCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharilka",
			Name:      "timeline_cache_total",
			Help:      "Timeline cache lookups by result (hit or miss).",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			bookingDecisions,
			slotConflicts,
			versionConflicts,
			exportTasks,
			timelineCacheHits,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingDecision(outcome string) {
	bookingDecisions.WithLabelValues(outcome).Inc()
}

func IncSlotConflict() {
	slotConflicts.Inc()
}

func IncVersionConflict() {
	versionConflicts.Inc()
}

func IncExportTask(status string) {
	exportTasks.WithLabelValues(status).Inc()
}

func IncTimelineCache(result string) {
	timelineCacheHits.WithLabelValues(result).Inc()
}
