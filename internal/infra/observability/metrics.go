package observability

import (
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the salon backend.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	externalErrors    *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	bookings          *prometheus.CounterVec
	slotConflicts     prometheus.Counter
	assistantReplies  *prometheus.CounterVec
	checkoutsInFlight prometheus.Gauge
	logins            *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "salon_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salon_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salon_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salon_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		bookings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salon_bookings_total",
				Help: "Checkouts by outcome.",
			},
			[]string{"status"},
		),
		slotConflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "salon_slot_conflicts_total",
				Help: "Reservations rejected because the slot was already held.",
			},
		),
		assistantReplies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salon_assistant_replies_total",
				Help: "Assistant answers by source.",
			},
			[]string{"source"},
		),
		checkoutsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "salon_checkouts_in_flight",
				Help: "Checkouts currently processing payment.",
			},
		),
		logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salon_logins_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrBooking counts a finished checkout; status is "confirmed" or "failed".
func (m *Metrics) IncrBooking(status string) {
	m.bookings.WithLabelValues(status).Inc()
}

// IncrSlotConflict counts a reservation lost to a concurrent booking.
func (m *Metrics) IncrSlotConflict() {
	m.slotConflicts.Inc()
}

// IncrAssistantReply counts an assistant answer; source is "model" or "fallback".
func (m *Metrics) IncrAssistantReply(source string) {
	m.assistantReplies.WithLabelValues(source).Inc()
}

// IncrLogin counts a login attempt; outcome is "success" or "failure".
func (m *Metrics) IncrLogin(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

// CheckoutStarted and CheckoutFinished track the in-flight gauge.
func (m *Metrics) CheckoutStarted()  { m.checkoutsInFlight.Inc() }
func (m *Metrics) CheckoutFinished() { m.checkoutsInFlight.Dec() }

// Snapshot returns the cumulative booking counters for GET /v1/admin/metrics.
func (m *Metrics) Snapshot() *domain.BookingMetrics {
	hits := getCounterValue(m.cacheHits, "analytics") + getCounterValue(m.cacheHits, "wizard")
	misses := getCounterValue(m.cacheMisses, "analytics") + getCounterValue(m.cacheMisses, "wizard")

	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.BookingMetrics{
		BookingsConfirmed: getCounterValue(m.bookings, "confirmed"),
		BookingsFailed:    getCounterValue(m.bookings, "failed"),
		SlotConflicts:     readCounter(m.slotConflicts),
		AssistantReplies:  getCounterValue(m.assistantReplies, "model"),
		AssistantFallback: getCounterValue(m.assistantReplies, "fallback"),
		CacheHitRate:      hitRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return readCounter(cv.WithLabelValues(label))
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
