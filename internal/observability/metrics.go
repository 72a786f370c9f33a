package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "snow_skill"

// Metrics holds the Prometheus counters, histograms, and gauges for the skill.
type Metrics struct {
	Requests        *prometheus.CounterVec // labels: intent
	Classifications *prometheus.CounterVec // labels: outcome={yes,no,maybe,unreachable}
	UnknownCities   prometheus.Counter
	RouteErrors     *prometheus.CounterVec // labels: kind={permission,internal,panic}

	// Municipal page fetching.
	PageFetches       *prometheus.CounterVec // labels: outcome={success,error,breaker_open}
	PageFetchDuration prometheus.Histogram
	PageCache         *prometheus.CounterVec // labels: result={hit,miss}
	BreakerState      *prometheus.GaugeVec   // labels: host; 0 closed, 1 half-open, 2 open

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	LookupEvents *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all skill metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Requests,
		m.Classifications,
		m.UnknownCities,
		m.RouteErrors,
		m.PageFetches,
		m.PageFetchDuration,
		m.PageCache,
		m.BreakerState,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.LookupEvents,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Skill requests by routed intent.",
		}, []string{"intent"}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Snow emergency classifications by outcome.",
		}, []string{"outcome"}),
		UnknownCities: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_cities_total",
			Help:      "Location requests for cities missing from the city database.",
		}),
		RouteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_errors_total",
			Help:      "Requests answered with an error message, by kind.",
		}, []string{"kind"}),
		PageFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetches_total",
			Help:      "Municipal page fetches by outcome.",
		}, []string{"outcome"}),
		PageFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Municipal page fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}),
		PageCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_cache_total",
			Help:      "Page cache lookups by result.",
		}, []string{"result"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Circuit breaker state per municipal host (0 closed, 1 half-open, 2 open).",
		}, []string{"host"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		LookupEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_events_total",
			Help:      "Lookup events published to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}
