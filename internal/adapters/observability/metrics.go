package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "unihaven"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|stale|set|del|error
	)
	AuditEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "audit_entries_total", Help: "Action log entries written."},
		[]string{"action"},
	)
	ReservationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "reservation_transitions_total", Help: "Reservation status changes."},
		[]string{"from", "to"}, // from is "none" on creation
	)
	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "search_results",
			Help:    "Accommodations returned per search.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"sort_by"},
	)
)

// Serve exposes reg on a separate addr. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		AuditEntries, ReservationTransitions, SearchResults)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|stale|set|del|error
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveAudit(action string) {
	AuditEntries.WithLabelValues(action).Inc()
}

func ObserveTransition(from, to string) {
	if from == "" {
		from = "none"
	}
	ReservationTransitions.WithLabelValues(from, to).Inc()
}

func ObserveSearch(sortBy string, n int) {
	SearchResults.WithLabelValues(sortBy).Observe(float64(n))
}
