package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	dbConnectionPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_connection_pool_stats",
			Help: "Database connection pool statistics (total, idle, acquired)",
		},
		[]string{"state"},
	)

	cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
	)
	cacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	wishlistMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_mutations_total",
			Help: "Wishlist add/remove calls by outcome",
		},
		[]string{"op", "result"},
	)
	wishlistRollbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_rollbacks_total",
			Help: "Optimistic changes reverted after a remote failure, by whether the rollback was applied or discarded as stale",
		},
		[]string{"outcome"},
	)
	wishlistObserverDrops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wishlist_observer_drops_total",
			Help: "Change notifications dropped because an observer buffer was full",
		},
	)
	gatewayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wishlist_gateway_duration_seconds",
			Help:    "Latency of remote wishlist store calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "result"},
	)
	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(httpRequestLatency)
	prometheus.MustRegister(dbConnectionPoolStats)
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
	prometheus.MustRegister(wishlistMutations)
	prometheus.MustRegister(wishlistRollbacks)
	prometheus.MustRegister(wishlistObserverDrops)
	prometheus.MustRegister(gatewayLatency)
	prometheus.MustRegister(breakerState)
}

// RecordMutation counts one wishlist add/remove by result
// ("ok", "noop", "unauthenticated", "remote_failure", "canceled").
func RecordMutation(op, result string) {
	wishlistMutations.WithLabelValues(op, result).Inc()
}

func RecordRollback(applied bool) {
	if applied {
		wishlistRollbacks.WithLabelValues("applied").Inc()
		return
	}
	wishlistRollbacks.WithLabelValues("stale").Inc()
}

func RecordObserverDrop() {
	wishlistObserverDrops.Inc()
}

// SetBreakerState exports a gobreaker state as a number.
func SetBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

// Middleware records HTTP request latency.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriterSpy{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(ww, r)

		duration := time.Since(start).Seconds()
		httpRequestLatency.WithLabelValues(r.Method, r.Pattern, fmt.Sprint(ww.code)).Observe(duration)
	})
}

type responseWriterSpy struct {
	http.ResponseWriter
	code int
}

func (w *responseWriterSpy) WriteHeader(statusCode int) {
	w.code = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Flush lets SSE handlers stream through the latency middleware.
func (w *responseWriterSpy) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *responseWriterSpy) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// StartDBStatsCollector collects pool stats every five seconds until ctx is done.
func StartDBStatsCollector(ctx context.Context, dbPool *pgxpool.Pool) {
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			stats := dbPool.Stat()
			dbConnectionPoolStats.WithLabelValues("total").Set(float64(stats.TotalConns()))
			dbConnectionPoolStats.WithLabelValues("idle").Set(float64(stats.IdleConns()))
			dbConnectionPoolStats.WithLabelValues("acquired").Set(float64(stats.AcquiredConns()))
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
