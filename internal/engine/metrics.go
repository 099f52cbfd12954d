package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/sieve/internal/ir"
)

var (
	compilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sieve_query_compiles_total",
			Help: "Total number of query compilations by result code",
		},
		[]string{"code"},
	)

	compileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sieve_query_compile_duration_seconds",
			Help:    "Time spent compiling query clauses",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
	)
)

// observeCompile records one compilation. Query errors are labeled by
// their code, anything else as "error".
func observeCompile(start time.Time, err error) {
	compileDuration.Observe(time.Since(start).Seconds())

	code := "ok"
	if err != nil {
		code = "error"
		if qe, ok := ir.AsQueryError(err); ok {
			code = string(qe.Code)
		}
	}
	compilesTotal.WithLabelValues(code).Inc()
}
