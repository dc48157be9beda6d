package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	consultaRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nlapi_consulta_requests_total",
			Help: "Total number of natural-language query requests.",
		},
	)
	consultaFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlapi_consulta_failures_total",
			Help: "Natural-language query failures by pipeline stage.",
		},
		[]string{"stage"},
	)
	modelCallDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nlapi_model_call_duration_seconds",
			Help:    "Completion API call latency by purpose.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"purpose"},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlapi_query_duration_seconds",
			Help:    "Database statement execution latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	queryRowsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlapi_query_rows_returned",
			Help:    "Row counts returned by executed statements.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500, 1000},
		},
	)
	rejectedSQLTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nlapi_rejected_sql_total",
			Help: "Raw SQL requests rejected by the read-only gate.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		consultaRequestsTotal,
		consultaFailuresTotal,
		modelCallDurationSeconds,
		queryDurationSeconds,
		queryRowsReturned,
		rejectedSQLTotal,
	)
}

func IncrementConsultaRequests() {
	consultaRequestsTotal.Inc()
}

func IncrementConsultaFailure(stage string) {
	consultaFailuresTotal.WithLabelValues(stage).Inc()
}

func ObserveModelCall(purpose string, elapsed time.Duration) {
	modelCallDurationSeconds.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

func ObserveQuery(rows int, elapsed time.Duration) {
	queryDurationSeconds.Observe(elapsed.Seconds())
	queryRowsReturned.Observe(float64(rows))
}

func IncrementRejectedSQL() {
	rejectedSQLTotal.Inc()
}
