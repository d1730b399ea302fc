package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RecordsIngested counts durable rows appended, by metric kind.
var RecordsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "healthsync_records_ingested_total",
	Help: "Telemetry records durably stored, by metric kind.",
}, []string{"kind"})

// InsightRequests counts insight pipeline runs by terminal disposition.
// Provider failures are masked behind fallback insights at the API, so the
// fallback label is the only operator-visible signal of a provider outage
// short of reading logs.
var InsightRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "healthsync_insight_requests_total",
	Help: "Insight pipeline runs, by disposition (generated, fallback, no_data).",
}, []string{"disposition"})
