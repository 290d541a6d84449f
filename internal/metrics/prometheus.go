package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FilesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qms_ingest_files_processed_total",
			Help: "Total ingested files by detected kind and outcome",
		},
		[]string{"kind", "status"},
	)

	RowsParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qms_ingest_rows_parsed_total",
			Help: "Total non-blank data rows read by record parsers",
		},
		[]string{"kind"},
	)

	RowsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qms_ingest_rows_skipped_total",
			Help: "Total data rows skipped with a warning",
		},
		[]string{"kind"},
	)

	Conversions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qms_ingest_unit_conversions_total",
			Help: "Total unit conversions of complaint quantities by status",
		},
		[]string{"status"},
	)

	ParseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qms_ingest_parse_duration_seconds",
			Help:    "Time spent decoding and parsing one file",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	KpiCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qms_kpi_cache_hits_total",
			Help: "Total KPI query cache hits",
		},
	)

	KpiCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qms_kpi_cache_misses_total",
			Help: "Total KPI query cache misses",
		},
	)
)

var initOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(FilesProcessed)
		prometheus.MustRegister(RowsParsed)
		prometheus.MustRegister(RowsSkipped)
		prometheus.MustRegister(Conversions)
		prometheus.MustRegister(ParseDuration)
		prometheus.MustRegister(KpiCacheHits)
		prometheus.MustRegister(KpiCacheMisses)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
