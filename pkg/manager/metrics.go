package manager

import (
	"time"

	"github.com/kasuboski/medialink/pkg/metadata"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exported by the manager. A nil *Metrics records nothing.
type Metrics struct {
	FileOutcomes *prometheus.CounterVec
	TickDuration prometheus.Histogram
	SkippedTicks prometheus.Counter
	CacheLookups *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry returns a registry with the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FileOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medialink_file_outcomes_total",
				Help: "Terminal ledger writes by status and media type",
			},
			[]string{"status", "media_type"},
		),
		TickDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "medialink_reconcile_duration_seconds",
				Help:    "Duration of reconciliation ticks",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),
		SkippedTicks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "medialink_reconcile_skipped_total",
				Help: "Ticks skipped because a previous tick was still running",
			},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medialink_metadata_cache_lookups_total",
				Help: "Metadata cache lookups by kind and result",
			},
			[]string{"kind", "result"},
		),
		registry: reg,
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Hit(kind metadata.Kind) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(string(kind), "hit").Inc()
}

func (m *Metrics) Miss(kind metadata.Kind) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(string(kind), "miss").Inc()
}

func (m *Metrics) fileProcessed(file *model.ScannedFile) {
	if m == nil || file == nil {
		return
	}
	m.FileOutcomes.WithLabelValues(file.Status, file.MediaType).Inc()
}

func (m *Metrics) tickFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.TickDuration.Observe(d.Seconds())
}

func (m *Metrics) tickSkipped() {
	if m == nil {
		return
	}
	m.SkippedTicks.Inc()
}
