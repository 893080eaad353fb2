package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

// Metrics holds the collectors of the service. Collectors are registered on
// the registerer passed to New.
type Metrics struct {
	Reconciled      *prometheus.CounterVec
	ReconcileTime   prometheus.Histogram
	ScopeFallbacks  prometheus.Counter
	DuplicateMaster prometheus.Counter
	Queued          prometheus.Counter
	ExportFailures  prometheus.Counter
	ExportDuration  prometheus.Histogram
	Exported        prometheus.Counter
	SinkFailures    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "machineinfo_reconciled_total",
			Help: "Machine lookups by view and outcome.",
		}, []string{"view", "outcome"}),
		ReconcileTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "machineinfo_reconcile_duration_seconds",
			Help:    "Time to load and reconcile one machine.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		ScopeFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "machineinfo_permission_fallbacks_total",
			Help: "Permission lookups that failed and masked everything.",
		}),
		DuplicateMaster: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "machineinfo_duplicate_master_total",
			Help: "Lookups that matched more than one master row.",
		}),
		Queued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "machineinfo_export_queued_total",
			Help: "Machine records handed to the export saver.",
		}),
		ExportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "machineinfo_export_failures_total",
			Help: "Machines skipped by an export batch.",
		}),
		ExportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "machineinfo_export_duration_seconds",
			Help:    "Duration of an export batch.",
			Buckets: prometheus.DefBuckets,
		}),
		Exported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "machineinfo_exported_total",
			Help: "Machine records written by every export sink.",
		}),
		SinkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "machineinfo_export_sink_failures_total",
			Help: "Machine records at least one export sink failed to write.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Reconciled, m.ReconcileTime, m.ScopeFallbacks, m.DuplicateMaster,
			m.Queued, m.ExportFailures, m.ExportDuration, m.Exported, m.SinkFailures)
	}
	return m
}

func (m *Metrics) ObserveReconcile(view string, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Reconciled.WithLabelValues(view, outcome).Inc()
	m.ReconcileTime.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncScopeFallback() {
	if m == nil {
		return
	}
	m.ScopeFallbacks.Inc()
}

func (m *Metrics) IncDuplicateMaster() {
	if m == nil {
		return
	}
	m.DuplicateMaster.Inc()
}

// ObserveExport records a batch: queued records went to the saver, failed
// machines never reached it.
func (m *Metrics) ObserveExport(queued, failed int, start time.Time) {
	if m == nil {
		return
	}
	m.Queued.Add(float64(queued))
	m.ExportFailures.Add(float64(failed))
	m.ExportDuration.Observe(time.Since(start).Seconds())
}

// ObserveSinkWrite records the outcome of writing one record to the sinks.
func (m *Metrics) ObserveSinkWrite(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.SinkFailures.Inc()
		return
	}
	m.Exported.Inc()
}
