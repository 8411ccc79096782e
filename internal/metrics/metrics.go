// Package metrics records run outcomes as Prometheus metrics. A one-shot CLI
// has no scrape endpoint, so the registry is written to a node_exporter
// textfile after each run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"labsync/internal/service"
)

const namespace = "labsync"

// Recorder implements service.Observer
type Recorder struct {
	registry *prometheus.Registry

	devices        *prometheus.CounterVec
	deviceDuration *prometheus.HistogramVec
	facts          *prometheus.CounterVec
	interfaces     *prometheus.CounterVec

	runDevices  *prometheus.GaugeVec
	runDuration *prometheus.GaugeVec
	lastRun     *prometheus.GaugeVec
	siteFailed  *prometheus.GaugeVec
}

var _ service.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		devices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "devices_total",
			Help:      "Devices processed, by outcome action and stage.",
		}, []string{"action", "stage"}),
		deviceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "device_duration_seconds",
			Help:      "Time spent collecting and reconciling one device.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"action"}),
		facts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facts_collections_total",
			Help:      "Fact collections, by result.",
		}, []string{"result"}),
		interfaces: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interfaces_total",
			Help:      "Interfaces reconciled, by action.",
		}, []string{"action"}),
		runDevices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_devices",
			Help:      "Devices in the last run of a site, by action.",
		}, []string{"site", "action"}),
		runDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run of a site.",
		}, []string{"site"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run of a site finished.",
		}, []string{"site"}),
		siteFailed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "site_reconcile_failed",
			Help:      "1 if the site record could not be reconciled in the last run.",
		}, []string{"site"}),
	}

	r.registry.MustRegister(
		r.devices,
		r.deviceDuration,
		r.facts,
		r.interfaces,
		r.runDevices,
		r.runDuration,
		r.lastRun,
		r.siteFailed,
	)

	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveDevice records one device outcome
func (r *Recorder) ObserveDevice(o service.DeviceOutcome) {
	r.devices.WithLabelValues(string(o.Action), string(o.Stage)).Inc()
	r.deviceDuration.WithLabelValues(string(o.Action)).Observe(o.Duration.Seconds())

	if o.Action != service.ActionSkipped {
		result := "ok"
		if !o.FactsCollected {
			result = "failed"
		}
		r.facts.WithLabelValues(result).Inc()
	}

	for action, n := range o.Interfaces {
		r.interfaces.WithLabelValues(string(action)).Add(float64(n))
	}
}

// ObserveRun records the summary of a finished run
func (r *Recorder) ObserveRun(rep *service.Report) {
	s := rep.Summary
	for action, n := range map[service.Action]int{
		service.ActionCreated:   s.Created,
		service.ActionUpdated:   s.Updated,
		service.ActionUnchanged: s.Unchanged,
		service.ActionFailed:    s.Failed,
		service.ActionSkipped:   s.Skipped,
	} {
		r.runDevices.WithLabelValues(rep.Site, string(action)).Set(float64(n))
	}

	r.runDuration.WithLabelValues(rep.Site).Set(rep.Duration().Seconds())
	r.lastRun.WithLabelValues(rep.Site).Set(float64(rep.FinishedAt.Unix()))

	failed := 0.0
	if rep.SiteAction == service.ActionFailed {
		failed = 1
	}
	r.siteFailed.WithLabelValues(rep.Site).Set(failed)
}

// WriteTextfile atomically writes the registry in text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
