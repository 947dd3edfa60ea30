// Package metrics exposes the continuation engine's Prometheus
// instrumentation: how often records get parked, how often alerts fire out
// of the Start and Continue Paths, and how often the File-Store Arbiter
// trips. It mirrors the teacher repo's habit of giving each subsystem its
// own small metrics type wired into a shared registry at composition time.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder holds the engine's counters and gauges. A nil *Recorder is valid
// and turns every method into a no-op, so callers that don't care about
// metrics can pass nil instead of threading a feature flag through the
// engine.
type Recorder struct {
	parkedTotal            *prometheus.CounterVec
	alertsTotal            *prometheus.CounterVec
	fileStoreDisabledTotal prometheus.Counter
	resetSweepTotal        prometheus.Counter
	resetTransactionsTotal prometheus.Counter
	parkedRecordsGauge     prometheus.Gauge
}

// NewRecorder registers the engine's metrics on reg and returns a Recorder.
// Pass a dedicated prometheus.Registry (or prometheus.DefaultRegisterer) at
// composition time.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		parkedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suricata",
			Subsystem: "detect",
			Name:      "parked_records_total",
			Help:      "Progress records parked by the Start or Continue Path, by path.",
		}, []string{"path"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suricata",
			Subsystem: "detect",
			Name:      "alerts_total",
			Help:      "Alerts enqueued by the continuation engine, by annotation.",
		}, []string{"annotation"}),
		fileStoreDisabledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "suricata",
			Subsystem: "detect",
			Name:      "filestore_disabled_total",
			Help:      "Times the File-Store Arbiter disabled storage for a transaction/direction.",
		}),
		resetSweepTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "suricata",
			Subsystem: "detect",
			Name:      "reset_sweeps_total",
			Help:      "Rule-set reload sweeps that reset live transaction detect state.",
		}),
		resetTransactionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "suricata",
			Subsystem: "detect",
			Name:      "reset_transactions_total",
			Help:      "Individual transactions reset across all reload sweeps.",
		}),
		parkedRecordsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "suricata",
			Subsystem: "detect",
			Name:      "parked_records_current",
			Help:      "Progress records currently parked, summed across all tracked flows.",
		}),
	}

	for _, c := range []prometheus.Collector{r.parkedTotal, r.alertsTotal, r.fileStoreDisabledTotal, r.resetSweepTotal, r.resetTransactionsTotal, r.parkedRecordsGauge} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RecordPark counts one record parked by the named path ("start" or "continue").
func (r *Recorder) RecordPark(path string) {
	if r == nil {
		return
	}
	r.parkedTotal.WithLabelValues(path).Inc()
	r.parkedRecordsGauge.Inc()
}

// RecordUnpark counts one record leaving the parked set (decided or dropped).
func (r *Recorder) RecordUnpark() {
	if r == nil {
		return
	}
	r.parkedRecordsGauge.Dec()
}

// RecordAlert counts one alert enqueued with the given annotation label.
func (r *Recorder) RecordAlert(annotation string) {
	if r == nil {
		return
	}
	r.alertsTotal.WithLabelValues(annotation).Inc()
}

// RecordFileStoreDisabled counts one File-Store Arbiter trip.
func (r *Recorder) RecordFileStoreDisabled() {
	if r == nil {
		return
	}
	r.fileStoreDisabledTotal.Inc()
}

// RecordResetSweep counts one reload sweep that reset txCount transactions.
func (r *Recorder) RecordResetSweep(txCount int) {
	if r == nil {
		return
	}
	r.resetSweepTotal.Inc()
	r.resetTransactionsTotal.Add(float64(txCount))
}
