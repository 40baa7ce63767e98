package processing

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics reports pipeline activity to Prometheus. A nil *Metrics records nothing.
type Metrics struct {
	stepDuration *prometheus.HistogramVec
	userRuns     *prometheus.CounterVec
	jobs         *prometheus.CounterVec
	jobsRunning  prometheus.Gauge
}

// NewMetrics registers the collectors with reg and panics on a registration conflict.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "finsight",
				Subsystem: "processing",
				Name:      "step_duration_seconds",
				Help:      "Duration of each pipeline step per user.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"step", "status"},
		),
		userRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finsight",
				Subsystem: "processing",
				Name:      "user_runs_total",
				Help:      "Pipeline runs per user by outcome.",
			},
			[]string{"outcome"},
		),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finsight",
				Subsystem: "processing",
				Name:      "jobs_total",
				Help:      "Finished batch jobs by type and status.",
			},
			[]string{"type", "status"},
		),
		jobsRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "finsight",
				Subsystem: "processing",
				Name:      "jobs_running",
				Help:      "Batch jobs currently running.",
			},
		),
	}

	reg.MustRegister(m.stepDuration, m.userRuns, m.jobs, m.jobsRunning)

	return m
}

func (m *Metrics) observeStep(step string, err error, d time.Duration) {
	if m == nil {
		return
	}

	m.stepDuration.WithLabelValues(step, outcome(err == nil)).Observe(d.Seconds())
}

func (m *Metrics) observeUser(success bool) {
	if m == nil {
		return
	}

	m.userRuns.WithLabelValues(outcome(success)).Inc()
}

func (m *Metrics) jobStarted() {
	if m == nil {
		return
	}

	m.jobsRunning.Inc()
}

func (m *Metrics) jobFinished(job *Job) {
	if m == nil {
		return
	}

	m.jobsRunning.Dec()
	m.jobs.WithLabelValues(string(job.Type), string(job.Status)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}

	return "failure"
}
