package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of scheduled jobs.
type Metrics struct {
	// JobRunsTotal counts job runs by job and status (started/success/failure).
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures job execution time.
	JobDurationSeconds *prometheus.HistogramVec

	// JobLastSuccessTimestamp is the Unix time of each job's last success.
	JobLastSuccessTimestamp *prometheus.GaugeVec
}

// NewMetrics registers the job metrics with reg, or with the default
// registry when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by job and status",
		}, []string{"job", "status"}),
		JobDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		}, []string{"job"}),
		JobLastSuccessTimestamp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}, []string{"job"}),
	}
}

// RecordJobRun counts a run of job with status.
func (m *Metrics) RecordJobRun(job, status string) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

// RecordJobDuration observes the execution time of job.
func (m *Metrics) RecordJobDuration(job string, seconds float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// RecordLastSuccess stamps the last success of job with the current time.
func (m *Metrics) RecordLastSuccess(job string) {
	m.JobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
