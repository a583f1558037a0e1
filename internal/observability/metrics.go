package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	submissionOutcomes *prometheus.CounterVec
	judgeLatency       prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors for the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		submissionOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_outcomes_total",
			Help: "Graded submissions by canonical outcome.",
		}, []string{"outcome"})

		judgeLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "judge_evaluation_seconds",
			Help:    "Latency distribution for judge evaluations.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, submissionOutcomes, judgeLatency)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// SubmissionOutcomes exposes the graded-submission counter.
func SubmissionOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionOutcomes
}

// JudgeLatency exposes the judge evaluation histogram.
func JudgeLatency() prometheus.Histogram {
	RegisterMetrics()
	return judgeLatency
}
