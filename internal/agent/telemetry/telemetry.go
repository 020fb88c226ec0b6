package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nacala04/ripel-gosset-wrapper/config"
)

// Telemetry records research-run metrics. A nil or disabled Telemetry is
// safe to call everywhere, so the core never checks whether monitoring is on.
type Telemetry struct {
	enabled bool

	runsTotal       *prometheus.CounterVec
	runIterations   prometheus.Histogram
	runResults      prometheus.Histogram
	runDuration     prometheus.Histogram
	llmRequests     *prometheus.CounterVec
	llmLatency      prometheus.Histogram
	toolInvocations *prometheus.CounterVec
}

// NewTelemetry creates telemetry registered on the default prometheus registry
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	if !cfg.Enabled {
		return &Telemetry{}
	}
	return &Telemetry{
		enabled: true,
		runsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "research_runs_total",
			Help: "Completed research runs by stop reason",
		}, []string{"stop_reason"}),
		runIterations: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "research_run_iterations",
			Help:    "Orchestrator iterations consumed per run",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		runResults: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "research_run_results",
			Help:    "Accumulated results returned per run",
			Buckets: prometheus.LinearBuckets(0, 2, 11),
		}),
		runDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "research_run_duration_seconds",
			Help:    "Wall-clock duration of research runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		llmRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "research_llm_requests_total",
			Help: "Language model calls by outcome",
		}, []string{"outcome"}),
		llmLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "research_llm_request_seconds",
			Help:    "Latency of language model calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		toolInvocations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "research_tool_invocations_total",
			Help: "Tool invocations dispatched on behalf of the model",
		}, []string{"tool"}),
	}
}

// RecordRun records the outcome of one completed research run.
func (t *Telemetry) RecordRun(stopReason string, iterations, results int, dur time.Duration) {
	if t == nil || !t.enabled {
		return
	}
	t.runsTotal.WithLabelValues(stopReason).Inc()
	t.runIterations.Observe(float64(iterations))
	t.runResults.Observe(float64(results))
	t.runDuration.Observe(dur.Seconds())
}

// RecordLLMRequest records one language-model call.
func (t *Telemetry) RecordLLMRequest(outcome string, dur time.Duration) {
	if t == nil || !t.enabled {
		return
	}
	t.llmRequests.WithLabelValues(outcome).Inc()
	t.llmLatency.Observe(dur.Seconds())
}

// RecordToolInvocation records one dispatched tool call.
func (t *Telemetry) RecordToolInvocation(tool string) {
	if t == nil || !t.enabled {
		return
	}
	t.toolInvocations.WithLabelValues(tool).Inc()
}
