package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// executorMetrics tracks arbitrage execution outcomes. Collectors are left
// unregistered so multiple executors can coexist in tests; callers wanting
// exposition register them on their own registry.
type executorMetrics struct {
	executions       prometheus.Counter
	successes        prometheus.Counter
	failures         *prometheus.CounterVec
	executionLatency prometheus.Histogram
	successRate      prometheus.Gauge
	profitVolume     prometheus.Counter
}

func newExecutorMetrics() *executorMetrics {
	return &executorMetrics{
		executions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbx_executions_total",
			Help: "Total number of arbitrage trigger invocations",
		}),
		successes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbx_executions_success_total",
			Help: "Number of arbitrage executions that settled",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbx_executions_failed_total",
			Help: "Number of discarded arbitrage executions by reason",
		}, []string{"reason"}),
		executionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbx_execution_latency_seconds",
			Help:    "Latency of the full advance-swap-repay sequence",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		successRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arbx_execution_success_rate",
			Help: "Ratio of settled executions to trigger invocations",
		}),
		profitVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbx_profit_volume",
			Help: "Cumulative retained profit in principal-asset base units",
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *executorMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.executions.Describe(ch)
	m.successes.Describe(ch)
	m.failures.Describe(ch)
	m.executionLatency.Describe(ch)
	m.successRate.Describe(ch)
	m.profitVolume.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *executorMetrics) Collect(ch chan<- prometheus.Metric) {
	m.executions.Collect(ch)
	m.successes.Collect(ch)
	m.failures.Collect(ch)
	m.executionLatency.Collect(ch)
	m.successRate.Collect(ch)
	m.profitVolume.Collect(ch)
}

// updateSuccessRate recomputes the success-rate gauge from the counters.
func (m *executorMetrics) updateSuccessRate() {
	successes := counterValue(m.successes)
	total := counterValue(m.executions)
	if total > 0 {
		m.successRate.Set(successes / total)
	}
}

func counterValue(c prometheus.Counter) float64 {
	metric := &dto.Metric{}
	if err := c.Write(metric); err != nil || metric.Counter == nil {
		return 0
	}
	return metric.Counter.GetValue()
}
