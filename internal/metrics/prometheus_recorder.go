package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	taskDuration  *prom.HistogramVec
	taskResults   *prom.CounterVec
	graphDuration *prom.HistogramVec
	graphOutcome  *prom.CounterVec
	broadcasts    prom.Counter
	clients       prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them with reg
// (a fresh registry when reg is nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		taskDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "assetbuilder",
			Name:      "task_duration_seconds",
			Help:      "Duration of individual build tasks",
			Buckets:   prom.DefBuckets,
		}, []string{"task"}),
		taskResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "task_results_total",
			Help:      "Task result counts by outcome",
		}, []string{"task", "result"}),
		graphDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "assetbuilder",
			Name:      "graph_duration_seconds",
			Help:      "Duration of full task graph runs",
			Buckets:   prom.DefBuckets,
		}, []string{"graph"}),
		graphOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "graph_outcomes_total",
			Help:      "Task graph outcomes by final status",
		}, []string{"graph", "result"}),
		broadcasts: prom.NewCounter(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "livereload_broadcasts_total",
			Help:      "Reload signals sent to connected browsers",
		}),
		clients: prom.NewGauge(prom.GaugeOpts{
			Namespace: "assetbuilder",
			Name:      "livereload_clients",
			Help:      "Currently connected live reload clients",
		}),
	}
	reg.MustRegister(pr.taskDuration, pr.taskResults, pr.graphDuration, pr.graphOutcome, pr.broadcasts, pr.clients)
	return pr
}

func (p *PrometheusRecorder) ObserveTaskDuration(task string, d time.Duration) {
	if p == nil {
		return
	}
	p.taskDuration.WithLabelValues(task).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTaskResult(task string, result ResultLabel) {
	if p == nil {
		return
	}
	p.taskResults.WithLabelValues(task, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveGraphDuration(graph string, d time.Duration) {
	if p == nil {
		return
	}
	p.graphDuration.WithLabelValues(graph).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncGraphOutcome(graph string, result ResultLabel) {
	if p == nil {
		return
	}
	p.graphOutcome.WithLabelValues(graph, string(result)).Inc()
}

func (p *PrometheusRecorder) IncReloadBroadcast() {
	if p == nil {
		return
	}
	p.broadcasts.Inc()
}

func (p *PrometheusRecorder) SetReloadClients(n int) {
	if p == nil {
		return
	}
	p.clients.Set(float64(n))
}
