package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vk/perfgrid/internal/hooks"
	"github.com/vk/perfgrid/internal/node"
)

const namespace = "perfgrid"

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics is a hook recording node and pipeline outcomes in Prometheus
// collectors.
type Metrics struct {
	hooks.Base

	pipelineRuns     *prometheus.CounterVec
	nodeRuns         *prometheus.CounterVec
	nodeDuration     *prometheus.HistogramVec
	datasetsProduced prometheus.Counter
	activeNodes      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"status"}),
		nodeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_runs_total",
			Help:      "Node executions by node and outcome.",
		}, []string{"node", "status"}),
		nodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_duration_seconds",
			Help:      "Time spent executing each node.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"node"}),
		datasetsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_produced_total",
			Help:      "Datasets written to the store by nodes.",
		}),
		activeNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_nodes",
			Help:      "Nodes currently executing.",
		}),
	}

	for _, c := range []prometheus.Collector{m.pipelineRuns, m.nodeRuns, m.nodeDuration, m.datasetsProduced, m.activeNodes} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) AfterPipelineRun(_ context.Context, _ hooks.RunInfo, err error) {
	m.pipelineRuns.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) BeforeNodeRun(ctx context.Context, _ *node.Node, _ map[string]any) context.Context {
	m.activeNodes.Inc()
	return ctx
}

func (m *Metrics) AfterNodeRun(_ context.Context, n *node.Node, outputs map[string]any, elapsed time.Duration) {
	m.activeNodes.Dec()
	m.nodeRuns.WithLabelValues(n.Name(), StatusSuccess).Inc()
	m.nodeDuration.WithLabelValues(n.Name()).Observe(elapsed.Seconds())
	m.datasetsProduced.Add(float64(len(outputs)))
}

func (m *Metrics) OnNodeError(_ context.Context, n *node.Node, _ error, elapsed time.Duration) {
	m.activeNodes.Dec()
	m.nodeRuns.WithLabelValues(n.Name(), StatusFailure).Inc()
	m.nodeDuration.WithLabelValues(n.Name()).Observe(elapsed.Seconds())
}

func status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

var _ hooks.Hook = (*Metrics)(nil)
