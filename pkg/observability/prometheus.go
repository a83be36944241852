package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/velora-app/flowengine/pkg/domain"
)

// Metrics collects engine activity into Prometheus collectors.
type Metrics struct {
	nodeExecutions *prometheus.CounterVec
	suspensions    *prometheus.CounterVec
	actionCalls    *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	activeSessions prometheus.Gauge
}

// Option configures Metrics.
type Option func(*metricsConfig)

type metricsConfig struct {
	registerer prometheus.Registerer
	namespace  string
}

// WithRegisterer registers the collectors somewhere other than the
// default registry (tests use prometheus.NewRegistry).
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *metricsConfig) { c.registerer = reg }
}

// WithNamespace prefixes every metric name.
func WithNamespace(ns string) Option {
	return func(c *metricsConfig) { c.namespace = ns }
}

// NewMetrics creates and registers the engine collectors.
func NewMetrics(opts ...Option) *Metrics {
	cfg := metricsConfig{
		registerer: prometheus.DefaultRegisterer,
		namespace:  "flowengine",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Metrics{
		nodeExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "node_executions_total",
			Help:      "Number of flow nodes executed, by node type.",
		}, []string{"type"}),
		suspensions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "suspensions_total",
			Help:      "Number of session suspensions, by reason.",
		}, []string{"reason"}),
		actionCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "action_calls_total",
			Help:      "Number of business action invocations, by action and outcome port.",
		}, []string{"action", "port"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "action_duration_seconds",
			Help:      "Business action call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently running or suspended.",
		}),
	}

	cfg.registerer.MustRegister(
		m.nodeExecutions,
		m.suspensions,
		m.actionCalls,
		m.actionDuration,
		m.activeSessions,
	)
	return m
}

// NodeExecutions exposes the node execution counter.
func (m *Metrics) NodeExecutions() *prometheus.CounterVec { return m.nodeExecutions }

// Suspensions exposes the suspension counter.
func (m *Metrics) Suspensions() *prometheus.CounterVec { return m.suspensions }

// ActionCalls exposes the business action counter.
func (m *Metrics) ActionCalls() *prometheus.CounterVec { return m.actionCalls }

// ActiveSessions exposes the active session gauge.
func (m *Metrics) ActiveSessions() prometheus.Gauge { return m.activeSessions }

// Hooks returns lifecycle hooks feeding these collectors. The result can
// be passed directly to runtime.WithLifecycleHooks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(ctx context.Context, ev *domain.SessionEvent) {
			m.activeSessions.Inc()
		},
		OnSessionEnd: func(ctx context.Context, ev *domain.SessionEvent) {
			m.activeSessions.Dec()
		},
		OnNodeEnter: func(ctx context.Context, ev *domain.NodeEvent) {
			m.nodeExecutions.WithLabelValues(ev.NodeType).Inc()
		},
		OnSuspend: func(ctx context.Context, ev *domain.SuspendEvent) {
			m.suspensions.WithLabelValues(ev.Reason).Inc()
		},
		OnActionReturn: func(ctx context.Context, ev *domain.ActionEvent) {
			port := ev.Port
			if ev.IsError {
				port = "error"
			}
			m.actionCalls.WithLabelValues(ev.Action, port).Inc()
			m.actionDuration.WithLabelValues(ev.Action).Observe(ev.Elapsed.Seconds())
		},
	}
}
