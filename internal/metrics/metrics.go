// Package metrics declares the Prometheus collectors of the process. They are
// registered with the default registry and served by the health-check server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts finished runs by final state.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robogrid_runs_total",
		Help: "Total number of finished graph runs by final state.",
	}, []string{"state"})

	// NodeExecutionsTotal counts node executions by type and status.
	NodeExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robogrid_node_executions_total",
		Help: "Total number of node executions by node type and status.",
	}, []string{"type", "status"})

	// LoopIterationsTotal counts completed loop body passes.
	LoopIterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "robogrid_loop_iterations_total",
		Help: "Total number of completed while_loop body passes.",
	})

	// SessionDispatchSeconds observes robot command latency.
	SessionDispatchSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "robogrid_session_dispatch_seconds",
		Help:    "Latency of robot commands dispatched through the session.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action", "outcome"})
)
