package tool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const tracerName = "assistant.tool"

// Outcome labels are a fixed set so the series count stays bounded.
const (
	outcomeOK           = "ok"
	outcomeUnknownTool  = "unknown_tool"
	outcomePrecondition = "precondition"
	outcomeArgument     = "argument"
	outcomeDownstream   = "downstream"
	outcomeTimeout      = "timeout"
	outcomePanic        = "panic"
)

var (
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assistant",
			Subsystem: "tool",
			Name:      "dispatch_total",
			Help:      "Tool dispatches by tool and outcome.",
		},
		[]string{"tool", "outcome"},
	)

	dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "assistant",
			Subsystem: "tool",
			Name:      "dispatch_duration_seconds",
			Help:      "Wall time of a tool dispatch including downstream calls.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"tool"},
	)
)

func recordDispatch(tool, outcome string, d time.Duration) {
	dispatchTotal.WithLabelValues(tool, outcome).Inc()
	dispatchDuration.WithLabelValues(tool).Observe(d.Seconds())
}
