package guard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var decisionCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "navigation",
		Name:      "decisions_total",
		Help:      "Navigation guard decisions by outcome.",
	},
	[]string{"outcome"},
)

func observeDecision(outcome Outcome) {
	decisionCounter.WithLabelValues(string(outcome)).Inc()
}
