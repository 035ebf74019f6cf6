package refillqueue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "refillqueue",
		Name:      "sweep_runs_total",
		Help:      "Number of batch sweeps that acquired the lock and ran.",
	})
	itemsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "refillqueue",
		Name:      "items_processed_total",
		Help:      "Refill items successfully advanced past the payment checkpoint.",
	})
	chargeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "refillqueue",
		Name:      "charge_failures_total",
		Help:      "Per-item failures recorded during batch sweeps.",
	})
	itemsDispensed = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "refillqueue",
		Name:      "items_dispensed_total",
		Help:      "Refill items handed off to the pharmacy and dispensed.",
	})
)
