// Package metrics defines and registers all custom Prometheus metrics for
// the portal identity subsystem. It is the single source of truth for
// metric names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// LoginsTotal counts login attempts by entry point and outcome.
// Labels:
//   - method: "password" or "thaid"
//   - result: "ok", "rejected", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// TokenVerificationsTotal counts credential classifications in the gate.
// Labels:
//   - kind: "system" or "session"
//   - result: "ok" or "rejected"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of credential verifications, by kind and result.",
	},
	[]string{"kind", "result"},
)

// HRSyncsTotal counts background roster reconciliations.
// Label:
//   - result: "ok", "error", "dropped"
var HRSyncsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hr_syncs_total",
		Help:      "Total number of background HR reconciliations, by result.",
	},
	[]string{"result"},
)

// SyncQueueDepth tracks the number of sync jobs waiting in each worker
// channel.
// Label:
//   - worker_id: numeric worker index
var SyncQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sync_queue_depth",
		Help:      "Current number of HR sync jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
