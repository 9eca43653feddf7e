package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters shared across the store, syncer and command router. Registered on
// the default registry and served from /metrics.
var (
	CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripbot_commands_total",
		Help: "Chat commands dispatched, by command and outcome.",
	}, []string{"command", "outcome"})

	StoreMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripbot_store_mutations_total",
		Help: "Item store mutating operations, by operation.",
	}, []string{"operation"})

	StateSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripbot_state_saves_total",
		Help: "Full-state writes to the persisted JSON document.",
	})

	StateSaveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripbot_state_save_failures_total",
		Help: "State writes that failed and were swallowed.",
	})

	SyncPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripbot_sync_publishes_total",
		Help: "Snapshot publishes, by outcome.",
	}, []string{"outcome"})
)
