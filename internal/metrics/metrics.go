package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HoldsCreated counts accepted holds by booking type.
	HoldsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venue",
			Name:      "holds_created_total",
			Help:      "The total number of holds created",
		},
		[]string{"booking_type"},
	)

	// HoldsRejected counts hold requests refused with a domain error code.
	HoldsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venue",
			Name:      "holds_rejected_total",
			Help:      "The total number of rejected hold requests",
		},
		[]string{"code"},
	)

	// HoldWriteConflicts counts lost optimistic writes that were retried.
	HoldWriteConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "venue",
			Name:      "hold_write_conflicts_total",
			Help:      "The total number of hold inserts that lost the room version race",
		},
	)

	// Confirmations counts confirm attempts by outcome (created, replayed, rejected).
	Confirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venue",
			Name:      "confirmations_total",
			Help:      "The total number of hold confirmations",
		},
		[]string{"outcome"},
	)

	// HoldsExpired counts holds flipped to expired by the sweep.
	HoldsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "venue",
			Name:      "holds_expired_total",
			Help:      "The total number of holds expired by the sweep",
		},
	)

	// NotificationsSent counts confirmation notifications by result.
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venue",
			Name:      "notifications_total",
			Help:      "The total number of booking notifications handled",
		},
		[]string{"stage", "result"},
	)
)
