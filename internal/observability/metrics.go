package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_saga_messages_consumed_total",
			Help: "Inbound saga messages taken off the request channel",
		},
		[]string{"state"},
	)

	HoldsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_saga_holds_accepted_total",
			Help: "Temporary holds granted by admission control",
		},
	)

	HoldsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_saga_holds_rejected_total",
			Help: "Hold requests rejected for missing rooms or capacity",
		},
	)

	ExpiredHoldsReclaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_saga_expired_holds_reclaimed_total",
			Help: "Stale holds deleted by contending requests",
		},
	)

	BookingsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_saga_bookings_confirmed_total",
			Help: "Holds flipped to final bookings",
		},
	)

	Rollbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_saga_rollbacks_total",
			Help: "Compensating deletes acknowledged",
		},
	)

	StorageTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hotel_saga_storage_tx_seconds",
			Help:    "Duration of storage gateway call sequences per message",
			Buckets: prometheus.DefBuckets,
		},
	)

	MessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_saga_messages_dropped_total",
			Help: "Inbound messages dropped before or during dispatch",
		},
		[]string{"reason"},
	)
)
