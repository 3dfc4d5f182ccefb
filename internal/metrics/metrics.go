package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discrescue_order_transitions_total",
		Help: "Total number of order status transitions persisted.",
	},
		[]string{"from", "to"},
	)

	TransitionRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discrescue_transition_rejections_total",
		Help: "Total number of rejected transition requests by reason.",
	},
		[]string{"reason"},
	)

	AccessDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discrescue_access_decisions_total",
		Help: "Total number of access policy decisions by outcome.",
	},
		[]string{"decision"},
	)

	PlasticReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discrescue_plastic_reviews_total",
		Help: "Total number of plastic type reviews by resulting status.",
	},
		[]string{"status"},
	)

	OutboxPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discrescue_outbox_published_total",
		Help: "Total number of outbox events delivered to the broker.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discrescue_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	OrderCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "discrescue_order_cache_items",
		Help: "Current number of items in the order cache.",
	})
)
