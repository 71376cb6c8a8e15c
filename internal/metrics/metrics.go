package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// Metrics holds the application counters.
type Metrics struct {
	MergeDroppedItems  prometheus.Counter
	RemoteSyncFailures *prometheus.CounterVec
	OrdersPlaced       *prometheus.CounterVec
	OrdersFailed       prometheus.Counter
	HTTPDuration       *prometheus.HistogramVec
}

// New registers the application counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		MergeDroppedItems: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_merge_dropped_items_total",
			Help:      "Cart items dropped during merge because they had no id, productId or name.",
		}),
		RemoteSyncFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_sync_failures_total",
			Help:      "Failed or skipped remote cart store calls, by operation.",
		}, []string{"op"}),
		OrdersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders created, by payment method.",
		}, []string{"method"}),
		OrdersFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_failed_total",
			Help:      "Order submissions rejected by the remote store.",
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method, route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// NewNop returns counters registered on a private registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
