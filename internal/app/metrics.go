package app

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Heinvv10/gaztime-sub000/internal/metrics"
	"github.com/Heinvv10/gaztime-sub000/internal/service/dispatch"
	"github.com/Heinvv10/gaztime-sub000/internal/service/fulfillment"
)

// Counters are registered once per process; both the API and worker
// containers (and tests building several containers) share the set.
var (
	countersOnce sync.Once

	rateLimitExceededTotal prometheus.Counter
	gatewayRetriesTotal    prometheus.Counter
	dispatchCounters       dispatch.Metrics
	fulfillmentCounters    fulfillment.Metrics
)

func registerCounters() {
	countersOnce.Do(func() {
		rateLimitExceededTotal = metrics.NewRateLimitExceededTotal()
		gatewayRetriesTotal = metrics.NewGatewayRetriesTotal()

		assigned := metrics.NewDispatchAssignmentsTotal()
		expired := metrics.NewDispatchOffersExpiredTotal()
		dispatchCounters = dispatch.Metrics{Assigned: assigned, Expired: expired}

		delivered := metrics.NewOrdersDeliveredTotal()
		cancelled := metrics.NewOrdersCancelledTotal()
		rejectedDebits := metrics.NewWalletDebitsRejectedTotal()
		fulfillmentCounters = fulfillment.Metrics{
			Delivered:      delivered,
			Cancelled:      cancelled,
			DebitsRejected: rejectedDebits,
		}

		prometheus.MustRegister(
			rateLimitExceededTotal, gatewayRetriesTotal,
			assigned, expired,
			delivered, cancelled, rejectedDebits,
		)
	})
}

func newRateLimitExceededCounter() prometheus.Counter {
	registerCounters()
	return rateLimitExceededTotal
}

func newGatewayRetriesCounter() prometheus.Counter {
	registerCounters()
	return gatewayRetriesTotal
}

func newDispatchMetrics() dispatch.Metrics {
	registerCounters()
	return dispatchCounters
}

func newFulfillmentMetrics() fulfillment.Metrics {
	registerCounters()
	return fulfillmentCounters
}
