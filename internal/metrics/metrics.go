package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewGatewayRetriesTotal returns a Prometheus counter for the number of retry attempts performed by gateways
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	})
}

// NewDispatchAssignmentsTotal returns a Prometheus counter for the number of accepted dispatch offers
func NewDispatchAssignmentsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_assignments_total",
		Help: "Total number of orders assigned to a driver through dispatch",
	})
}

// NewDispatchOffersExpiredTotal returns a Prometheus counter for the number of dispatch offers that timed out
func NewDispatchOffersExpiredTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_offers_expired_total",
		Help: "Total number of dispatch offers that expired unanswered",
	})
}

// NewOrdersDeliveredTotal returns a Prometheus counter for the number of completed deliveries
func NewOrdersDeliveredTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_delivered_total",
		Help: "Total number of orders delivered",
	})
}

// NewOrdersCancelledTotal returns a Prometheus counter for the number of cancelled orders
func NewOrdersCancelledTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of orders cancelled",
	})
}

// NewWalletDebitsRejectedTotal returns a Prometheus counter for the number of wallet debits rejected for insufficient funds
func NewWalletDebitsRejectedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wallet_debits_rejected_total",
		Help: "Total number of wallet debits rejected due to insufficient funds",
	})
}
