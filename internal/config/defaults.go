package config

import "time"

const (
	defaultPort             = 8080
	defaultPprofPort        = 6060
	defaultOperationTimeout = 3 * time.Second
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "gaztime",
	Pass: "gaztime",
	Name: "gaztime",
}

var defaultKafka = Kafka{
	Topic:   "order-events",
	GroupID: "dispatch-worker",
}

var defaultDispatch = Dispatch{
	MaxActiveDeliveries: 3,
	OfferTimeout:        3 * time.Minute,
	SweepInterval:       10 * time.Second,
	SearchRadiusKm:      15,
}

var defaultNotify = Notify{
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

var defaultRateLimit = RateLimit{
	Enabled: true,
	RPS:     50,
	Burst:   100,
}

// DefaultDispatch returns the default dispatch settings.
func DefaultDispatch() Dispatch {
	return defaultDispatch
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}
