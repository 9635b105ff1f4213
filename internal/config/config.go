package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DB stores Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns the pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka stores order event bus settings. Empty brokers disable the bus.
type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Dispatch stores driver assignment settings. All of these used to be
// scattered constants; they are explicit here so tests can vary them.
type Dispatch struct {
	MaxActiveDeliveries int
	OfferTimeout        time.Duration
	SweepInterval       time.Duration
	SearchRadiusKm      float64
}

// Notify stores settings of the external driver/customer notification gateway.
type Notify struct {
	BaseURL     string
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RateLimit stores API throttle settings.
type RateLimit struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// Config stores all service settings.
type Config struct {
	Port             int
	PprofPort        int
	OperationTimeout time.Duration
	DB               DB
	Kafka            Kafka
	Dispatch         Dispatch
	Notify           Notify
	RateLimit        RateLimit
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:             envInt("PORT", defaultPort),
		PprofPort:        envInt("PPROF_PORT", defaultPprofPort),
		OperationTimeout: envDuration("OPERATION_TIMEOUT", defaultOperationTimeout),
		DB: DB{
			Host: envStr("POSTGRES_HOST", defaultDB.Host),
			Port: envStr("POSTGRES_PORT", defaultDB.Port),
			User: envStr("POSTGRES_USER", defaultDB.User),
			Pass: envStr("POSTGRES_PASSWORD", defaultDB.Pass),
			Name: envStr("POSTGRES_DB", defaultDB.Name),
		},
		Kafka: Kafka{
			Brokers: envList("KAFKA_BROKERS", nil),
			Topic:   envStr("KAFKA_ORDERS_TOPIC", defaultKafka.Topic),
			GroupID: envStr("KAFKA_GROUP_ID", defaultKafka.GroupID),
		},
		Dispatch: Dispatch{
			MaxActiveDeliveries: envInt("DISPATCH_MAX_ACTIVE_DELIVERIES", defaultDispatch.MaxActiveDeliveries),
			OfferTimeout:        envDuration("DISPATCH_OFFER_TIMEOUT", defaultDispatch.OfferTimeout),
			SweepInterval:       envDuration("DISPATCH_SWEEP_INTERVAL", defaultDispatch.SweepInterval),
			SearchRadiusKm:      envFloat("DISPATCH_SEARCH_RADIUS_KM", defaultDispatch.SearchRadiusKm),
		},
		Notify: Notify{
			BaseURL:     envStr("NOTIFY_BASE_URL", ""),
			MaxAttempts: envInt("NOTIFY_MAX_ATTEMPTS", defaultNotify.MaxAttempts),
			BaseDelay:   envDuration("NOTIFY_BASE_DELAY", defaultNotify.BaseDelay),
			MaxDelay:    envDuration("NOTIFY_MAX_DELAY", defaultNotify.MaxDelay),
		},
		RateLimit: RateLimit{
			Enabled: envBool("RATE_LIMIT_ENABLED", defaultRateLimit.Enabled),
			RPS:     envFloat("RATE_LIMIT_RPS", defaultRateLimit.RPS),
			Burst:   envInt("RATE_LIMIT_BURST", defaultRateLimit.Burst),
		},
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.Parse()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Dispatch.MaxActiveDeliveries <= 0 {
		return fmt.Errorf("invalid max active deliveries: %d", c.Dispatch.MaxActiveDeliveries)
	}
	if c.Dispatch.OfferTimeout <= 0 {
		return fmt.Errorf("invalid offer timeout: %s", c.Dispatch.OfferTimeout)
	}
	if c.Dispatch.SweepInterval <= 0 {
		return fmt.Errorf("invalid sweep interval: %s", c.Dispatch.SweepInterval)
	}
	if c.Dispatch.SearchRadiusKm <= 0 {
		return fmt.Errorf("invalid search radius: %f", c.Dispatch.SearchRadiusKm)
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
