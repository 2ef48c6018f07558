package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment
// variables. Every field has a sensible default — nothing is required
// at boot, since both Mongo and NATS have well-known local defaults.
type Config struct {
	// Server
	AppPort         string
	Host            string
	PrometheusPort  string
	ShutdownTimeout time.Duration

	// Store
	MongoURI string

	// Bus
	NatsURL string

	// Logging
	LogLevel string

	// Dispatch tuning
	BatchLimit       int64
	MaxAttempts      int
	RetryBackoff     time.Duration
	HighPriorityTick time.Duration
	LowPriorityTick  time.Duration
}

func Load() *Config {
	return &Config{
		AppPort:         getEnv("APP_PORT", "8080"),
		Host:            getEnv("HOST", "0.0.0.0"),
		PrometheusPort:  getEnv("PROMETHEUS_PORT", "9090"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),

		NatsURL: getEnv("NATS_URL", "localhost:4222"),

		LogLevel: getEnv("RUST_LOG", "info"),

		BatchLimit:       int64(getInt("DISPATCH_BATCH_LIMIT", 10)),
		MaxAttempts:      getInt("DISPATCH_MAX_ATTEMPTS", 3),
		RetryBackoff:     getDuration("DISPATCH_RETRY_BACKOFF", time.Second),
		HighPriorityTick: getDuration("DISPATCH_HIGH_PRIORITY_TICK", time.Second),
		LowPriorityTick:  getDuration("DISPATCH_LOW_PRIORITY_TICK", 5*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
