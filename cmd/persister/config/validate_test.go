package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var cfg Config

	cfg.Persister.QueueSize = 1000
	cfg.Persister.EnqueueTimeout = time.Second
	cfg.Persister.ShutdownTimeout = 10 * time.Second

	cfg.Store.Type = "mongo"
	cfg.Store.Host = "localhost"
	cfg.Store.Port = 27017
	cfg.Store.Database = "iot-sensors-db"
	cfg.Store.Collection = "iot-sensors-data"
	cfg.Store.ConnectTimeout = 5 * time.Second
	cfg.Store.OperationTimeout = 5 * time.Second
	cfg.Store.RetryBudget = 30 * time.Second
	cfg.Store.Retry.MaxRetries = 5
	cfg.Store.Retry.BaseDelay = 200 * time.Millisecond
	cfg.Store.Retry.MaxDelay = 5 * time.Second

	cfg.Transport.BrokerURL = "tcp://localhost:1883"
	cfg.Transport.Topic = "factory/telemetry"
	cfg.Transport.QoS = 1
	cfg.Transport.ConnectTimeout = 5 * time.Second

	return cfg
}

func TestValidateAcceptsMongoDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateAcceptsRateLimitWithBurst(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.Messages.PerSecond = 10
	cfg.RateLimit.Messages.Burst = 10
	cfg.RateLimit.Bytes.PerSecond = 1 << 20
	cfg.RateLimit.Bytes.Burst = 1 << 20
	require.NoError(t, cfg.Validate())
}

func TestValidateAcceptsHTTPStore(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Type = "http"
	cfg.Store.BaseURL = "http://ingest.internal:8080"
	require.NoError(t, cfg.Validate())
}

func TestValidateAcceptsExplicitURI(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Host = ""
	cfg.Store.URI = "mongodb://replica-0,replica-1/?replicaSet=rs0"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero queue size", func(c *Config) { c.Persister.QueueSize = 0 }},
		{"zero enqueue timeout", func(c *Config) { c.Persister.EnqueueTimeout = 0 }},
		{"zero shutdown timeout", func(c *Config) { c.Persister.ShutdownTimeout = 0 }},
		{"negative msg rate", func(c *Config) { c.RateLimit.Messages.PerSecond = -1 }},
		{"burst without rate", func(c *Config) { c.RateLimit.Bytes.Burst = 10 }},
		{"msg rate without burst", func(c *Config) { c.RateLimit.Messages.PerSecond = 10 }},
		{"byte rate without burst", func(c *Config) { c.RateLimit.Bytes.PerSecond = 1024 }},
		{"unknown store type", func(c *Config) { c.Store.Type = "cassandra" }},
		{"mongo without host or uri", func(c *Config) { c.Store.Host = "" }},
		{"mongo without database", func(c *Config) { c.Store.Database = "" }},
		{"mongo without collection", func(c *Config) { c.Store.Collection = "" }},
		{"http without base url", func(c *Config) { c.Store.Type = "http" }},
		{"zero connect timeout", func(c *Config) { c.Store.ConnectTimeout = 0 }},
		{"zero operation timeout", func(c *Config) { c.Store.OperationTimeout = 0 }},
		{"zero retry budget", func(c *Config) { c.Store.RetryBudget = 0 }},
		{"zero retries", func(c *Config) { c.Store.Retry.MaxRetries = 0 }},
		{"base above max delay", func(c *Config) { c.Store.Retry.BaseDelay = 10 * time.Second }},
		{"empty broker url", func(c *Config) { c.Transport.BrokerURL = "" }},
		{"empty topic", func(c *Config) { c.Transport.Topic = "" }},
		{"qos too high", func(c *Config) { c.Transport.QoS = 3 }},
		{"zero transport connect timeout", func(c *Config) { c.Transport.ConnectTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
