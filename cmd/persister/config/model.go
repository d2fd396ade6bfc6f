package config

import (
	"time"

	"github.com/kvoloboi/sensorpipe/internal/infrastructure/tlsconfig"
)

type Config struct {
	Persister PersisterConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Transport TransportConfig
}

type PersisterConfig struct {
	QueueSize       int
	EnqueueTimeout  time.Duration
	QuarantinePath  string
	ShutdownTimeout time.Duration
}

type RateLimitConfig struct {
	Messages RateRuleConfig
	Bytes    RateRuleConfig
}

type RateRuleConfig struct {
	PerSecond int
	Burst     int
}

type StoreConfig struct {
	Type string

	// Mongo connection: URI wins when set, otherwise assembled from parts.
	URI        string
	Host       string
	Port       int
	Username   string
	Password   string
	AuthSource string
	Database   string
	Collection string

	// HTTP store
	BaseURL string

	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
	RetryBudget      time.Duration

	Retry RetryConfig
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

type TransportConfig struct {
	BrokerURL      string
	Topic          string
	QoS            int
	ClientIDPrefix string
	Username       string
	Password       string
	ConnectTimeout time.Duration
	KeepAlive      time.Duration
	TLS            tlsconfig.Config
}
