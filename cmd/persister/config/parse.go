package config

import (
	"flag"
	"time"
)

func Parse() Config {
	var cfg Config

	// Persister
	flag.IntVar(
		&cfg.Persister.QueueSize,
		"persister.queue-size",
		1000,
		"message channel buffer size",
	)

	flag.DurationVar(
		&cfg.Persister.EnqueueTimeout,
		"persister.enqueue-timeout",
		time.Second,
		"max time a delivery may block on rate limiting (a full queue drops immediately)",
	)

	flag.StringVar(
		&cfg.Persister.QuarantinePath,
		"persister.quarantine-path",
		"./discarded.qlog",
		"path to the discarded-payload log (empty = disabled)",
	)

	flag.DurationVar(
		&cfg.Persister.ShutdownTimeout,
		"persister.shutdown-timeout",
		10*time.Second,
		"max time to wait for the worker to drain on shutdown",
	)

	// Rate limit — messages
	flag.IntVar(
		&cfg.RateLimit.Messages.PerSecond,
		"ratelimit.msgs-per-sec",
		0,
		"max messages per second (0 = unlimited)",
	)

	flag.IntVar(
		&cfg.RateLimit.Messages.Burst,
		"ratelimit.msgs-burst",
		0,
		"burst size for message rate limiter (required when msgs-per-sec > 0)",
	)

	// Rate limit — bytes
	flag.IntVar(
		&cfg.RateLimit.Bytes.PerSecond,
		"ratelimit.bytes-per-sec",
		0,
		"bytes per second rate limit (0 = unlimited)",
	)

	flag.IntVar(
		&cfg.RateLimit.Bytes.Burst,
		"ratelimit.bytes-burst",
		0,
		"burst size for byte rate limiter (required when bytes-per-sec > 0)",
	)

	// Store
	flag.StringVar(
		&cfg.Store.Type,
		"store.type",
		"mongo",
		"mongo or http",
	)

	flag.StringVar(
		&cfg.Store.URI,
		"store.uri",
		"",
		"full mongodb:// URI (overrides host/user/pass parts)",
	)

	flag.StringVar(
		&cfg.Store.Host,
		"store.host",
		"localhost",
		"store host",
	)

	flag.IntVar(
		&cfg.Store.Port,
		"store.port",
		27017,
		"store port",
	)

	flag.StringVar(
		&cfg.Store.Username,
		"store.username",
		"",
		"store username (empty = unauthenticated)",
	)

	flag.StringVar(
		&cfg.Store.Password,
		"store.password",
		"",
		"store password",
	)

	flag.StringVar(
		&cfg.Store.AuthSource,
		"store.auth-source",
		"admin",
		"authentication database",
	)

	flag.StringVar(
		&cfg.Store.Database,
		"store.database",
		"iot-sensors-db",
		"database name",
	)

	flag.StringVar(
		&cfg.Store.Collection,
		"store.collection",
		"iot-sensors-data",
		"collection name",
	)

	flag.StringVar(
		&cfg.Store.BaseURL,
		"store.base-url",
		"",
		"ingest endpoint base URL (http store only)",
	)

	flag.DurationVar(
		&cfg.Store.ConnectTimeout,
		"store.connect-timeout",
		5*time.Second,
		"store connect / server selection timeout",
	)

	flag.DurationVar(
		&cfg.Store.OperationTimeout,
		"store.operation-timeout",
		5*time.Second,
		"per-insert timeout",
	)

	flag.DurationVar(
		&cfg.Store.RetryBudget,
		"store.retry-budget",
		30*time.Second,
		"total time allowed to retry one insert",
	)

	flag.IntVar(
		&cfg.Store.Retry.MaxRetries,
		"store.retry.max",
		5,
		"maximum insert attempts per record",
	)

	flag.DurationVar(
		&cfg.Store.Retry.BaseDelay,
		"store.retry.base-delay",
		200*time.Millisecond,
		"initial retry backoff delay",
	)

	flag.DurationVar(
		&cfg.Store.Retry.MaxDelay,
		"store.retry.max-delay",
		5*time.Second,
		"maximum retry backoff delay",
	)

	// Transport
	flag.StringVar(
		&cfg.Transport.BrokerURL,
		"transport.broker-url",
		"tcp://localhost:1883",
		"MQTT broker URL",
	)

	flag.StringVar(
		&cfg.Transport.Topic,
		"transport.topic",
		"factory/telemetry",
		"topic to subscribe to",
	)

	flag.IntVar(
		&cfg.Transport.QoS,
		"transport.qos",
		1,
		"MQTT quality of service (0, 1 or 2)",
	)

	flag.StringVar(
		&cfg.Transport.ClientIDPrefix,
		"transport.client-id-prefix",
		"persister",
		"MQTT client id prefix",
	)

	flag.StringVar(
		&cfg.Transport.Username,
		"transport.username",
		"",
		"broker username (empty = anonymous)",
	)

	flag.StringVar(
		&cfg.Transport.Password,
		"transport.password",
		"",
		"broker password",
	)

	flag.DurationVar(
		&cfg.Transport.ConnectTimeout,
		"transport.connect-timeout",
		5*time.Second,
		"broker connect timeout",
	)

	flag.DurationVar(
		&cfg.Transport.KeepAlive,
		"transport.keep-alive",
		30*time.Second,
		"MQTT keep-alive interval",
	)

	// ---- TLS flags ----
	flag.BoolVar(
		&cfg.Transport.TLS.Enabled,
		"transport.tls.enabled",
		false,
		"enable TLS for the broker connection",
	)

	flag.StringVar(
		&cfg.Transport.TLS.CACertPath,
		"transport.tls.ca",
		"",
		"path to CA certificate (PEM, empty = system roots)",
	)

	flag.StringVar(
		&cfg.Transport.TLS.CertPath,
		"transport.tls.cert",
		"",
		"path to client certificate (PEM, optional)",
	)

	flag.StringVar(
		&cfg.Transport.TLS.KeyPath,
		"transport.tls.key",
		"",
		"path to client private key (PEM, optional)",
	)

	flag.StringVar(
		&cfg.Transport.TLS.ServerName,
		"transport.tls.server-name",
		"",
		"TLS server name override (optional)",
	)

	flag.BoolVar(
		&cfg.Transport.TLS.InsecureSkipVerify,
		"transport.tls.insecure",
		false,
		"skip TLS verification (DEV ONLY)",
	)

	flag.Parse()

	return cfg
}
