package main

import (
	"flag"
	"time"
)

func ParseConfig() Config {
	var cfg Config

	flag.StringVar(
		&cfg.Sensor.ID,
		"sensor.id",
		"temp-01",
		"sensor identifier carried in every reading",
	)

	flag.StringVar(
		&cfg.Sensor.Unit,
		"sensor.unit",
		"C",
		"measurement unit carried in every reading",
	)

	flag.DurationVar(
		&cfg.Sensor.Interval,
		"sensor.interval",
		time.Second,
		"sampling interval",
	)

	flag.Uint64Var(
		&cfg.Sensor.Seed,
		"sensor.seed",
		0,
		"simulation seed (0 = seed from clock)",
	)

	flag.IntVar(
		&cfg.Sensor.QueueSize,
		"sensor.queue-size",
		100,
		"reading queue buffer size",
	)

	flag.Float64Var(
		&cfg.Sensor.SimAmbientC,
		"sensor.sim-ambient",
		21.0,
		"simulation start temperature",
	)

	flag.Float64Var(
		&cfg.Sensor.SimMinC,
		"sensor.sim-min",
		20.0,
		"lower bound of the simulated normal band",
	)

	flag.Float64Var(
		&cfg.Sensor.SimMaxC,
		"sensor.sim-max",
		26.0,
		"upper bound of the simulated normal band",
	)

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
		"topic readings are published to",
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
		"edge",
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
		&cfg.Transport.PublishTimeout,
		"transport.publish-timeout",
		5*time.Second,
		"per-publish timeout",
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

	flag.IntVar(
		&cfg.Retry.MaxRetries,
		"retry.max",
		5,
		"maximum publish attempts per reading",
	)

	flag.DurationVar(
		&cfg.Retry.BaseDelay,
		"retry.base-delay",
		200*time.Millisecond,
		"initial retry backoff delay",
	)

	flag.DurationVar(
		&cfg.Retry.MaxDelay,
		"retry.max-delay",
		5*time.Second,
		"maximum retry backoff delay",
	)

	flag.Parse()

	return cfg
}
