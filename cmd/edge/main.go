package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kvoloboi/sensorpipe/internal/application/common"
	"github.com/kvoloboi/sensorpipe/internal/application/edge"
	"github.com/kvoloboi/sensorpipe/internal/domain"
	"github.com/kvoloboi/sensorpipe/internal/infrastructure/tlsconfig"
	transportmqtt "github.com/kvoloboi/sensorpipe/internal/infrastructure/transport/mqtt"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	counters := edge.NewCounters()

	cfg := ParseConfig()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid cli parameters", "error", err)
		os.Exit(2)
	}

	source, err := edge.NewSimulatedSensor(cfg.Sensor.ID, cfg.Sensor.Unit, edge.SimConfig{
		AmbientC:   cfg.Sensor.SimAmbientC,
		NormalMinC: cfg.Sensor.SimMinC,
		NormalMaxC: cfg.Sensor.SimMaxC,
		Seed:       cfg.Sensor.Seed,
	})
	if err != nil {
		logger.Error("failed to create sensor source", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	publisher, err := createPublisher(cfg, logger)
	if err != nil {
		logger.Error("failed to create publisher", "error", err)
		os.Exit(1)
	}

	queue := make(chan domain.Reading, cfg.Sensor.QueueSize)

	sampler := edge.NewSampler(source, cfg.Sensor.Interval, queue, logger, counters)

	dispatcher := edge.NewDispatcher(
		queue,
		publisher,
		edge.DispatcherConfig{
			MaxRetries: cfg.Retry.MaxRetries,
			Backoff:    common.NewBackoff(cfg.Retry.BaseDelay, cfg.Retry.MaxDelay),
		},
		logger,
		counters,
		cancel,
	)

	samplerDone := make(chan struct{})

	go func() {
		sampler.Run(ctx)
		close(samplerDone)
	}()

	dispatcherDone := make(chan struct{})

	go func() {
		dispatcher.Run(ctx)
		close(dispatcherDone)
	}()

	// ---- Wait for shutdown signal ----
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// ---- Stop sampler & dispatcher ----
	<-samplerDone    // no more readings will be queued
	close(queue)     // signals dispatcher no more readings
	<-dispatcherDone // wait until queued readings are published

	logger.Info("edge node shutdown complete")
}

func createPublisher(cfg Config, logger *slog.Logger) (edge.MessagePublisher, error) {
	tls, err := tlsconfig.ClientTLSConfig(cfg.Transport.TLS)
	if err != nil {
		return nil, err
	}

	return transportmqtt.NewPublisher(transportmqtt.Config{
		BrokerURL:      cfg.Transport.BrokerURL,
		ClientIDPrefix: cfg.Transport.ClientIDPrefix,
		Topic:          cfg.Transport.Topic,
		QoS:            byte(cfg.Transport.QoS),
		Username:       cfg.Transport.Username,
		Password:       cfg.Transport.Password,
		ConnectTimeout: cfg.Transport.ConnectTimeout,
		PublishTimeout: cfg.Transport.PublishTimeout,
		KeepAlive:      cfg.Transport.KeepAlive,
		TLS:            tls,
	}, logger)
}
