package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kvoloboi/sensorpipe/cmd/persister/config"
	"github.com/kvoloboi/sensorpipe/internal/application/common"
	"github.com/kvoloboi/sensorpipe/internal/application/persister"
	"github.com/kvoloboi/sensorpipe/internal/application/persister/quarantine"
	"github.com/kvoloboi/sensorpipe/internal/application/persister/ratelimit"
	"github.com/kvoloboi/sensorpipe/internal/infrastructure/store/httpstore"
	mongostore "github.com/kvoloboi/sensorpipe/internal/infrastructure/store/mongo"
	"github.com/kvoloboi/sensorpipe/internal/infrastructure/tlsconfig"
	transportmqtt "github.com/kvoloboi/sensorpipe/internal/infrastructure/transport/mqtt"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	counters := persister.NewCounters()

	cfg := config.Parse()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid cli parameters", "error", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	var discards persister.DiscardLog

	if cfg.Persister.QuarantinePath != "" {
		qlog, err := quarantine.Open(cfg.Persister.QuarantinePath)
		if err != nil {
			logger.Error("failed to open quarantine log", "err", err)
			os.Exit(1)
		}
		defer qlog.Close()
		discards = qlog
	}

	store, err := createStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create record store", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	ch := make(chan persister.MessageItem, cfg.Persister.QueueSize)

	baseIngestor := persister.NewChannelIngestor(ch, logger)

	var ingestor persister.Ingestor = baseIngestor

	var rules []ratelimit.RateRule
	if cfg.RateLimit.Messages.PerSecond > 0 {
		rules = append(rules,
			ratelimit.NewMsgRateRule(
				cfg.RateLimit.Messages.PerSecond,
				cfg.RateLimit.Messages.Burst,
			),
		)
	}
	if cfg.RateLimit.Bytes.PerSecond > 0 {
		rules = append(rules,
			ratelimit.NewByteRateRule(
				cfg.RateLimit.Bytes.PerSecond,
				cfg.RateLimit.Bytes.Burst,
			),
		)
	}

	if len(rules) > 0 {
		ingestor = ratelimit.NewRateLimitedIngestor(baseIngestor, *ratelimit.NewIngestRatePolicy(rules...))
	}

	worker := persister.NewWorker(
		ch,
		store,
		discards,
		persister.WorkerConfig{
			MaxRetries:  cfg.Store.Retry.MaxRetries,
			Backoff:     common.NewBackoff(cfg.Store.Retry.BaseDelay, cfg.Store.Retry.MaxDelay),
			RetryBudget: cfg.Store.RetryBudget,
		},
		logger,
		counters,
	)
	worker.Start(ctx)

	subscriber, err := createSubscriber(cfg, ingestor, logger)
	if err != nil {
		logger.Error("failed to create subscriber", "err", err)
		os.Exit(1)
	}

	if err := subscriber.Connect(ctx); err != nil {
		logger.Error("failed to connect subscriber", "err", err)
		os.Exit(1)
	}

	// ---- Wait for shutdown signal ----
	<-ctx.Done()
	logger.Info("shutdown signal received")

	subscriber.Close() // no further deliveries
	ingestor.Close()   // signals worker no more messages

	select {
	case <-worker.Done():
	case <-time.After(cfg.Persister.ShutdownTimeout):
		logger.Warn("worker drain timed out")
	}

	logger.Info("persister shutdown complete",
		"total_received", counters.GetReceived(),
		"total_persisted", counters.GetPersisted(),
		"total_malformed", counters.GetMalformed(),
		"total_invalid", counters.GetInvalid(),
		"total_dropped", counters.GetDropped(),
	)
}

func createStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persister.RecordStore, error) {
	switch cfg.Store.Type {
	case "mongo":
		return mongostore.Connect(ctx, mongostore.Config{
			URI:              cfg.Store.URI,
			Host:             cfg.Store.Host,
			Port:             cfg.Store.Port,
			Username:         cfg.Store.Username,
			Password:         cfg.Store.Password,
			AuthSource:       cfg.Store.AuthSource,
			Database:         cfg.Store.Database,
			Collection:       cfg.Store.Collection,
			ConnectTimeout:   cfg.Store.ConnectTimeout,
			OperationTimeout: cfg.Store.OperationTimeout,
		}, logger)
	case "http":
		return httpstore.NewStore(cfg.Store.BaseURL, logger, httpstore.WithTimeout(cfg.Store.OperationTimeout))
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
}

func createSubscriber(cfg config.Config, ingestor persister.Ingestor, logger *slog.Logger) (*transportmqtt.Subscriber, error) {
	tls, err := tlsconfig.ClientTLSConfig(cfg.Transport.TLS)
	if err != nil {
		return nil, err
	}

	return transportmqtt.NewSubscriber(transportmqtt.Config{
		BrokerURL:      cfg.Transport.BrokerURL,
		ClientIDPrefix: cfg.Transport.ClientIDPrefix,
		Topic:          cfg.Transport.Topic,
		QoS:            byte(cfg.Transport.QoS),
		Username:       cfg.Transport.Username,
		Password:       cfg.Transport.Password,
		ConnectTimeout: cfg.Transport.ConnectTimeout,
		KeepAlive:      cfg.Transport.KeepAlive,
		TLS:            tls,
	}, cfg.Persister.EnqueueTimeout, ingestor, logger), nil
}
