package transportmqtt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

var (
	ErrConnect = errors.New("broker connect failed")
	ErrPublish = errors.New("publish failed")
)

// Publisher sends payloads to a single topic over MQTT. Reconnection after
// a broker outage is handled by the client; a publish that cannot complete
// within the configured timeout fails and is left to the caller's retry
// policy.
type Publisher struct {
	client paho.Client
	cfg    Config
	logger *slog.Logger
	closed atomic.Bool
}

func NewPublisher(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Publisher{cfg: cfg, logger: logger}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(clientID(cfg.ClientIDPrefix)).
		SetAutoReconnect(true).
		SetOrderMatters(true).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetKeepAlive(cfg.KeepAlive)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.TLS != nil {
		opts.SetTLSConfig(cfg.TLS)
	}

	opts.SetOnConnectHandler(func(paho.Client) {
		logger.Info("broker connected", "broker", cfg.BrokerURL)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("broker connection lost", "err", err)
	})

	p.client = paho.NewClient(opts)

	token := p.client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %s", ErrConnect, cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	return p, nil
}

func (p *Publisher) Publish(ctx context.Context, payload []byte) error {
	if p.closed.Load() {
		return io.ErrClosedPipe
	}

	token := p.client.Publish(p.cfg.Topic, p.cfg.QoS, false, payload)

	timer := time.NewTimer(p.cfg.PublishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("%w: %v", ErrPublish, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: timeout after %s", ErrPublish, p.cfg.PublishTimeout)
	}
}

// Close implements io.Closer
func (p *Publisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}

	// quiesce window for in-flight acks, in milliseconds
	p.client.Disconnect(250)
	return nil
}
