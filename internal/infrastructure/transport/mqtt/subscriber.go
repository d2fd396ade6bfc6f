package transportmqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/kvoloboi/sensorpipe/internal/application/persister"
)

var ErrSubscribe = errors.New("subscribe failed")

// State tracks the subscriber's connection lifecycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Subscriber maintains a subscription to the configured topic and hands
// each delivered message to the ingestor. The paho client reconnects with
// its own backoff after connection loss; the OnConnect handler resubscribes
// every time, so a broker restart does not silence the pipeline.
type Subscriber struct {
	client   paho.Client
	cfg      Config
	ingestor persister.Ingestor
	logger   *slog.Logger

	// EnqueueTimeout bounds how long a delivery callback may block in the
	// ingest path (rate limiting); a full queue drops the message
	// immediately rather than waiting.
	enqueueTimeout time.Duration

	state atomic.Int32

	// firstSub reports the outcome of the initial subscription; paho runs
	// the OnConnect handler on its own goroutine.
	firstSub     chan error
	firstSubOnce sync.Once
}

func NewSubscriber(
	cfg Config,
	enqueueTimeout time.Duration,
	ingestor persister.Ingestor,
	logger *slog.Logger,
) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Subscriber{
		cfg:            cfg,
		ingestor:       ingestor,
		logger:         logger,
		enqueueTimeout: enqueueTimeout,
		firstSub:       make(chan error, 1),
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(clientID(cfg.ClientIDPrefix)).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetKeepAlive(cfg.KeepAlive)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.TLS != nil {
		opts.SetTLSConfig(cfg.TLS)
	}

	opts.SetOnConnectHandler(s.onConnect)
	opts.SetConnectionLostHandler(s.onConnectionLost)
	opts.SetReconnectingHandler(s.onReconnecting)

	s.client = paho.NewClient(opts)

	return s
}

// Connect establishes the broker connection and the initial subscription.
func (s *Subscriber) Connect(ctx context.Context) error {
	s.setState(StateConnecting)

	token := s.client.Connect()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := token.Error(); err != nil {
		s.setState(StateDisconnected)
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}

	// Surface the initial subscription outcome so startup does not report
	// a half-working subscriber.
	select {
	case err := <-s.firstSub:
		if err != nil {
			return fmt.Errorf("%w: topic %q: %v", ErrSubscribe, s.cfg.Topic, err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func (s *Subscriber) State() State {
	return State(s.state.Load())
}

// Close implements io.Closer
func (s *Subscriber) Close() error {
	if s.State() == StateStopped {
		return nil
	}
	s.setState(StateStopped)

	if s.client.IsConnectionOpen() {
		token := s.client.Unsubscribe(s.cfg.Topic)
		token.WaitTimeout(s.cfg.ConnectTimeout)
	}

	s.client.Disconnect(250)
	s.logger.Info("subscriber stopped")
	return nil
}

func (s *Subscriber) onConnect(c paho.Client) {
	token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, s.onMessage)

	var err error
	if !token.WaitTimeout(s.cfg.ConnectTimeout) {
		err = fmt.Errorf("%w: timeout after %s", ErrSubscribe, s.cfg.ConnectTimeout)
	} else {
		err = token.Error()
	}

	s.firstSubOnce.Do(func() { s.firstSub <- err })

	if err != nil {
		s.logger.Error("subscription failed", "topic", s.cfg.Topic, "err", err)
		s.setState(StateDisconnected)
		return
	}

	s.setState(StateSubscribed)
	s.logger.Info("subscribed", "topic", s.cfg.Topic, "qos", s.cfg.QoS)
}

func (s *Subscriber) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Subscriber) onConnectionLost(_ paho.Client, err error) {
	if s.State() == StateStopped {
		return
	}
	s.setState(StateDisconnected)
	s.logger.Warn("broker connection lost", "err", err)
}

func (s *Subscriber) onReconnecting(paho.Client, *paho.ClientOptions) {
	if s.State() == StateStopped {
		return
	}
	s.setState(StateConnecting)
	s.logger.Info("reconnecting to broker", "broker", s.cfg.BrokerURL)
}

func (s *Subscriber) onMessage(_ paho.Client, msg paho.Message) {
	item := persister.MessageItem{
		Topic:      msg.Topic(),
		Payload:    msg.Payload(),
		ReceivedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.enqueueTimeout)
	defer cancel()

	if err := s.ingestor.Ingest(ctx, item); err != nil {
		s.logger.Warn("ingest failed", "topic", item.Topic, "err", err)
	}
}
