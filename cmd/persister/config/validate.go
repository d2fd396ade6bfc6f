package config

import (
	"errors"
	"fmt"
)

func (c Config) Validate() error {
	if c.Persister.QueueSize <= 0 {
		return errors.New("persister.queue-size must be > 0")
	}

	if c.Persister.EnqueueTimeout <= 0 {
		return errors.New("persister.enqueue-timeout must be > 0")
	}

	if c.Persister.ShutdownTimeout <= 0 {
		return errors.New("persister.shutdown-timeout must be > 0")
	}

	validateRule := func(name string, r RateRuleConfig) error {
		if r.PerSecond < 0 {
			return errors.New(name + ".per-second must be >= 0")
		}
		if r.Burst < 0 {
			return errors.New(name + ".burst must be >= 0")
		}
		if r.PerSecond == 0 && r.Burst > 0 {
			return errors.New(name + ".burst requires per-second > 0")
		}
		// A limiter with zero burst rejects every wait, which would drop
		// all traffic while the process reports a clean start.
		if r.PerSecond > 0 && r.Burst <= 0 {
			return errors.New(name + ".per-second requires burst > 0")
		}
		return nil
	}

	if err := validateRule("ratelimit.messages", c.RateLimit.Messages); err != nil {
		return err
	}
	if err := validateRule("ratelimit.bytes", c.RateLimit.Bytes); err != nil {
		return err
	}

	switch c.Store.Type {
	case "mongo":
		if c.Store.URI == "" && c.Store.Host == "" {
			return errors.New("store.uri or store.host must be set")
		}
		if c.Store.Database == "" {
			return errors.New("store.database must not be empty")
		}
		if c.Store.Collection == "" {
			return errors.New("store.collection must not be empty")
		}
	case "http":
		if c.Store.BaseURL == "" {
			return errors.New("store.base-url must be set for the http store")
		}
	default:
		return fmt.Errorf("unsupported store.type: %q", c.Store.Type)
	}

	if c.Store.ConnectTimeout <= 0 {
		return errors.New("store.connect-timeout must be > 0")
	}

	if c.Store.OperationTimeout <= 0 {
		return errors.New("store.operation-timeout must be > 0")
	}

	if c.Store.RetryBudget <= 0 {
		return errors.New("store.retry-budget must be > 0")
	}

	if c.Store.Retry.MaxRetries <= 0 {
		return errors.New("store.retry.max must be > 0")
	}

	if c.Store.Retry.BaseDelay <= 0 {
		return errors.New("store.retry.base-delay must be > 0")
	}

	if c.Store.Retry.MaxDelay <= 0 {
		return errors.New("store.retry.max-delay must be > 0")
	}

	if c.Store.Retry.BaseDelay > c.Store.Retry.MaxDelay {
		return errors.New("store.retry.base-delay must be <= store.retry.max-delay")
	}

	if c.Transport.BrokerURL == "" {
		return errors.New("transport.broker-url must not be empty")
	}

	if c.Transport.Topic == "" {
		return errors.New("transport.topic must not be empty")
	}

	if c.Transport.QoS < 0 || c.Transport.QoS > 2 {
		return fmt.Errorf("transport.qos must be 0, 1 or 2, got %d", c.Transport.QoS)
	}

	if c.Transport.ConnectTimeout <= 0 {
		return errors.New("transport.connect-timeout must be > 0")
	}

	if err := c.Transport.TLS.Validate(); err != nil {
		return err
	}

	return nil
}
