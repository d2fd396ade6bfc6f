package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/kvoloboi/sensorpipe/internal/infrastructure/tlsconfig"
)

type Config struct {
	Sensor struct {
		ID        string
		Unit      string
		Interval  time.Duration
		Seed      uint64
		QueueSize int

		SimAmbientC float64
		SimMinC     float64
		SimMaxC     float64
	}
	Transport struct {
		BrokerURL      string
		Topic          string
		QoS            int
		ClientIDPrefix string
		Username       string
		Password       string
		ConnectTimeout time.Duration
		PublishTimeout time.Duration
		KeepAlive      time.Duration
		TLS            tlsconfig.Config
	}
	Retry struct {
		MaxRetries int
		BaseDelay  time.Duration
		MaxDelay   time.Duration
	}
}

func (c Config) Validate() error {
	if c.Sensor.ID == "" {
		return errors.New("sensor.id must not be empty")
	}

	if c.Sensor.Unit == "" {
		return errors.New("sensor.unit must not be empty")
	}

	if c.Sensor.Interval <= 0 {
		return errors.New("sensor.interval must be > 0")
	}

	if c.Sensor.QueueSize <= 0 {
		return errors.New("sensor.queue-size must be > 0")
	}

	if c.Sensor.SimMinC > c.Sensor.SimMaxC {
		return errors.New("sensor.sim-min must be <= sensor.sim-max")
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

	if c.Transport.PublishTimeout <= 0 {
		return errors.New("transport.publish-timeout must be > 0")
	}

	if err := c.Transport.TLS.Validate(); err != nil {
		return err
	}

	if c.Retry.MaxRetries <= 0 {
		return errors.New("retry.max must be > 0")
	}

	if c.Retry.BaseDelay <= 0 {
		return errors.New("retry.base-delay must be > 0")
	}

	if c.Retry.MaxDelay <= 0 {
		return errors.New("retry.max-delay must be > 0")
	}

	if c.Retry.BaseDelay > c.Retry.MaxDelay {
		return errors.New("retry.base-delay must be <= retry.max-delay")
	}

	return nil
}
