package transportmqtt

import (
	"crypto/tls"
	"encoding/hex"
	rand "math/rand/v2"
	"time"
)

type Config struct {
	// BrokerURL is a paho broker URL, e.g. tcp://localhost:1883 or
	// ssl://broker:8883.
	BrokerURL string
	// ClientIDPrefix gets a random hex suffix so multiple instances can
	// share a prefix without colliding on the broker.
	ClientIDPrefix string
	Topic          string
	QoS            byte
	Username       string
	Password       string
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
	KeepAlive      time.Duration
	TLS            *tls.Config
}

func clientID(prefix string) string {
	var suffix [4]byte
	v := rand.Uint32()
	suffix[0] = byte(v)
	suffix[1] = byte(v >> 8)
	suffix[2] = byte(v >> 16)
	suffix[3] = byte(v >> 24)

	return prefix + "-" + hex.EncodeToString(suffix[:])
}
