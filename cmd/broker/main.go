// Command broker runs a standalone MQTT broker for local development and
// integration testing of the pipeline. Production deployments point the
// edge and persister processes at an external broker instead.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"

	"github.com/kvoloboi/sensorpipe/internal/infrastructure/tlsconfig"
)

func main() {
	var (
		addr   string
		tlsCfg tlsconfig.Config
	)

	flag.StringVar(&addr, "listen", ":1883", "TCP listen address")
	flag.BoolVar(&tlsCfg.Enabled, "tls.enabled", false, "serve TLS on the listener")
	flag.StringVar(&tlsCfg.CertPath, "tls.cert", "", "path to server certificate (PEM)")
	flag.StringVar(&tlsCfg.KeyPath, "tls.key", "", "path to server private key (PEM)")
	flag.StringVar(&tlsCfg.CACertPath, "tls.ca", "", "path to client CA (PEM, enables mTLS)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	serverTLS, err := tlsconfig.ServerTLSConfig(tlsCfg)
	if err != nil {
		logger.Error("failed to load TLS config", "err", err)
		os.Exit(1)
	}

	server := mqtt.New(nil)

	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		logger.Error("failed to add auth hook", "err", err)
		os.Exit(1)
	}

	if err := server.AddHook(&connectionLogHook{logger: logger}, nil); err != nil {
		logger.Error("failed to add connection hook", "err", err)
		os.Exit(1)
	}

	tcp := listeners.NewTCP(listeners.Config{
		ID:        "t1",
		Address:   addr,
		TLSConfig: serverTLS,
	})
	if err := server.AddListener(tcp); err != nil {
		logger.Error("failed to add TCP listener", "err", err)
		os.Exit(1)
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.Serve()
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("broker started", "addr", addr, "tls", tlsCfg.Enabled)

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("broker failed", "err", err)
			os.Exit(1)
		}
	case <-signalChan:
		logger.Info("shutting down")
	}

	server.Close()
	logger.Info("broker shutdown complete")
}

// connectionLogHook logs client connect and disconnect events.
type connectionLogHook struct {
	mqtt.HookBase
	logger *slog.Logger
}

func (h *connectionLogHook) ID() string {
	return "connection-log"
}

func (h *connectionLogHook) Provides(b byte) bool {
	return b == mqtt.OnConnect || b == mqtt.OnDisconnect
}

func (h *connectionLogHook) OnConnect(cl *mqtt.Client, pk packets.Packet) error {
	h.logger.Info("client connected", "client", cl.ID)
	return nil
}

func (h *connectionLogHook) OnDisconnect(cl *mqtt.Client, err error, expire bool) {
	h.logger.Info("client disconnected", "client", cl.ID, "err", err)
}
