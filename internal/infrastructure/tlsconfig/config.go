// Package tlsconfig loads TLS material for broker connections. Client
// configs cover the common broker setups: server-auth only (CA or system
// roots) and mutual TLS when a client keypair is configured.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

type Config struct {
	Enabled            bool
	CACertPath         string
	CertPath           string
	KeyPath            string
	InsecureSkipVerify bool
	ServerName         string
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if (c.CertPath == "") != (c.KeyPath == "") {
		return fmt.Errorf("tls cert and key must be set together")
	}
	return nil
}

func loadCertPool(caPath string) (*x509.CertPool, error) {
	caBytes, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("read ca cert: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("failed to append CA cert")
	}

	return pool, nil
}

// ClientTLSConfig builds the tls.Config handed to the MQTT client. A nil
// return with nil error means TLS is disabled.
func ClientTLSConfig(cfg Config) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tlsCfg := &tls.Config{
		ServerName:         cfg.ServerName,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}

	if cfg.CACertPath != "" {
		caPool, err := loadCertPool(cfg.CACertPath)
		if err != nil {
			return nil, err
		}
		tlsCfg.RootCAs = caPool
	}

	if cfg.CertPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertPath, cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	return tlsCfg, nil
}

// ServerTLSConfig builds the tls.Config for the embedded broker's TLS
// listener. Client certificates are required only when a CA is configured.
func ServerTLSConfig(cfg Config) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.CertPath == "" {
		return nil, fmt.Errorf("tls enabled but server cert is not set")
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertPath, cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("load server cert: %w", err)
	}

	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if cfg.CACertPath != "" {
		caPool, err := loadCertPool(cfg.CACertPath)
		if err != nil {
			return nil, err
		}
		tlsCfg.ClientCAs = caPool
		tlsCfg.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return tlsCfg, nil
}
