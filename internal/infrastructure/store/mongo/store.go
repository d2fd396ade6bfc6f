// Package mongostore persists records into a MongoDB collection. The store
// owns a single client; connection pooling and durability are the driver's
// and the server's concern.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kvoloboi/sensorpipe/internal/domain"
)

var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInsert           = errors.New("insert failed")
)

type Config struct {
	// URI takes precedence when set; otherwise it is assembled from the
	// individual connection fields.
	URI        string
	Host       string
	Port       int
	Username   string
	Password   string
	AuthSource string

	Database   string
	Collection string

	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// BuildURI assembles a mongodb:// URI from the config's connection fields.
func BuildURI(cfg Config) string {
	if cfg.URI != "" {
		return cfg.URI
	}

	authSource := cfg.AuthSource
	if authSource == "" {
		authSource = "admin"
	}

	host := cfg.Host
	if cfg.Port != 0 {
		host = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	if cfg.Username == "" {
		return fmt.Sprintf("mongodb://%s/", host)
	}

	return fmt.Sprintf(
		"mongodb://%s:%s@%s/?authSource=%s",
		escapeCredential(cfg.Username),
		escapeCredential(cfg.Password),
		host,
		url.QueryEscape(authSource),
	)
}

// escapeCredential percent-encodes a userinfo component. The connection
// string parser requires ':' and '@' encoded, and a space must become %20,
// not the '+' that query escaping produces.
func escapeCredential(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

type Store struct {
	client    *mongo.Client
	coll      *mongo.Collection
	opTimeout time.Duration
	logger    *slog.Logger
}

// Connect builds the client and verifies the server is reachable with a
// ping before the store is handed to the worker.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := options.Client().
		ApplyURI(BuildURI(cfg)).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping: %v", ErrStoreUnavailable, err)
	}

	logger.Info("store connected", "database", cfg.Database, "collection", cfg.Collection)

	return &Store{
		client:    client,
		coll:      client.Database(cfg.Database).Collection(cfg.Collection),
		opTimeout: cfg.OperationTimeout,
		logger:    logger,
	}, nil
}

type recordDoc struct {
	SensorID   string    `bson:"sensor_id"`
	Value      float64   `bson:"value"`
	Unit       string    `bson:"unit"`
	Timestamp  time.Time `bson:"timestamp"`
	ReceivedAt time.Time `bson:"received_at"`
}

func (s *Store) Insert(ctx context.Context, rec domain.Record) error {
	opCtx := ctx
	if s.opTimeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, s.opTimeout)
		defer cancel()
	}

	doc := recordDoc{
		SensorID:   rec.Reading.Sensor.String(),
		Value:      rec.Reading.Value.Float64(),
		Unit:       rec.Reading.Unit.String(),
		Timestamp:  rec.Reading.Timestamp.Time(),
		ReceivedAt: rec.ReceivedAt,
	}

	if _, err := s.coll.InsertOne(opCtx, doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInsert, err)
	}

	return nil
}

// Close implements io.Closer
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.client.Disconnect(ctx)
}
