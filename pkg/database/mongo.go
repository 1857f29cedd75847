package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoConfig holds document store connection settings.
type MongoConfig struct {
	URI            string
	Database       string
	MinPoolSize    uint64
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "ecommerce",
		MinPoolSize:    2,
		MaxPoolSize:    50,
		ConnectTimeout: 10 * time.Second,
	}
}

const (
	connectAttempts = 3
	retryBaseWait   = time.Second
	retryJitter     = 0.25
)

// retryBackoff returns 1s, 2s, 4s... for attempt 0, 1, 2... with ±25% jitter.
func retryBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := retryBaseWait << attempt
	jitter := time.Duration(float64(base) * retryJitter * (2*rand.Float64() - 1)) // #nosec G404 -- backoff jitter
	return base + jitter
}

// NewMongoClient connects and pings the primary, retrying with backoff.
// monitor may be nil.
func NewMongoClient(ctx context.Context, cfg MongoConfig, monitor *event.PoolMonitor, logger *slog.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout)
	if monitor != nil {
		opts.SetPoolMonitor(monitor)
	}

	var lastErr error
	for attempt := 0; attempt < connectAttempts; attempt++ {
		client, err := mongo.Connect(opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
			if err == nil {
				return client, nil
			}
			_ = client.Disconnect(context.Background())
		}
		lastErr = err

		if attempt == connectAttempts-1 {
			break
		}
		wait := retryBackoff(attempt)
		if logger != nil {
			logger.Warn("mongo connection failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", connectAttempts),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to mongo: context canceled during retry: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("connect to mongo after %d attempts: %w", connectAttempts, lastErr)
}

// MongoPinger adapts a client to a readiness check.
func MongoPinger(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}
