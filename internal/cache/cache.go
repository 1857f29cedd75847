// Package cache keeps search results in Redis. Every entry lives under a
// namespace version; bumping the version retires all entries at once and
// lets them expire on their TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/httpclient"
)

// Generation is the namespace version a lookup observed.
type Generation int64

// NoGeneration is returned when the version could not be read. Set drops
// results stamped with it.
const NoGeneration Generation = -1

// SearchCache stores filter results. Implementations never fail a search:
// errors degrade to a miss.
type SearchCache interface {
	// Get returns the cached result for key and the generation it looked in.
	Get(ctx context.Context, key string) ([]domain.Product, Generation, bool)
	// Set stores a result under gen. A result computed across an Invalidate
	// lands in a retired generation and is never served.
	Set(ctx context.Context, gen Generation, key string, products []domain.Product)
	// Invalidate retires every cached result.
	Invalidate(ctx context.Context)
}

var requests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_search_cache_requests_total",
		Help: "Search cache lookups by result (hit, miss, error).",
	},
	[]string{"result"},
)

// Noop is used when caching is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]domain.Product, Generation, bool) {
	return nil, NoGeneration, false
}
func (Noop) Set(context.Context, Generation, string, []domain.Product) {}
func (Noop) Invalidate(context.Context)                               {}

const defaultPrefix = "catalog:search"

// Redis is a SearchCache on a Redis server.
type Redis struct {
	client  redis.UniversalClient
	breaker *gobreaker.CircuitBreaker[[]byte]
	ttl     time.Duration
	prefix  string
	logger  *slog.Logger
}

// NewRedis returns a cache whose entries expire after ttl. Calls go through a
// circuit breaker so a struggling Redis is skipped instead of slowing every
// search.
func NewRedis(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *Redis {
	cfg := httpclient.DefaultCircuitBreakerConfig("search-cache")
	httpclient.BreakerState.WithLabelValues(cfg.Name).Set(0)
	return &Redis{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](cfg.Settings(logger)),
		ttl:     ttl,
		prefix:  defaultPrefix,
		logger:  logger,
	}
}

func (c *Redis) versionKey() string {
	return c.prefix + ":version"
}

func (c *Redis) entryKey(version Generation, key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s:v%d:%s", c.prefix, version, hex.EncodeToString(sum[:]))
}

func (c *Redis) version(ctx context.Context) (Generation, error) {
	v, err := c.client.Get(ctx, c.versionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return NoGeneration, err
	}
	return Generation(v), nil
}

func (c *Redis) Get(ctx context.Context, key string) ([]domain.Product, Generation, bool) {
	gen := NoGeneration
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		v, err := c.version(ctx)
		if err != nil {
			return nil, err
		}
		gen = v
		b, err := c.client.Get(ctx, c.entryKey(v, key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		requests.WithLabelValues("error").Inc()
		c.logger.WarnContext(ctx, "search cache read failed", slog.String("error", err.Error()))
		return nil, gen, false
	}
	if raw == nil {
		requests.WithLabelValues("miss").Inc()
		return nil, gen, false
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		requests.WithLabelValues("error").Inc()
		c.logger.WarnContext(ctx, "search cache entry corrupt", slog.String("error", err.Error()))
		return nil, gen, false
	}
	requests.WithLabelValues("hit").Inc()
	return products, gen, true
}

func (c *Redis) Set(ctx context.Context, gen Generation, key string, products []domain.Product) {
	if gen < 0 {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		c.logger.WarnContext(ctx, "search cache encode failed", slog.String("error", err.Error()))
		return
	}
	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, c.entryKey(gen, key), raw, c.ttl).Err()
	})
	if err != nil {
		c.logger.WarnContext(ctx, "search cache write failed", slog.String("error", err.Error()))
	}
}

func (c *Redis) Invalidate(ctx context.Context) {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Incr(ctx, c.versionKey()).Err()
	})
	if err != nil {
		c.logger.WarnContext(ctx, "search cache invalidation failed", slog.String("error", err.Error()))
	}
}

// Ping reports whether Redis answers.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
