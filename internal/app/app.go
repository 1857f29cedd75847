package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/auth"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/cache"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/config"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/domain"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/event"
	handler "github.com/Antony-QP/React-Ecommerce-Backend/internal/handler/http"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository/memory"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository/mongodb"
	"github.com/Antony-QP/React-Ecommerce-Backend/internal/service"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/database"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/health"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/httpclient"
	pkgkafka "github.com/Antony-QP/React-Ecommerce-Backend/pkg/kafka"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/middleware"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/pagination"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/tracing"
)

const serviceName = "catalog-service"

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	mongoClient    *mongo.Client
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	tracerShutdown tracing.Shutdown
	httpServer     *http.Server
}

type stores struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	users      repository.UserDirectory
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	healthHandler := health.NewHandler()

	// Document store.
	st, err := a.openStore(ctx, healthHandler)
	if err != nil {
		a.Shutdown()
		return nil, err
	}

	// Search result cache.
	var searchCache cache.SearchCache = cache.Noop{}
	if cfg.CacheEnabled {
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB

		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			a.Shutdown()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)

		redisCache := cache.NewRedis(rdb, time.Duration(cfg.CacheTTLSeconds)*time.Second, logger)
		healthHandler.Register("redis", redisCache.Ping)
		searchCache = redisCache
	}

	// Kafka producer. Without brokers, events are dropped.
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, product events are disabled")
	}
	eventProducer := event.NewProducer(a.producer, logger)

	// Token verification.
	tokens, err := newTokenValidator(cfg, logger)
	if err != nil {
		a.Shutdown()
		return nil, err
	}

	// Build the dependency graph.
	searchPolicy := pagination.Policy{Default: cfg.SearchDefaultLimit, Max: cfg.SearchMaxLimit}
	listingPolicy := pagination.Policy{Default: cfg.ListPerPage, Max: cfg.SearchMaxLimit}

	deps := handler.Dependencies{
		Search:     service.NewSearchService(st.products, searchCache, logger),
		Products:   service.NewProductService(st.products, eventProducer, searchCache, searchPolicy, listingPolicy, logger),
		Categories: service.NewCategoryService(st.categories, searchCache, logger),
		Tokens:     tokens,
		Users:      st.users,
		Health:     healthHandler,
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(deps, handler.RouterConfig{
		ServiceName:  serviceName,
		SearchPolicy: searchPolicy,
		CORS:         cors,
		PprofCIDRs:   cfg.PprofAllowedCIDRs,
		CacheMaxAge:  cfg.CacheMaxAge,
		SearchRPS:    cfg.SearchRateLimitRPS,
		SearchBurst:  cfg.SearchRateLimitBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context, healthHandler *health.Handler) (*stores, error) {
	timeout := time.Duration(a.cfg.StoreTimeoutMs) * time.Millisecond

	if a.cfg.StoreBackend == config.StoreMemory {
		store := memory.NewStore()
		if a.cfg.MemoryAdminEmail != "" {
			store.AddUser(domain.User{Name: "admin", Email: a.cfg.MemoryAdminEmail, Role: domain.RoleAdmin})
		}
		a.logger.Warn("using in-memory store, data is lost on restart")
		return &stores{products: store.Products(), categories: store.Categories(), users: store.Users()}, nil
	}

	poolStats := database.NewPoolStatsCollector(serviceName)
	if err := prometheus.Register(poolStats); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	mongoCfg := database.DefaultMongoConfig()
	mongoCfg.URI = a.cfg.MongoURI
	mongoCfg.Database = a.cfg.MongoDatabase
	mongoCfg.MinPoolSize = a.cfg.MongoMinPool
	mongoCfg.MaxPoolSize = a.cfg.MongoMaxPool

	client, err := database.NewMongoClient(ctx, mongoCfg, poolStats.Monitor(), a.logger)
	if err != nil {
		return nil, err
	}
	a.mongoClient = client
	a.logger.Info("connected to MongoDB", slog.String("database", mongoCfg.Database))

	db := client.Database(mongoCfg.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	healthHandler.Register("mongodb", database.MongoPinger(client))

	return &stores{
		products:   mongodb.NewProductRepository(db, timeout),
		categories: mongodb.NewCategoryRepository(db, timeout),
		users:      mongodb.NewUserDirectory(db, timeout),
	}, nil
}

func newTokenValidator(cfg *config.Config, logger *slog.Logger) (middleware.TokenValidator, error) {
	switch cfg.AuthMode {
	case config.AuthJWT:
		return auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer).Validate, nil
	case config.AuthIntrospect:
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("auth-introspect"),
			logger,
		)
		return auth.NewIntrospector(client, cfg.AuthIntrospectURL).Validate, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.AuthMode)
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("store", a.cfg.StoreBackend),
			slog.String("auth_mode", a.cfg.AuthMode),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.Shutdown()
		return err
	}

	a.Shutdown()
	return nil
}

// Shutdown gracefully stops all components that were started.
func (a *App) Shutdown() {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.logger.Error("mongo disconnect error", slog.String("error", err.Error()))
		}
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
}
