package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	libdb "batteryhub/backend/libs/db"
	libredis "batteryhub/backend/libs/redis"
	"batteryhub/backend/services/battery-service/internal/config"
	httpserver "batteryhub/backend/services/battery-service/internal/http"
	"batteryhub/backend/services/battery-service/internal/http/handlers"
	"batteryhub/backend/services/battery-service/internal/http/middleware"
	redisstore "batteryhub/backend/services/battery-service/internal/redis"
	"batteryhub/backend/services/battery-service/internal/repository"
	"batteryhub/backend/services/battery-service/internal/service"
)

// App wires battery-service dependencies.
type App struct {
	server      *httpserver.Server
	handler     http.Handler
	pgPool      *pgxpool.Pool
	mongoClient *mongo.Client
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph. Resources opened before a failure are released.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := a.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	repo := repository.Instrument(store, cfg.Storage.Driver, repository.NewStorageMetrics(registry))
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var cache service.RangeCache
	if cfg.CacheEnabled() {
		a.redisClient, err = libredis.NewRedisClient(libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		cache = redisstore.NewRangeCache(a.redisClient, cfg.CacheTTL())
	}

	batteryService := service.NewBatteryService(repo, cache, logger)
	batteriesHandler := handlers.NewBatteriesHandler(batteryService)

	routes := httpserver.Routes{
		SaveBatteries: batteriesHandler.HandleSave,
		GetBatteries:  batteriesHandler.HandleQuery,
		Health:        handlers.NewHealthHandler(),
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}

	a.handler = middleware.Chain(httpserver.NewRouter(routes),
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.Metrics(middleware.NewHTTPMetrics(registry)),
	)
	a.server = httpserver.NewServer(cfg.HTTPAddress(), a.handler, logger)

	logger.Info("battery service initialised",
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("range_cache", cache != nil),
	)
	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config) (repository.BatteryRepository, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := libdb.NewPostgresPool(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.pgPool = pool
		return repository.NewPostgresBatteryRepository(pool), nil
	case config.DriverMongo:
		client, err := libdb.NewMongoClient(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.mongoClient = client
		collection := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		return repository.NewMongoBatteryRepository(collection), nil
	case config.DriverMemory:
		return repository.NewMemoryBatteryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.pgPool != nil {
		a.pgPool.Close()
	}
	if a.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.logger.Warn("failed to disconnect mongo", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
