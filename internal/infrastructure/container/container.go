// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"errors"
	"net/http"

	"github.com/macroplan/v1/internal/application/suggest"
	"github.com/macroplan/v1/internal/infrastructure/ai"
	"github.com/macroplan/v1/internal/infrastructure/cache"
	"github.com/macroplan/v1/internal/infrastructure/config"
	"github.com/macroplan/v1/internal/infrastructure/http/server"
	"github.com/macroplan/v1/internal/infrastructure/jobs"
	"github.com/macroplan/v1/internal/infrastructure/monitoring"
	gormRepo "github.com/macroplan/v1/internal/infrastructure/persistence/gorm"
	"github.com/macroplan/v1/internal/ports/inbound"
	"github.com/macroplan/v1/internal/ports/outbound"
	"github.com/macroplan/v1/pkg/healthcheck"
	"github.com/macroplan/v1/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	HealthModule,
	MonitoringModule,
	RepositoryModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the GORM connection
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		return gormRepo.NewConnection(cfg.Database, log)
	},
)

// CacheModule provides caching. Redis when enabled, process memory
// otherwise.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.CacheRepository {
		if cfg.Redis.Enabled {
			repo, err := cache.NewRedisRepository(cfg.Redis, log)
			if err == nil {
				return repo
			}
			log.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
		}
		return cache.NewMemoryRepository()
	},
)

// HealthModule provides aggregated health checks for the database and,
// when configured, Redis.
var HealthModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger, db *gorm.DB) (*healthcheck.HealthCheck, error) {
		hc := healthcheck.New(cfg.App.Version, log)

		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		hc.Register("database", healthcheck.NewDatabaseChecker(sqlDB))

		if cfg.Redis.Enabled {
			hc.Register("redis", healthcheck.NewRedisChecker(redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr(),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.Database,
			})))
		}
		return hc, nil
	},
)

// MonitoringModule provides metrics collection
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) suggest.Recorder { return m },
	func(m *monitoring.MetricsCollector) ai.Observer { return m },
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	fx.Annotate(gormRepo.NewGoalRepository, fx.As(new(outbound.GoalRepository))),
	fx.Annotate(gormRepo.NewMealRepository, fx.As(new(outbound.MealRepository))),
	fx.Annotate(gormRepo.NewFoodRepository, fx.As(new(outbound.FoodRepository))),
	fx.Annotate(gormRepo.NewLedgerRepository, fx.As(new(outbound.LedgerRepository))),
	fx.Annotate(gormRepo.NewProviderConfigRepository, fx.As(new(outbound.ProviderConfigRepository))),

	func(cfg *config.Config, log *zap.Logger) *jobs.Registry {
		return jobs.NewRegistry(cfg.Suggestions.Retention, cfg.Suggestions.SweepInterval, log)
	},
	func(registry *jobs.Registry) outbound.SuggestionStore { return registry },
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(
		cfg *config.Config,
		configs outbound.ProviderConfigRepository,
		cacheRepo outbound.CacheRepository,
		observer ai.Observer,
		log *zap.Logger,
	) outbound.ProviderGateway {
		return ai.NewGateway(configs, cacheRepo, ai.Options{
			OpenAITimeout: cfg.AI.OpenAITimeout,
			OllamaTimeout: cfg.AI.OllamaTimeout,
			EnableCache:   cfg.AI.EnableCache,
			CacheTTL:      cfg.AI.CacheTTL,
		}, observer, log)
	},
	suggest.NewContextBuilder,
	func(
		cfg *config.Config,
		contexts *suggest.ContextBuilder,
		foods outbound.FoodRepository,
		gateway outbound.ProviderGateway,
		store outbound.SuggestionStore,
		recorder suggest.Recorder,
		log *zap.Logger,
	) inbound.SuggestionService {
		return suggest.NewService(contexts, foods, gateway, store, recorder, log,
			suggest.WithCandidateLimit(cfg.Suggestions.CandidateLimit))
	},
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	server.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	registry *jobs.Registry,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting macroplan",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			registry.Start()

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down macroplan")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("http server shutdown failed", zap.Error(err))
			}

			registry.Stop()

			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("database close failed", zap.Error(err))
				}
			}

			_ = log.Sync()
			return nil
		},
	})
}
